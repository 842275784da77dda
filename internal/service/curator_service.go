package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/repository"
	"survey_insight_go/pkg/hash"
	"survey_insight_go/pkg/log"
	"survey_insight_go/pkg/token"

	"gorm.io/gorm"
)

const minPasswordLength = 6

// LoginResult 是登录成功后返回给前端的内容。
type LoginResult struct {
	AccessToken string         `json:"accessToken"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	Curator     *model.Curator `json:"curator"`
}

// CuratorService 管理修正人账号和登录。
type CuratorService interface {
	Create(ctx context.Context, username, password, role string) (*model.Curator, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	FindByID(ctx context.Context, id uint) (*model.Curator, error)
}

type curatorService struct {
	curatorRepo repository.CuratorRepository
	jwtManager  *token.JWTManager
}

func NewCuratorService(curatorRepo repository.CuratorRepository, jwtManager *token.JWTManager) CuratorService {
	return &curatorService{curatorRepo: curatorRepo, jwtManager: jwtManager}
}

func (s *curatorService) Create(ctx context.Context, username, password, role string) (*model.Curator, error) {
	if s.curatorRepo == nil {
		return nil, ErrInternal
	}
	username = strings.TrimSpace(username)
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		role = model.CuratorRoleCurator
	}
	if username == "" || len(password) < minPasswordLength {
		return nil, ErrInvalidInput
	}
	if role != model.CuratorRoleCurator && role != model.CuratorRoleAdmin {
		return nil, ErrInvalidInput
	}

	_, err := s.curatorRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil, ErrCuratorAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		log.Error("CuratorService.Create: hash password failed", err)
		return nil, ErrInternal
	}
	curator := &model.Curator{Username: username, Password: hashed, Role: role}
	if err := s.curatorRepo.Create(ctx, curator); err != nil {
		return nil, err
	}
	log.Infof("curator %q created with role %s", username, role)
	return curator, nil
}

func (s *curatorService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s.curatorRepo == nil || s.jwtManager == nil {
		return nil, ErrInternal
	}

	curator, err := s.curatorRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPasswordHash(password, curator.Password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.jwtManager.GenerateToken(curator.ID, curator.Username, curator.Role)
	if err != nil {
		log.Error("CuratorService.Login: generate token failed", err)
		return nil, ErrInternal
	}
	return &LoginResult{AccessToken: accessToken, ExpiresAt: expiresAt, Curator: curator}, nil
}

func (s *curatorService) FindByID(ctx context.Context, id uint) (*model.Curator, error) {
	if s.curatorRepo == nil {
		return nil, ErrInternal
	}
	curator, err := s.curatorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCuratorNotFound
		}
		return nil, err
	}
	return curator, nil
}

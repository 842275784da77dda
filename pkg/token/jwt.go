// Package token 负责签发和校验策展人的访问令牌。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess = "access"
	issuer          = "survey-insight"
)

// ErrWrongTokenType 表示令牌签名有效但不是访问令牌。
var ErrWrongTokenType = errors.New("token is not an access token")

// JWTManager 负责生成和验证 JWT。
type JWTManager struct {
	secretKey           []byte
	accessTokenDuration time.Duration
}

// CustomClaims 在标准 Claims 之外携带策展人身份，AppliedBy 取自 Username。
type CustomClaims struct {
	CuratorID uint   `json:"curator_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func NewJWTManager(secretKey string, accessTokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:           []byte(secretKey),
		accessTokenDuration: accessTokenDuration,
	}
}

// GenerateToken 签发访问令牌，返回令牌和过期时间。
func (manager *JWTManager) GenerateToken(curatorID uint, username, role string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(manager.accessTokenDuration)
	claims := &CustomClaims{
		CuratorID: curatorID,
		Username:  username,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(manager.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyToken 校验签名、有效期和令牌类型。只接受 HS256。
func (manager *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return manager.secretKey, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}

	claims := token.Claims.(*CustomClaims)
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

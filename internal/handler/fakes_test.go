package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"survey_insight_go/internal/middleware"
	"survey_insight_go/internal/model"
	"survey_insight_go/internal/service"
	applog "survey_insight_go/pkg/log"
	"survey_insight_go/pkg/token"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	applog.Init("error", "console", "")
	m.Run()
}

func doReq(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	return doAuthReq(r, method, path, body, "")
}

func doAuthReq(r http.Handler, method, path, body, accessToken string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	r.ServeHTTP(w, req)
	return w
}

type fakeCuratorService struct {
	createFn   func(username, password, role string) (*model.Curator, error)
	loginFn    func(username, password string) (*service.LoginResult, error)
	findByIDFn func(id uint) (*model.Curator, error)
}

func (f *fakeCuratorService) Create(_ context.Context, username, password, role string) (*model.Curator, error) {
	if f.createFn != nil {
		return f.createFn(username, password, role)
	}
	return nil, nil
}

func (f *fakeCuratorService) Login(_ context.Context, username, password string) (*service.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(username, password)
	}
	return nil, service.ErrInvalidCredentials
}

func (f *fakeCuratorService) FindByID(_ context.Context, id uint) (*model.Curator, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(id)
	}
	return nil, service.ErrCuratorNotFound
}

type fakeTagService struct {
	listWithCountsFn  func() ([]model.TagCount, error)
	getTreeFn         func() ([]*model.TagNode, error)
	findByIDFn        func(id uint) (*model.Tag, error)
	setStatusFn       func(id uint, active bool) (*model.Tag, error)
	taggedResponsesFn func(tagID uint) ([]model.TaggedResponse, error)
}

func (f *fakeTagService) ListWithCounts(context.Context) ([]model.TagCount, error) {
	if f.listWithCountsFn != nil {
		return f.listWithCountsFn()
	}
	return []model.TagCount{}, nil
}

func (f *fakeTagService) GetTree(context.Context) ([]*model.TagNode, error) {
	if f.getTreeFn != nil {
		return f.getTreeFn()
	}
	return []*model.TagNode{}, nil
}

func (f *fakeTagService) FindByID(_ context.Context, id uint) (*model.Tag, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(id)
	}
	return nil, service.ErrTagNotFound
}

func (f *fakeTagService) SetStatus(_ context.Context, id uint, active bool) (*model.Tag, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(id, active)
	}
	return &model.Tag{TagID: id, IsActive: active}, nil
}

func (f *fakeTagService) TaggedResponses(_ context.Context, tagID uint) ([]model.TaggedResponse, error) {
	if f.taggedResponsesFn != nil {
		return f.taggedResponsesFn(tagID)
	}
	return []model.TaggedResponse{}, nil
}

func (f *fakeTagService) SeedCanonical(context.Context) (int, error) {
	return 0, nil
}

func (f *fakeTagService) ImportHierarchy(context.Context, []service.HierarchyRow) (*service.HierarchyImportResult, error) {
	return &service.HierarchyImportResult{}, nil
}

type fakeOverrideService struct {
	recordOverrideFn func(responseID, tagID uint, action model.OverrideAction, author, notes string) (*model.ManualOverride, error)
	historyFn        func(responseID uint) ([]model.ManualOverride, error)
	responseTagsFn   func(responseID uint) (*model.ResponseTagDetail, error)
}

func (f *fakeOverrideService) RecordOverride(_ context.Context, responseID, tagID uint, action model.OverrideAction, author, notes string) (*model.ManualOverride, error) {
	if f.recordOverrideFn != nil {
		return f.recordOverrideFn(responseID, tagID, action, author, notes)
	}
	return &model.ManualOverride{}, nil
}

func (f *fakeOverrideService) History(_ context.Context, responseID uint) ([]model.ManualOverride, error) {
	if f.historyFn != nil {
		return f.historyFn(responseID)
	}
	return []model.ManualOverride{}, nil
}

func (f *fakeOverrideService) ResponseTags(_ context.Context, responseID uint) (*model.ResponseTagDetail, error) {
	if f.responseTagsFn != nil {
		return f.responseTagsFn(responseID)
	}
	return &model.ResponseTagDetail{}, nil
}

type fakeMappingService struct {
	listFn       func(questionID uint) ([]model.QuestionTagMapping, error)
	upsertFn     func(questionID, tagID uint, assignment model.AssignmentType, actor, notes string) (*model.QuestionTagMapping, error)
	deactivateFn func(questionID, tagID uint, actor string) error
}

func (f *fakeMappingService) List(_ context.Context, questionID uint) ([]model.QuestionTagMapping, error) {
	if f.listFn != nil {
		return f.listFn(questionID)
	}
	return []model.QuestionTagMapping{}, nil
}

func (f *fakeMappingService) Upsert(_ context.Context, questionID, tagID uint, assignment model.AssignmentType, actor, notes string) (*model.QuestionTagMapping, error) {
	if f.upsertFn != nil {
		return f.upsertFn(questionID, tagID, assignment, actor, notes)
	}
	return &model.QuestionTagMapping{}, nil
}

func (f *fakeMappingService) Deactivate(_ context.Context, questionID, tagID uint, actor string) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(questionID, tagID, actor)
	}
	return nil
}

func (f *fakeMappingService) Import(context.Context, []service.MappingRow, bool) (*service.MappingImportResult, error) {
	return &service.MappingImportResult{}, nil
}

type fakeResponseService struct {
	listByQuestionFn func() ([]model.QuestionResponses, error)
}

func (f *fakeResponseService) ListByQuestion(context.Context) ([]model.QuestionResponses, error) {
	if f.listByQuestionFn != nil {
		return f.listByQuestionFn()
	}
	return []model.QuestionResponses{}, nil
}

type fakeAnalyticsService struct {
	overviewFn             func() (*model.Analytics, error)
	questionDistributionFn func(questionID uint) ([]model.TagDistribution, error)
}

func (f *fakeAnalyticsService) Overview(context.Context) (*model.Analytics, error) {
	if f.overviewFn != nil {
		return f.overviewFn()
	}
	return &model.Analytics{}, nil
}

func (f *fakeAnalyticsService) QuestionDistribution(_ context.Context, questionID uint) ([]model.TagDistribution, error) {
	if f.questionDistributionFn != nil {
		return f.questionDistributionFn(questionID)
	}
	return []model.TagDistribution{}, nil
}

type fakeTaggingService struct {
	previewFn func(text string, maxTags int) (*service.Preview, error)
}

func (f *fakeTaggingService) Preview(text string, maxTags int) (*service.Preview, error) {
	if f.previewFn != nil {
		return f.previewFn(text, maxTags)
	}
	return &service.Preview{}, nil
}

func (f *fakeTaggingService) Retag(context.Context) (*service.RetagStats, error) {
	return &service.RetagStats{}, nil
}

// testAPI 用真实的路由和认证中间件组装一套 handler，服务层全部替换为 fake。
type testAPI struct {
	router    *gin.Engine
	jwt       *token.JWTManager
	curators  *fakeCuratorService
	tags      *fakeTagService
	overrides *fakeOverrideService
	mappings  *fakeMappingService
	responses *fakeResponseService
	analytics *fakeAnalyticsService
	tagging   *fakeTaggingService
	ping      func(ctx context.Context) error
}

var testCurators = map[uint]*model.Curator{
	1: {ID: 1, Username: "alice", Role: model.CuratorRoleCurator},
	2: {ID: 2, Username: "root", Role: model.CuratorRoleAdmin},
}

func newTestAPI() *testAPI {
	a := &testAPI{
		jwt: token.NewJWTManager("handler-test-secret", time.Hour),
		curators: &fakeCuratorService{
			findByIDFn: func(id uint) (*model.Curator, error) {
				if c, ok := testCurators[id]; ok {
					return c, nil
				}
				return nil, service.ErrCuratorNotFound
			},
		},
		tags:      &fakeTagService{},
		overrides: &fakeOverrideService{},
		mappings:  &fakeMappingService{},
		responses: &fakeResponseService{},
		analytics: &fakeAnalyticsService{},
		tagging:   &fakeTaggingService{},
	}
	return a
}

// build 在所有 fake 配置完成后创建路由。
func (a *testAPI) build() *gin.Engine {
	r := gin.New()
	RegisterRoutes(r, Handlers{
		Auth:      NewAuthHandler(a.curators),
		Tag:       NewTagHandler(a.tags),
		Question:  NewQuestionHandler(a.analytics, a.mappings),
		Response:  NewResponseHandler(a.responses, a.overrides),
		Analytics: NewAnalyticsHandler(a.analytics, a.tagging, a.ping),
	}, middleware.AuthMiddleware(a.jwt, a.curators), middleware.AdminAuthMiddleware())
	a.router = r
	return r
}

func (a *testAPI) tokenFor(t *testing.T, curatorID uint) string {
	t.Helper()
	c := testCurators[curatorID]
	tok, _, err := a.jwt.GenerateToken(c.ID, c.Username, c.Role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/handlers"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/platform/config"
)

// --- Mock AccessService ---
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) GetActor(ctx context.Context, userID string) (*domain.Actor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}
func (m *MockAccessService) LoadFreshActor(ctx context.Context, userID string) (*domain.Actor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}
func (m *MockAccessService) InvalidateActor(userID string) {
	m.Called(userID)
}
func (m *MockAccessService) GetPermissions(ctx context.Context, userID string) (*domain.Permissions, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Permissions), args.Error(1)
}
func (m *MockAccessService) GetProjectPermissions(ctx context.Context, userID, projectID string) (*domain.ProjectPermissions, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectPermissions), args.Error(1)
}
func (m *MockAccessService) CheckPermission(ctx context.Context, userID string, action domain.PermissionAction, projectID *string) (bool, error) {
	args := m.Called(ctx, userID, action, projectID)
	return args.Bool(0), args.Error(1)
}
func (m *MockAccessService) AssignProjectRole(ctx context.Context, requestingUserID, targetUserID, projectID string, role domain.ProjectRole) (*domain.ProjectMember, error) {
	args := m.Called(ctx, requestingUserID, targetUserID, projectID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectMember), args.Error(1)
}
func (m *MockAccessService) RemoveProjectRole(ctx context.Context, requestingUserID, targetUserID, projectID string) error {
	args := m.Called(ctx, requestingUserID, targetUserID, projectID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccessSvcFacade = (*MockAccessService)(nil)

// --- Mock ClosureService ---
type MockClosureService struct {
	mock.Mock
}

func (m *MockClosureService) CloseEntity(ctx context.Context, userID string, req domain.ClosureRequest) (*domain.ClosureResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosureResult), args.Error(1)
}
func (m *MockClosureService) ListCloseTargets(ctx context.Context, userID string, ref domain.EntityRef) (*domain.OpenEntities, error) {
	args := m.Called(ctx, userID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OpenEntities), args.Error(1)
}
func (m *MockClosureService) GetClosurePreview(ctx context.Context, userID string, ref domain.EntityRef) (*domain.ClosurePreview, error) {
	args := m.Called(ctx, userID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosurePreview), args.Error(1)
}

var _ portssvc.ClosureSvcFacade = (*MockClosureService)(nil)

// --- Shared fixture ---

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testIssuer    = "bimcall-test"
)

// handlerSuite wires the real router against mocked services.
type handlerSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccessService  *MockAccessService
	mockClosureService *MockClosureService
}

func (s *handlerSuite) SetupTest() {
	s.setupRouter(nil)
}

func (s *handlerSuite) setupRouter(rateLimiter *limiter.Limiter) {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockAccessService = new(MockAccessService)
	s.mockClosureService = new(MockClosureService)

	cfg := &config.Config{JWTSecret: testJWTSecret, JWTIssuer: testIssuer, IsProduction: true}
	services := &portssvc.ServiceContainer{Access: s.mockAccessService, Closure: s.mockClosureService}
	handlers.RegisterRoutes(s.router, cfg, services, nil, rateLimiter)
}

// generateTestToken creates a signed JWT for testing.
func (s *handlerSuite) generateTestToken(userID, issuer string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// do serves one request as userID. An empty userID sends no Authorization header.
func (s *handlerSuite) do(method, path, userID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.generateTestToken(userID, testIssuer)))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string { return &s }

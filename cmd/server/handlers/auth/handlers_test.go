package auth

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"taskboard/cmd/server/middlewares"
	"taskboard/cmd/server/testutil"
	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/services/auth"
	"taskboard/internal/services/auth/authtest"
	"taskboard/internal/utils/crypto"

	"github.com/gofiber/fiber/v2"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	registerEndpoint = "/api/auth/register"
	loginEndpoint    = "/api/auth/login"
	meEndpoint       = "/api/auth/me"
	testName         = "Test User"
	testEmail        = "test@example.com"
	testPassword     = "Password123"
)

// MockAuthService mocks the auth service
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Response), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Response), args.Error(1)
}

// AuthTestSetup contains common test setup data
type AuthTestSetup struct {
	MockService *MockAuthService
	App         *fiber.App
	TestUser    *auth.User
	TestToken   string
}

// SetupAuthTest wires the handlers to a mocked service
func SetupAuthTest(t *testing.T) *AuthTestSetup {
	t.Helper()

	mockService := &MockAuthService{}
	app := testutil.CreateTestApp(t)
	h := NewHandlers(mockService, testutil.CreateTestValidator(t), nil)

	authGrp := app.Group("/api/auth")
	authGrp.Post("/register", h.Register)
	authGrp.Post("/login", h.Login)

	now := time.Now().UTC()
	return &AuthTestSetup{
		MockService: mockService,
		App:         app,
		TestUser: &auth.User{
			ID:        bson.NewObjectID(),
			FullName:  testName,
			Email:     testEmail,
			CreatedAt: now,
			UpdatedAt: now,
		},
		TestToken: "mock-jwt-token",
	}
}

func TestAuthHandlersTableDriven(t *testing.T) {
	registerReq := auth.RegisterRequest{FullName: testName, Email: testEmail, Password: testPassword}
	loginReq := auth.LoginRequest{Email: testEmail, Password: testPassword}

	testCases := []struct {
		name           string
		endpoint       string
		body           any
		setupMock      func(*MockAuthService, *auth.User, string)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "Register_Success",
			endpoint: registerEndpoint,
			body:     registerReq,
			setupMock: func(m *MockAuthService, user *auth.User, token string) {
				m.On("Register", mock.Anything, registerReq).Return(&auth.Response{User: user, Token: token}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:     "Register_DuplicateEmail",
			endpoint: registerEndpoint,
			body:     registerReq,
			setupMock: func(m *MockAuthService, _ *auth.User, _ string) {
				m.On("Register", mock.Anything, registerReq).Return(nil, auth.ErrDuplicate).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Email already in use"}`,
		},
		{
			name:     "Register_BlankNameAfterSanitizing",
			endpoint: registerEndpoint,
			body:     registerReq,
			setupMock: func(m *MockAuthService, _ *auth.User, _ string) {
				m.On("Register", mock.Anything, registerReq).Return(nil, auth.ErrInvalidName).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Validation failed","errors":[{"field":"fullName","message":"is required"}]}`,
		},
		{
			name:     "Register_StoreFailure",
			endpoint: registerEndpoint,
			body:     registerReq,
			setupMock: func(m *MockAuthService, _ *auth.User, _ string) {
				m.On("Register", mock.Anything, registerReq).Return(nil, auth.ErrRegister).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Server error"}`,
		},
		{
			name:           "Register_ShortPassword",
			endpoint:       registerEndpoint,
			body:           map[string]string{"fullName": testName, "email": testEmail, "password": "abc"},
			setupMock:      func(*MockAuthService, *auth.User, string) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Validation failed","errors":[{"field":"password","message":"` + crypto.ErrPasswordLength.Error() + `"}]}`,
		},
		{
			name:           "Register_MalformedJSON",
			endpoint:       registerEndpoint,
			body:           `{"email":`,
			setupMock:      func(*MockAuthService, *auth.User, string) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Bad Request"}`,
		},
		{
			name:     "Login_Success",
			endpoint: loginEndpoint,
			body:     loginReq,
			setupMock: func(m *MockAuthService, user *auth.User, token string) {
				m.On("Login", mock.Anything, loginReq).Return(&auth.Response{User: user, Token: token}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "Login_BadCredentials",
			endpoint: loginEndpoint,
			body:     loginReq,
			setupMock: func(m *MockAuthService, _ *auth.User, _ string) {
				m.On("Login", mock.Anything, loginReq).Return(nil, auth.ErrInvalidCredentials).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"message":"Invalid credentials"}`,
		},
		{
			name:     "Login_StoreFailure",
			endpoint: loginEndpoint,
			body:     loginReq,
			setupMock: func(m *MockAuthService, _ *auth.User, _ string) {
				m.On("Login", mock.Anything, loginReq).Return(nil, auth.ErrLogin).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Server error"}`,
		},
		{
			name:           "Login_InvalidEmail",
			endpoint:       loginEndpoint,
			body:           map[string]string{"email": "nope", "password": testPassword},
			setupMock:      func(*MockAuthService, *auth.User, string) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Validation failed","errors":[{"field":"email","message":"must be a valid email address"}]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setup := SetupAuthTest(t)
			tc.setupMock(setup.MockService, setup.TestUser, setup.TestToken)

			status, body := testutil.Do(t, setup.App, testutil.CreateJSONRequest(http.MethodPost, tc.endpoint, tc.body))
			assert.Equal(t, tc.expectedStatus, status, "body: %s", body)

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, string(body))
			}
			if tc.expectedStatus < 400 {
				got := testutil.DecodeJSON[auth.Response](t, body)
				assert.Equal(t, setup.TestUser.Email, got.User.Email)
				assert.Equal(t, setup.TestToken, got.Token)
				assert.NotContains(t, string(body), "password")
			}

			setup.MockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandlersRecordEvents(t *testing.T) {
	mockService := &MockAuthService{}
	events := metrics.NewAuth()
	app := testutil.CreateTestApp(t)
	h := NewHandlers(mockService, testutil.CreateTestValidator(t), events)
	app.Post(loginEndpoint, h.Login)

	mockService.On("Login", mock.Anything, mock.Anything).Return(nil, auth.ErrInvalidCredentials).Twice()

	for range 2 {
		status, _ := testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodPost, loginEndpoint, auth.LoginRequest{Email: testEmail, Password: "wrong-one"}))
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	want := `
# HELP auth_events_total Authentication events by kind and outcome
# TYPE auth_events_total counter
auth_events_total{event="login",outcome="rejected"} 2
`
	require.NoError(t, promtest.CollectAndCompare(events.Collector(), strings.NewReader(want), "auth_events_total"))
}

// The full path: real service, in-memory store, real tokens and the gate.
func TestRegisterLoginMeFlow(t *testing.T) {
	app := testutil.CreateTestApp(t)
	tokens := testutil.CreateTestTokens(t)
	users := authtest.NewUsers()
	svc := auth.NewService(users, crypto.NewHasher(4), tokens, logger.L())
	h := NewHandlers(svc, testutil.CreateTestValidator(t), nil)

	grp := app.Group("/api/auth")
	grp.Post("/register", h.Register)
	grp.Post("/login", h.Login)
	grp.Get("/me", middlewares.Auth(tokens, users, nil), h.Me)

	status, body := testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodPost, registerEndpoint,
		map[string]string{"fullName": "  <b>Ada</b>  Lovelace ", "email": "Ada@Example.com", "password": "analytical"}))
	require.Equal(t, http.StatusCreated, status, "body: %s", body)
	registered := testutil.DecodeJSON[auth.Response](t, body)
	assert.Equal(t, "Ada Lovelace", registered.User.FullName)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.NotContains(t, string(body), "passwordHash")

	status, body = testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodPost, registerEndpoint,
		map[string]string{"fullName": "Imposter", "email": "ADA@example.com", "password": "analytical"}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"message":"Email already in use"}`, string(body))

	status, body = testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodPost, loginEndpoint,
		map[string]string{"email": "ada@example.com", "password": "analytical"}))
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	loggedIn := testutil.DecodeJSON[auth.Response](t, body)

	status, body = testutil.Do(t, app, testutil.CreateAuthenticatedRequest(http.MethodGet, meEndpoint, nil, loggedIn.Token))
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	me := testutil.DecodeJSON[auth.UserResponse](t, body)
	assert.Equal(t, registered.User.ID, me.User.ID)

	unknown, wrong := "ghost@example.com", "ada@example.com"
	for _, email := range []string{unknown, wrong} {
		status, body = testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodPost, loginEndpoint,
			map[string]string{"email": email, "password": "not-the-password"}))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.JSONEq(t, `{"message":"Invalid credentials"}`, string(body))
	}

	status, body = testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodGet, meEndpoint, nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, string(body))
}

func TestMeWithoutGateIsUnauthorized(t *testing.T) {
	app := testutil.CreateTestApp(t)
	h := NewHandlers(&MockAuthService{}, testutil.CreateTestValidator(t), nil)
	app.Get(meEndpoint, h.Me)

	status, body := testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodGet, meEndpoint, nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, string(body))
}

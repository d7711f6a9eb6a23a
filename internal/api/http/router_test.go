package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/api/http/handlers"
	"github.com/spec-kit/lead-lens/internal/auth"
	"github.com/spec-kit/lead-lens/internal/config"
	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/events"
	"github.com/spec-kit/lead-lens/internal/observability"
	"github.com/spec-kit/lead-lens/internal/ratelimit"
	"github.com/spec-kit/lead-lens/internal/repository/repotest"
	"github.com/spec-kit/lead-lens/internal/salesforce"
	"github.com/spec-kit/lead-lens/internal/service"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

type testServer struct {
	app        *fiber.App
	principals *service.PrincipalService
	audit      *repotest.Audit
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination map[string]int  `json:"pagination"`
	Error      struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	principalRepo := repotest.NewPrincipals()
	auditRepo := repotest.NewAudit()
	principalRepo.Audit = auditRepo
	sf := salesforce.NewMock()

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewAuditRecorder(auditRepo, metrics, logger).RegisterHandlers(dispatcher)

	authService := service.NewAuthService(cfg, service.AuthDependencies{PrincipalRepo: principalRepo, Logger: logger})
	contactService := service.NewContactService(service.ContactDependencies{Salesforce: sf, AuditRepo: auditRepo, Dispatcher: dispatcher, Logger: logger})
	metadataService := service.NewMetadataService(sf, repotest.NewMetadataCache(), 30*time.Minute, logger)
	principalService := service.NewPrincipalService(cfg, service.PrincipalDependencies{PrincipalRepo: principalRepo, ContactService: contactService, Logger: logger})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{Timeout: 5 * time.Second, FrontendURL: "http://localhost:5173"})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("lead-lens-api", "test", nil),
		Auth:           handlers.NewAuthHandler(authService),
		Contacts:       handlers.NewContactsHandler(contactService),
		Metadata:       handlers.NewMetadataHandler(metadataService),
		Principals:     principalService,
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
		LoginLimiter:   limiter,
		Metrics:        metrics,
		Logger:         logger,
	})
	return &testServer{app: app, principals: principalService, audit: auditRepo}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*nethttp.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) login(t *testing.T, email, field, credential string) string {
	t.Helper()
	resp, env := s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": email, field: credential})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, env.Error.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (s *testServer) seedAdmin(t *testing.T) string {
	t.Helper()
	_, _, err := s.principals.Create(t.Context(), domain.RoleAdmin, service.CreatePrincipalInput{Name: "Root", Email: "root@test.com", Password: "secret1"})
	require.NoError(t, err)
	return s.login(t, "root@test.com", "password", "secret1")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	resp, _ := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, _ = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, env := s.do(t, nethttp.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, apperrors.CodeNotFound, env.Error.Code)
}

func TestLoginAndVerify(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.seedAdmin(t)

	resp, env := s.do(t, nethttp.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var data struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "root@test.com", data.User.Email)
	assert.Equal(t, "admin", data.User.Role)

	resp, env = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "root@test.com", "password": "wrong"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeInvalidCredentials, env.Error.Code)

	resp, env = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "root@test.com"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, env.Error.Code)

	resp, env = s.do(t, nethttp.MethodGet, "/api/auth/verify", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeUnauthorized, env.Error.Code)

	resp, _ = s.do(t, nethttp.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, nethttp.MethodPatch, "/api/auth/password", token, map[string]string{"currentPassword": "secret1", "newPassword": "secret2"})
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	s.login(t, "root@test.com", "password", "secret2")
}

func TestLoanOfficerFlow(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.seedAdmin(t)

	resp, env := s.do(t, nethttp.MethodPost, "/api/loan-officers", admin, map[string]string{"name": "Test LO", "email": "lo@test.com"})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, env.Error.Message)
	var createdLO struct {
		User struct {
			ID      string `json:"id"`
			SFField string `json:"sfField"`
		} `json:"user"`
		AccessCode string `json:"accessCode"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &createdLO))
	assert.Equal(t, "Loan_Partners__c", createdLO.User.SFField)
	require.NotEmpty(t, createdLO.AccessCode)

	resp, env = s.do(t, nethttp.MethodPost, "/api/loan-officers", admin, map[string]string{"name": "Dup", "email": "lo@test.com"})
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperrors.CodeAlreadyExists, env.Error.Code)

	lo := s.login(t, "lo@test.com", "accessCode", createdLO.AccessCode)

	resp, env = s.do(t, nethttp.MethodGet, "/api/contacts?pageSize=2", lo, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 2)
	assert.Equal(t, map[string]int{"page": 1, "pageSize": 2, "totalCount": 5, "totalPages": 3}, env.Pagination)

	resp, env = s.do(t, nethttp.MethodGet, "/api/contacts?dateFrom=02/01/2026", lo, nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, env.Error.Code)

	resp, env = s.do(t, nethttp.MethodPatch, "/api/contacts", lo, map[string]any{
		"updates": []map[string]any{{"id": "003MOCK000000001", "fields": map[string]any{"bdr": "Leon"}}},
	})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeFieldNotEditable, env.Error.Code)

	resp, env = s.do(t, nethttp.MethodPatch, "/api/contacts", lo, map[string]any{
		"updates": []map[string]any{{"id": "003MOCK000000003", "fields": map[string]any{"status": "Active"}}},
	})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.CodeForbidden, env.Error.Code)

	resp, env = s.do(t, nethttp.MethodPatch, "/api/contacts", lo, map[string]any{
		"updates": []map[string]any{{"id": "003MOCK000000002", "fields": map[string]any{"status": "Active", "hotLead": true}}},
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var results []domain.UpdateResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.Equal(t, []domain.UpdateResult{{ID: "003MOCK000000002", Success: true}}, results)
	require.Len(t, s.audit.Entries(), 1)

	resp, env = s.do(t, nethttp.MethodGet, "/api/contacts/003MOCK000000002/activity", lo, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var activity []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &activity))
	require.Len(t, activity, 1)
	assert.Equal(t, "audit", activity[0]["type"])

	resp, _ = s.do(t, nethttp.MethodGet, "/api/contacts/003MOCK000000003/history", lo, nil)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, nethttp.MethodGet, "/api/metadata/dropdowns", lo, nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, env = s.do(t, nethttp.MethodGet, "/api/agents", lo, nil)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.CodeForbidden, env.Error.Code)

	resp, env = s.do(t, nethttp.MethodGet, "/api/loan-officers", admin, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var list struct {
		Items []struct {
			Name        string `json:"name"`
			ActiveLeads *int   `json:"activeLeads"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Total)
	require.NotNil(t, list.Items[0].ActiveLeads)
	assert.Equal(t, 5, *list.Items[0].ActiveLeads)

	resp, env = s.do(t, nethttp.MethodPost, "/api/loan-officers/"+createdLO.User.ID+"/regenerate-code", admin, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var regen struct {
		AccessCode string `json:"accessCode"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &regen))
	resp, _ = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "lo@test.com", "accessCode": createdLO.AccessCode})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	s.login(t, "lo@test.com", "accessCode", regen.AccessCode)

	resp, env = s.do(t, nethttp.MethodDelete, "/api/loan-officers/not-a-uuid", admin, nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, env.Error.Code)

	resp, _ = s.do(t, nethttp.MethodDelete, "/api/loan-officers/"+createdLO.User.ID, admin, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	resp, env = s.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "lo@test.com", "accessCode": regen.AccessCode})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.CodeAccountDisabled, env.Error.Code)

	resp, _ = s.do(t, nethttp.MethodDelete, "/api/loan-officers/"+createdLO.User.ID+"?hard=true", admin, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	entries := s.audit.Entries()
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, ratelimit.NewMemory(ratelimit.PerMinute(1), 2))
	body := map[string]string{"email": "nobody@test.com", "password": "whatever"}

	for i := 0; i < 2; i++ {
		resp, _ := s.do(t, nethttp.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	}
	resp, env := s.do(t, nethttp.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, nethttp.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, apperrors.CodeRateLimited, env.Error.Code)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestErrorEnvelopeHidesInternalsInProduction(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		want       string
	}{
		{name: "development", production: false, want: "Internal server error: db down"},
		{name: "production", production: true, want: "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(errorHandlingMiddleware(zap.NewNop(), nil, tt.production))
			app.Get("/boom", func(c *fiber.Ctx) error { return apperrors.NewInternalError(errors.New("db down")) })
			app.Get("/panic", func(c *fiber.Ctx) error { panic("kaboom") })

			s := &testServer{app: app}
			resp, env := s.do(t, nethttp.MethodGet, "/boom", "", nil)
			assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, apperrors.CodeServerError, env.Error.Code)
			assert.Equal(t, tt.want, env.Error.Message)

			resp, env = s.do(t, nethttp.MethodGet, "/panic", "", nil)
			assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, apperrors.CodeServerError, env.Error.Code)
		})
	}
}

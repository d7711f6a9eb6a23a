package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/config"
	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/events"
	"github.com/spec-kit/lead-lens/internal/repository/repotest"
	"github.com/spec-kit/lead-lens/internal/salesforce"
	"github.com/spec-kit/lead-lens/internal/soql"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
	}
}

// spyAPI records calls to a Salesforce API and can fail selected queries.
type spyAPI struct {
	salesforce.API

	mu        sync.Mutex
	queries   []soql.Query
	updates   int
	describes int
	failQuery func(q soql.Query) bool
	failAll   bool
}

func (s *spyAPI) Query(ctx context.Context, q soql.Query) (*salesforce.QueryResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	fail := s.failAll || (s.failQuery != nil && s.failQuery(q))
	s.mu.Unlock()
	if fail {
		return nil, &salesforce.APIError{Operation: "query", StatusCode: 500, Body: "boom"}
	}
	return s.API.Query(ctx, q)
}

func (s *spyAPI) Update(ctx context.Context, object string, records []salesforce.Record) ([]salesforce.SaveResult, error) {
	s.mu.Lock()
	s.updates++
	s.mu.Unlock()
	return s.API.Update(ctx, object, records)
}

func (s *spyAPI) Describe(ctx context.Context, object string) (*salesforce.DescribeResult, error) {
	s.mu.Lock()
	s.describes++
	fail := s.failAll
	s.mu.Unlock()
	if fail {
		return nil, errors.New("describe unavailable")
	}
	return s.API.Describe(ctx, object)
}

func (s *spyAPI) calls() (queries, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries), s.updates
}

type contactFixture struct {
	api      *spyAPI
	audit    *repotest.Audit
	service  *ContactService
	recorder *AuditRecorder
}

func newContactFixture(t *testing.T, contacts []map[string]any) *contactFixture {
	t.Helper()
	var mock *salesforce.MockClient
	if contacts == nil {
		mock = salesforce.NewMock()
	} else {
		mock = salesforce.NewMockWith(contacts)
	}
	api := &spyAPI{API: mock}
	audit := repotest.NewAudit()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	recorder := NewAuditRecorder(audit, nil, zap.NewNop())
	recorder.RegisterHandlers(dispatcher)

	svc := NewContactService(ContactDependencies{
		Salesforce: api,
		AuditRepo:  audit,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return &contactFixture{api: api, audit: audit, service: svc, recorder: recorder}
}

func adminSession() *domain.Session {
	return &domain.Session{PrincipalID: "admin-1", Role: domain.RoleAdmin, Name: "Admin"}
}

func loSession(value string) *domain.Session {
	return &domain.Session{PrincipalID: "lo-1", Role: domain.RoleLoanOfficer, Name: value, ScopeField: "Loan_Partners__c", ScopeValue: value}
}

func agentSession(value string) *domain.Session {
	return &domain.Session{PrincipalID: "agent-1", Role: domain.RoleAgent, Name: value, ScopeField: "MtgPlanner_CRM__Referred_By_Text__c", ScopeValue: value}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

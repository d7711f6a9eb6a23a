package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-lens/internal/domain"
)

func strPtr(s string) *string { return &s }

var principalRowColumns = []string{"id", "email", "name", "role", "status", "password_hash", "sf_field", "sf_value", "created_at", "last_login_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPrincipalRepositoryCreate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPrincipalRepository(mock)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	p := &domain.Principal{
		Email:        "lo@test.com",
		Name:         "Test LO",
		Role:         domain.RoleLoanOfficer,
		Status:       domain.PrincipalStatusActive,
		PasswordHash: "hash",
		ScopeField:   strPtr("Loan_Partners__c"),
		ScopeValue:   strPtr("Test LO"),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("lo@test.com", "Test LO", "loan_officer", "active", "hash", strPtr("Loan_Partners__c"), strPtr("Test LO")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("0b6d3c0e-8c61-4a53-9c77-1f3a2d4e5f60", created))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, "0b6d3c0e-8c61-4a53-9c77-1f3a2d4e5f60", p.ID)
	assert.Equal(t, created, p.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryCreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPrincipalRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_role_key"})

	err := repo.Create(context.Background(), &domain.Principal{Email: "a@b.co", Role: domain.RoleAdmin, Status: domain.PrincipalStatusActive})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryGetByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPrincipalRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=$1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrincipalRepositoryListByEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPrincipalRepository(mock)
	now := time.Now().UTC()

	rows := pgxmock.NewRows(principalRowColumns).
		AddRow("id-lo", "x@test.com", "X", "loan_officer", "active", "h1", strPtr("Loan_Partners__c"), strPtr("X"), now, (*time.Time)(nil)).
		AddRow("id-agent", "x@test.com", "X", "agent", "disabled", "h2", strPtr("MtgPlanner_CRM__Referred_By_Text__c"), strPtr("X"), now, &now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=$1 ORDER BY created_at, id")).
		WithArgs("x@test.com").
		WillReturnRows(rows)

	items, err := repo.ListByEmail(context.Background(), "x@test.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.RoleLoanOfficer, items[0].Role)
	assert.Nil(t, items[0].LastLoginAt)
	assert.Equal(t, domain.RoleAgent, items[1].Role)
	assert.Equal(t, domain.PrincipalStatusDisabled, items[1].Status)
	require.NotNil(t, items[1].LastLoginAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryListWithSearch(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPrincipalRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role=$1 AND (name ILIKE $2 OR email ILIKE $2)")).
		WithArgs("agent", `%50\%%`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name, id LIMIT 2 OFFSET 2")).
		WithArgs("agent", `%50\%%`).
		WillReturnRows(pgxmock.NewRows(principalRowColumns).
			AddRow("id-3", "c@test.com", "C 50%", "agent", "active", "h", strPtr("MtgPlanner_CRM__Referred_By_Text__c"), strPtr("C 50%"), now, (*time.Time)(nil)))

	items, total, err := repo.List(context.Background(), PrincipalFilter{Role: domain.RoleAgent, Search: " 50% ", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "C 50%", items[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryUpdateMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPrincipalRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email=$1")).
		WithArgs("a@b.co", "A", "active", "h", (*string)(nil), (*string)(nil), "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Principal{ID: "id-1", Email: "a@b.co", Name: "A", Status: domain.PrincipalStatusActive, PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrincipalRepositoryDelete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPrincipalRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=$1")).
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_at=$1 WHERE id=$2")).
		WithArgs(pgxmock.AnyArg(), "id-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Delete(context.Background(), "id-1"))
	require.NoError(t, repo.TouchLastLogin(context.Background(), "id-2", time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505"}), ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
}

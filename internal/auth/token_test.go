package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-lens/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	p := &domain.Principal{
		ID:         "8f6c1f9e-2a59-4c8e-9d65-7c4fa1d7a001",
		Name:       "Test LO",
		Role:       domain.RoleLoanOfficer,
		ScopeField: strPtr("Loan_Partners__c"),
		ScopeValue: strPtr("Test LO"),
	}

	token, exp, err := tm.GenerateToken(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	session, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, session.PrincipalID)
	assert.Equal(t, domain.RoleLoanOfficer, session.Role)
	assert.Equal(t, "Test LO", session.Name)
	assert.Equal(t, "Loan_Partners__c", session.ScopeField)
	assert.Equal(t, "Test LO", session.ScopeValue)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	p := &domain.Principal{ID: "id-1", Role: domain.RoleAdmin}

	t.Run("bad signature", func(t *testing.T) {
		token, _, err := NewTokenManager("other", 60).GenerateToken(p)
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("secret", 60)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.GenerateToken(p)
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := tm.ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		claims := &Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "id-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := &Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "id-1"}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("secret123", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "secret123"))
	assert.Error(t, ComparePassword(hash, "secret124"))

	code, err := GenerateAccessCode()
	require.NoError(t, err)
	assert.Len(t, code, accessCodeLength)
	for _, r := range code {
		assert.Contains(t, accessCodeAlphabet, string(r))
	}
	other, err := GenerateAccessCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

package salesforce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spec-kit/lead-lens/internal/config"
)

const (
	defaultTokenLifetime = time.Hour
	tokenRefreshMargin   = 5 * time.Minute
)

// Token is an access token bound to the org's instance URL.
type Token struct {
	AccessToken string
	InstanceURL string
	ExpiresAt   time.Time
}

// TokenSource hands out access tokens.
type TokenSource interface {
	Get(ctx context.Context) (Token, error)
	Invalidate()
}

// CachedTokenSource performs the client-credentials handshake and caches the token until
// shortly before it expires.
type CachedTokenSource struct {
	mu         sync.Mutex
	oauth      clientcredentials.Config
	httpClient *http.Client
	cached     *Token
	now        func() time.Time
}

// NewTokenSource builds a token source for the connected app in cfg.
func NewTokenSource(cfg config.SalesforceConfig, httpClient *http.Client) *CachedTokenSource {
	return &CachedTokenSource{
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.LoginURL + "/services/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Get returns the cached token or fetches a new one.
func (s *CachedTokenSource) Get(ctx context.Context) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Before(s.cached.ExpiresAt.Add(-tokenRefreshMargin)) {
		return *s.cached, nil
	}

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	tok, err := s.oauth.Token(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("salesforce token request: %w", err)
	}

	instanceURL, _ := tok.Extra("instance_url").(string)
	if instanceURL == "" {
		return Token{}, errors.New("salesforce token response missing instance_url")
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(defaultTokenLifetime)
	}
	s.cached = &Token{AccessToken: tok.AccessToken, InstanceURL: instanceURL, ExpiresAt: expiresAt}
	return *s.cached, nil
}

// Invalidate drops the cached token.
func (s *CachedTokenSource) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

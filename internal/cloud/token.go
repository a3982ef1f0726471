// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with the remote media
// analysis platform. This file implements the token manager: the component
// that turns the service-account identity into short-lived bearer tokens
// for the analysis endpoints.
//
// Logic Flow:
//  1. A caller asks for a token. If the cached one is still valid (expiry
//     is more than the safety margin away), it is returned without any
//     network traffic. This is the hot path and is safe under concurrent
//     callers.
//  2. On a cache miss, the refresh collapses into a single in-flight
//     exchange via singleflight: every concurrent miss waits on the same
//     exchange and receives the same token or the same failure.
//  3. The exchange builds an RS256-signed JOSE assertion (issuer =
//     service-account email, audience = token endpoint, fixed platform
//     scope, one hour expiry) and posts it with the jwt-bearer grant type.
//  4. The response's access_token and expires_in atomically replace the
//     cache entry.
//
// Every failure on this path is an *AuthError. The token manager never
// retries; callers own retry policy.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Token lifecycle constants.
const (
	// TokenSafetyMargin is subtracted from the token's expiry when judging
	// validity, so a token is refreshed before it can expire mid-request.
	TokenSafetyMargin = 5 * time.Minute
	// AssertionLifetime is the validity window claimed in the signed assertion.
	AssertionLifetime = time.Hour
	// GrantTypeJWTBearer is the OAuth2 grant used for service-account exchange.
	GrantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	// DefaultPlatformScope is the scope requested for all analysis calls.
	DefaultPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

// TokenSource is the narrow interface the analysis client and the operation
// poller depend on. TokenManager is the production implementation; tests
// substitute a static source.
type TokenSource interface {
	// Token returns a bearer token valid for at least the safety margin.
	Token(ctx context.Context) (string, error)
}

// cachedToken is the single piece of mutable shared state in this core.
// It is only ever replaced as a whole under the manager's mutex.
type cachedToken struct {
	value     string
	expiresAt time.Time
}

// TokenManager exchanges signed service-account assertions for access tokens
// and caches the active token until it nears expiry.
type TokenManager struct {
	account    *ServiceAccount
	tokenURL   string
	scope      string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	cached *cachedToken
	flight singleflight.Group
}

// NewTokenManager constructs a token manager around a loaded service account.
//
// Inputs:
//   - account: The immutable service-account identity (owns the signing key).
//   - tokenURL: The OAuth2 token endpoint to exchange assertions at.
//
// Outputs:
//   - *TokenManager: A manager with an empty cache; the first Token call
//     triggers an exchange.
func NewTokenManager(account *ServiceAccount, tokenURL string) *TokenManager {
	return &TokenManager{
		account:    account,
		tokenURL:   tokenURL,
		scope:      DefaultPlatformScope,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// Token returns a valid bearer token, reusing the cache when possible.
// Concurrent callers observing an invalid cache collapse into one exchange.
func (t *TokenManager) Token(ctx context.Context) (string, error) {
	if token, ok := t.cachedValid(); ok {
		return token, nil
	}

	value, err, _ := t.flight.Do("access-token", func() (interface{}, error) {
		// A waiter that queued behind a finished refresh can serve from the
		// cache the winner just wrote.
		if token, ok := t.cachedValid(); ok {
			return token, nil
		}
		return t.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// cachedValid returns the cached token when it is still inside its validity
// window: now + safety margin must fall before the recorded expiry.
func (t *TokenManager) cachedValid() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cached == nil {
		return "", false
	}
	if !t.now().Add(TokenSafetyMargin).Before(t.cached.expiresAt) {
		return "", false
	}
	return t.cached.value, true
}

// exchange builds a signed assertion, posts it to the token endpoint, and
// atomically installs the resulting token in the cache.
func (t *TokenManager) exchange(ctx context.Context) (string, error) {
	assertion, err := t.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", GrantTypeJWTBearer)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Op: "build-token-request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Op: "token-exchange", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{
			Op:  "token-exchange",
			Err: fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &AuthError{Op: "decode-token-response", Err: err}
	}
	if parsed.AccessToken == "" || parsed.ExpiresIn <= 0 {
		return "", &AuthError{
			Op:  "decode-token-response",
			Err: fmt.Errorf("token endpoint response missing access_token or expires_in"),
		}
	}

	t.mu.Lock()
	t.cached = &cachedToken{
		value:     parsed.AccessToken,
		expiresAt: t.now().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}
	t.mu.Unlock()

	return parsed.AccessToken, nil
}

// signAssertion produces the RS256-signed JOSE claim set exchanged at the
// token endpoint.
func (t *TokenManager) signAssertion() (string, error) {
	issuedAt := t.now()
	claims := jwt.MapClaims{
		"iss":   t.account.ClientEmail,
		"scope": t.scope,
		"aud":   t.tokenURL,
		"exp":   issuedAt.Add(AssertionLifetime).Unix(),
		"iat":   issuedAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.account.SigningKey())
	if err != nil {
		return "", &AuthError{Op: "sign-assertion", Err: err}
	}
	return signed, nil
}

// Package session owns the authenticated identity: login, registration,
// hydration from the local store, and the periodic token refresh. Nothing
// else writes session state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/dto"
	"storefront-gateway/internal/localstore"
	"storefront-gateway/internal/model"
)

type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateRefreshPending State = "refresh_pending"
)

const (
	// Fallback lifetime when the token carries no exp claim.
	tokenTTL = time.Hour
	// Background refresh cadence, and the remaining-lifetime window below
	// which hydration refreshes opportunistically.
	RefreshInterval = 30 * time.Minute
	refreshWindow   = 30 * time.Minute

	defaultBusinessAddress = "Plateaus state"
	defaultBusinessName    = "Technology"
)

// AuthError marks failures that resolve by sending the user to a login view.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return "auth: " + e.Reason }

var (
	ErrNoToken  = &AuthError{Reason: "no token"}
	ErrNoUserID = &AuthError{Reason: "no user id"}
)

type Store struct {
	api   *apiclient.Client
	local *localstore.Store

	mu         sync.Mutex
	state      State
	session    model.Session
	refreshing bool
}

func NewStore(api *apiclient.Client, local *localstore.Store) *Store {
	return &Store{
		api:   api,
		local: local,
		state: StateAnonymous,
	}
}

// Token implements apiclient.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether a usable identity is present. A refresh in
// flight still counts: the user has not been logged out.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token != "" && s.session.UserID != ""
}

func (s *Store) Session() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Store) Login(ctx context.Context, email, password string) (model.Session, error) {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.mu.Unlock()

	var resp dto.AuthResponse
	err := s.api.Post(ctx, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// A rejected attempt leaves no half-session behind.
		s.clearLocked()
		return model.Session{}, &AuthError{Reason: backendMessage(err, "Login failed")}
	}
	s.applyAuthLocked(resp)
	return s.session, nil
}

// Register creates an account, filling in the two fixed business fields the
// backend requires when the caller leaves them empty.
func (s *Store) Register(ctx context.Context, req dto.RegisterRequest) (model.Session, error) {
	if req.BusinessAddress == "" {
		req.BusinessAddress = defaultBusinessAddress
	}
	if req.BusinessName == "" {
		req.BusinessName = defaultBusinessName
	}

	s.mu.Lock()
	s.state = StateAuthenticating
	s.mu.Unlock()

	var resp dto.AuthResponse
	err := s.api.Post(ctx, "/auth/register", req, &resp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.clearLocked()
		return model.Session{}, &AuthError{Reason: backendMessage(err, "Registration failed. Please try again.")}
	}
	s.applyAuthLocked(resp)
	return s.session, nil
}

func (s *Store) FetchCurrentUser(ctx context.Context) (model.Profile, error) {
	s.mu.Lock()
	token, userID := s.session.Token, s.session.UserID
	s.mu.Unlock()

	if token == "" {
		return model.Profile{}, ErrNoToken
	}
	if userID == "" {
		return model.Profile{}, ErrNoUserID
	}

	var profile model.Profile
	if err := s.api.Get(ctx, "/auth/profile/"+userID, &profile); err != nil {
		return model.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	s.mu.Lock()
	s.session.Name = profile.Name
	s.session.Email = profile.Email
	if err := s.local.SetJSON(localstore.KeyUser, profile); err != nil {
		log.Printf("persist profile: %v", err)
	}
	s.mu.Unlock()
	return profile, nil
}

// RefreshToken rotates the token. It reports success instead of returning an
// error because the background timer calls it too; a failure clears the
// session so the caller redirects to login. A refresh already in flight is
// not duplicated.
func (s *Store) RefreshToken(ctx context.Context) bool {
	s.mu.Lock()
	if s.session.Token == "" {
		s.mu.Unlock()
		return false
	}
	if s.refreshing {
		s.mu.Unlock()
		return true
	}
	s.refreshing = true
	s.state = StateRefreshPending
	s.mu.Unlock()

	var resp dto.AuthResponse
	err := s.api.Post(ctx, "/auth/refresh", nil, &resp)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = false
	if err != nil {
		log.Printf("token refresh failed: %v", err)
		s.clearLocked()
		return false
	}
	s.applyAuthLocked(resp)
	return true
}

// Logout invalidates the server-side session best-effort, then clears every
// persisted key regardless of how the request went.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		log.Printf("logout request failed: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Hydrate restores the session from the local store at startup. A token
// without a persisted profile is an invalid half-session and is cleared.
// When the token is close to expiry the refresh happens right away.
func (s *Store) Hydrate(ctx context.Context) error {
	token, ok, err := s.local.Get(localstore.KeyToken)
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	var profile model.Profile
	found, err := s.local.GetJSON(localstore.KeyUser, &profile)
	if err != nil || !found {
		s.mu.Lock()
		s.clearLocked()
		s.mu.Unlock()
		return nil
	}

	userID := profile.UserID
	if raw, ok, _ := s.local.Get(localstore.KeyUserID); ok && raw != "" {
		userID = raw
	}

	expiry := time.Now().Add(tokenTTL)
	if raw, ok, _ := s.local.Get(localstore.KeyTokenExpiry); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			expiry = t
		}
	}

	s.mu.Lock()
	s.session = model.Session{
		UserID:      userID,
		Name:        profile.Name,
		Email:       profile.Email,
		Token:       token,
		TokenExpiry: expiry,
	}
	s.state = StateAuthenticated
	s.mu.Unlock()

	if time.Until(expiry) < refreshWindow {
		s.RefreshToken(ctx)
	}
	return nil
}

// RunRefreshLoop refreshes the token every RefreshInterval while one exists.
// Failures are not escalated beyond the session clear RefreshToken performs.
func (s *Store) RunRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Token() != "" {
				s.RefreshToken(ctx)
			}
		}
	}
}

func (s *Store) applyAuthLocked(resp dto.AuthResponse) {
	s.session = model.Session{
		UserID:      resp.User.UserID,
		Name:        resp.User.Name,
		Email:       resp.User.Email,
		Token:       resp.Token,
		TokenExpiry: tokenExpiry(resp.Token),
	}
	s.state = StateAuthenticated

	if err := s.local.Set(localstore.KeyToken, resp.Token); err != nil {
		log.Printf("persist token: %v", err)
	}
	if err := s.local.Set(localstore.KeyTokenExpiry, s.session.TokenExpiry.Format(time.RFC3339)); err != nil {
		log.Printf("persist token expiry: %v", err)
	}
	if err := s.local.SetJSON(localstore.KeyUser, resp.User); err != nil {
		log.Printf("persist profile: %v", err)
	}
	if err := s.local.Set(localstore.KeyUserID, resp.User.UserID); err != nil {
		log.Printf("persist user id: %v", err)
	}
}

func (s *Store) clearLocked() {
	s.session = model.Session{}
	s.state = StateAnonymous
	if err := s.local.Delete(
		localstore.KeyToken,
		localstore.KeyTokenExpiry,
		localstore.KeyUser,
		localstore.KeyUserID,
	); err != nil {
		log.Printf("clear session keys: %v", err)
	}
}

// tokenExpiry prefers the token's own exp claim; the backend's tokens are
// opaque to us so the claim is read without signature verification. Tokens
// without one get the fixed one-hour lifetime.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err == nil {
		if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Now().Add(tokenTTL)
}

func backendMessage(err error, fallback string) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

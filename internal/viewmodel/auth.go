package viewmodel

import (
	"context"
	"errors"
	"fmt"

	"taskpro/internal/credstore"
	"taskpro/internal/service"
)

// FetchSSOProvisioning loads the server's SSO configuration. A failure
// keeps the previous value and is only logged.
func (m *Model) FetchSSOProvisioning(ctx context.Context) {
	st, err := m.svc.SSOStatus(ctx)
	if err != nil {
		m.log.Warn("failed to fetch sso status", "error", err)
		return
	}
	m.mu.Lock()
	m.sso = &st
	m.mu.Unlock()
}

// Login authenticates with username and password, persists the issued
// credentials and loads tasks and stats. A rejected login returns a
// *LoginError carrying the server's message.
func (m *Model) Login(ctx context.Context, username, password string) error {
	m.setError("")

	res, err := m.svc.Login(ctx, username, password)
	if err != nil {
		lerr := loginError(err)
		m.log.Warn("login failed", "username", username, "error", err)
		m.setError(lerr.Message)
		return lerr
	}

	authType := AuthType(res.AuthType)
	if authType == "" {
		authType = AuthLocal
	}
	if err := m.persist(res, authType); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	m.mu.Lock()
	m.session = &Session{User: res.User, Token: res.AccessToken, AuthType: authType}
	m.mu.Unlock()
	m.log.Info("logged in", "username", res.User.Username, "auth_type", authType)

	return m.refreshAfter(ctx)
}

func loginError(err error) *LoginError {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Detail
		if msg == "" {
			msg = MsgAuthFailed
		}
		return &LoginError{Message: msg, Err: err}
	}
	return &LoginError{Message: MsgConnection, Err: err}
}

func (m *Model) persist(res service.LoginResult, authType AuthType) error {
	if err := m.store.Set(credstore.KeyToken, res.AccessToken); err != nil {
		return err
	}
	if err := m.store.Set(credstore.KeyAuthType, string(authType)); err != nil {
		return err
	}
	if res.RefreshToken != "" {
		return m.store.Set(credstore.KeyRefreshToken, res.RefreshToken)
	}
	return m.store.Delete(credstore.KeyRefreshToken)
}

// RestoreSession validates a stored token against the server. On success
// the session is repopulated and tasks and stats are loaded. On failure, or
// when no token is stored, all credentials are cleared and ErrNoSession
// (or the transport error) is returned.
func (m *Model) RestoreSession(ctx context.Context) error {
	token, err := m.store.Get(credstore.KeyToken)
	if err != nil || token == "" {
		if err != nil && !errors.Is(err, credstore.ErrNotFound) {
			m.log.Warn("failed to read stored token", "error", err)
		}
		m.clearCredentials()
		m.reset()
		return ErrNoSession
	}

	user, err := m.svc.Me(ctx)
	if err != nil {
		m.log.Info("stored session rejected", "error", err)
		m.Logout(ctx)
		if service.IsAuthError(err) {
			return ErrNoSession
		}
		return err
	}

	authType := AuthLocal
	if v, err := m.store.Get(credstore.KeyAuthType); err == nil && v != "" {
		authType = AuthType(v)
	}

	m.mu.Lock()
	m.session = &Session{User: user, Token: token, AuthType: authType}
	m.mu.Unlock()
	m.log.Debug("session restored", "username", user.Username)

	return m.RefreshAll(ctx)
}

// HasStoredToken reports whether a token is persisted, without validating it.
func (m *Model) HasStoredToken() bool {
	token, err := m.store.Get(credstore.KeyToken)
	return err == nil && token != ""
}

// Logout notifies the server (best effort), clears stored credentials and
// drops the session, tasks and stats.
func (m *Model) Logout(ctx context.Context) {
	if err := m.svc.Logout(ctx); err != nil {
		m.log.Debug("logout notification failed", "error", err)
	}
	m.clearCredentials()
	m.reset()
}

func (m *Model) clearCredentials() {
	if err := credstore.Clear(m.store); err != nil {
		m.log.Error("failed to clear credentials", "error", err)
	}
}

func (m *Model) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.tasks = nil
	m.stats = nil
}

// guard ends the session when err is an auth failure. Concurrent failures
// of the same session log out once; the first caller claims the session.
func (m *Model) guard(ctx context.Context, err error) error {
	if err == nil || !service.IsAuthError(err) {
		return err
	}
	expired := fmt.Errorf("%w: %w", ErrSessionExpired, err)

	m.mu.Lock()
	claimed := m.session != nil
	m.session = nil
	m.mu.Unlock()
	if !claimed {
		return expired
	}

	m.log.Info("session invalidated", "error", err)
	m.Logout(ctx)
	return expired
}

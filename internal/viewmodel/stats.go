package viewmodel

import (
	"context"
	"errors"
	"fmt"

	"taskpro/internal/service"
)

// FetchStats replaces the stats with the server's. Failures other than a
// lost session keep the previous value and are only logged.
func (m *Model) FetchStats(ctx context.Context) error {
	st, err := m.svc.Stats(ctx)
	if err != nil {
		err = m.guard(ctx, err)
		if !errors.Is(err, ErrSessionExpired) {
			m.log.Warn("failed to fetch stats", "error", err)
		}
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	m.stats = &st
	return nil
}

// ListUsers returns every account. The server only allows admins.
func (m *Model) ListUsers(ctx context.Context) ([]service.User, error) {
	users, err := m.svc.ListUsers(ctx)
	if err != nil {
		return nil, m.guard(ctx, fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

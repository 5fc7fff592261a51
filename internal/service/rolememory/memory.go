// Package rolememory remembers which role a visitor is onboarding as before they authenticate.
// A remembered role never implies an authenticated session.
package rolememory

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/ports"
)

// StorageKey is the single key the selected role lives under.
const StorageKey = "pulsecare_selected_role"

// Memory persists the selected role through a key-value store.
type Memory struct {
	store  ports.KeyValueStore
	logger *slog.Logger
}

// New creates a Memory over store.
func New(store ports.KeyValueStore, logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{store: store, logger: logger.With("component", "role_memory")}
}

// Save remembers role. Only roles with a signup/login channel can be selected.
func (m *Memory) Save(ctx context.Context, role domainauth.Role) error {
	if !role.HasChannel() {
		return apperrors.ValidationField("role", "Please select a role.")
	}
	if err := m.store.Set(ctx, StorageKey, string(role)); err != nil {
		return fmt.Errorf("save selected role: %w", err)
	}
	return nil
}

// Load returns the remembered role. A missing or unrecognized value reports ok=false.
func (m *Memory) Load(ctx context.Context) (domainauth.Role, bool, error) {
	raw, err := m.store.Get(ctx, StorageKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load selected role: %w", err)
	}

	role, ok := domainauth.ParseRole(raw)
	if !ok || !role.HasChannel() {
		m.logger.WarnContext(ctx, "ignoring unrecognized selected role", "value", raw)
		return "", false, nil
	}
	return role, true, nil
}

// Clear forgets the remembered role.
func (m *Memory) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear selected role: %w", err)
	}
	return nil
}

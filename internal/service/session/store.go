package session

import (
	"context"
	"fmt"

	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/ports"
)

const (
	// tokenKey is the one durable record of an authenticated session.
	tokenKey = "pulsecare_session_token"
)

// legacyTokenKeys were written directly by older sign-in screens; they are never honored.
var legacyTokenKeys = []string{"clinic_token", "token", "adminToken"}

// tokenStore is the only write path for persisted auth state. It is unexported so that only the
// Machine can reach it.
type tokenStore struct {
	kv ports.KeyValueStore
}

func (s *tokenStore) load(ctx context.Context) (string, bool, error) {
	if s.kv == nil {
		return "", false, nil
	}
	token, err := s.kv.Get(ctx, tokenKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load session token: %w", err)
	}
	return token, token != "", nil
}

func (s *tokenStore) save(ctx context.Context, token string) error {
	if s.kv == nil {
		return nil
	}
	if err := s.kv.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

func (s *tokenStore) clear(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	if err := s.kv.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

func (s *tokenStore) purgeLegacy(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	for _, key := range legacyTokenKeys {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("purge legacy token %q: %w", key, err)
		}
	}
	return nil
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/communitylabs/authcore/pkg/kvstore"
)

// DefaultStateTTL bounds how long an authorization redirect may stay pending.
const DefaultStateTTL = 5 * time.Minute

type statePayload struct {
	CreatedAt time.Time `json:"created_at"`
}

// issueState persists a fresh one-time state token for an outbound
// authorization redirect.
func (s *Service) issueState(ctx context.Context) (string, error) {
	state, err := newOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	payload, err := json.Marshal(statePayload{CreatedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("failed to encode state payload: %w", err)
	}

	if err := s.store.Set(ctx, kvstore.NamespaceOAuthState+state, payload, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	return state, nil
}

// consumeState validates and atomically consumes a state token. A state
// validates at most once; missing, expired or replayed states all come back
// as ErrInvalidState without distinguishing the cases to the caller.
func (s *Service) consumeState(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}

	if _, err := s.store.GetDel(ctx, kvstore.NamespaceOAuthState+state); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return ErrInvalidState
		}
		return fmt.Errorf("failed to consume state: %w", err)
	}
	return nil
}

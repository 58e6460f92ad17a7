package services

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

var bgContext = context.Background()

// ChangeTracker keeps a per-user monotonically increasing version in Redis.
// Engines bump it after every verification or booking mutation, and the
// profile-status endpoint exposes it, so any transport (polling, websocket,
// SSE) can detect changes without refetching the whole profile.
type ChangeTracker struct {
	client *redis.Client
}

func NewChangeTracker(client *redis.Client) *ChangeTracker {
	return &ChangeTracker{client: client}
}

func changeKey(userID uint) string {
	return fmt.Sprintf("profile:version:%d", userID)
}

// Bump advances the user's change token. Best-effort: a Redis hiccup must
// never fail the mutation that triggered it.
func (t *ChangeTracker) Bump(userID uint) {
	if t == nil || t.client == nil {
		return
	}
	t.client.Incr(bgContext, changeKey(userID))
}

// Version returns the current change token, 0 if none recorded yet.
func (t *ChangeTracker) Version(userID uint) int64 {
	if t == nil || t.client == nil {
		return 0
	}
	v, err := t.client.Get(bgContext, changeKey(userID)).Int64()
	if err != nil {
		return 0
	}
	return v
}

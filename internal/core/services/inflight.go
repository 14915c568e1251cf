package services

import (
	"sync"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// inflightTracker guards generation calls with per-key monotonic tokens.
// Begin rejects a key that already has an active call; a response may only
// be applied while its token is still the key's current one. Session
// deletion invalidates every key with the session's prefix, so responses
// that outlive their session are discarded instead of applied.
type inflightTracker struct {
	mu     sync.Mutex
	next   uint64
	tokens map[string]uint64
	active map[string]bool
}

func newInflightTracker() *inflightTracker {
	return &inflightTracker{
		tokens: make(map[string]uint64),
		active: make(map[string]bool),
	}
}

// Begin registers a call for the key and returns its token.
// Returns ErrOperationInFlight when the key already has an active call.
func (t *inflightTracker) Begin(key string) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[key] {
		return 0, domain.ErrOperationInFlight
	}
	t.next++
	t.tokens[key] = t.next
	t.active[key] = true
	return t.next, nil
}

// Current reports whether the token is still the key's live one
func (t *inflightTracker) Current(key string, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[key] && t.tokens[key] == token
}

// End releases the key if the token is still current. Returns false when
// the token was superseded, in which case the caller discards its result.
func (t *inflightTracker) End(key string, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tokens[key] != token {
		return false
	}
	delete(t.active, key)
	delete(t.tokens, key)
	return true
}

// Invalidate supersedes every key carrying the prefix. Entries are removed
// outright so removal churn does not accumulate dead keys; End on a removed
// key reads a zero token and reports the call superseded.
func (t *inflightTracker) Invalidate(prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.tokens {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(t.tokens, key)
			delete(t.active, key)
		}
	}
}

package api

import (
	"testing"
	"time"
)

func TestTokenStoreIssueAndResolve(t *testing.T) {
	ts := newTokenStore(time.Hour)

	token := ts.issue("alice")
	if token == "" {
		t.Fatal("issue() returned empty token")
	}

	username, ok := ts.resolve(token)
	if !ok || username != "alice" {
		t.Fatalf("resolve() = %q, %v; want alice, true", username, ok)
	}

	if _, ok := ts.resolve("not-a-token"); ok {
		t.Fatal("unknown token should not resolve")
	}
}

func TestTokenStoreExpiry(t *testing.T) {
	ts := newTokenStore(time.Hour)
	token := ts.issue("alice")

	// Backdate the entry instead of sleeping.
	ts.mu.Lock()
	entry := ts.tokens[token]
	entry.Expires = time.Now().Add(-time.Minute)
	ts.tokens[token] = entry
	ts.mu.Unlock()

	if _, ok := ts.resolve(token); ok {
		t.Fatal("expired token should not resolve")
	}
}

func TestTokenStoreSweepsExpiredOnIssue(t *testing.T) {
	ts := newTokenStore(time.Hour)
	stale := ts.issue("alice")

	ts.mu.Lock()
	entry := ts.tokens[stale]
	entry.Expires = time.Now().Add(-time.Minute)
	ts.tokens[stale] = entry
	ts.mu.Unlock()

	ts.issue("bob")

	ts.mu.Lock()
	_, present := ts.tokens[stale]
	ts.mu.Unlock()
	if present {
		t.Fatal("stale entry should be swept when a new token is issued")
	}
}

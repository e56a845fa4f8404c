package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type actorContextKey struct{}

// actorFrom returns the authenticated username placed in the context by
// requireAuth. Handlers behind the middleware can rely on it being set.
func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}

type tokenEntry struct {
	Username string
	Expires  time.Time
}

// tokenStore issues opaque bearer tokens with a TTL. State is in-process;
// a restart invalidates outstanding tokens, which is acceptable for the
// session lengths involved.
type tokenStore struct {
	ttl    time.Duration
	mu     sync.Mutex
	tokens map[string]tokenEntry
}

func newTokenStore(ttl time.Duration) *tokenStore {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &tokenStore{
		ttl:    ttl,
		tokens: make(map[string]tokenEntry),
	}
}

func (ts *tokenStore) issue(username string) string {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	for key, entry := range ts.tokens {
		if now.After(entry.Expires) {
			delete(ts.tokens, key)
		}
	}

	token := uuid.New().String()
	ts.tokens[token] = tokenEntry{Username: username, Expires: now.Add(ts.ttl)}
	return token
}

func (ts *tokenStore) resolve(token string) (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry, ok := ts.tokens[token]
	if !ok || time.Now().After(entry.Expires) {
		return "", false
	}
	return entry.Username, true
}

func (a *API) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondAPIError(w, missingField("username"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user := userModel{ID: uuid.New(), Username: req.Username}
	if err := a.store.ORM.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	token := a.tokens.issue(req.Username)
	respondJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(a.tokens.ttl.Seconds()),
	})
}

// requireAuth resolves the bearer token and stores the acting username in
// the request context. Unknown or missing tokens are 401, distinct from the
// policy layer's 403s.
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(w, http.StatusUnauthorized, errors.New("bearer token required"))
			return
		}

		username, ok := a.tokens.resolve(strings.TrimSpace(token))
		if !ok {
			respondError(w, http.StatusUnauthorized, errors.New("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey{}, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

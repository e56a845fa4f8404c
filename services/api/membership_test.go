package api

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// A member who leaves keeps their row (soft delete), so rejoining the same
// team lands on the occupied derived key. The occupied key must revive, not
// conflict.
func TestReviveMembership(t *testing.T) {
	teamID := uuid.New()
	key, err := memberKey(teamID, "alice")
	if err != nil {
		t.Fatalf("memberKey() error = %v", err)
	}

	t.Run("deactivated row is reactivated", func(t *testing.T) {
		left := time.Now().UTC().Add(-time.Hour)
		existing := memberModel{
			ID:          key,
			TeamID:      teamID,
			Username:    "alice",
			Role:        string(RoleAdmin),
			Bio:         "likes go",
			Deactivated: &left,
		}

		revived, err := reviveMembership(existing, RoleUnapproved)
		if err != nil {
			t.Fatalf("reviveMembership() error = %v", err)
		}
		if revived.Deactivated != nil {
			t.Fatal("revived membership still deactivated")
		}
		if revived.Activated == nil {
			t.Fatal("revived membership has no activation time")
		}
		if revived.Role != string(RoleUnapproved) {
			t.Fatalf("revived role = %q, want %q: rejoining must not restore the old role", revived.Role, RoleUnapproved)
		}
		if revived.ID != key || revived.Username != "alice" {
			t.Fatalf("revived identity changed: %q %q", revived.ID, revived.Username)
		}
		if revived.Bio != "likes go" {
			t.Fatalf("revived bio = %q, want the original profile kept", revived.Bio)
		}
	})

	t.Run("live row is a duplicate", func(t *testing.T) {
		existing := memberModel{
			ID:       key,
			TeamID:   teamID,
			Username: "alice",
			Role:     string(RoleApproved),
		}
		if _, err := reviveMembership(existing, RoleUnapproved); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("reviveMembership() error = %v, want ErrDuplicate", err)
		}
	})
}

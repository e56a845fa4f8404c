package api

import (
	"fmt"
	"strings"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	a, err := DeriveKey("team-1", "alice")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	b, err := DeriveKey("team-1", "alice")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if a != b {
		t.Fatalf("same inputs produced different keys: %q vs %q", a, b)
	}
	if len(a) != 128 {
		t.Fatalf("key length = %d, want 128", len(a))
	}
	if strings.ToLower(a) != a {
		t.Fatalf("key is not lowercase hex: %q", a)
	}
}

func TestDeriveKeyDistinctPairs(t *testing.T) {
	pairs := [][2]string{
		{"team-1", "alice"},
		{"team-1", "bob"},
		{"team-2", "alice"},
		// the concatenation "team-1"+"alice" must not collide with
		// "team-1a"+"lice"
		{"team-1a", "lice"},
	}

	// 100 teams x 100 users gives 10,000 generated pairs on top of the
	// hand-picked boundary cases.
	for team := 0; team < 100; team++ {
		for user := 0; user < 100; user++ {
			pairs = append(pairs, [2]string{
				fmt.Sprintf("team-%03d", team),
				fmt.Sprintf("user-%03d", user),
			})
		}
	}

	seen := make(map[string][2]string, len(pairs))
	for _, pair := range pairs {
		key, err := DeriveKey(pair[0], pair[1])
		if err != nil {
			t.Fatalf("DeriveKey(%q, %q) error = %v", pair[0], pair[1], err)
		}
		if prev, ok := seen[key]; ok && prev != pair {
			t.Fatalf("key collision between %v and %v", prev, pair)
		}
		seen[key] = pair
	}
}

func TestDeriveKeyRejectsEmptyInputs(t *testing.T) {
	if _, err := DeriveKey("", "alice"); err == nil {
		t.Fatal("empty scope should be rejected")
	}
	if _, err := DeriveKey("team-1", ""); err == nil {
		t.Fatal("empty discriminator should be rejected")
	}
}

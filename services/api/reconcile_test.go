package api

import (
	"testing"

	"github.com/google/uuid"
)

func TestTagDiff(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	tests := []struct {
		name       string
		current    []uuid.UUID
		desired    []uuid.UUID
		wantAdd    int
		wantRemove int
	}{
		{"no change", []uuid.UUID{a, b}, []uuid.UUID{b, a}, 0, 0},
		{"empty desired removes everything", []uuid.UUID{a, b}, nil, 0, 2},
		{"empty current adds everything", nil, []uuid.UUID{a, b, c}, 3, 0},
		{"mixed", []uuid.UUID{a, b}, []uuid.UUID{b, c}, 1, 1},
		{"duplicates collapse", []uuid.UUID{a}, []uuid.UUID{b, b, b}, 1, 1},
		{"both empty", nil, nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toAdd, toRemove := tagDiff(tt.current, tt.desired)
			if len(toAdd) != tt.wantAdd {
				t.Errorf("len(toAdd) = %d, want %d", len(toAdd), tt.wantAdd)
			}
			if len(toRemove) != tt.wantRemove {
				t.Errorf("len(toRemove) = %d, want %d", len(toRemove), tt.wantRemove)
			}
			for _, id := range toAdd {
				for _, cur := range tt.current {
					if id == cur {
						t.Errorf("toAdd contains %s which is already current", id)
					}
				}
			}
			for _, id := range toRemove {
				for _, des := range tt.desired {
					if id == des {
						t.Errorf("toRemove contains %s which is still desired", id)
					}
				}
			}
		})
	}
}

package api

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestCanSetRole(t *testing.T) {
	storeErr := errors.New("connection refused")

	tests := []struct {
		name       string
		membership *Member
		err        error
		want       bool
		wantErr    error
	}{
		{"admin actor", &Member{Role: RoleAdmin}, nil, true, nil},
		{"approved actor", &Member{Role: RoleApproved}, nil, false, nil},
		{"unapproved actor", &Member{Role: RoleUnapproved}, nil, false, nil},
		{"no membership", nil, gorm.ErrRecordNotFound, false, nil},
		{"store failure", nil, storeErr, false, storeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canSetRole(tt.membership, tt.err)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("canSetRole() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("canSetRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

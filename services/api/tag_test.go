package api

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateTagTitle(t *testing.T) {
	tests := []struct {
		title   string
		wantErr bool
	}{
		{"bug", false},
		{"good-first-issue", false},
		{"P1", false},
		{"v2_backlog", false},
		{"", true},
		{"has space", true},
		{"semi;colon", true},
		{"slash/y", true},
	}

	for _, tt := range tests {
		err := validateTagTitle(tt.title)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateTagTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
		}
	}
}

func TestNewTagModelHashMatchesTeamAndTitle(t *testing.T) {
	teamID := uuid.New()

	tag, err := newTagModel(teamID, "bug")
	if err != nil {
		t.Fatalf("newTagModel() error = %v", err)
	}

	want, err := DeriveKey(teamID.String(), "bug")
	if err != nil {
		t.Fatal(err)
	}
	if tag.TeamTitleHash != want {
		t.Fatalf("TeamTitleHash = %q, want derived key %q", tag.TeamTitleHash, want)
	}
	if tag.TeamID != teamID || tag.Title != "bug" {
		t.Fatalf("unexpected tag fields: %+v", tag)
	}
	if tag.Activated == nil {
		t.Fatal("new tag should be activated")
	}
}

// Soft-deleted rows keep their hash, so the unique indexes must exclude them
// or a deleted title could never be recreated.
func TestUniqueIndexesIgnoreDeactivatedRows(t *testing.T) {
	tests := []struct {
		name  string
		model any
		field string
	}{
		{"team name", teamModel{}, "Name"},
		{"tag title hash", tagModel{}, "TeamTitleHash"},
		{"status title hash", statusModel{}, "TeamTitleHash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := reflect.TypeOf(tt.model).FieldByName(tt.field)
			if !ok {
				t.Fatalf("field %s not found", tt.field)
			}
			tag := f.Tag.Get("gorm")
			if !strings.Contains(tag, "uniqueIndex") {
				t.Fatalf("%s is not uniquely indexed: %q", tt.field, tag)
			}
			if !strings.Contains(tag, "where:deactivated IS NULL") {
				t.Fatalf("%s unique index covers deactivated rows: %q", tt.field, tag)
			}
		})
	}
}

func TestNewTagModelSameTitleDifferentTeams(t *testing.T) {
	t1, err := newTagModel(uuid.New(), "bug")
	if err != nil {
		t.Fatal(err)
	}
	t2, err := newTagModel(uuid.New(), "bug")
	if err != nil {
		t.Fatal(err)
	}
	if t1.TeamTitleHash == t2.TeamTitleHash {
		t.Fatal("same title on different teams must not share a hash")
	}
}

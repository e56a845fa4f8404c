package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestFieldErrorsMessageIsStable(t *testing.T) {
	err := FieldErrors{"title": "required", "role": "unknown"}
	want := "role: unknown; title: required"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("pg unique violation not detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation misread as unique violation")
	}
	if !isUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Error("gorm duplicated key not detected")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("arbitrary error misread as unique violation")
	}
}

func TestRespondAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"field errors", FieldErrors{"name": "required"}, http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"duplicate", ErrDuplicate, http.StatusConflict},
		{"raw unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondAPIError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
		})
	}
}

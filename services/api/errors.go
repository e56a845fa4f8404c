package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors for the outcomes every handler has to translate. Policy
// denial is always ErrForbidden, never ErrNotFound, so callers cannot confuse
// "you may not" with "does not exist"; the one exception is cross-team entity
// lookups, which return ErrNotFound to avoid leaking existence.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrDuplicate = errors.New("already exists")
)

// FieldErrors carries per-field validation messages and is rejected before
// any write takes place.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return strings.Join(parts, "; ")
}

func missingField(name string) error {
	return FieldErrors{name: "this field is required"}
}

// isUniqueViolation reports whether err is a unique-constraint rejection from
// the store, either surfaced raw from pgx or translated by GORM.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, pgx.ErrNoRows)
}

// respondAPIError translates the error taxonomy to HTTP at the handler
// boundary. Anything unrecognised is an internal error.
func respondAPIError(w http.ResponseWriter, err error) {
	var fieldErrs FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		respondJSON(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
	case isNotFound(err):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrForbidden):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, ErrDuplicate) || isUniqueViolation(err):
		respondError(w, http.StatusConflict, ErrDuplicate)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}

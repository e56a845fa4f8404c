package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

type page struct {
	Number  int
	PerPage int
}

// maxPageNumber keeps (Number-1)*PerPage well inside int range on any
// platform; a query beyond it only ever sees empty pages anyway.
const maxPageNumber = 1_000_000

func (p page) limit() int  { return p.PerPage }
func (p page) offset() int { return (p.Number - 1) * p.PerPage }

// parsePage reads ?page= and ?per_page=, clamping both to their configured
// maximums. Pages start at 1.
func parsePage(r *http.Request, defaultPerPage, maxPerPage int) (page, error) {
	p := page{Number: 1, PerPage: defaultPerPage}

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page{}, FieldErrors{"page": "must be a positive integer"}
		}
		if n > maxPageNumber {
			n = maxPageNumber
		}
		p.Number = n
	}

	if raw := r.URL.Query().Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page{}, FieldErrors{"per_page": "must be a positive integer"}
		}
		if n > maxPerPage {
			n = maxPerPage
		}
		p.PerPage = n
	}

	return p, nil
}

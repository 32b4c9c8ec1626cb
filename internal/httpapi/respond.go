package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/e-motion/backend/internal/auth"
	"github.com/e-motion/backend/internal/emotions"
	"github.com/e-motion/backend/internal/users"
)

// pagination mirrors the shape mobile clients already consume: a current
// page, a page count derived from ceil(total/limit), and next/prev flags.
type pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func paginate(page, limit, total int) pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes the success envelope. extra merges additional top-level
// keys (token, pagination) into the payload.
func respond(w http.ResponseWriter, code int, message string, data any, extra map[string]any) {
	payload := map[string]any{"message": message}
	if data != nil {
		payload["data"] = data
	}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, code, payload)
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"status":     "error",
		"statusCode": code,
		"message":    msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["requestId"] = rid
	}
	// Stack traces never leave the process outside development.
	if a.isDev && code >= http.StatusInternalServerError {
		payload["stack"] = string(debug.Stack())
	}
	writeJSON(w, code, payload)
}

func (a *API) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	a.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func parsePositiveInt(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("value must be an integer")
	}
	if val < min || val > max {
		return 0, errors.New("value must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max))
	}
	return val, nil
}

// handleDomainError maps package sentinel errors to HTTP statuses. The
// auth package errors take precedence so a denial is never reported as a
// validation problem.
func (a *API) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenSignature),
		errors.Is(err, auth.ErrTokenMalformed):
		a.writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		a.writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, users.ErrInvalidCredentials):
		a.writeError(w, r, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, users.ErrDuplicateEmail),
		errors.Is(err, users.ErrPasswordTooShort),
		errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, emotions.ErrInvalidInput):
		a.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrNotFound), errors.Is(err, emotions.ErrNotFound):
		a.writeError(w, r, http.StatusNotFound, err.Error())
	default:
		a.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

package httpapi

import (
	"net/http"

	"github.com/e-motion/backend/internal/audit"
	"github.com/e-motion/backend/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	token, _, err := a.tokens.Issue(user.ID, user.Role)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	respond(w, http.StatusCreated, "User registered successfully.", user, map[string]any{"token": token})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	token, _, err := a.tokens.Issue(user.ID, user.Role)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": user.ID,
	})

	respond(w, http.StatusOK, "Login successful.", user, map[string]any{"token": token})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		a.handleDomainError(w, r, auth.ErrUnauthenticated)
		return
	}
	user, err := a.users.Get(r.Context(), identity.UserID)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "User profile fetched successfully.", user, nil)
}

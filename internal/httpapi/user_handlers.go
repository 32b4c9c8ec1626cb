package httpapi

import (
	"net/http"
	"strings"

	"github.com/e-motion/backend/internal/audit"
	"github.com/e-motion/backend/internal/auth"
	"github.com/e-motion/backend/internal/users"
)

type profileUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (p profileUpdateRequest) toUpdate() users.ProfileUpdate {
	return users.ProfileUpdate{Name: p.Name, Email: p.Email, Password: p.Password}
}

// handleOwnProfile serves the caller's own record; no ownership check is
// needed because the subject comes from the token.
func (a *API) handleOwnProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		a.handleDomainError(w, r, auth.ErrUnauthenticated)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := a.users.Get(r.Context(), identity.UserID)
		if err != nil {
			a.handleDomainError(w, r, err)
			return
		}
		respond(w, http.StatusOK, "User profile retrieved successfully.", user, nil)
	case http.MethodPut:
		a.updateUser(w, r, &identity, identity.UserID)
	default:
		a.methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		a.handleDomainError(w, r, auth.ErrUnauthenticated)
		return
	}
	if err := auth.RequireRole(identity, auth.RoleAdmin); err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	page, err := parsePositiveInt(r.URL.Query().Get("page"), 1, 1, 1<<30)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, "page "+err.Error())
		return
	}
	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 20, 1, 100)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
		return
	}

	list, total, err := a.users.List(r.Context(), page, limit)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	p := paginate(page, limit, total)
	respond(w, http.StatusOK, "Users retrieved successfully.", list, map[string]any{
		"pagination": map[string]any{
			"currentPage": p.CurrentPage,
			"totalPages":  p.TotalPages,
			"totalUsers":  total,
			"hasNextPage": p.HasNextPage,
			"hasPrevPage": p.HasPrevPage,
		},
	})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/users/")
	if id == "" || strings.Contains(id, "/") {
		a.writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		a.handleDomainError(w, r, auth.ErrUnauthenticated)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := a.users.Get(r.Context(), id)
		if err != nil {
			a.handleDomainError(w, r, err)
			return
		}
		if err := auth.RequireOwnerOrRole(identity, user.ID, auth.RoleAdmin); err != nil {
			a.handleDomainError(w, r, err)
			return
		}
		respond(w, http.StatusOK, "User profile retrieved successfully.", user, nil)
	case http.MethodPut:
		a.updateUser(w, r, &identity, id)
	case http.MethodDelete:
		if err := auth.RequireRole(identity, auth.RoleAdmin); err != nil {
			a.handleDomainError(w, r, err)
			return
		}
		if err := a.users.Delete(r.Context(), id); err != nil {
			a.handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "user.delete", map[string]any{
			"target_user_id": id,
		})
		respond(w, http.StatusOK, "User removed successfully.", nil, nil)
	default:
		a.methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, identity *auth.Identity, targetID string) {
	// Load first so an absent target reads as 404 rather than 403.
	target, err := a.users.Get(r.Context(), targetID)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	if err := auth.RequireOwnerOrRole(*identity, target.ID, auth.RoleAdmin); err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	var req profileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := a.users.UpdateProfile(r.Context(), target.ID, req.toUpdate())
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.profile.update", map[string]any{
		"target_user_id": target.ID,
	})

	respond(w, http.StatusOK, "User profile updated successfully.", updated, nil)
}

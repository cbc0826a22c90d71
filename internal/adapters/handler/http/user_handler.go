package http

import (
	"net/http"

	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type UserHandler struct {
	roles ports.RoleService
}

func NewUserHandler(roles ports.RoleService) *UserHandler {
	return &UserHandler{
		roles: roles,
	}
}

// GetMe godoc
// @Summary      Returns the authenticated user with its effective roles
// @Tags         users
// @Success      200
// @Failure      401
// @Router       /api/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing user context")
		return
	}

	roles, err := h.roles.EffectiveRoles(r.Context(), user)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewUserRoles(user, roles))
}

// ListUsers returns the users visible under the lens named by the view
// query parameter. Without it the actor's primary role is used.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)

	view := domain.Role(r.URL.Query().Get("view"))
	if view == "" {
		roles, err := h.roles.EffectiveRoles(r.Context(), user)
		if err != nil {
			respondError(w, r, err)
			return
		}
		view = roles.Primary()
		if view != domain.RoleSystemAdmin && view != domain.RoleProductOwner {
			respondError(w, r, domain.ErrForbidden)
			return
		}
	} else if _, ok := domain.ParseRole(string(view)); !ok {
		badRequest(w, "unknown view")
		return
	}

	users, err := h.roles.VisibleUsers(r.Context(), user, view)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid user id")
		return
	}

	user, _ := currentUser(r)
	if err := h.roles.DeleteUser(r.Context(), user, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type grantResponse struct {
	Outcome domain.GrantOutcome `json:"outcome"`
}

// GrantRole answers 201 when the grant was created and 200 when the target
// already held it.
func (h *UserHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	var change domain.RoleChange
	if err := decodeJSON(r, &change); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	outcome, err := h.roles.GrantRole(r.Context(), user, change)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusCreated
	if outcome == domain.OutcomeAlreadyAssigned {
		status = http.StatusOK
	}
	writeJSON(w, status, grantResponse{Outcome: outcome})
}

func (h *UserHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	var change domain.RoleChange
	if err := decodeJSON(r, &change); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, _ := currentUser(r)
	if err := h.roles.RevokeRole(r.Context(), user, change); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

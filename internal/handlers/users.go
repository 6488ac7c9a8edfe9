// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"docshelf/internal/auth"
	"docshelf/internal/middleware"
	"docshelf/internal/models"
	"docshelf/internal/store"
)

// Users serves account administration. The router gates every route at
// admin or above; the escalation and protection guards below add the
// superadmin-only cases on top.
type Users struct {
	users    *store.UserStore
	validate *validator.Validate
}

func NewUsers(users *store.UserStore) *Users {
	return &Users{users: users, validate: validator.New()}
}

type createUserRequest struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Role     string  `json:"role" validate:"required"`
}

// updateUserRequest carries a partial update; nil fields stay untouched.
type updateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Role     *string `json:"role"`
}

// List returns every account.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		slog.Error("user listing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Create provisions an account with an explicit role. Granting admin or
// superadmin requires the actor to be superadmin.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.IdentityFromCtx(r.Context())

	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "email, a password of at least 8 characters, and a role are required")
		return
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}
	if !auth.CanAssignRole(actor.Role, role) {
		respondError(w, http.StatusForbidden, "insufficient role")
		return
	}

	user, err := h.users.Create(req.Email, req.Password, req.Phone, role)
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "email is already registered")
			return
		}
		slog.Error("user creation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}

	slog.Info("user provisioned", "user_id", user.ID, "role", user.Role, "by", actor.UserID)
	respondJSON(w, http.StatusCreated, user)
}

// Update applies a partial update to an account. Managing an elevated
// account, or granting an elevated role, requires superadmin.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.IdentityFromCtx(r.Context())

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid field values")
		return
	}

	target, err := h.users.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if target == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	// The protection guard covers every mutation of an elevated account.
	if !auth.CanManageUser(actor.Role, target.Role) {
		respondError(w, http.StatusForbidden, "insufficient role")
		return
	}

	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			respondError(w, http.StatusBadRequest, "unknown role")
			return
		}
		if !auth.CanAssignRole(actor.Role, role) {
			respondError(w, http.StatusForbidden, "insufficient role")
			return
		}
		if target, err = h.users.UpdateRole(id, role); err != nil {
			slog.Error("role update failed", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
	}
	if req.Email != nil {
		if target, err = h.users.UpdateEmail(id, *req.Email); err != nil {
			if store.IsUniqueViolation(err) {
				respondError(w, http.StatusConflict, "email is already registered")
				return
			}
			slog.Error("email update failed", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
	}
	if req.Phone != nil {
		if target, err = h.users.UpdatePhone(id, req.Phone); err != nil {
			slog.Error("phone update failed", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
	}
	if req.Password != nil {
		if err = h.users.UpdatePassword(id, *req.Password); err != nil {
			slog.Error("password update failed", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
	}
	if target == nil {
		// Deleted between the lookup and an update statement.
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	slog.Info("user updated", "user_id", id, "by", actor.UserID)
	respondJSON(w, http.StatusOK, target)
}

// Delete removes an account. Elevated targets require superadmin.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.IdentityFromCtx(r.Context())

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	target, err := h.users.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if target == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	if !auth.CanManageUser(actor.Role, target.Role) {
		respondError(w, http.StatusForbidden, "insufficient role")
		return
	}

	deleted, err := h.users.Delete(id)
	if err != nil {
		slog.Error("user delete failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if deleted == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	slog.Info("user deleted", "user_id", id, "by", actor.UserID)
	w.WriteHeader(http.StatusNoContent)
}

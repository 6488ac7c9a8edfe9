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
	"docshelf/internal/workflow"
)

// Auth serves registration, login, profile, and the password-reset flow.
type Auth struct {
	users      *store.UserStore
	authorizer *auth.Authorizer
	reset      *workflow.PasswordReset
	validate   *validator.Validate
}

func NewAuth(users *store.UserStore, authorizer *auth.Authorizer, reset *workflow.PasswordReset) *Auth {
	return &Auth{
		users:      users,
		authorizer: authorizer,
		reset:      reset,
		validate:   validator.New(),
	}
}

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest carries the fields an account may change on itself.
// Absent fields are left untouched.
type updateProfileRequest struct {
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

type passwordRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// tokenResponse carries a fresh bearer token and the account it belongs to.
type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account with the base role and signs it in.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "email and a password of at least 8 characters are required")
		return
	}

	user, err := h.users.Create(req.Email, req.Password, req.Phone, models.RoleUser)
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "email is already registered")
			return
		}
		slog.Error("user registration failed", "error", err)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}

	token, err := h.authorizer.IssueToken(user)
	if err != nil {
		slog.Error("token issue failed", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	respondJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Login verifies credentials and returns a bearer token. Unknown email and
// wrong password get the same answer.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if user == nil || !h.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.authorizer.IssueToken(user)
	if err != nil {
		slog.Error("token issue failed", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	respondJSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Profile returns the authenticated account.
func (h *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.FindByID(id.UserID)
	if err != nil {
		slog.Error("profile lookup failed", "error", err, "user_id", id.UserID)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile lets the authenticated account change its own phone and
// password. Email and role changes stay with user administration.
func (h *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if req.Password != nil {
		if err := h.users.UpdatePassword(id.UserID, *req.Password); err != nil {
			slog.Error("profile password update failed", "error", err, "user_id", id.UserID)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
	}

	var user *models.User
	var err error
	if req.Phone != nil {
		user, err = h.users.UpdatePhone(id.UserID, req.Phone)
	} else {
		user, err = h.users.FindByID(id.UserID)
	}
	if err != nil {
		slog.Error("profile update failed", "error", err, "user_id", id.UserID)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	slog.Info("profile updated", "user_id", id.UserID)
	respondJSON(w, http.StatusOK, user)
}

// PasswordRequest starts the reset flow. The response is identical whether
// or not the email belongs to an account.
func (h *Auth) PasswordRequest(w http.ResponseWriter, r *http.Request) {
	var req passwordRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	if err := h.reset.Request(r.Context(), req.Email); err != nil {
		slog.Error("password reset request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "If that email belongs to an account, a reset link has been sent.",
	})
}

// PasswordReset redeems a reset token and sets the new password.
func (h *Auth) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "token and a password of at least 8 characters are required")
		return
	}

	if err := h.reset.Redeem(r.Context(), req.Token, req.Password); err != nil {
		respondWorkflowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated."})
}

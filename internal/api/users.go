package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/store"
	"github.com/erazemk/resell/internal/validation"
)

// UsersHandler handles seller account management (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin seller"`
}

type updateUserRequest struct {
	Role string `json:"role" validate:"required,oneof=admin seller"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, ok := hashPassword(w, req.Password)
	if !ok {
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, req.Role)
	if err != nil {
		slog.Warn("failed to create user", "username", req.Username, "error", err)
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user created", "user", claims.Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}. Only the role can change.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := h.load(w, r)
	if !ok {
		return
	}

	err := store.UpdateUser(r.Context(), h.DB, user.ID, req.Role)
	if errors.Is(err, store.ErrUserNotFound) {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		slog.Error("failed to update user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	user.Role = req.Role

	claims := GetClaims(r.Context())
	slog.Info("user role updated", "user", claims.Username, "target_user", user.Username, "new_role", user.Role)
	jsonResponse(w, http.StatusOK, user)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := h.load(w, r)
	if !ok {
		return
	}

	hash, ok := hashPassword(w, req.Password)
	if !ok {
		return
	}

	_, err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, hash)
	if errors.Is(err, store.ErrUserNotFound) {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		slog.Error("failed to reset password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user password reset", "user", claims.Username, "target_user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset, existing sessions ended"})
}

// Delete handles DELETE /api/users/{id}. The account is soft-deleted, its
// items are archived and its shopping list cleared; sales are kept.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	user, ok := h.load(w, r)
	if !ok {
		return
	}
	if user.ID == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	off, err := store.DeleteUser(r.Context(), h.DB, user.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	slog.Info("user deleted", "user", claims.Username, "deleted_user", user.Username,
		"archived_items", off.ArchivedItems, "removed_entries", off.RemovedEntries)
	jsonResponse(w, http.StatusOK, off)
}

// load resolves the {id} path value to a live user, writing the error
// response itself when it cannot.
func (h *UsersHandler) load(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return nil, false
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return nil, false
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
		return nil, false
	}
	return user, true
}

func hashPassword(w http.ResponseWriter, password string) (string, bool) {
	if err := model.ValidatePassword(password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return "", false
	}
	return string(hash), true
}

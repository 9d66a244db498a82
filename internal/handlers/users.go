package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/events"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"

	"go.uber.org/zap"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type sessionResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register creates a user from a username and password.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.storageError(w, r, err, "")
		return
	}

	user, err := h.db.CreateUser(r.Context(), username, hash)
	if err != nil {
		h.storageError(w, r, err, "")
		return
	}

	h.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	h.publish(r.Context(), events.New(events.UserRegistered, user.ID, nil))
	writeJSON(w, http.StatusOK, messageResponse{Message: "User registered successfully", ID: user.ID})
}

// Login verifies credentials and opens a session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.storageError(w, r, err, "")
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.storageError(w, r, err, "")
		return
	}
	if err := h.db.CreateSession(r.Context(), token, user.ID, time.Now().Add(h.sessionTTL)); err != nil {
		h.storageError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token})
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// Logout deletes the session named by the bearer token. Unknown tokens are accepted.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing bearer token")
		return
	}

	if err := h.db.DeleteSession(r.Context(), token); err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.storageError(w, r, err, "")
		return
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

// Session reports the user behind a bearer token. Sessions past the halfway point of
// their lifetime are renewed, so active clients stay logged in.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing bearer token")
		return
	}

	info, err := h.db.ValidateSessionWithInfo(r.Context(), token)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid or expired session")
		return
	}
	if err != nil {
		h.storageError(w, r, err, "")
		return
	}

	expiresAt := info.ExpiresAt
	now := time.Now()
	if expiresAt.Sub(now) < h.sessionTTL/2 {
		renewed := now.Add(h.sessionTTL)
		if err := h.db.RenewSession(r.Context(), token, renewed); err != nil {
			h.log.Warn("failed to renew session", zap.Int64("user_id", info.User.ID), zap.Error(err))
		} else {
			expiresAt = renewed
		}
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        info.User.ID,
		Username:  info.User.Username,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// GetUser returns a user's id and username.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "User not found")
	if !ok {
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		h.storageError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Username: user.Username})
}

// UpdateUser overwrites the username and/or password of a user.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "User not found")
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var patch models.UserPatch
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			writeError(w, http.StatusBadRequest, "Username cannot be empty")
			return
		}
		patch.Username = &username
	}
	if req.Password != nil {
		if *req.Password == "" {
			writeError(w, http.StatusBadRequest, "Password cannot be empty")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.storageError(w, r, err, "")
			return
		}
		patch.PasswordHash = &hash
	}

	if err := h.db.UpdateUser(r.Context(), id, patch); err != nil {
		h.storageError(w, r, err, "User not found")
		return
	}
	writeMessage(w, http.StatusOK, "User updated successfully")
}

// DeleteUser removes a user. Their expenses stay, detached from any user.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "User not found")
	if !ok {
		return
	}

	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		h.storageError(w, r, err, "User not found")
		return
	}

	h.publish(r.Context(), events.New(events.UserDeleted, id, nil))
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

// ListUserExpenses returns every expense owned by a user.
func (h *Handlers) ListUserExpenses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "User not found")
	if !ok {
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), id); err != nil {
		h.storageError(w, r, err, "User not found")
		return
	}

	expenses, err := h.db.ListExpensesByUser(r.Context(), id)
	if err != nil {
		h.storageError(w, r, err, "")
		return
	}

	resp := make([]expenseDetail, 0, len(expenses))
	for i := range expenses {
		resp = append(resp, newExpenseDetail(&expenses[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

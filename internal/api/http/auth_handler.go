package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, apperr.Validation("username and password are required"))
		return
	}
	user, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	current, err := h.auth.Me(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

type forgotPasswordRequest struct {
	Immatricule string `json:"immatricule"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Immatricule == "" {
		writeError(w, r, apperr.Validation("immatricule is required"))
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Immatricule); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "reset request submitted"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pendingApproval, err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pendingApproval {
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "change request awaits admin approval"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *AuthHandler) ListPasswordResets(w http.ResponseWriter, r *http.Request) {
	requests, err := h.auth.ListPasswordResetRequests(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

type approveResetRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) ApprovePasswordReset(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req approveResetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	request, err := h.auth.ApprovePasswordReset(r.Context(), admin.ID, id, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *AuthHandler) ListPasswordChanges(w http.ResponseWriter, r *http.Request) {
	requests, err := h.auth.ListPasswordChangeRequests(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *AuthHandler) ApprovePasswordChange(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	request, err := h.auth.ApprovePasswordChange(r.Context(), admin.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

type invalidatePasswordRequest struct {
	TemporaryPassword string `json:"temporary_password"`
}

func (h *AuthHandler) InvalidatePassword(w http.ResponseWriter, r *http.Request) {
	admin := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req invalidatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.InvalidatePassword(r.Context(), admin.ID, id, req.TemporaryPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password invalidated"})
}

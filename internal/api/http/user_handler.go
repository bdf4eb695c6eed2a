package http

import (
	"net/http"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/service"
	"sigap-backend/internal/storage"
)

type UserHandler struct {
	users       service.UserService
	maxPhotoMiB int64
}

func NewUserHandler(users service.UserService, maxPhotoMiB int64) *UserHandler {
	return &UserHandler{users: users, maxPhotoMiB: maxPhotoMiB}
}

type createUserRequest struct {
	Immatricule string      `json:"immatricule"`
	FullName    string      `json:"full_name"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	FokontanyID *int64      `json:"fokontany_id"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user := &domain.User{
		Immatricule: req.Immatricule,
		FullName:    req.FullName,
		Username:    req.Username,
		Role:        req.Role,
		FokontanyID: req.FokontanyID,
	}
	temporary, err := h.users.Create(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":               user,
		"temporary_password": temporary,
	})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Immatricule string      `json:"immatricule"`
	FullName    string      `json:"full_name"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	FokontanyID *int64      `json:"fokontany_id"`
	IsActive    *bool       `json:"is_active"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user.Immatricule = req.Immatricule
	user.FullName = req.FullName
	user.Username = req.Username
	user.Role = req.Role
	user.FokontanyID = req.FokontanyID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := h.users.Update(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *UserHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.SetActive(r.Context(), id, active); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if id == caller.ID {
		writeError(w, r, apperr.Conflict("cannot delete your own account"))
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMyPhoto accepts a multipart upload under the "photo" field and
// replaces the caller's profile photo.
func (h *UserHandler) UpdateMyPhoto(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoMiB<<20)
	if err := r.ParseMultipartForm(h.maxPhotoMiB << 20); err != nil {
		writeError(w, r, apperr.Validation("photo upload too large or malformed"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, apperr.Validation("photo field is required"))
		return
	}
	defer file.Close()

	filename, err := h.users.UpdateProfilePhoto(r.Context(), user.ID, file, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"photo": filename,
		"url":   storage.ProfileURL(filename),
	})
}

package http

import (
	"net/http"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/service"
	"sigap-backend/internal/storage"
)

type SubmissionHandler struct {
	approvals   service.ApprovalService
	maxPhotoMiB int64
}

func NewSubmissionHandler(approvals service.ApprovalService, maxPhotoMiB int64) *SubmissionHandler {
	return &SubmissionHandler{approvals: approvals, maxPhotoMiB: maxPhotoMiB}
}

// StagePhoto receives a draft photo ahead of submission and answers with the
// staged filename the draft should reference.
func (h *SubmissionHandler) StagePhoto(w http.ResponseWriter, r *http.Request) {
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

	filename, err := h.approvals.StagePhoto(r.Context(), file, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"filename": filename,
		"url":      storage.StagedURL(filename),
	})
}

func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	submitter := UserFromContext(r.Context())
	var draft domain.ResidenceDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	pending, residence, err := h.approvals.Submit(r.Context(), submitter, &draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if residence != nil {
		writeJSON(w, http.StatusCreated, map[string]any{"residence": residence})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"submission": pending})
}

func (h *SubmissionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reviewer := UserFromContext(r.Context())
	pending, err := h.approvals.ListPending(r.Context(), reviewer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	reviewer := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pending, err := h.approvals.Get(r.Context(), reviewer, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

func (h *SubmissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewer := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	residence, err := h.approvals.Approve(r.Context(), reviewer, id, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, residence)
}

func (h *SubmissionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewer := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pending, err := h.approvals.Reject(r.Context(), reviewer, id, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

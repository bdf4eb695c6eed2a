package http

import (
	"net/http"
	"strconv"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/service"
)

type FokontanyHandler struct {
	fokontany service.FokontanyService
}

func NewFokontanyHandler(fokontany service.FokontanyService) *FokontanyHandler {
	return &FokontanyHandler{fokontany: fokontany}
}

func (h *FokontanyHandler) List(w http.ResponseWriter, r *http.Request) {
	if region := r.URL.Query().Get("region"); region != "" {
		list, err := h.fokontany.ListByRegion(r.Context(), region)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	list, err := h.fokontany.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *FokontanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.fokontany.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FokontanyHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.fokontany.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *FokontanyHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(w, r, apperr.Validation("lat and lng query parameters are required"))
		return
	}
	f, err := h.fokontany.Nearest(r.Context(), lat, lng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FokontanyHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	f, err := h.fokontany.MyFokontany(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FokontanyHandler) Import(w http.ResponseWriter, r *http.Request) {
	var batch []domain.Fokontany
	if err := decodeBody(r, &batch); err != nil {
		writeError(w, r, err)
		return
	}
	created, updated, err := h.fokontany.Import(r.Context(), batch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created, "updated": updated})
}

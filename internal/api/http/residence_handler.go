package http

import (
	"net/http"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/service"
)

type ResidenceHandler struct {
	residences  service.ResidenceService
	persons     service.PersonService
	maxPhotoMiB int64
}

func NewResidenceHandler(residences service.ResidenceService, persons service.PersonService, maxPhotoMiB int64) *ResidenceHandler {
	return &ResidenceHandler{residences: residences, persons: persons, maxPhotoMiB: maxPhotoMiB}
}

func (h *ResidenceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.residences.List(r.Context(), r.URL.Query().Get("fokontany"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ResidenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.residences.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type updateResidenceRequest struct {
	Lot          string `json:"lot"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

func (h *ResidenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateResidenceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Lot == "" {
		writeError(w, r, apperr.Validation("lot is required"))
		return
	}
	res, err := h.residences.Update(r.Context(), id, req.Lot, req.Neighborhood, req.City)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ResidenceHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *ResidenceHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *ResidenceHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.residences.SetActive(r.Context(), id, active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ResidenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.residences.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPhoto accepts a multipart upload under the "photo" field.
func (h *ResidenceHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
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

	photo, err := h.residences.AddPhoto(r.Context(), id, file, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

func (h *ResidenceHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	residenceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	photoID, err := pathID(r, "photoID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.residences.DeletePhoto(r.Context(), residenceID, photoID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type personRequest struct {
	FullName        string  `json:"full_name"`
	BirthDate       *string `json:"birth_date"`
	NationalID      string  `json:"national_id"`
	Gender          string  `json:"gender"`
	Phone           string  `json:"phone"`
	RelationLabel   string  `json:"relation_label"`
	ParentPersonID  *int64  `json:"parent_person_id"`
	IsOwnerOccupant bool    `json:"is_owner_occupant"`
	FamilyGroupID   *int64  `json:"family_group_id"`
}

func (req *personRequest) relation() *domain.PersonRelation {
	if req.RelationLabel == "" && req.ParentPersonID == nil && req.FamilyGroupID == nil && !req.IsOwnerOccupant {
		return nil
	}
	return &domain.PersonRelation{
		ParentPersonID:  req.ParentPersonID,
		RelationLabel:   req.RelationLabel,
		IsOwnerOccupant: req.IsOwnerOccupant,
		FamilyGroupID:   req.FamilyGroupID,
	}
}

func (h *ResidenceHandler) AddPerson(w http.ResponseWriter, r *http.Request) {
	residenceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req personRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	person := &domain.Person{
		ResidenceID: residenceID,
		FullName:    req.FullName,
		BirthDate:   req.BirthDate,
		NationalID:  req.NationalID,
		Gender:      domain.Gender(req.Gender),
		Phone:       req.Phone,
	}
	if err := h.persons.Add(r.Context(), person, req.relation()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (h *ResidenceHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	residenceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	persons, err := h.persons.ListByResidence(r.Context(), residenceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, persons)
}

func (h *ResidenceHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req personRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	person, err := h.persons.Get(r.Context(), personID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	person.FullName = req.FullName
	person.BirthDate = req.BirthDate
	person.NationalID = req.NationalID
	person.Gender = domain.Gender(req.Gender)
	person.Phone = req.Phone
	if err := h.persons.Update(r.Context(), person); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (h *ResidenceHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.persons.Delete(r.Context(), personID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

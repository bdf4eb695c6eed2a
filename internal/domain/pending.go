package domain

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// ResidenceDraft is the structured payload an agent submits for review:
// residence fields, ordered person sub-records and staged photo filenames.
// It is validated at the workflow boundary, never trusted as free-form data.
type ResidenceDraft struct {
	Lot          string        `json:"lot"`
	Neighborhood string        `json:"neighborhood,omitempty"`
	City         string        `json:"city,omitempty"`
	Fokontany    string        `json:"fokontany,omitempty"`
	Lat          float64       `json:"lat"`
	Lng          float64       `json:"lng"`
	Residents    []PersonDraft `json:"residents,omitempty"`
	Photos       []string      `json:"photos,omitempty"` // staged filenames in the pending holding dir
	Notes        string        `json:"notes,omitempty"`
}

// PersonDraft carries a person sub-record with optional relation fields.
type PersonDraft struct {
	FullName        string  `json:"full_name"`
	BirthDate       *string `json:"birth_date,omitempty"`
	NationalID      string  `json:"national_id,omitempty"`
	Gender          Gender  `json:"gender,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	RelationLabel   string  `json:"relation_label,omitempty"`
	ParentPersonID  *int64  `json:"parent_person_id,omitempty"`
	IsOwnerOccupant bool    `json:"is_owner_occupant,omitempty"`
	FamilyGroupID   *int64  `json:"family_group_id,omitempty"`
}

// HasRelation reports whether the sub-record carries any relation fields,
// which decides whether a person_relations row is materialized.
func (p *PersonDraft) HasRelation() bool {
	return p.RelationLabel != "" || p.ParentPersonID != nil || p.FamilyGroupID != nil || p.IsOwnerOccupant
}

// PendingResidence is a draft residence awaiting secretary/admin review.
// Once approved or rejected it is immutable except for bookkeeping fields
// and remains as an audit record.
type PendingResidence struct {
	ID          int64            `json:"id"`
	Draft       ResidenceDraft   `json:"draft"`
	SubmittedBy int64            `json:"submitted_by"`
	Status      SubmissionStatus `json:"status"`
	ReviewedBy  *int64           `json:"reviewed_by"`
	ReviewNotes string           `json:"review_notes,omitempty"`
	CreatedOn   string           `json:"created_on"`
	UpdatedOn   string           `json:"updated_on"`

	// Joined for queue listings.
	SubmitterName        string `json:"submitter_name,omitempty"`
	SubmitterImmatricule string `json:"submitter_immatricule,omitempty"`
	SubmitterFokontanyID *int64 `json:"submitter_fokontany_id,omitempty"`
	FokontanyName        string `json:"fokontany_name,omitempty"`
}

package domain

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Person struct {
	ID          int64           `json:"id"`
	ResidenceID int64           `json:"residence_id"`
	FullName    string          `json:"full_name"`
	BirthDate   *string         `json:"birth_date"`
	NationalID  string          `json:"national_id,omitempty"`
	Gender      Gender          `json:"gender"`
	Phone       string          `json:"phone,omitempty"`
	Relation    *PersonRelation `json:"relation,omitempty"`
	CreatedOn   string          `json:"created_on"`
}

// PersonRelation records how a person fits into the household.
// ParentPersonID is a non-owning lookup into persons, never traversed as a
// graph.
type PersonRelation struct {
	ID              int64  `json:"id"`
	PersonID        int64  `json:"person_id"`
	ParentPersonID  *int64 `json:"parent_person_id"`
	RelationLabel   string `json:"relation_label,omitempty"`
	IsOwnerOccupant bool   `json:"is_owner_occupant"`
	FamilyGroupID   *int64 `json:"family_group_id"`
}

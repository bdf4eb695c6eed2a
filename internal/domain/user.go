package domain

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAgent     Role = "agent"
	RoleSecretary Role = "secretary"
)

// Valid reports whether r is one of the known staff roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleSecretary:
		return true
	}
	return false
}

type User struct {
	ID                 int64      `json:"id"`
	Immatricule        string     `json:"immatricule"`
	FullName           string     `json:"full_name"`
	Username           string     `json:"username"`
	PasswordHash       string     `json:"-"`
	Role               Role       `json:"role"`
	FokontanyID        *int64     `json:"fokontany_id"`
	IsActive           bool       `json:"is_active"`
	Photo              string     `json:"photo,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	Fokontany          *Fokontany `json:"fokontany,omitempty"` // populated when needed
	CreatedOn          string     `json:"created_on"`
	UpdatedOn          string     `json:"updated_on"`
}

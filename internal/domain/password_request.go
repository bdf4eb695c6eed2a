package domain

// PasswordResetRequest is created when a user forgets their password and
// asks for a reset by badge id. Single-use: once approved or rejected it is
// terminal.
type PasswordResetRequest struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"user_id"`
	Immatricule string           `json:"immatricule"`
	Status      SubmissionStatus `json:"status"`
	CreatedOn   string           `json:"created_on"`

	// Joined for admin listings.
	UserFullName string `json:"user_full_name,omitempty"`
	UserUsername string `json:"user_username,omitempty"`
	UserRole     Role   `json:"user_role,omitempty"`
}

// PasswordChangeRequest holds a pre-hashed replacement password awaiting
// admin approval. The admin approval step copies NewPasswordHash onto the
// user record; the plaintext never reaches the admin.
type PasswordChangeRequest struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	NewPasswordHash string           `json:"-"`
	Status          SubmissionStatus `json:"status"`
	CreatedOn       string           `json:"created_on"`

	UserFullName    string `json:"user_full_name,omitempty"`
	UserUsername    string `json:"user_username,omitempty"`
	UserImmatricule string `json:"user_immatricule,omitempty"`
	UserRole        Role   `json:"user_role,omitempty"`
}

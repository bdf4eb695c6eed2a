package domain

const (
	NotificationResidenceApproval = "residence_approval"
	NotificationPasswordReset     = "password_reset"
	NotificationPasswordChange    = "password_change"
)

type Notification struct {
	ID              int64            `json:"id"`
	Kind            string           `json:"kind"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	RecipientID     int64            `json:"recipient_id"`
	SenderID        *int64           `json:"sender_id"`
	RelatedEntityID *int64           `json:"related_entity_id"` // weak reference, no cascade guarantee
	Status          SubmissionStatus `json:"status"`
	IsRead          bool             `json:"is_read"`
	CreatedOn       string           `json:"created_on"`
	UpdatedOn       string           `json:"updated_on"`

	// Joined for listings.
	SenderName string `json:"sender_name,omitempty"`
	SenderRole Role   `json:"sender_role,omitempty"`
}

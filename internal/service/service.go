package service

import (
	"context"
	"io"

	"sigap-backend/internal/domain"
)

type AuthService interface {
	// Login verifies credentials and returns the user with a signed token.
	// Inactive accounts cannot log in.
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)

	// ForgotPassword files a reset request by badge number; handled later by
	// an admin. Unauthenticated.
	ForgotPassword(ctx context.Context, immatricule string) error
	// ChangePassword verifies the current password first. A forced change
	// (temporary password) applies immediately; a voluntary change is queued
	// for admin approval. Returns true when the change awaits approval.
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (bool, error)

	ListPasswordResetRequests(ctx context.Context) ([]domain.PasswordResetRequest, error)
	// ApprovePasswordReset writes the admin-supplied password onto the user
	// and resolves the request. The admin hands the password over out of band.
	ApprovePasswordReset(ctx context.Context, adminID, requestID int64, newPassword string) (*domain.PasswordResetRequest, error)
	ListPasswordChangeRequests(ctx context.Context) ([]domain.PasswordChangeRequest, error)
	ApprovePasswordChange(ctx context.Context, adminID, requestID int64) (*domain.PasswordChangeRequest, error)
	// InvalidatePassword force-replaces a non-admin user's password with the
	// supplied temporary one and marks the account must-change. Admin only;
	// an admin target is refused.
	InvalidatePassword(ctx context.Context, adminID, userID int64, tempPassword string) error
}

type UserService interface {
	// Create provisions a staff account with a generated temporary password,
	// returned in plaintext exactly once.
	Create(ctx context.Context, user *domain.User) (string, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	UpdateProfilePhoto(ctx context.Context, userID int64, photo io.Reader, originalName string) (string, error)
}

type FokontanyService interface {
	Get(ctx context.Context, id int64) (*domain.Fokontany, error)
	List(ctx context.Context) ([]domain.Fokontany, error)
	ListByRegion(ctx context.Context, region string) ([]domain.Fokontany, error)
	Search(ctx context.Context, term string) ([]domain.Fokontany, error)
	Nearest(ctx context.Context, lat, lng float64) (*domain.Fokontany, error)
	// MyFokontany resolves the caller's assigned subdivision.
	MyFokontany(ctx context.Context, user *domain.User) (*domain.Fokontany, error)
	// Import upserts a batch of reference records, deriving missing
	// centroids from polygon geometry. Returns created and updated counts.
	Import(ctx context.Context, batch []domain.Fokontany) (created, updated int, err error)
}

type ResidenceService interface {
	Get(ctx context.Context, id int64) (*domain.Residence, error)
	List(ctx context.Context, fokontany string) ([]domain.Residence, error)
	Update(ctx context.Context, id int64, lot, neighborhood, city string) (*domain.Residence, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Residence, error)
	Delete(ctx context.Context, id int64) error
	AddPhoto(ctx context.Context, residenceID int64, photo io.Reader, originalName string) (*domain.Photo, error)
	DeletePhoto(ctx context.Context, residenceID, photoID int64) error
}

type PersonService interface {
	Add(ctx context.Context, person *domain.Person, relation *domain.PersonRelation) error
	Get(ctx context.Context, id int64) (*domain.Person, error)
	ListByResidence(ctx context.Context, residenceID int64) ([]domain.Person, error)
	Update(ctx context.Context, person *domain.Person) error
	Delete(ctx context.Context, id int64) error
}

// ApprovalService runs the submission review workflow. Agents queue drafts;
// secretaries and admins review them or register residences directly.
type ApprovalService interface {
	// StagePhoto stores an uploaded draft photo in the holding area and
	// returns the staged filename to reference from a draft.
	StagePhoto(ctx context.Context, photo io.Reader, originalName string) (string, error)
	// Submit routes by role: agents get a pending submission with reviewer
	// fan-out, secretaries and admins get an immediately registered
	// residence. Exactly one of the two return values is non-nil.
	Submit(ctx context.Context, submitter *domain.User, draft *domain.ResidenceDraft) (*domain.PendingResidence, *domain.Residence, error)
	ListPending(ctx context.Context, reviewer *domain.User) ([]domain.PendingResidence, error)
	Get(ctx context.Context, reviewer *domain.User, id int64) (*domain.PendingResidence, error)
	Approve(ctx context.Context, reviewer *domain.User, id int64, notes string) (*domain.Residence, error)
	Reject(ctx context.Context, reviewer *domain.User, id int64, notes string) (*domain.PendingResidence, error)
}

type NotificationService interface {
	List(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// EmailService mirrors workflow events to the configured admin mailbox.
// Always best-effort: a mail failure never fails the operation it mirrors.
type EmailService interface {
	SendSubmissionAlert(ctx context.Context, submitterName, fokontany string, submissionID int64) error
	SendPasswordResetAlert(ctx context.Context, fullName, immatricule string) error
	SendPasswordChangeAlert(ctx context.Context, fullName, username string) error
}

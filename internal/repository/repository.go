package repository

import (
	"context"
	"time"

	"sigap-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByImmatricule(ctx context.Context, immatricule string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, mustChange bool) error
	// UpdatePhoto swaps the profile photo filename and returns the previous
	// one so the caller can remove the old file.
	UpdatePhoto(ctx context.Context, id int64, filename string) (string, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	// ListActiveByRole resolves recipients for workflow fan-out; a nil
	// fokontanyID means no subdivision filter.
	ListActiveByRole(ctx context.Context, role domain.Role, fokontanyID *int64) ([]domain.User, error)
}

type FokontanyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Fokontany, error)
	List(ctx context.Context) ([]domain.Fokontany, error)
	ListByRegion(ctx context.Context, region string) ([]domain.Fokontany, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Fokontany, error)
	NearestTo(ctx context.Context, lat, lng float64) (*domain.Fokontany, error)
	// Upsert inserts or replaces by code; returns true when a new row was
	// created.
	Upsert(ctx context.Context, f *domain.Fokontany) (bool, error)
}

type ResidenceRepository interface {
	// Materialize inserts the residence row plus one person row per
	// sub-record (and a relation row where present) in a single
	// transaction. Used both by the direct privileged path and by the
	// approval engine.
	Materialize(ctx context.Context, draft *domain.ResidenceDraft, createdBy int64) (*domain.Residence, error)
	GetByID(ctx context.Context, id int64) (*domain.Residence, error)
	List(ctx context.Context, fokontany string) ([]domain.Residence, error)
	Update(ctx context.Context, id int64, lot, neighborhood, city string) (*domain.Residence, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Residence, error)
	// Delete removes the residence (persons and photo rows cascade) and
	// returns the photo filenames so the caller can remove the files.
	Delete(ctx context.Context, id int64) ([]string, error)
}

type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person, relation *domain.PersonRelation) error
	GetByID(ctx context.Context, id int64) (*domain.Person, error)
	ListByResidence(ctx context.Context, residenceID int64) ([]domain.Person, error)
	Update(ctx context.Context, person *domain.Person) error
	Delete(ctx context.Context, id int64) error
}

type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.Photo) error
	ListByResidence(ctx context.Context, residenceID int64) ([]domain.Photo, error)
	// Delete removes the row and returns the filename for best-effort file
	// cleanup.
	Delete(ctx context.Context, id, residenceID int64) (string, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PendingResidenceRepository interface {
	// Submit inserts the pending row and the reviewer notifications in one
	// transaction.
	Submit(ctx context.Context, pending *domain.PendingResidence, notifications []domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.PendingResidence, error)
	// ListPending returns pending rows newest-first, joined with submitter
	// details; a nil fokontanyID means no subdivision filter.
	ListPending(ctx context.Context, fokontanyID *int64) ([]domain.PendingResidence, error)
	// Approve locks the pending row, materializes the residence subtree and
	// marks the row approved, all inside one transaction. A missing row is
	// NotFound; a non-pending row is Conflict.
	Approve(ctx context.Context, id, reviewerID int64, notes string) (*domain.Residence, *domain.PendingResidence, error)
	// Reject locks the pending row and marks it rejected. No residence rows
	// are created.
	Reject(ctx context.Context, id, reviewerID int64, notes string) (*domain.PendingResidence, error)
	// StagedFilenames lists every photo filename still referenced by a
	// pending draft, for the staged-photo purge job.
	StagedFilenames(ctx context.Context) (map[string]struct{}, error)
}

type PasswordRequestRepository interface {
	CreateResetRequest(ctx context.Context, req *domain.PasswordResetRequest) error
	ListPendingResetRequests(ctx context.Context) ([]domain.PasswordResetRequest, error)
	// ApproveResetRequest locks the pending request, writes the supplied
	// hash onto the user and marks the request approved, in one transaction.
	ApproveResetRequest(ctx context.Context, requestID int64, passwordHash string) (*domain.PasswordResetRequest, error)

	CreateChangeRequest(ctx context.Context, req *domain.PasswordChangeRequest) error
	ListPendingChangeRequests(ctx context.Context) ([]domain.PasswordChangeRequest, error)
	// ApproveChangeRequest copies the stored pre-computed hash onto the user
	// and marks the request approved, in one transaction.
	ApproveChangeRequest(ctx context.Context, requestID int64) (*domain.PasswordChangeRequest, error)
}

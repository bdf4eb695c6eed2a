package postgres

import (
	"database/sql"
	_ "embed"
	"errors"

	"github.com/lib/pq"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.FokontanyRepository
	repository.ResidenceRepository
	repository.PersonRepository
	repository.PhotoRepository
	repository.NotificationRepository
	repository.PendingResidenceRepository
	repository.PasswordRequestRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                         db,
		UserRepository:             NewUserRepository(db),
		FokontanyRepository:        NewFokontanyRepository(db),
		ResidenceRepository:        NewResidenceRepository(db),
		PersonRepository:           NewPersonRepository(db),
		PhotoRepository:            NewPhotoRepository(db),
		NotificationRepository:     NewNotificationRepository(db),
		PendingResidenceRepository: NewPendingResidenceRepository(db),
		PasswordRequestRepository:  NewPasswordRequestRepository(db),
	}
}

// EnsureSchema applies the embedded schema. Every statement is idempotent so
// this is safe to run on every start.
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

// mapError translates driver errors into the application taxonomy so callers
// never inspect sql or pq errors directly.
func mapError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(notFoundMsg)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return apperr.Conflict("record already exists")
		case "23503": // foreign_key_violation
			return apperr.Validation("referenced record does not exist")
		}
	}
	return apperr.Wrap(apperr.KindInternal, "database error", err)
}

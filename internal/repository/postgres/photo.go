package postgres

import (
	"context"
	"database/sql"
	"time"

	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

type photoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *sql.DB) repository.PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	logger.DatabaseCall("INSERT", "residence_photos", "residence_id", photo.ResidenceID)
	query := `INSERT INTO residence_photos (residence_id, filename) VALUES ($1, $2) RETURNING id, created_on`
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, photo.ResidenceID, photo.Filename).Scan(&photo.ID, &createdOn); err != nil {
		return mapError(err, "photo not found")
	}
	photo.CreatedOn = createdOn.Format(timestampLayout)
	return nil
}

func (r *photoRepository) ListByResidence(ctx context.Context, residenceID int64) ([]domain.Photo, error) {
	logger.DatabaseCall("SELECT", "residence_photos", "residence_id", residenceID)
	query := `SELECT id, residence_id, filename, created_on FROM residence_photos WHERE residence_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, residenceID)
	if err != nil {
		return nil, mapError(err, "photo not found")
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		var createdOn time.Time
		if err := rows.Scan(&p.ID, &p.ResidenceID, &p.Filename, &createdOn); err != nil {
			return nil, mapError(err, "photo not found")
		}
		p.CreatedOn = createdOn.Format(timestampLayout)
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *photoRepository) Delete(ctx context.Context, id, residenceID int64) (string, error) {
	logger.DatabaseCall("DELETE", "residence_photos", "id", id, "residence_id", residenceID)
	var filename string
	query := `DELETE FROM residence_photos WHERE id = $1 AND residence_id = $2 RETURNING filename`
	if err := r.db.QueryRowContext(ctx, query, id, residenceID).Scan(&filename); err != nil {
		return "", mapError(err, "photo not found")
	}
	return filename, nil
}

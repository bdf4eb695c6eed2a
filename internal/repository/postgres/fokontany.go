package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

type fokontanyRepository struct {
	db *sql.DB
}

func NewFokontanyRepository(db *sql.DB) repository.FokontanyRepository {
	return &fokontanyRepository{db: db}
}

const fokontanyColumns = `id, code, name, commune, district, region, geometry_type, coordinates, centroid_lat, centroid_lng, kind, source`

func scanFokontany(row interface{ Scan(...any) error }) (*domain.Fokontany, error) {
	f := &domain.Fokontany{}
	var coordinates []byte
	var centroidLat, centroidLng sql.NullFloat64
	err := row.Scan(&f.ID, &f.Code, &f.Name, &f.Commune, &f.District, &f.Region,
		&f.GeometryType, &coordinates, &centroidLat, &centroidLng, &f.Kind, &f.Source)
	if err != nil {
		return nil, err
	}
	if len(coordinates) > 0 {
		if err := json.Unmarshal(coordinates, &f.Coordinates); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "corrupted fokontany geometry", err)
		}
	}
	if centroidLat.Valid {
		f.CentroidLat = &centroidLat.Float64
	}
	if centroidLng.Valid {
		f.CentroidLng = &centroidLng.Float64
	}
	return f, nil
}

func (r *fokontanyRepository) GetByID(ctx context.Context, id int64) (*domain.Fokontany, error) {
	logger.DatabaseCall("SELECT", "fokontany", "id", id)
	query := `SELECT ` + fokontanyColumns + ` FROM fokontany WHERE id = $1`
	f, err := scanFokontany(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "fokontany not found")
	}
	return f, nil
}

func (r *fokontanyRepository) List(ctx context.Context) ([]domain.Fokontany, error) {
	logger.DatabaseCall("SELECT", "fokontany")
	query := `SELECT ` + fokontanyColumns + ` FROM fokontany ORDER BY region, district, commune, name`
	return r.queryMany(ctx, query)
}

func (r *fokontanyRepository) ListByRegion(ctx context.Context, region string) ([]domain.Fokontany, error) {
	logger.DatabaseCall("SELECT", "fokontany", "region", region)
	query := `SELECT ` + fokontanyColumns + ` FROM fokontany WHERE LOWER(region) = LOWER($1) ORDER BY district, commune, name`
	return r.queryMany(ctx, query, region)
}

func (r *fokontanyRepository) Search(ctx context.Context, term string, limit int) ([]domain.Fokontany, error) {
	logger.DatabaseCall("SELECT", "fokontany", "term", term)
	query := `SELECT ` + fokontanyColumns + ` FROM fokontany
	          WHERE name ILIKE $1 OR commune ILIKE $1 OR code ILIKE $1
	          ORDER BY name LIMIT $2`
	return r.queryMany(ctx, query, "%"+term+"%", limit)
}

func (r *fokontanyRepository) NearestTo(ctx context.Context, lat, lng float64) (*domain.Fokontany, error) {
	logger.DatabaseCall("SELECT", "fokontany", "lat", lat, "lng", lng)
	// Squared euclidean distance on centroids is enough at municipal scale;
	// rows without a centroid never match.
	query := `SELECT ` + fokontanyColumns + ` FROM fokontany
	          WHERE centroid_lat IS NOT NULL AND centroid_lng IS NOT NULL
	          ORDER BY (centroid_lat - $1) * (centroid_lat - $1) + (centroid_lng - $2) * (centroid_lng - $2)
	          LIMIT 1`
	f, err := scanFokontany(r.db.QueryRowContext(ctx, query, lat, lng))
	if err != nil {
		return nil, mapError(err, "no fokontany with known location")
	}
	return f, nil
}

func (r *fokontanyRepository) Upsert(ctx context.Context, f *domain.Fokontany) (bool, error) {
	logger.DatabaseCall("INSERT", "fokontany", "code", f.Code)
	var coordinates any
	if f.Coordinates != nil {
		raw, err := json.Marshal(f.Coordinates)
		if err != nil {
			return false, apperr.Wrap(apperr.KindInternal, "encode fokontany geometry", err)
		}
		coordinates = raw
	}
	query := `INSERT INTO fokontany (code, name, commune, district, region, geometry_type, coordinates, centroid_lat, centroid_lng, kind, source)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (code) DO UPDATE SET
	            name = EXCLUDED.name, commune = EXCLUDED.commune, district = EXCLUDED.district,
	            region = EXCLUDED.region, geometry_type = EXCLUDED.geometry_type,
	            coordinates = EXCLUDED.coordinates, centroid_lat = EXCLUDED.centroid_lat,
	            centroid_lng = EXCLUDED.centroid_lng, kind = EXCLUDED.kind, source = EXCLUDED.source
	          RETURNING id, (xmax = 0)`
	var created bool
	err := r.db.QueryRowContext(ctx, query, f.Code, f.Name, f.Commune, f.District, f.Region,
		f.GeometryType, coordinates, f.CentroidLat, f.CentroidLng, f.Kind, f.Source).Scan(&f.ID, &created)
	if err != nil {
		return false, mapError(err, "fokontany not found")
	}
	return created, nil
}

func (r *fokontanyRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Fokontany, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "fokontany not found")
	}
	defer rows.Close()

	var result []domain.Fokontany
	for rows.Next() {
		f, err := scanFokontany(rows)
		if err != nil {
			return nil, mapError(err, "fokontany not found")
		}
		result = append(result, *f)
	}
	return result, rows.Err()
}

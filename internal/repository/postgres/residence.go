package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

type residenceRepository struct {
	db *sql.DB
}

func NewResidenceRepository(db *sql.DB) repository.ResidenceRepository {
	return &residenceRepository{db: db}
}

// materializeDraft inserts the residence row, its person rows and their
// relation rows inside the caller's transaction. Shared by the direct
// privileged path and the approval engine so both produce identical rows.
func materializeDraft(ctx context.Context, tx *sql.Tx, draft *domain.ResidenceDraft, createdBy int64) (*domain.Residence, error) {
	res := &domain.Residence{
		Lot:          draft.Lot,
		Neighborhood: draft.Neighborhood,
		City:         draft.City,
		Fokontany:    draft.Fokontany,
		Lat:          draft.Lat,
		Lng:          draft.Lng,
		CreatedBy:    createdBy,
		IsActive:     true,
	}
	var createdOn time.Time
	err := tx.QueryRowContext(ctx,
		`INSERT INTO residences (lot, neighborhood, city, fokontany, lat, lng, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on`,
		res.Lot, res.Neighborhood, res.City, res.Fokontany, res.Lat, res.Lng, res.CreatedBy).
		Scan(&res.ID, &createdOn)
	if err != nil {
		return nil, err
	}
	res.CreatedOn = createdOn.Format(timestampLayout)

	for i := range draft.Residents {
		pd := &draft.Residents[i]
		gender := pd.Gender
		if gender == "" {
			gender = domain.GenderOther
		}
		person := domain.Person{
			ResidenceID: res.ID,
			FullName:    pd.FullName,
			BirthDate:   pd.BirthDate,
			NationalID:  pd.NationalID,
			Gender:      gender,
			Phone:       pd.Phone,
		}
		var personCreatedOn time.Time
		err := tx.QueryRowContext(ctx,
			`INSERT INTO persons (residence_id, full_name, birth_date, national_id, gender, phone)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_on`,
			person.ResidenceID, person.FullName, person.BirthDate, person.NationalID, person.Gender, person.Phone).
			Scan(&person.ID, &personCreatedOn)
		if err != nil {
			return nil, err
		}
		person.CreatedOn = personCreatedOn.Format(timestampLayout)

		if pd.HasRelation() {
			rel := domain.PersonRelation{
				PersonID:        person.ID,
				ParentPersonID:  pd.ParentPersonID,
				RelationLabel:   pd.RelationLabel,
				IsOwnerOccupant: pd.IsOwnerOccupant,
				FamilyGroupID:   pd.FamilyGroupID,
			}
			err := tx.QueryRowContext(ctx,
				`INSERT INTO person_relations (person_id, parent_person_id, relation_label, is_owner_occupant, family_group_id)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				rel.PersonID, rel.ParentPersonID, rel.RelationLabel, rel.IsOwnerOccupant, rel.FamilyGroupID).
				Scan(&rel.ID)
			if err != nil {
				return nil, err
			}
			person.Relation = &rel
		}
		res.Persons = append(res.Persons, person)
	}
	return res, nil
}

func (r *residenceRepository) Materialize(ctx context.Context, draft *domain.ResidenceDraft, createdBy int64) (*domain.Residence, error) {
	logger.DatabaseCall("INSERT", "residences", "created_by", createdBy, "residents", len(draft.Residents))
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	defer tx.Rollback()

	res, err := materializeDraft(ctx, tx, draft, createdBy)
	if err != nil {
		return nil, mapError(err, "residence not found")
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "residence not found")
	}
	return res, nil
}

func (r *residenceRepository) GetByID(ctx context.Context, id int64) (*domain.Residence, error) {
	logger.DatabaseCall("SELECT", "residences", "id", id)
	res := &domain.Residence{}
	var createdBy sql.NullInt64
	var createdOn time.Time
	query := `SELECT id, lot, neighborhood, city, fokontany, lat, lng, created_by, is_active, created_on
	          FROM residences WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&res.ID, &res.Lot, &res.Neighborhood, &res.City,
		&res.Fokontany, &res.Lat, &res.Lng, &createdBy, &res.IsActive, &createdOn)
	if err != nil {
		return nil, mapError(err, "residence not found")
	}
	if createdBy.Valid {
		res.CreatedBy = createdBy.Int64
	}
	res.CreatedOn = createdOn.Format(timestampLayout)
	return res, nil
}

func (r *residenceRepository) List(ctx context.Context, fokontany string) ([]domain.Residence, error) {
	logger.DatabaseCall("SELECT", "residences", "fokontany", fokontany)
	query := `SELECT r.id, r.lot, r.neighborhood, r.city, r.fokontany, r.lat, r.lng, r.created_by, r.is_active, r.created_on,
	                 COALESCE(ARRAY_AGG(p.filename ORDER BY p.id) FILTER (WHERE p.id IS NOT NULL), '{}')
	          FROM residences r
	          LEFT JOIN residence_photos p ON p.residence_id = r.id
	          WHERE r.is_active = TRUE`
	args := []any{}
	if fokontany != "" {
		query += ` AND LOWER(r.fokontany) = LOWER($1)`
		args = append(args, fokontany)
	}
	query += ` GROUP BY r.id ORDER BY r.created_on DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "residence not found")
	}
	defer rows.Close()

	var result []domain.Residence
	for rows.Next() {
		var res domain.Residence
		var createdBy sql.NullInt64
		var createdOn time.Time
		var filenames pq.StringArray
		if err := rows.Scan(&res.ID, &res.Lot, &res.Neighborhood, &res.City, &res.Fokontany,
			&res.Lat, &res.Lng, &createdBy, &res.IsActive, &createdOn, &filenames); err != nil {
			return nil, mapError(err, "residence not found")
		}
		if createdBy.Valid {
			res.CreatedBy = createdBy.Int64
		}
		res.CreatedOn = createdOn.Format(timestampLayout)
		res.PhotoURLs = []string(filenames)
		result = append(result, res)
	}
	return result, rows.Err()
}

func (r *residenceRepository) Update(ctx context.Context, id int64, lot, neighborhood, city string) (*domain.Residence, error) {
	logger.DatabaseCall("UPDATE", "residences", "id", id)
	res := &domain.Residence{}
	var createdBy sql.NullInt64
	var createdOn time.Time
	query := `UPDATE residences SET lot=$1, neighborhood=$2, city=$3 WHERE id=$4
	          RETURNING id, lot, neighborhood, city, fokontany, lat, lng, created_by, is_active, created_on`
	err := r.db.QueryRowContext(ctx, query, lot, neighborhood, city, id).Scan(&res.ID, &res.Lot,
		&res.Neighborhood, &res.City, &res.Fokontany, &res.Lat, &res.Lng, &createdBy, &res.IsActive, &createdOn)
	if err != nil {
		return nil, mapError(err, "residence not found")
	}
	if createdBy.Valid {
		res.CreatedBy = createdBy.Int64
	}
	res.CreatedOn = createdOn.Format(timestampLayout)
	return res, nil
}

func (r *residenceRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.Residence, error) {
	logger.DatabaseCall("UPDATE", "residences", "id", id, "is_active", active)
	res := &domain.Residence{}
	var createdBy sql.NullInt64
	var createdOn time.Time
	query := `UPDATE residences SET is_active=$1 WHERE id=$2
	          RETURNING id, lot, neighborhood, city, fokontany, lat, lng, created_by, is_active, created_on`
	err := r.db.QueryRowContext(ctx, query, active, id).Scan(&res.ID, &res.Lot, &res.Neighborhood,
		&res.City, &res.Fokontany, &res.Lat, &res.Lng, &createdBy, &res.IsActive, &createdOn)
	if err != nil {
		return nil, mapError(err, "residence not found")
	}
	if createdBy.Valid {
		res.CreatedBy = createdBy.Int64
	}
	res.CreatedOn = createdOn.Format(timestampLayout)
	return res, nil
}

func (r *residenceRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	logger.DatabaseCall("DELETE", "residences", "id", id)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT filename FROM residence_photos WHERE residence_id = $1`, id)
	if err != nil {
		return nil, mapError(err, "residence not found")
	}
	var filenames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, mapError(err, "residence not found")
		}
		filenames = append(filenames, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "residence not found")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM residences WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "residence not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("residence not found")
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "residence not found")
	}
	return filenames, nil
}

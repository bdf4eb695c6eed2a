package postgres

import (
	"context"
	"database/sql"
	"time"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

type personRepository struct {
	db *sql.DB
}

func NewPersonRepository(db *sql.DB) repository.PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) Create(ctx context.Context, person *domain.Person, relation *domain.PersonRelation) error {
	logger.DatabaseCall("INSERT", "persons", "residence_id", person.ResidenceID)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unavailable(err)
	}
	defer tx.Rollback()

	if person.Gender == "" {
		person.Gender = domain.GenderOther
	}
	var createdOn time.Time
	err = tx.QueryRowContext(ctx,
		`INSERT INTO persons (residence_id, full_name, birth_date, national_id, gender, phone)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_on`,
		person.ResidenceID, person.FullName, person.BirthDate, person.NationalID, person.Gender, person.Phone).
		Scan(&person.ID, &createdOn)
	if err != nil {
		return mapError(err, "person not found")
	}
	person.CreatedOn = createdOn.Format(timestampLayout)

	if relation != nil {
		relation.PersonID = person.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO person_relations (person_id, parent_person_id, relation_label, is_owner_occupant, family_group_id)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			relation.PersonID, relation.ParentPersonID, relation.RelationLabel, relation.IsOwnerOccupant, relation.FamilyGroupID).
			Scan(&relation.ID)
		if err != nil {
			return mapError(err, "person not found")
		}
		person.Relation = relation
	}
	if err := tx.Commit(); err != nil {
		return mapError(err, "person not found")
	}
	return nil
}

const personColumns = `p.id, p.residence_id, p.full_name, p.birth_date, COALESCE(p.national_id, ''), p.gender, COALESCE(p.phone, ''), p.created_on,
	       rel.id, rel.parent_person_id, rel.relation_label, rel.is_owner_occupant, rel.family_group_id`

func scanPerson(row interface{ Scan(...any) error }) (*domain.Person, error) {
	p := &domain.Person{}
	var birthDate sql.NullTime
	var createdOn time.Time
	var relID, relParent, relFamily sql.NullInt64
	var relLabel sql.NullString
	var relOwner sql.NullBool
	err := row.Scan(&p.ID, &p.ResidenceID, &p.FullName, &birthDate, &p.NationalID, &p.Gender, &p.Phone, &createdOn,
		&relID, &relParent, &relLabel, &relOwner, &relFamily)
	if err != nil {
		return nil, err
	}
	if birthDate.Valid {
		d := birthDate.Time.Format("2006-01-02")
		p.BirthDate = &d
	}
	p.CreatedOn = createdOn.Format(timestampLayout)
	if relID.Valid {
		rel := &domain.PersonRelation{
			ID:              relID.Int64,
			PersonID:        p.ID,
			RelationLabel:   relLabel.String,
			IsOwnerOccupant: relOwner.Bool,
		}
		if relParent.Valid {
			rel.ParentPersonID = &relParent.Int64
		}
		if relFamily.Valid {
			rel.FamilyGroupID = &relFamily.Int64
		}
		p.Relation = rel
	}
	return p, nil
}

func (r *personRepository) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	logger.DatabaseCall("SELECT", "persons", "id", id)
	query := `SELECT ` + personColumns + `
	          FROM persons p LEFT JOIN person_relations rel ON rel.person_id = p.id
	          WHERE p.id = $1`
	p, err := scanPerson(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "person not found")
	}
	return p, nil
}

func (r *personRepository) ListByResidence(ctx context.Context, residenceID int64) ([]domain.Person, error) {
	logger.DatabaseCall("SELECT", "persons", "residence_id", residenceID)
	query := `SELECT ` + personColumns + `
	          FROM persons p LEFT JOIN person_relations rel ON rel.person_id = p.id
	          WHERE p.residence_id = $1 ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, query, residenceID)
	if err != nil {
		return nil, mapError(err, "person not found")
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, mapError(err, "person not found")
		}
		persons = append(persons, *p)
	}
	return persons, rows.Err()
}

func (r *personRepository) Update(ctx context.Context, person *domain.Person) error {
	logger.DatabaseCall("UPDATE", "persons", "id", person.ID)
	query := `UPDATE persons SET full_name=$1, birth_date=$2, national_id=$3, gender=$4, phone=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, person.FullName, person.BirthDate, person.NationalID,
		person.Gender, person.Phone, person.ID)
	if err != nil {
		return mapError(err, "person not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("person not found")
	}
	return nil
}

func (r *personRepository) Delete(ctx context.Context, id int64) error {
	logger.DatabaseCall("DELETE", "persons", "id", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "person not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("person not found")
	}
	return nil
}

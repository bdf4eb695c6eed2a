package postgres

import (
	"context"
	"database/sql"
	"time"

	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

const timestampLayout = time.RFC3339

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, immatricule, full_name, username, password_hash, role, fokontany_id, is_active, COALESCE(photo, ''), must_change_password, created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var fokontanyID sql.NullInt64
	var createdOn, updatedOn time.Time
	err := row.Scan(&u.ID, &u.Immatricule, &u.FullName, &u.Username, &u.PasswordHash,
		&u.Role, &fokontanyID, &u.IsActive, &u.Photo, &u.MustChangePassword, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	if fokontanyID.Valid {
		u.FokontanyID = &fokontanyID.Int64
	}
	u.CreatedOn = createdOn.Format(timestampLayout)
	u.UpdatedOn = updatedOn.Format(timestampLayout)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	logger.DatabaseCall("INSERT", "users", "username", u.Username)
	query := `INSERT INTO users (immatricule, full_name, username, password_hash, role, fokontany_id, is_active, photo, must_change_password)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_on, updated_on`
	var createdOn, updatedOn time.Time
	err := r.db.QueryRowContext(ctx, query, u.Immatricule, u.FullName, u.Username, u.PasswordHash,
		u.Role, u.FokontanyID, u.IsActive, u.Photo, u.MustChangePassword).Scan(&u.ID, &createdOn, &updatedOn)
	if err != nil {
		return mapError(err, "user not found")
	}
	u.CreatedOn = createdOn.Format(timestampLayout)
	u.UpdatedOn = updatedOn.Format(timestampLayout)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	logger.DatabaseCall("SELECT", "users", "id", id)
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "user not found")
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	logger.DatabaseCall("SELECT", "users", "username", username)
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, mapError(err, "user not found")
	}
	return u, nil
}

func (r *userRepository) GetByImmatricule(ctx context.Context, immatricule string) (*domain.User, error) {
	logger.DatabaseCall("SELECT", "users", "immatricule", immatricule)
	query := `SELECT ` + userColumns + ` FROM users WHERE immatricule = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, immatricule))
	if err != nil {
		return nil, mapError(err, "user not found")
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	logger.DatabaseCall("SELECT", "users LEFT JOIN fokontany")
	query := `SELECT u.id, u.immatricule, u.full_name, u.username, u.password_hash, u.role, u.fokontany_id,
	                 u.is_active, COALESCE(u.photo, ''), u.must_change_password, u.created_on, u.updated_on,
	                 f.id, f.code, f.name, f.commune, f.district, f.region
	          FROM users u
	          LEFT JOIN fokontany f ON f.id = u.fokontany_id
	          ORDER BY u.full_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "user not found")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var fokontanyID, fkID sql.NullInt64
		var fkCode, fkName, fkCommune, fkDistrict, fkRegion sql.NullString
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&u.ID, &u.Immatricule, &u.FullName, &u.Username, &u.PasswordHash, &u.Role,
			&fokontanyID, &u.IsActive, &u.Photo, &u.MustChangePassword, &createdOn, &updatedOn,
			&fkID, &fkCode, &fkName, &fkCommune, &fkDistrict, &fkRegion); err != nil {
			return nil, mapError(err, "user not found")
		}
		if fokontanyID.Valid {
			u.FokontanyID = &fokontanyID.Int64
		}
		if fkID.Valid {
			u.Fokontany = &domain.Fokontany{
				ID:       fkID.Int64,
				Code:     fkCode.String,
				Name:     fkName.String,
				Commune:  fkCommune.String,
				District: fkDistrict.String,
				Region:   fkRegion.String,
			}
		}
		u.CreatedOn = createdOn.Format(timestampLayout)
		u.UpdatedOn = updatedOn.Format(timestampLayout)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	logger.DatabaseCall("UPDATE", "users", "id", u.ID)
	query := `UPDATE users SET immatricule=$1, full_name=$2, username=$3, role=$4, fokontany_id=$5, is_active=$6, updated_on=NOW()
	          WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, u.Immatricule, u.FullName, u.Username, u.Role, u.FokontanyID, u.IsActive, u.ID)
	if err != nil {
		return mapError(err, "user not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapError(sql.ErrNoRows, "user not found")
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, mustChange bool) error {
	logger.DatabaseCall("UPDATE", "users", "id", id)
	query := `UPDATE users SET password_hash=$1, must_change_password=$2, updated_on=NOW() WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, passwordHash, mustChange, id)
	if err != nil {
		return mapError(err, "user not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapError(sql.ErrNoRows, "user not found")
	}
	return nil
}

func (r *userRepository) UpdatePhoto(ctx context.Context, id int64, filename string) (string, error) {
	logger.DatabaseCall("UPDATE", "users", "id", id)
	var previous string
	query := `UPDATE users u SET photo=$1, updated_on=NOW()
	          FROM (SELECT COALESCE(photo, '') AS photo FROM users WHERE id=$2) old
	          WHERE u.id=$2 RETURNING old.photo`
	if err := r.db.QueryRowContext(ctx, query, filename, id).Scan(&previous); err != nil {
		return "", mapError(err, "user not found")
	}
	return previous, nil
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	logger.DatabaseCall("UPDATE", "users", "id", id)
	query := `UPDATE users SET is_active=$1, updated_on=NOW() WHERE id=$2`
	res, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return mapError(err, "user not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapError(sql.ErrNoRows, "user not found")
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	logger.DatabaseCall("DELETE", "users", "id", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "user not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapError(sql.ErrNoRows, "user not found")
	}
	return nil
}

func (r *userRepository) ListActiveByRole(ctx context.Context, role domain.Role, fokontanyID *int64) ([]domain.User, error) {
	logger.DatabaseCall("SELECT", "users", "role", role)
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND is_active = TRUE`
	args := []any{role}
	if fokontanyID != nil {
		query += ` AND fokontany_id = $2`
		args = append(args, *fokontanyID)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "user not found")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "user not found")
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

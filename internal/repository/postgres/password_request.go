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

type passwordRequestRepository struct {
	db *sql.DB
}

func NewPasswordRequestRepository(db *sql.DB) repository.PasswordRequestRepository {
	return &passwordRequestRepository{db: db}
}

func (r *passwordRequestRepository) CreateResetRequest(ctx context.Context, req *domain.PasswordResetRequest) error {
	logger.DatabaseCall("INSERT", "password_reset_requests", "user_id", req.UserID)
	req.Status = domain.SubmissionPending
	query := `INSERT INTO password_reset_requests (user_id, immatricule, status) VALUES ($1, $2, $3)
	          RETURNING id, created_on`
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, req.UserID, req.Immatricule, req.Status).Scan(&req.ID, &createdOn); err != nil {
		return mapError(err, "reset request not found")
	}
	req.CreatedOn = createdOn.Format(timestampLayout)
	return nil
}

func (r *passwordRequestRepository) ListPendingResetRequests(ctx context.Context) ([]domain.PasswordResetRequest, error) {
	logger.DatabaseCall("SELECT", "password_reset_requests", "status", "pending")
	query := `SELECT pr.id, pr.user_id, pr.immatricule, pr.status, pr.created_on,
	                 u.full_name, u.username, u.role
	          FROM password_reset_requests pr
	          JOIN users u ON u.id = pr.user_id
	          WHERE pr.status = 'pending'
	          ORDER BY pr.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "reset request not found")
	}
	defer rows.Close()

	var requests []domain.PasswordResetRequest
	for rows.Next() {
		var req domain.PasswordResetRequest
		var createdOn time.Time
		if err := rows.Scan(&req.ID, &req.UserID, &req.Immatricule, &req.Status, &createdOn,
			&req.UserFullName, &req.UserUsername, &req.UserRole); err != nil {
			return nil, mapError(err, "reset request not found")
		}
		req.CreatedOn = createdOn.Format(timestampLayout)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *passwordRequestRepository) ApproveResetRequest(ctx context.Context, requestID int64, passwordHash string) (*domain.PasswordResetRequest, error) {
	logger.DatabaseCall("UPDATE", "password_reset_requests", "id", requestID)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	defer tx.Rollback()

	req := &domain.PasswordResetRequest{}
	var createdOn time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, immatricule, status, created_on FROM password_reset_requests WHERE id = $1 FOR UPDATE`,
		requestID).Scan(&req.ID, &req.UserID, &req.Immatricule, &req.Status, &createdOn)
	if err != nil {
		return nil, mapError(err, "reset request not found")
	}
	req.CreatedOn = createdOn.Format(timestampLayout)
	if req.Status != domain.SubmissionPending {
		return nil, apperr.Conflict("reset request already handled")
	}

	// The user gets the generated temporary password and must replace it at
	// next login.
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash=$1, must_change_password=TRUE, updated_on=NOW() WHERE id=$2`,
		passwordHash, req.UserID)
	if err != nil {
		return nil, mapError(err, "user not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("user not found")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE password_reset_requests SET status='approved' WHERE id=$1`, requestID); err != nil {
		return nil, mapError(err, "reset request not found")
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "reset request not found")
	}
	req.Status = domain.SubmissionApproved
	return req, nil
}

func (r *passwordRequestRepository) CreateChangeRequest(ctx context.Context, req *domain.PasswordChangeRequest) error {
	logger.DatabaseCall("INSERT", "password_change_requests", "user_id", req.UserID)
	req.Status = domain.SubmissionPending
	query := `INSERT INTO password_change_requests (user_id, new_password_hash, status) VALUES ($1, $2, $3)
	          RETURNING id, created_on`
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, req.UserID, req.NewPasswordHash, req.Status).Scan(&req.ID, &createdOn); err != nil {
		return mapError(err, "change request not found")
	}
	req.CreatedOn = createdOn.Format(timestampLayout)
	return nil
}

func (r *passwordRequestRepository) ListPendingChangeRequests(ctx context.Context) ([]domain.PasswordChangeRequest, error) {
	logger.DatabaseCall("SELECT", "password_change_requests", "status", "pending")
	query := `SELECT pr.id, pr.user_id, pr.status, pr.created_on,
	                 u.full_name, u.username, u.immatricule, u.role
	          FROM password_change_requests pr
	          JOIN users u ON u.id = pr.user_id
	          WHERE pr.status = 'pending'
	          ORDER BY pr.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "change request not found")
	}
	defer rows.Close()

	var requests []domain.PasswordChangeRequest
	for rows.Next() {
		var req domain.PasswordChangeRequest
		var createdOn time.Time
		if err := rows.Scan(&req.ID, &req.UserID, &req.Status, &createdOn,
			&req.UserFullName, &req.UserUsername, &req.UserImmatricule, &req.UserRole); err != nil {
			return nil, mapError(err, "change request not found")
		}
		req.CreatedOn = createdOn.Format(timestampLayout)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *passwordRequestRepository) ApproveChangeRequest(ctx context.Context, requestID int64) (*domain.PasswordChangeRequest, error) {
	logger.DatabaseCall("UPDATE", "password_change_requests", "id", requestID)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	defer tx.Rollback()

	req := &domain.PasswordChangeRequest{}
	var createdOn time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, new_password_hash, status, created_on FROM password_change_requests WHERE id = $1 FOR UPDATE`,
		requestID).Scan(&req.ID, &req.UserID, &req.NewPasswordHash, &req.Status, &createdOn)
	if err != nil {
		return nil, mapError(err, "change request not found")
	}
	req.CreatedOn = createdOn.Format(timestampLayout)
	if req.Status != domain.SubmissionPending {
		return nil, apperr.Conflict("change request already handled")
	}

	// The hash was computed at request time from the user's chosen password;
	// approval just activates it.
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash=$1, must_change_password=FALSE, updated_on=NOW() WHERE id=$2`,
		req.NewPasswordHash, req.UserID)
	if err != nil {
		return nil, mapError(err, "user not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("user not found")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE password_change_requests SET status='approved' WHERE id=$1`, requestID); err != nil {
		return nil, mapError(err, "change request not found")
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "change request not found")
	}
	req.Status = domain.SubmissionApproved
	return req, nil
}

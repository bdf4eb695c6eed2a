package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

type pendingResidenceRepository struct {
	db *sql.DB
}

func NewPendingResidenceRepository(db *sql.DB) repository.PendingResidenceRepository {
	return &pendingResidenceRepository{db: db}
}

func (r *pendingResidenceRepository) Submit(ctx context.Context, pending *domain.PendingResidence, notifications []domain.Notification) error {
	logger.DatabaseCall("INSERT", "pending_residences", "submitted_by", pending.SubmittedBy, "recipients", len(notifications))
	draftJSON, err := json.Marshal(pending.Draft)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode draft", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unavailable(err)
	}
	defer tx.Rollback()

	pending.Status = domain.SubmissionPending
	var createdOn, updatedOn time.Time
	err = tx.QueryRowContext(ctx,
		`INSERT INTO pending_residences (draft, submitted_by, status) VALUES ($1, $2, $3)
		 RETURNING id, created_on, updated_on`,
		draftJSON, pending.SubmittedBy, pending.Status).Scan(&pending.ID, &createdOn, &updatedOn)
	if err != nil {
		return mapError(err, "submission not found")
	}
	pending.CreatedOn = createdOn.Format(timestampLayout)
	pending.UpdatedOn = updatedOn.Format(timestampLayout)

	// The reviewer notifications commit atomically with the submission:
	// either the draft is queued and every reviewer is told, or nothing
	// happened.
	for i := range notifications {
		notifications[i].RelatedEntityID = &pending.ID
		if err := insertNotification(ctx, tx, &notifications[i]); err != nil {
			return mapError(err, "submission not found")
		}
	}
	if err := tx.Commit(); err != nil {
		return mapError(err, "submission not found")
	}
	return nil
}

const pendingColumns = `pr.id, pr.draft, pr.submitted_by, pr.status, pr.reviewed_by, pr.review_notes, pr.created_on, pr.updated_on,
	       COALESCE(u.full_name, ''), COALESCE(u.immatricule, ''), u.fokontany_id, COALESCE(f.name, '')`

func scanPendingResidence(row interface{ Scan(...any) error }) (*domain.PendingResidence, error) {
	p := &domain.PendingResidence{}
	var draftJSON []byte
	var reviewedBy, submitterFokontanyID sql.NullInt64
	var createdOn, updatedOn time.Time
	err := row.Scan(&p.ID, &draftJSON, &p.SubmittedBy, &p.Status, &reviewedBy, &p.ReviewNotes,
		&createdOn, &updatedOn, &p.SubmitterName, &p.SubmitterImmatricule, &submitterFokontanyID, &p.FokontanyName)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(draftJSON, &p.Draft); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "corrupted draft payload", err)
	}
	if reviewedBy.Valid {
		p.ReviewedBy = &reviewedBy.Int64
	}
	if submitterFokontanyID.Valid {
		p.SubmitterFokontanyID = &submitterFokontanyID.Int64
	}
	p.CreatedOn = createdOn.Format(timestampLayout)
	p.UpdatedOn = updatedOn.Format(timestampLayout)
	return p, nil
}

func (r *pendingResidenceRepository) GetByID(ctx context.Context, id int64) (*domain.PendingResidence, error) {
	logger.DatabaseCall("SELECT", "pending_residences", "id", id)
	query := `SELECT ` + pendingColumns + `
	          FROM pending_residences pr
	          JOIN users u ON u.id = pr.submitted_by
	          LEFT JOIN fokontany f ON f.id = u.fokontany_id
	          WHERE pr.id = $1`
	p, err := scanPendingResidence(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "submission not found")
	}
	return p, nil
}

func (r *pendingResidenceRepository) ListPending(ctx context.Context, fokontanyID *int64) ([]domain.PendingResidence, error) {
	logger.DatabaseCall("SELECT", "pending_residences", "fokontany_id", fokontanyID)
	query := `SELECT ` + pendingColumns + `
	          FROM pending_residences pr
	          JOIN users u ON u.id = pr.submitted_by
	          LEFT JOIN fokontany f ON f.id = u.fokontany_id
	          WHERE pr.status = 'pending'`
	args := []any{}
	if fokontanyID != nil {
		query += ` AND u.fokontany_id = $1`
		args = append(args, *fokontanyID)
	}
	query += ` ORDER BY pr.created_on DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "submission not found")
	}
	defer rows.Close()

	var pending []domain.PendingResidence
	for rows.Next() {
		p, err := scanPendingResidence(rows)
		if err != nil {
			return nil, mapError(err, "submission not found")
		}
		pending = append(pending, *p)
	}
	return pending, rows.Err()
}

// lockPending loads the row FOR UPDATE so two reviewers racing on the same
// submission serialize; the loser then sees a terminal status and gets a
// conflict instead of a double transition.
func lockPending(ctx context.Context, tx *sql.Tx, id int64) (*domain.PendingResidence, error) {
	p := &domain.PendingResidence{}
	var draftJSON []byte
	var reviewedBy sql.NullInt64
	var createdOn, updatedOn time.Time
	err := tx.QueryRowContext(ctx,
		`SELECT id, draft, submitted_by, status, reviewed_by, review_notes, created_on, updated_on
		 FROM pending_residences WHERE id = $1 FOR UPDATE`, id).
		Scan(&p.ID, &draftJSON, &p.SubmittedBy, &p.Status, &reviewedBy, &p.ReviewNotes, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(draftJSON, &p.Draft); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "corrupted draft payload", err)
	}
	if reviewedBy.Valid {
		p.ReviewedBy = &reviewedBy.Int64
	}
	p.CreatedOn = createdOn.Format(timestampLayout)
	p.UpdatedOn = updatedOn.Format(timestampLayout)
	return p, nil
}

func (r *pendingResidenceRepository) Approve(ctx context.Context, id, reviewerID int64, notes string) (*domain.Residence, *domain.PendingResidence, error) {
	logger.DatabaseCall("UPDATE", "pending_residences", "id", id, "reviewer", reviewerID)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, apperr.Unavailable(err)
	}
	defer tx.Rollback()

	pending, err := lockPending(ctx, tx, id)
	if err != nil {
		return nil, nil, mapError(err, "submission not found")
	}
	if pending.Status != domain.SubmissionPending {
		return nil, nil, apperr.Conflict("submission already reviewed")
	}

	residence, err := materializeDraft(ctx, tx, &pending.Draft, pending.SubmittedBy)
	if err != nil {
		return nil, nil, mapError(err, "submission not found")
	}

	var updatedOn time.Time
	err = tx.QueryRowContext(ctx,
		`UPDATE pending_residences SET status='approved', reviewed_by=$1, review_notes=$2, updated_on=NOW()
		 WHERE id=$3 RETURNING updated_on`, reviewerID, notes, id).Scan(&updatedOn)
	if err != nil {
		return nil, nil, mapError(err, "submission not found")
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, mapError(err, "submission not found")
	}

	pending.Status = domain.SubmissionApproved
	pending.ReviewedBy = &reviewerID
	pending.ReviewNotes = notes
	pending.UpdatedOn = updatedOn.Format(timestampLayout)
	return residence, pending, nil
}

func (r *pendingResidenceRepository) Reject(ctx context.Context, id, reviewerID int64, notes string) (*domain.PendingResidence, error) {
	logger.DatabaseCall("UPDATE", "pending_residences", "id", id, "reviewer", reviewerID)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	defer tx.Rollback()

	pending, err := lockPending(ctx, tx, id)
	if err != nil {
		return nil, mapError(err, "submission not found")
	}
	if pending.Status != domain.SubmissionPending {
		return nil, apperr.Conflict("submission already reviewed")
	}

	var updatedOn time.Time
	err = tx.QueryRowContext(ctx,
		`UPDATE pending_residences SET status='rejected', reviewed_by=$1, review_notes=$2, updated_on=NOW()
		 WHERE id=$3 RETURNING updated_on`, reviewerID, notes, id).Scan(&updatedOn)
	if err != nil {
		return nil, mapError(err, "submission not found")
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "submission not found")
	}

	pending.Status = domain.SubmissionRejected
	pending.ReviewedBy = &reviewerID
	pending.ReviewNotes = notes
	pending.UpdatedOn = updatedOn.Format(timestampLayout)
	return pending, nil
}

func (r *pendingResidenceRepository) StagedFilenames(ctx context.Context) (map[string]struct{}, error) {
	logger.DatabaseCall("SELECT", "pending_residences", "status", "pending")
	// Only drafts still awaiting review pin their staged files; approved
	// drafts had their files relocated and rejected ones are garbage.
	query := `SELECT jsonb_array_elements_text(draft->'photos')
	          FROM pending_residences
	          WHERE status = 'pending' AND draft ? 'photos'`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "submission not found")
	}
	defer rows.Close()

	referenced := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "submission not found")
		}
		referenced[name] = struct{}{}
	}
	return referenced, rows.Err()
}

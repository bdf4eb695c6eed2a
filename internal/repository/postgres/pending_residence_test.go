package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/repository/postgres"
)

func draftJSON(t *testing.T, draft domain.ResidenceDraft) []byte {
	t.Helper()
	raw, err := json.Marshal(draft)
	require.NoError(t, err)
	return raw
}

func TestSubmitInsertsPendingAndNotificationsInOneTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewPendingResidenceRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO pending_residences`).
		WithArgs(sqlmock.AnyArg(), int64(7), string(domain.SubmissionPending)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(int64(12), now, now))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(int64(1), now, now))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(int64(2), now, now))
	mock.ExpectCommit()

	pending := &domain.PendingResidence{
		Draft:       domain.ResidenceDraft{Lot: "A-12", Lat: -18.9, Lng: 47.5},
		SubmittedBy: 7,
	}
	notifications := []domain.Notification{
		{Kind: domain.NotificationResidenceApproval, RecipientID: 3},
		{Kind: domain.NotificationResidenceApproval, RecipientID: 4},
	}
	require.NoError(t, repo.Submit(context.Background(), pending, notifications))
	assert.Equal(t, int64(12), pending.ID)
	assert.Equal(t, domain.SubmissionPending, pending.Status)
	// Both notifications point back at the new submission.
	require.NotNil(t, notifications[0].RelatedEntityID)
	assert.Equal(t, int64(12), *notifications[0].RelatedEntityID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRollsBackWhenNotificationInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewPendingResidenceRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO pending_residences`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(int64(12), now, now))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	pending := &domain.PendingResidence{Draft: domain.ResidenceDraft{Lot: "A-12"}, SubmittedBy: 7}
	err = repo.Submit(context.Background(), pending, []domain.Notification{{RecipientID: 3}})
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveMaterializesDraftInsideTheLockTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewPendingResidenceRepository(db)
	now := time.Now()

	draft := domain.ResidenceDraft{
		Lot: "B-7", Fokontany: "Ambohipo", Lat: -18.9, Lng: 47.5,
		Residents: []domain.PersonDraft{
			{FullName: "Rakoto Jean", Gender: domain.GenderMale, IsOwnerOccupant: true},
			{FullName: "Rasoa Marie", Gender: domain.GenderFemale},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, draft, submitted_by, status, reviewed_by, review_notes, created_on, updated_on\s+FROM pending_residences WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "draft", "submitted_by", "status", "reviewed_by", "review_notes", "created_on", "updated_on"}).
			AddRow(int64(12), draftJSON(t, draft), int64(7), string(domain.SubmissionPending), nil, "", now, now))
	mock.ExpectQuery(`INSERT INTO residences`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(int64(99), now))
	mock.ExpectQuery(`INSERT INTO persons`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(int64(201), now))
	mock.ExpectQuery(`INSERT INTO person_relations`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(301)))
	mock.ExpectQuery(`INSERT INTO persons`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(int64(202), now))
	mock.ExpectQuery(`UPDATE pending_residences SET status='approved'`).
		WithArgs(int64(5), "looks correct", int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_on"}).AddRow(now))
	mock.ExpectCommit()

	residence, pending, err := repo.Approve(context.Background(), 12, 5, "looks correct")
	require.NoError(t, err)
	assert.Equal(t, int64(99), residence.ID)
	assert.Equal(t, int64(7), residence.CreatedBy, "residence is attributed to the submitter, not the reviewer")
	require.Len(t, residence.Persons, 2)
	assert.NotNil(t, residence.Persons[0].Relation)
	assert.True(t, residence.Persons[0].Relation.IsOwnerOccupant)
	assert.Nil(t, residence.Persons[1].Relation)
	assert.Equal(t, domain.SubmissionApproved, pending.Status)
	require.NotNil(t, pending.ReviewedBy)
	assert.Equal(t, int64(5), *pending.ReviewedBy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveAlreadyReviewedIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewPendingResidenceRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "draft", "submitted_by", "status", "reviewed_by", "review_notes", "created_on", "updated_on"}).
			AddRow(int64(12), draftJSON(t, domain.ResidenceDraft{Lot: "B-7"}), int64(7), string(domain.SubmissionApproved), int64(4), "done", now, now))
	mock.ExpectRollback()

	_, _, err = repo.Approve(context.Background(), 12, 5, "again")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveMissingSubmissionIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewPendingResidenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, _, err = repo.Approve(context.Background(), 404, 5, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectCreatesNoRegistryRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewPendingResidenceRepository(db)
	now := time.Now()

	draft := domain.ResidenceDraft{
		Lot:       "C-3",
		Residents: []domain.PersonDraft{{FullName: "Rabe Paul"}},
		Photos:    []string{"staged-1.jpg"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "draft", "submitted_by", "status", "reviewed_by", "review_notes", "created_on", "updated_on"}).
			AddRow(int64(12), draftJSON(t, draft), int64(7), string(domain.SubmissionPending), nil, "", now, now))
	mock.ExpectQuery(`UPDATE pending_residences SET status='rejected'`).
		WithArgs(int64(5), "blurry photos", int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_on"}).AddRow(now))
	mock.ExpectCommit()

	pending, err := repo.Reject(context.Background(), 12, 5, "blurry photos")
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionRejected, pending.Status)
	assert.Equal(t, "blurry photos", pending.ReviewNotes)
	// No residence or person inserts were expected above: the draft body
	// stays untouched for the audit trail.
	assert.Equal(t, "C-3", pending.Draft.Lot)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStagedFilenames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewPendingResidenceRepository(db)

	mock.ExpectQuery(`jsonb_array_elements_text`).
		WillReturnRows(sqlmock.NewRows([]string{"filename"}).AddRow("a.jpg").AddRow("b.png"))

	referenced, err := repo.StagedFilenames(context.Background())
	require.NoError(t, err)
	assert.Len(t, referenced, 2)
	_, ok := referenced["a.jpg"]
	assert.True(t, ok)
}

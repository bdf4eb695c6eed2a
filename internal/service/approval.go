package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
	"sigap-backend/internal/storage"
)

type approvalService struct {
	pendingRepo   repository.PendingResidenceRepository
	residenceRepo repository.ResidenceRepository
	photoRepo     repository.PhotoRepository
	userRepo      repository.UserRepository
	noteRepo      repository.NotificationRepository
	files         *storage.FileStore
	email         EmailService
}

func NewApprovalService(pendingRepo repository.PendingResidenceRepository, residenceRepo repository.ResidenceRepository,
	photoRepo repository.PhotoRepository, userRepo repository.UserRepository, noteRepo repository.NotificationRepository,
	files *storage.FileStore, email EmailService) ApprovalService {
	return &approvalService{
		pendingRepo:   pendingRepo,
		residenceRepo: residenceRepo,
		photoRepo:     photoRepo,
		userRepo:      userRepo,
		noteRepo:      noteRepo,
		files:         files,
		email:         email,
	}
}

func (s *approvalService) StagePhoto(ctx context.Context, photo io.Reader, originalName string) (string, error) {
	return s.files.StagePhoto(photo, originalName)
}

func validateDraft(draft *domain.ResidenceDraft) error {
	if strings.TrimSpace(draft.Lot) == "" {
		return apperr.Validation("lot is required")
	}
	if draft.Lat < -90 || draft.Lat > 90 || draft.Lng < -180 || draft.Lng > 180 {
		return apperr.Validation("coordinates out of range")
	}
	for i := range draft.Residents {
		r := &draft.Residents[i]
		if strings.TrimSpace(r.FullName) == "" {
			return apperr.Validation("every resident needs a full name")
		}
		if r.Gender != "" && !r.Gender.Valid() {
			return apperr.Validation("unknown gender")
		}
	}
	for i, name := range draft.Photos {
		// Staged names are opaque basenames; anything with a path in it
		// never came from the staging endpoint.
		if name == "" || name != filepath.Base(name) {
			return apperr.Validation("invalid staged photo reference")
		}
		draft.Photos[i] = name
	}
	return nil
}

// Submit routes by role. Agents cannot write to the registry directly: their
// draft is queued and every eligible reviewer is notified in the same
// transaction. Secretaries and admins register immediately.
func (s *approvalService) Submit(ctx context.Context, submitter *domain.User, draft *domain.ResidenceDraft) (*domain.PendingResidence, *domain.Residence, error) {
	logger.EnterMethod("ApprovalService.Submit", "submitter_id", submitter.ID, "role", submitter.Role)
	if err := validateDraft(draft); err != nil {
		return nil, nil, err
	}

	if submitter.Role != domain.RoleAgent {
		residence, err := s.residenceRepo.Materialize(ctx, draft, submitter.ID)
		if err != nil {
			return nil, nil, err
		}
		s.promotePhotos(ctx, residence.ID, draft.Photos)
		logger.ExitMethod("ApprovalService.Submit", "residence_id", residence.ID)
		return nil, residence, nil
	}

	reviewers, err := s.userRepo.ListActiveByRole(ctx, domain.RoleSecretary, submitter.FokontanyID)
	if err != nil {
		return nil, nil, err
	}
	if len(reviewers) == 0 {
		// No secretary covers this fokontany; fall back to the admins so the
		// draft never sits unseen.
		reviewers, err = s.userRepo.ListActiveByRole(ctx, domain.RoleAdmin, nil)
		if err != nil {
			return nil, nil, err
		}
	}

	notifications := make([]domain.Notification, 0, len(reviewers))
	for i := range reviewers {
		notifications = append(notifications, domain.Notification{
			Kind:        domain.NotificationResidenceApproval,
			Title:       "New residence submission",
			Message:     fmt.Sprintf("%s submitted residence %s for review.", submitter.FullName, draft.Lot),
			RecipientID: reviewers[i].ID,
			SenderID:    &submitter.ID,
		})
	}

	pending := &domain.PendingResidence{Draft: *draft, SubmittedBy: submitter.ID}
	if err := s.pendingRepo.Submit(ctx, pending, notifications); err != nil {
		return nil, nil, err
	}
	if err := s.email.SendSubmissionAlert(ctx, submitter.FullName, draft.Fokontany, pending.ID); err != nil {
		logger.Warn("submission alert mail failed", "error", err)
	}
	logger.ExitMethod("ApprovalService.Submit", "pending_id", pending.ID, "reviewers", len(reviewers))
	return pending, nil, nil
}

func (s *approvalService) ListPending(ctx context.Context, reviewer *domain.User) ([]domain.PendingResidence, error) {
	if reviewer.Role == domain.RoleAdmin {
		return s.pendingRepo.ListPending(ctx, nil)
	}
	return s.pendingRepo.ListPending(ctx, reviewer.FokontanyID)
}

func (s *approvalService) Get(ctx context.Context, reviewer *domain.User, id int64) (*domain.PendingResidence, error) {
	pending, err := s.pendingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReviewer(reviewer, pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// authorizeReviewer scopes secretaries to submissions from their own
// fokontany. Admins review everything. An agent may act on their own
// submission, to withdraw or self-correct it, never on another agent's.
func (s *approvalService) authorizeReviewer(reviewer *domain.User, pending *domain.PendingResidence) error {
	if reviewer.Role == domain.RoleAdmin {
		return nil
	}
	if reviewer.Role == domain.RoleAgent {
		if reviewer.ID == pending.SubmittedBy {
			return nil
		}
		return apperr.Forbidden("agents only act on their own submissions")
	}
	if reviewer.Role != domain.RoleSecretary {
		return apperr.Forbidden("only secretaries and admins review submissions")
	}
	if reviewer.FokontanyID == nil || pending.SubmitterFokontanyID == nil ||
		*reviewer.FokontanyID != *pending.SubmitterFokontanyID {
		return apperr.Forbidden("submission belongs to another fokontany")
	}
	return nil
}

func (s *approvalService) Approve(ctx context.Context, reviewer *domain.User, id int64, notes string) (*domain.Residence, error) {
	logger.EnterMethod("ApprovalService.Approve", "pending_id", id, "reviewer_id", reviewer.ID)
	current, err := s.pendingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReviewer(reviewer, current); err != nil {
		return nil, err
	}

	residence, pending, err := s.pendingRepo.Approve(ctx, id, reviewer.ID, notes)
	if err != nil {
		return nil, err
	}

	// The registry rows are committed. File moves and the submitter
	// notification follow best-effort; a failure here is logged, never
	// rolled back. The notification points at the new residence, not the
	// audit row.
	s.promotePhotos(ctx, residence.ID, pending.Draft.Photos)
	s.notifySubmitter(ctx, pending, reviewer.ID, domain.SubmissionApproved, &residence.ID,
		"Residence submission approved",
		fmt.Sprintf("Your submission for residence %s was approved.", pending.Draft.Lot))
	logger.ExitMethod("ApprovalService.Approve", "residence_id", residence.ID)
	return residence, nil
}

func (s *approvalService) Reject(ctx context.Context, reviewer *domain.User, id int64, notes string) (*domain.PendingResidence, error) {
	logger.EnterMethod("ApprovalService.Reject", "pending_id", id, "reviewer_id", reviewer.ID)
	current, err := s.pendingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReviewer(reviewer, current); err != nil {
		return nil, err
	}

	pending, err := s.pendingRepo.Reject(ctx, id, reviewer.ID, notes)
	if err != nil {
		return nil, err
	}

	for _, name := range pending.Draft.Photos {
		if err := s.files.DeleteStaged(name); err != nil {
			logger.Warn("staged photo not removed after rejection", "filename", name, "error", err)
		}
	}
	message := fmt.Sprintf("Your submission for residence %s was rejected.", pending.Draft.Lot)
	if strings.TrimSpace(notes) != "" {
		message = fmt.Sprintf("Your submission for residence %s was rejected: %s", pending.Draft.Lot, notes)
	}
	s.notifySubmitter(ctx, pending, reviewer.ID, domain.SubmissionRejected, &pending.ID,
		"Residence submission rejected", message)
	return pending, nil
}

// promotePhotos moves staged files into the permanent area and records a
// photo row per file. Each file is independent: one bad file does not block
// the rest.
func (s *approvalService) promotePhotos(ctx context.Context, residenceID int64, stagedNames []string) {
	for _, name := range stagedNames {
		permanent, err := s.files.Promote(name)
		if err != nil {
			logger.Error("staged photo promotion failed", "filename", name, "residence_id", residenceID, "error", err)
			continue
		}
		photo := &domain.Photo{ResidenceID: residenceID, Filename: permanent}
		if err := s.photoRepo.Create(ctx, photo); err != nil {
			logger.Error("photo row insert failed", "filename", permanent, "residence_id", residenceID, "error", err)
		}
	}
}

func (s *approvalService) notifySubmitter(ctx context.Context, pending *domain.PendingResidence, reviewerID int64, status domain.SubmissionStatus, relatedID *int64, title, message string) {
	note := &domain.Notification{
		Kind:            domain.NotificationResidenceApproval,
		Title:           title,
		Message:         message,
		RecipientID:     pending.SubmittedBy,
		SenderID:        &reviewerID,
		RelatedEntityID: relatedID,
		Status:          status,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("submitter notification failed", "recipient_id", pending.SubmittedBy, "error", err)
	}
}

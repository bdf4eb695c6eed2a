package service

import (
	"context"

	"sigap-backend/internal/domain"
	"sigap-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

// The mailbox is a recent-events feed, not an archive browser; requests
// never page past the most recent maxListLimit entries.
const maxListLimit = 50

func (s *notificationService) List(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.noteRepo.ListForUser(ctx, userID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.noteRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.noteRepo.UnreadCount(ctx, userID)
}

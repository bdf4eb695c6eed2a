package service

import (
	"context"
	"io"
	"strings"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
	"sigap-backend/internal/storage"
)

type userService struct {
	userRepo repository.UserRepository
	files    *storage.FileStore
}

func NewUserService(userRepo repository.UserRepository, files *storage.FileStore) UserService {
	return &userService{userRepo: userRepo, files: files}
}

func (s *userService) Create(ctx context.Context, user *domain.User) (string, error) {
	logger.EnterMethod("UserService.Create", "username", user.Username, "role", user.Role)
	if strings.TrimSpace(user.Immatricule) == "" || strings.TrimSpace(user.FullName) == "" ||
		strings.TrimSpace(user.Username) == "" {
		return "", apperr.Validation("immatricule, full name and username are required")
	}
	if !user.Role.Valid() {
		return "", apperr.Validation("unknown role")
	}
	if user.Role != domain.RoleAdmin && user.FokontanyID == nil {
		return "", apperr.Validation("agents and secretaries must be assigned a fokontany")
	}

	temporary := generateTemporaryPassword()
	hash, err := hashPassword(temporary)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hash
	user.IsActive = true
	user.MustChangePassword = true
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}
	return temporary, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Update(ctx context.Context, user *domain.User) error {
	logger.EnterMethod("UserService.Update", "user_id", user.ID)
	if !user.Role.Valid() {
		return apperr.Validation("unknown role")
	}
	if user.Role != domain.RoleAdmin && user.FokontanyID == nil {
		return apperr.Validation("agents and secretaries must be assigned a fokontany")
	}
	return s.userRepo.Update(ctx, user)
}

func (s *userService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.userRepo.SetActive(ctx, id, active)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	logger.EnterMethod("UserService.Delete", "user_id", id)
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if user.Photo != "" {
		if err := s.files.DeleteProfilePhoto(user.Photo); err != nil {
			logger.Warn("stale profile photo not removed", "filename", user.Photo, "error", err)
		}
	}
	return nil
}

func (s *userService) UpdateProfilePhoto(ctx context.Context, userID int64, photo io.Reader, originalName string) (string, error) {
	logger.EnterMethod("UserService.UpdateProfilePhoto", "user_id", userID)
	filename, err := s.files.SaveProfilePhoto(photo, userID, originalName)
	if err != nil {
		return "", err
	}
	previous, err := s.userRepo.UpdatePhoto(ctx, userID, filename)
	if err != nil {
		// The row did not change, so the fresh file is an orphan.
		if rmErr := s.files.DeleteProfilePhoto(filename); rmErr != nil {
			logger.Warn("orphaned profile photo not removed", "filename", filename, "error", rmErr)
		}
		return "", err
	}
	if previous != "" && previous != filename {
		if err := s.files.DeleteProfilePhoto(previous); err != nil {
			logger.Warn("previous profile photo not removed", "filename", previous, "error", err)
		}
	}
	return filename, nil
}

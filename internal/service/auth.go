package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
	"sigap-backend/internal/security"
)

type authService struct {
	userRepo     repository.UserRepository
	passwordRepo repository.PasswordRequestRepository
	noteRepo     repository.NotificationRepository
	tokens       security.TokenManager
	email        EmailService
}

func NewAuthService(userRepo repository.UserRepository, passwordRepo repository.PasswordRequestRepository,
	noteRepo repository.NotificationRepository, tokens security.TokenManager, email EmailService) AuthService {
	return &authService{
		userRepo:     userRepo,
		passwordRepo: passwordRepo,
		noteRepo:     noteRepo,
		tokens:       tokens,
		email:        email,
	}
}

// generateTemporaryPassword derives a short random credential. Always paired
// with must_change_password so it only survives one login.
func generateTemporaryPassword() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	return string(hash), nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	logger.EnterMethod("AuthService.Login", "username", username)
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Same answer whether the account is missing or the password is
		// wrong, so usernames cannot be probed.
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, "", apperr.Authentication("invalid username or password")
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Authentication("invalid username or password")
	}
	if !user.IsActive {
		return nil, "", apperr.Forbidden("account is deactivated")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "sign token", err)
	}
	logger.ExitMethod("AuthService.Login", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) ForgotPassword(ctx context.Context, immatricule string) error {
	logger.EnterMethod("AuthService.ForgotPassword", "immatricule", immatricule)
	user, err := s.userRepo.GetByImmatricule(ctx, immatricule)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		// Admin credentials are never recoverable through the agent flow.
		return apperr.Forbidden("administrators cannot use the reset flow")
	}
	req := &domain.PasswordResetRequest{UserID: user.ID, Immatricule: immatricule}
	if err := s.passwordRepo.CreateResetRequest(ctx, req); err != nil {
		return err
	}
	s.notifyAdmins(ctx, domain.NotificationPasswordReset, "Password reset requested",
		fmt.Sprintf("%s (%s) requested a password reset.", user.FullName, user.Immatricule), nil, &req.ID)
	if err := s.email.SendPasswordResetAlert(ctx, user.FullName, user.Immatricule); err != nil {
		logger.Warn("password reset alert mail failed", "error", err)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (bool, error) {
	logger.EnterMethod("AuthService.ChangePassword", "user_id", userID)
	if len(newPassword) < 8 {
		return false, apperr.Validation("new password must be at least 8 characters")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return false, apperr.Authentication("current password is incorrect")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return false, err
	}

	// A forced change replaces the temporary password immediately; there is
	// nothing for an admin to approve.
	if user.MustChangePassword {
		if err := s.userRepo.UpdatePassword(ctx, userID, hash, false); err != nil {
			return false, err
		}
		return false, nil
	}

	req := &domain.PasswordChangeRequest{UserID: userID, NewPasswordHash: hash}
	if err := s.passwordRepo.CreateChangeRequest(ctx, req); err != nil {
		return false, err
	}
	s.notifyAdmins(ctx, domain.NotificationPasswordChange, "Password change requested",
		fmt.Sprintf("%s requested a password change.", user.FullName), &userID, &req.ID)
	if err := s.email.SendPasswordChangeAlert(ctx, user.FullName, user.Username); err != nil {
		logger.Warn("password change alert mail failed", "error", err)
	}
	return true, nil
}

func (s *authService) ListPasswordResetRequests(ctx context.Context) ([]domain.PasswordResetRequest, error) {
	return s.passwordRepo.ListPendingResetRequests(ctx)
}

func (s *authService) ApprovePasswordReset(ctx context.Context, adminID, requestID int64, newPassword string) (*domain.PasswordResetRequest, error) {
	logger.EnterMethod("AuthService.ApprovePasswordReset", "admin_id", adminID, "request_id", requestID)
	if len(newPassword) < 8 {
		return nil, apperr.Validation("new password must be at least 8 characters")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	req, err := s.passwordRepo.ApproveResetRequest(ctx, requestID, hash)
	if err != nil {
		return nil, err
	}
	s.notifyUser(ctx, req.UserID, adminID, domain.NotificationPasswordReset, "Password reset approved",
		"Your password was reset. Ask your administrator for the new password.", &req.ID)
	return req, nil
}

func (s *authService) ListPasswordChangeRequests(ctx context.Context) ([]domain.PasswordChangeRequest, error) {
	return s.passwordRepo.ListPendingChangeRequests(ctx)
}

func (s *authService) ApprovePasswordChange(ctx context.Context, adminID, requestID int64) (*domain.PasswordChangeRequest, error) {
	logger.EnterMethod("AuthService.ApprovePasswordChange", "admin_id", adminID, "request_id", requestID)
	req, err := s.passwordRepo.ApproveChangeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.notifyUser(ctx, req.UserID, adminID, domain.NotificationPasswordChange, "Password change approved",
		"Your new password is now active.", &req.ID)
	return req, nil
}

func (s *authService) InvalidatePassword(ctx context.Context, adminID, userID int64, tempPassword string) error {
	logger.EnterMethod("AuthService.InvalidatePassword", "admin_id", adminID, "user_id", userID)
	if len(tempPassword) < 8 {
		return apperr.Validation("temporary password must be at least 8 characters")
	}
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleAdmin {
		return apperr.Forbidden("cannot invalidate another administrator's password")
	}
	hash, err := hashPassword(tempPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash, true); err != nil {
		return err
	}
	s.notifyUser(ctx, userID, adminID, domain.NotificationPasswordReset, "Password invalidated",
		"Your password was invalidated by an administrator. Ask for your temporary password.", nil)
	return nil
}

// notifyAdmins fans a notification out to every active admin. Best-effort:
// the triggering operation already succeeded.
func (s *authService) notifyAdmins(ctx context.Context, kind, title, message string, senderID, relatedID *int64) {
	admins, err := s.userRepo.ListActiveByRole(ctx, domain.RoleAdmin, nil)
	if err != nil {
		logger.Warn("admin lookup for notification failed", "error", err)
		return
	}
	for i := range admins {
		note := &domain.Notification{
			Kind:            kind,
			Title:           title,
			Message:         message,
			RecipientID:     admins[i].ID,
			SenderID:        senderID,
			RelatedEntityID: relatedID,
		}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			logger.Warn("admin notification failed", "recipient_id", admins[i].ID, "error", err)
		}
	}
}

func (s *authService) notifyUser(ctx context.Context, recipientID, senderID int64, kind, title, message string, relatedID *int64) {
	note := &domain.Notification{
		Kind:            kind,
		Title:           title,
		Message:         message,
		RecipientID:     recipientID,
		SenderID:        &senderID,
		RelatedEntityID: relatedID,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("user notification failed", "recipient_id", recipientID, "error", err)
	}
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/security"
	"sigap-backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(t *testing.T) (service.AuthService, *MockUserRepo, *MockPasswordRepo, *MockNotificationRepo, *MockEmailService) {
	t.Helper()
	userRepo := new(MockUserRepo)
	passwordRepo := new(MockPasswordRepo)
	noteRepo := new(MockNotificationRepo)
	email := new(MockEmailService)
	tokens := security.NewTokenManager(testSecret, time.Hour)
	svc := service.NewAuthService(userRepo, passwordRepo, noteRepo, tokens, email)
	return svc, userRepo, passwordRepo, noteRepo, email
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &domain.User{
		ID: 7, Username: "rakoto", Role: domain.RoleAgent,
		PasswordHash: hashFor(t, "correct-horse"), IsActive: true,
	}
	userRepo.On("GetByUsername", ctx, "rakoto").Return(user, nil).Once()

	got, token, err := svc.Login(ctx, "rakoto", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)

	claims, err := security.NewTokenManager(testSecret, time.Hour).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "rakoto", claims.Username)

	userRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &domain.User{ID: 7, Username: "rakoto", PasswordHash: hashFor(t, "correct-horse"), IsActive: true}
	userRepo.On("GetByUsername", ctx, "rakoto").Return(user, nil).Once()

	_, _, err := svc.Login(ctx, "rakoto", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestLoginUnknownUserGetsSameAnswerAsWrongPassword(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "ghost").Return(nil, apperr.NotFound("user not found")).Once()

	_, _, err := svc.Login(ctx, "ghost", "anything")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	assert.Equal(t, "invalid username or password", apperr.PublicMessage(err))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &domain.User{ID: 7, Username: "rakoto", PasswordHash: hashFor(t, "correct-horse"), IsActive: false}
	userRepo.On("GetByUsername", ctx, "rakoto").Return(user, nil).Once()

	_, _, err := svc.Login(ctx, "rakoto", "correct-horse")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestChangePasswordForcedAppliesImmediately(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &domain.User{ID: 7, PasswordHash: hashFor(t, "temp-pass-123"), MustChangePassword: true}
	userRepo.On("GetByID", ctx, int64(7)).Return(user, nil).Once()
	userRepo.On("UpdatePassword", ctx, int64(7), mock.AnythingOfType("string"), false).
		Run(func(args mock.Arguments) {
			hash := args.String(2)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("my-new-password")))
		}).Return(nil).Once()

	pendingApproval, err := svc.ChangePassword(ctx, 7, "temp-pass-123", "my-new-password")
	require.NoError(t, err)
	assert.False(t, pendingApproval)

	userRepo.AssertExpectations(t)
}

func TestChangePasswordVoluntaryIsQueuedForApproval(t *testing.T) {
	svc, userRepo, passwordRepo, noteRepo, email := newAuthFixture(t)
	ctx := context.Background()

	user := &domain.User{ID: 7, FullName: "Rakoto Jean", Username: "rakoto",
		PasswordHash: hashFor(t, "old-password-1"), MustChangePassword: false}
	userRepo.On("GetByID", ctx, int64(7)).Return(user, nil).Once()
	passwordRepo.On("CreateChangeRequest", ctx, mock.MatchedBy(func(req *domain.PasswordChangeRequest) bool {
		return req.UserID == 7 && req.NewPasswordHash != "" && req.NewPasswordHash != "my-new-password"
	})).Return(nil).Once()
	userRepo.On("ListActiveByRole", ctx, domain.RoleAdmin, (*int64)(nil)).
		Return([]domain.User{{ID: 1}}, nil).Once()
	noteRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Kind == domain.NotificationPasswordChange && n.RecipientID == 1
	})).Return(nil).Once()
	email.On("SendPasswordChangeAlert", ctx, "Rakoto Jean", "rakoto").Return(nil).Once()

	pendingApproval, err := svc.ChangePassword(ctx, 7, "old-password-1", "my-new-password")
	require.NoError(t, err)
	assert.True(t, pendingApproval, "voluntary change waits for an admin")

	// The password itself is untouched until approval.
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	passwordRepo.AssertExpectations(t)
	noteRepo.AssertExpectations(t)
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, err := svc.ChangePassword(context.Background(), 7, "whatever", "short")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestChangePasswordWrongCurrentPassword(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &domain.User{ID: 7, PasswordHash: hashFor(t, "old-password-1")}
	userRepo.On("GetByID", ctx, int64(7)).Return(user, nil).Once()

	_, err := svc.ChangePassword(ctx, 7, "not-the-old-one", "my-new-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestForgotPasswordNotifiesAdminsAndMailbox(t *testing.T) {
	svc, userRepo, passwordRepo, noteRepo, email := newAuthFixture(t)
	ctx := context.Background()

	user := &domain.User{ID: 7, FullName: "Rakoto Jean", Immatricule: "AGT-0042"}
	userRepo.On("GetByImmatricule", ctx, "AGT-0042").Return(user, nil).Once()
	passwordRepo.On("CreateResetRequest", ctx, mock.MatchedBy(func(req *domain.PasswordResetRequest) bool {
		return req.UserID == 7 && req.Immatricule == "AGT-0042"
	})).Return(nil).Once()
	userRepo.On("ListActiveByRole", ctx, domain.RoleAdmin, (*int64)(nil)).
		Return([]domain.User{{ID: 1}, {ID: 2}}, nil).Once()
	noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Twice()
	email.On("SendPasswordResetAlert", ctx, "Rakoto Jean", "AGT-0042").Return(nil).Once()

	require.NoError(t, svc.ForgotPassword(ctx, "AGT-0042"))

	userRepo.AssertExpectations(t)
	noteRepo.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestApprovePasswordResetHashesTheSuppliedPassword(t *testing.T) {
	svc, _, passwordRepo, noteRepo, _ := newAuthFixture(t)
	ctx := context.Background()

	var storedHash string
	passwordRepo.On("ApproveResetRequest", ctx, int64(5), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { storedHash = args.String(2) }).
		Return(&domain.PasswordResetRequest{ID: 5, UserID: 7}, nil).Once()
	noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Once()

	req, err := svc.ApprovePasswordReset(ctx, 1, 5, "handed-over-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), req.UserID)
	assert.NotEqual(t, "handed-over-1", storedHash, "plaintext never reaches the repository")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("handed-over-1")))
}

func TestApprovePasswordResetRejectsShortPassword(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, err := svc.ApprovePasswordReset(context.Background(), 1, 5, "short")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestInvalidatePasswordForcesChangeOnNextLogin(t *testing.T) {
	svc, userRepo, _, noteRepo, _ := newAuthFixture(t)
	ctx := context.Background()

	agent := &domain.User{ID: 7, Role: domain.RoleAgent}
	userRepo.On("GetByID", ctx, int64(7)).Return(agent, nil).Once()
	userRepo.On("UpdatePassword", ctx, int64(7), mock.AnythingOfType("string"), true).
		Run(func(args mock.Arguments) {
			hash := args.String(2)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("temp12345")))
		}).Return(nil).Once()
	noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Once()

	require.NoError(t, svc.InvalidatePassword(ctx, 1, 7, "temp12345"))

	userRepo.AssertExpectations(t)
}

func TestInvalidatePasswordRefusesAdminTarget(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, int64(2)).Return(&domain.User{ID: 2, Role: domain.RoleAdmin}, nil).Once()

	err := svc.InvalidatePassword(ctx, 1, 2, "temp12345")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestForgotPasswordRefusedForAdmins(t *testing.T) {
	svc, userRepo, passwordRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	admin := &domain.User{ID: 2, Role: domain.RoleAdmin, Immatricule: "ADM-0001"}
	userRepo.On("GetByImmatricule", ctx, "ADM-0001").Return(admin, nil).Once()

	err := svc.ForgotPassword(ctx, "ADM-0001")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	passwordRepo.AssertNotCalled(t, "CreateResetRequest", mock.Anything, mock.Anything)
}

package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"sigap-backend/internal/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByImmatricule(ctx context.Context, immatricule string) (*domain.User, error) {
	args := m.Called(ctx, immatricule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, mustChange bool) error {
	args := m.Called(ctx, id, passwordHash, mustChange)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePhoto(ctx context.Context, id int64, filename string) (string, error) {
	args := m.Called(ctx, id, filename)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) ListActiveByRole(ctx context.Context, role domain.Role, fokontanyID *int64) ([]domain.User, error) {
	args := m.Called(ctx, role, fokontanyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockResidenceRepo struct {
	mock.Mock
}

func (m *MockResidenceRepo) Materialize(ctx context.Context, draft *domain.ResidenceDraft, createdBy int64) (*domain.Residence, error) {
	args := m.Called(ctx, draft, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Residence), args.Error(1)
}

func (m *MockResidenceRepo) GetByID(ctx context.Context, id int64) (*domain.Residence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Residence), args.Error(1)
}

func (m *MockResidenceRepo) List(ctx context.Context, fokontany string) ([]domain.Residence, error) {
	args := m.Called(ctx, fokontany)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Residence), args.Error(1)
}

func (m *MockResidenceRepo) Update(ctx context.Context, id int64, lot, neighborhood, city string) (*domain.Residence, error) {
	args := m.Called(ctx, id, lot, neighborhood, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Residence), args.Error(1)
}

func (m *MockResidenceRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.Residence, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Residence), args.Error(1)
}

func (m *MockResidenceRepo) Delete(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockPendingRepo struct {
	mock.Mock
}

func (m *MockPendingRepo) Submit(ctx context.Context, pending *domain.PendingResidence, notifications []domain.Notification) error {
	args := m.Called(ctx, pending, notifications)
	return args.Error(0)
}

func (m *MockPendingRepo) GetByID(ctx context.Context, id int64) (*domain.PendingResidence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingResidence), args.Error(1)
}

func (m *MockPendingRepo) ListPending(ctx context.Context, fokontanyID *int64) ([]domain.PendingResidence, error) {
	args := m.Called(ctx, fokontanyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingResidence), args.Error(1)
}

func (m *MockPendingRepo) Approve(ctx context.Context, id, reviewerID int64, notes string) (*domain.Residence, *domain.PendingResidence, error) {
	args := m.Called(ctx, id, reviewerID, notes)
	var residence *domain.Residence
	var pending *domain.PendingResidence
	if args.Get(0) != nil {
		residence = args.Get(0).(*domain.Residence)
	}
	if args.Get(1) != nil {
		pending = args.Get(1).(*domain.PendingResidence)
	}
	return residence, pending, args.Error(2)
}

func (m *MockPendingRepo) Reject(ctx context.Context, id, reviewerID int64, notes string) (*domain.PendingResidence, error) {
	args := m.Called(ctx, id, reviewerID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingResidence), args.Error(1)
}

func (m *MockPendingRepo) StagedFilenames(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

type MockPhotoRepo struct {
	mock.Mock
}

func (m *MockPhotoRepo) Create(ctx context.Context, photo *domain.Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockPhotoRepo) ListByResidence(ctx context.Context, residenceID int64) ([]domain.Photo, error) {
	args := m.Called(ctx, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Photo), args.Error(1)
}

func (m *MockPhotoRepo) Delete(ctx context.Context, id, residenceID int64) (string, error) {
	args := m.Called(ctx, id, residenceID)
	return args.String(0), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotificationRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockPasswordRepo struct {
	mock.Mock
}

func (m *MockPasswordRepo) CreateResetRequest(ctx context.Context, req *domain.PasswordResetRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockPasswordRepo) ListPendingResetRequests(ctx context.Context) ([]domain.PasswordResetRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PasswordResetRequest), args.Error(1)
}

func (m *MockPasswordRepo) ApproveResetRequest(ctx context.Context, requestID int64, passwordHash string) (*domain.PasswordResetRequest, error) {
	args := m.Called(ctx, requestID, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordResetRequest), args.Error(1)
}

func (m *MockPasswordRepo) CreateChangeRequest(ctx context.Context, req *domain.PasswordChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockPasswordRepo) ListPendingChangeRequests(ctx context.Context) ([]domain.PasswordChangeRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PasswordChangeRequest), args.Error(1)
}

func (m *MockPasswordRepo) ApproveChangeRequest(ctx context.Context, requestID int64) (*domain.PasswordChangeRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordChangeRequest), args.Error(1)
}

type MockFokontanyRepo struct {
	mock.Mock
}

func (m *MockFokontanyRepo) GetByID(ctx context.Context, id int64) (*domain.Fokontany, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fokontany), args.Error(1)
}

func (m *MockFokontanyRepo) List(ctx context.Context) ([]domain.Fokontany, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fokontany), args.Error(1)
}

func (m *MockFokontanyRepo) ListByRegion(ctx context.Context, region string) ([]domain.Fokontany, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fokontany), args.Error(1)
}

func (m *MockFokontanyRepo) Search(ctx context.Context, term string, limit int) ([]domain.Fokontany, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fokontany), args.Error(1)
}

func (m *MockFokontanyRepo) NearestTo(ctx context.Context, lat, lng float64) (*domain.Fokontany, error) {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fokontany), args.Error(1)
}

func (m *MockFokontanyRepo) Upsert(ctx context.Context, f *domain.Fokontany) (bool, error) {
	args := m.Called(ctx, f)
	return args.Bool(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendSubmissionAlert(ctx context.Context, submitterName, fokontany string, submissionID int64) error {
	args := m.Called(ctx, submitterName, fokontany, submissionID)
	return args.Error(0)
}

func (m *MockEmailService) SendPasswordResetAlert(ctx context.Context, fullName, immatricule string) error {
	args := m.Called(ctx, fullName, immatricule)
	return args.Error(0)
}

func (m *MockEmailService) SendPasswordChangeAlert(ctx context.Context, fullName, username string) error {
	args := m.Called(ctx, fullName, username)
	return args.Error(0)
}

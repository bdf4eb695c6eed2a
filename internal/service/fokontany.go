package service

import (
	"context"
	"strings"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

const searchLimit = 20

type fokontanyService struct {
	fokontanyRepo repository.FokontanyRepository
}

func NewFokontanyService(fokontanyRepo repository.FokontanyRepository) FokontanyService {
	return &fokontanyService{fokontanyRepo: fokontanyRepo}
}

func (s *fokontanyService) Get(ctx context.Context, id int64) (*domain.Fokontany, error) {
	return s.fokontanyRepo.GetByID(ctx, id)
}

func (s *fokontanyService) List(ctx context.Context) ([]domain.Fokontany, error) {
	return s.fokontanyRepo.List(ctx)
}

func (s *fokontanyService) ListByRegion(ctx context.Context, region string) ([]domain.Fokontany, error) {
	if strings.TrimSpace(region) == "" {
		return nil, apperr.Validation("region is required")
	}
	return s.fokontanyRepo.ListByRegion(ctx, region)
}

func (s *fokontanyService) Search(ctx context.Context, term string) ([]domain.Fokontany, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, apperr.Validation("search term must be at least 2 characters")
	}
	return s.fokontanyRepo.Search(ctx, term, searchLimit)
}

func (s *fokontanyService) Nearest(ctx context.Context, lat, lng float64) (*domain.Fokontany, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.Validation("coordinates out of range")
	}
	return s.fokontanyRepo.NearestTo(ctx, lat, lng)
}

func (s *fokontanyService) MyFokontany(ctx context.Context, user *domain.User) (*domain.Fokontany, error) {
	if user.FokontanyID == nil {
		return nil, apperr.NotFound("no fokontany assigned")
	}
	return s.fokontanyRepo.GetByID(ctx, *user.FokontanyID)
}

// Import upserts reference records by code. Records without a centroid get
// one derived from their polygon, so the nearest lookup covers them.
func (s *fokontanyService) Import(ctx context.Context, batch []domain.Fokontany) (int, int, error) {
	logger.EnterMethod("FokontanyService.Import", "records", len(batch))
	if len(batch) == 0 {
		return 0, 0, apperr.Validation("empty import batch")
	}
	var created, updated int
	for i := range batch {
		f := &batch[i]
		if strings.TrimSpace(f.Code) == "" || strings.TrimSpace(f.Name) == "" {
			return created, updated, apperr.Validation("each record needs a code and a name")
		}
		if f.CentroidLat == nil || f.CentroidLng == nil {
			if lat, lng, ok := f.Centroid(); ok {
				f.CentroidLat = &lat
				f.CentroidLng = &lng
			}
		}
		isNew, err := s.fokontanyRepo.Upsert(ctx, f)
		if err != nil {
			return created, updated, err
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	logger.ExitMethod("FokontanyService.Import", "created", created, "updated", updated)
	return created, updated, nil
}

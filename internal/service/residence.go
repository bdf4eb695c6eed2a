package service

import (
	"context"
	"io"

	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
	"sigap-backend/internal/storage"
)

type residenceService struct {
	residenceRepo repository.ResidenceRepository
	personRepo    repository.PersonRepository
	photoRepo     repository.PhotoRepository
	files         *storage.FileStore
}

func NewResidenceService(residenceRepo repository.ResidenceRepository, personRepo repository.PersonRepository,
	photoRepo repository.PhotoRepository, files *storage.FileStore) ResidenceService {
	return &residenceService{
		residenceRepo: residenceRepo,
		personRepo:    personRepo,
		photoRepo:     photoRepo,
		files:         files,
	}
}

// Get assembles the full record: residence, occupants with relations, and
// photos with public URLs.
func (s *residenceService) Get(ctx context.Context, id int64) (*domain.Residence, error) {
	res, err := s.residenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	persons, err := s.personRepo.ListByResidence(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Persons = persons
	photos, err := s.photoRepo.ListByResidence(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range photos {
		photos[i].URL = storage.ResidenceURL(photos[i].Filename)
	}
	res.Photos = photos
	return res, nil
}

// List returns active residences, optionally filtered by fokontany name.
func (s *residenceService) List(ctx context.Context, fokontany string) ([]domain.Residence, error) {
	residences, err := s.residenceRepo.List(ctx, fokontany)
	if err != nil {
		return nil, err
	}
	for i := range residences {
		for j, name := range residences[i].PhotoURLs {
			residences[i].PhotoURLs[j] = storage.ResidenceURL(name)
		}
	}
	return residences, nil
}

func (s *residenceService) Update(ctx context.Context, id int64, lot, neighborhood, city string) (*domain.Residence, error) {
	return s.residenceRepo.Update(ctx, id, lot, neighborhood, city)
}

func (s *residenceService) SetActive(ctx context.Context, id int64, active bool) (*domain.Residence, error) {
	return s.residenceRepo.SetActive(ctx, id, active)
}

func (s *residenceService) Delete(ctx context.Context, id int64) error {
	logger.EnterMethod("ResidenceService.Delete", "residence_id", id)
	filenames, err := s.residenceRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	for _, name := range filenames {
		if err := s.files.DeleteResidencePhoto(name); err != nil {
			logger.Warn("residence photo file not removed", "filename", name, "error", err)
		}
	}
	return nil
}

func (s *residenceService) AddPhoto(ctx context.Context, residenceID int64, photo io.Reader, originalName string) (*domain.Photo, error) {
	logger.EnterMethod("ResidenceService.AddPhoto", "residence_id", residenceID)
	// Existence check up front so a bad id does not leave a file behind.
	if _, err := s.residenceRepo.GetByID(ctx, residenceID); err != nil {
		return nil, err
	}
	filename, err := s.files.SaveResidencePhoto(photo, originalName)
	if err != nil {
		return nil, err
	}
	p := &domain.Photo{ResidenceID: residenceID, Filename: filename}
	if err := s.photoRepo.Create(ctx, p); err != nil {
		if rmErr := s.files.DeleteResidencePhoto(filename); rmErr != nil {
			logger.Warn("orphaned residence photo not removed", "filename", filename, "error", rmErr)
		}
		return nil, err
	}
	p.URL = storage.ResidenceURL(filename)
	return p, nil
}

func (s *residenceService) DeletePhoto(ctx context.Context, residenceID, photoID int64) error {
	filename, err := s.photoRepo.Delete(ctx, photoID, residenceID)
	if err != nil {
		return err
	}
	if err := s.files.DeleteResidencePhoto(filename); err != nil {
		logger.Warn("residence photo file not removed", "filename", filename, "error", err)
	}
	return nil
}

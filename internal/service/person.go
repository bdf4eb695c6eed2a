package service

import (
	"context"
	"strings"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/repository"
)

type personService struct {
	personRepo    repository.PersonRepository
	residenceRepo repository.ResidenceRepository
}

func NewPersonService(personRepo repository.PersonRepository, residenceRepo repository.ResidenceRepository) PersonService {
	return &personService{personRepo: personRepo, residenceRepo: residenceRepo}
}

func validatePerson(person *domain.Person) error {
	if strings.TrimSpace(person.FullName) == "" {
		return apperr.Validation("full name is required")
	}
	if person.Gender == "" {
		person.Gender = domain.GenderOther
	}
	if !person.Gender.Valid() {
		return apperr.Validation("unknown gender")
	}
	return nil
}

func (s *personService) Add(ctx context.Context, person *domain.Person, relation *domain.PersonRelation) error {
	if err := validatePerson(person); err != nil {
		return err
	}
	if _, err := s.residenceRepo.GetByID(ctx, person.ResidenceID); err != nil {
		return err
	}
	return s.personRepo.Create(ctx, person, relation)
}

func (s *personService) Get(ctx context.Context, id int64) (*domain.Person, error) {
	return s.personRepo.GetByID(ctx, id)
}

func (s *personService) ListByResidence(ctx context.Context, residenceID int64) ([]domain.Person, error) {
	return s.personRepo.ListByResidence(ctx, residenceID)
}

func (s *personService) Update(ctx context.Context, person *domain.Person) error {
	if err := validatePerson(person); err != nil {
		return err
	}
	return s.personRepo.Update(ctx, person)
}

func (s *personService) Delete(ctx context.Context, id int64) error {
	return s.personRepo.Delete(ctx, id)
}

package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateProgressionTypeInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	ColorHex    string `json:"colorHex" validate:"required,colorhex6"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"` // defaults to true
}

type UpdateProgressionTypeInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	ColorHex    *string `json:"colorHex" validate:"omitempty,colorhex6"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type CreateSectionInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	IsGlobal    bool   `json:"isGlobal"`
}

// CatalogService manages the coach-scoped reference data attached to plan
// trees: progression types and section templates.
type CatalogService interface {
	ListProgressionTypes(ctx context.Context, id domain.Identity) ([]domain.ProgressionType, error)
	CreateProgressionType(ctx context.Context, id domain.Identity, input CreateProgressionTypeInput) (*domain.ProgressionType, error)
	UpdateProgressionType(ctx context.Context, id domain.Identity, ptID primitive.ObjectID, input UpdateProgressionTypeInput) (*domain.ProgressionType, error)
	DeleteProgressionType(ctx context.Context, id domain.Identity, ptID primitive.ObjectID) error

	ListSections(ctx context.Context, id domain.Identity) ([]domain.Section, error)
	CreateSection(ctx context.Context, id domain.Identity, input CreateSectionInput) (*domain.Section, error)
	RenameSection(ctx context.Context, id domain.Identity, sectionID primitive.ObjectID, name string) (*domain.Section, error)
}

type catalogService struct {
	ptRepo      repository.ProgressionTypeRepository
	sectionRepo repository.SectionRepository
	validate    *validator.Validate
}

func NewCatalogService(ptRepo repository.ProgressionTypeRepository, sectionRepo repository.SectionRepository) CatalogService {
	return &catalogService{
		ptRepo:      ptRepo,
		sectionRepo: sectionRepo,
		validate:    newValidator(),
	}
}

// === Progression types ===

func (s *catalogService) ListProgressionTypes(ctx context.Context, id domain.Identity) ([]domain.ProgressionType, error) {
	if err := Authorize(id, nil, CoachOnly, "progression type"); err != nil {
		return nil, err
	}
	return s.ptRepo.ListByCoach(ctx, id.UserID)
}

func (s *catalogService) CreateProgressionType(ctx context.Context, id domain.Identity, input CreateProgressionTypeInput) (*domain.ProgressionType, error) {
	if err := Authorize(id, nil, CoachOnly, "progression type"); err != nil {
		return nil, err
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	pt := &domain.ProgressionType{
		CoachID:     id.UserID,
		Name:        input.Name,
		ColorHex:    input.ColorHex,
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		pt.IsActive = *input.IsActive
	}
	if _, err := s.ptRepo.Create(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *catalogService) UpdateProgressionType(ctx context.Context, id domain.Identity, ptID primitive.ObjectID, input UpdateProgressionTypeInput) (*domain.ProgressionType, error) {
	pt, err := s.loadOwnedProgressionType(ctx, id, ptID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		pt.Name = *input.Name
	}
	if input.ColorHex != nil {
		pt.ColorHex = *input.ColorHex
	}
	if input.Description != nil {
		pt.Description = *input.Description
	}
	if input.IsActive != nil {
		pt.IsActive = *input.IsActive
	}
	if err := s.ptRepo.Update(ctx, pt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("progression type")
		}
		return nil, err
	}
	return pt, nil
}

// DeleteProgressionType removes the tag. Plan exercises that still point at
// it keep the dangling ID; readers treat an unknown ID as untagged.
func (s *catalogService) DeleteProgressionType(ctx context.Context, id domain.Identity, ptID primitive.ObjectID) error {
	if _, err := s.loadOwnedProgressionType(ctx, id, ptID); err != nil {
		return err
	}
	if err := s.ptRepo.Delete(ctx, ptID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("progression type")
		}
		return err
	}
	return nil
}

func (s *catalogService) loadOwnedProgressionType(ctx context.Context, id domain.Identity, ptID primitive.ObjectID) (*domain.ProgressionType, error) {
	pt, err := s.ptRepo.GetByID(ctx, ptID)
	if errors.Is(err, repository.ErrNotFound) {
		pt = nil
	} else if err != nil {
		return nil, err
	}
	if err := Authorize(id, progressionTypeResource(pt), Owner, "progression type"); err != nil {
		return nil, err
	}
	return pt, nil
}

// === Sections ===

func (s *catalogService) ListSections(ctx context.Context, id domain.Identity) ([]domain.Section, error) {
	if err := Authorize(id, nil, CoachOnly, "section"); err != nil {
		return nil, err
	}
	return s.sectionRepo.ListVisible(ctx, id.UserID)
}

func (s *catalogService) CreateSection(ctx context.Context, id domain.Identity, input CreateSectionInput) (*domain.Section, error) {
	if err := Authorize(id, nil, CoachOnly, "section"); err != nil {
		return nil, err
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}
	owner := id.UserID
	section := &domain.Section{
		CoachID:     &owner,
		Name:        input.Name,
		Description: input.Description,
		IsGlobal:    input.IsGlobal,
	}
	if _, err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// RenameSection changes the section's current name. Day sections that
// already reference it keep their snapshot.
func (s *catalogService) RenameSection(ctx context.Context, id domain.Identity, sectionID primitive.ObjectID, name string) (*domain.Section, error) {
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if errors.Is(err, repository.ErrNotFound) {
		section = nil
	} else if err != nil {
		return nil, err
	}
	var res *Resource
	if section != nil {
		res = &Resource{}
		if section.CoachID != nil {
			res.CoachID = *section.CoachID
		}
	}
	if err := Authorize(id, res, Owner, "section"); err != nil {
		return nil, err
	}
	if err := validateInput(s.validate, CreateSectionInput{Name: name}); err != nil {
		return nil, err
	}

	if err := s.sectionRepo.Rename(ctx, sectionID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("section")
		}
		return nil, err
	}
	section.Name = name
	return section, nil
}

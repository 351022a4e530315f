package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateTemplateInput struct {
	Title       string                `json:"title" validate:"min=3"`
	MonthlyGoal string                `json:"monthlyGoal"`
	Notes       string                `json:"notes"`
	Status      domain.PlanStatus     `json:"status" validate:"omitempty,oneof=draft published archived"`
	Visibility  domain.PlanVisibility `json:"visibility" validate:"omitempty,oneof=private public"`
	Days        []DayInput            `json:"days" validate:"dive"`
}

type UpdateTemplateInput struct {
	Title       *string                `json:"title" validate:"omitempty,min=3"`
	MonthlyGoal *string                `json:"monthlyGoal"`
	Notes       *string                `json:"notes"`
	Status      *domain.PlanStatus     `json:"status" validate:"omitempty,oneof=draft published archived"`
	Visibility  *domain.PlanVisibility `json:"visibility" validate:"omitempty,oneof=private public"`
}

// PlanTemplateService manages a coach's reusable plan blueprints.
type PlanTemplateService interface {
	ListPlanTemplates(ctx context.Context, id domain.Identity) ([]domain.TemplateSummary, error)
	CreatePlanTemplate(ctx context.Context, id domain.Identity, input CreateTemplateInput) (*domain.PlanTemplate, error)
	GetPlanTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID) (*domain.PlanTemplate, error)
	UpdatePlanTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID, input UpdateTemplateInput) (*domain.PlanTemplate, error)
	DeletePlanTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID) error
}

type planTemplateService struct {
	templateRepo repository.PlanTemplateRepository
	builder      *treeBuilder
	logger       zerolog.Logger
}

func NewPlanTemplateService(
	templateRepo repository.PlanTemplateRepository,
	exerciseRepo repository.ExerciseRepository,
	sectionRepo repository.SectionRepository,
	ptRepo repository.ProgressionTypeRepository,
	logger zerolog.Logger,
) PlanTemplateService {
	return &planTemplateService{
		templateRepo: templateRepo,
		builder:      newTreeBuilder(exerciseRepo, sectionRepo, ptRepo, newValidator()),
		logger:       logger.With().Str("component", "templates").Logger(),
	}
}

func (s *planTemplateService) ListPlanTemplates(ctx context.Context, id domain.Identity) ([]domain.TemplateSummary, error) {
	if err := Authorize(id, nil, CoachOnly, "plan template"); err != nil {
		return nil, err
	}
	return s.templateRepo.ListByCoach(ctx, id.UserID)
}

func (s *planTemplateService) CreatePlanTemplate(ctx context.Context, id domain.Identity, input CreateTemplateInput) (*domain.PlanTemplate, error) {
	if err := Authorize(id, nil, CoachOnly, "plan template"); err != nil {
		return nil, err
	}
	if err := validateInput(s.builder.validate, input); err != nil {
		return nil, err
	}
	days, err := s.builder.build(ctx, id.UserID, input.Days, true)
	if err != nil {
		return nil, err
	}

	tpl := &domain.PlanTemplate{
		CoachID:     id.UserID,
		CreatedBy:   id.UserID,
		Title:       input.Title,
		MonthlyGoal: input.MonthlyGoal,
		Notes:       input.Notes,
		Status:      orDefaultStatus(input.Status),
		Visibility:  orDefaultVisibility(input.Visibility),
		Days:        days,
	}
	if _, err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	s.logger.Info().Str("template_id", tpl.ID.Hex()).Msg("plan template created")
	return tpl, nil
}

func (s *planTemplateService) GetPlanTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID) (*domain.PlanTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if errors.Is(err, repository.ErrNotFound) {
		tpl = nil
	} else if err != nil {
		return nil, err
	}
	if err := Authorize(id, templateResource(tpl), Owner, "plan template"); err != nil {
		return nil, err
	}
	if err := s.builder.hydrate(ctx, tpl.Days); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *planTemplateService) UpdatePlanTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID, input UpdateTemplateInput) (*domain.PlanTemplate, error) {
	tpl, err := s.GetPlanTemplate(ctx, id, templateID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(s.builder.validate, input); err != nil {
		return nil, err
	}
	if input.Title != nil {
		tpl.Title = *input.Title
	}
	if input.MonthlyGoal != nil {
		tpl.MonthlyGoal = *input.MonthlyGoal
	}
	if input.Notes != nil {
		tpl.Notes = *input.Notes
	}
	if input.Status != nil {
		tpl.Status = *input.Status
	}
	if input.Visibility != nil {
		tpl.Visibility = *input.Visibility
	}
	if err := s.templateRepo.UpdateFields(ctx, tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("plan template")
		}
		return nil, err
	}
	return tpl, nil
}

func (s *planTemplateService) DeletePlanTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID) error {
	if _, err := s.GetPlanTemplate(ctx, id, templateID); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, templateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("plan template")
		}
		return err
	}
	s.logger.Info().Str("template_id", templateID.Hex()).Msg("plan template deleted")
	return nil
}

package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateExerciseInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	MuscleGroup  string `json:"muscleGroup"`
	Pattern      string `json:"pattern"`
	Equipment    string `json:"equipment"`
	MMAxis       string `json:"mmAxis"`
	DefaultTempo string `json:"defaultTempo"`
}

// --- Service Interface ---

// ExerciseService exposes the global exercise catalog. Any coach may add to
// it; nobody edits entries once created.
type ExerciseService interface {
	ListExercises(ctx context.Context, id domain.Identity) ([]domain.Exercise, error)
	GetExercise(ctx context.Context, id domain.Identity, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	CreateExercise(ctx context.Context, id domain.Identity, input CreateExerciseInput) (*domain.Exercise, error)
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	validate     *validator.Validate
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		validate:     newValidator(),
	}
}

// ListExercises is open to coaches and clients; clients need names to read
// their plans.
func (s *exerciseService) ListExercises(ctx context.Context, id domain.Identity) ([]domain.Exercise, error) {
	if err := requireParticipant(id, "exercise catalog"); err != nil {
		return nil, err
	}
	return s.exerciseRepo.List(ctx)
}

func (s *exerciseService) GetExercise(ctx context.Context, id domain.Identity, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if err := requireParticipant(id, "exercise"); err != nil {
		return nil, err
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("exercise")
		}
		return nil, err
	}
	return exercise, nil
}

// CreateExercise adds a catalog entry and records which coach added it.
func (s *exerciseService) CreateExercise(ctx context.Context, id domain.Identity, input CreateExerciseInput) (*domain.Exercise, error) {
	if err := Authorize(id, nil, CoachOnly, "exercise catalog"); err != nil {
		return nil, err
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	createdBy := id.UserID
	exercise := &domain.Exercise{
		CreatedBy:    &createdBy,
		Name:         input.Name,
		MuscleGroup:  input.MuscleGroup,
		Pattern:      input.Pattern,
		Equipment:    input.Equipment,
		MMAxis:       input.MMAxis,
		DefaultTempo: input.DefaultTempo,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

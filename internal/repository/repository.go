package repository

import (
	"alcyxob/coach-plans/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository stores login identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) // ErrDuplicate on email clash
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CoachRepository stores coach profiles keyed by user ID.
type CoachRepository interface {
	Create(ctx context.Context, coach *domain.Coach) error // ErrDuplicate if the profile exists
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Coach, error)
}

// ClientRepository stores client profiles keyed by user ID.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error // ErrDuplicate if the profile exists
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Client, error)
	// ClaimForCoach sets the coach of an unassigned client. ErrNotFound when
	// the client does not exist or already has a coach.
	ClaimForCoach(ctx context.Context, clientID, coachID primitive.ObjectID) error
	UpdateDetails(ctx context.Context, clientID primitive.ObjectID, docID, notes string) error
	// NextPlanNumber atomically increments and returns the client's plan counter.
	NextPlanNumber(ctx context.Context, clientID primitive.ObjectID) (int, error)
}

// ExerciseRepository is the global exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetByIDs skips IDs that do not exist.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error) // sorted by name
	Count(ctx context.Context) (int64, error)
}

// SectionRepository stores reusable section templates.
type SectionRepository interface {
	Create(ctx context.Context, section *domain.Section) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Section, error)
	ListVisible(ctx context.Context, coachID primitive.ObjectID) ([]domain.Section, error) // global + own, sorted by name
	Rename(ctx context.Context, id primitive.ObjectID, name string) error
}

// ProgressionTypeRepository stores coach-scoped progression tags.
type ProgressionTypeRepository interface {
	Create(ctx context.Context, pt *domain.ProgressionType) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressionType, error)
	// GetByIDs skips IDs that do not exist.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ProgressionType, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgressionType, error) // sorted by name
	Update(ctx context.Context, pt *domain.ProgressionType) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PlanRepository stores plans with their embedded day tree.
type PlanRepository interface {
	// Create inserts the whole tree in one write. ErrDuplicate when the
	// (clientId, planNumberPerClient) pair is taken.
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.PlanSummary, error) // planNumber desc
	CountByClientAndCoach(ctx context.Context, clientID, coachID primitive.ObjectID) (int64, error)
	UpdateFields(ctx context.Context, plan *domain.Plan) error // top-level fields only
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PlanTemplateRepository stores templates with their embedded day tree.
type PlanTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.PlanTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTemplate, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.TemplateSummary, error) // updatedAt desc
	UpdateFields(ctx context.Context, tpl *domain.PlanTemplate) error                              // top-level fields only
	Delete(ctx context.Context, id primitive.ObjectID) error
}

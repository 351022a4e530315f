package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateClientInput identifies the user to add, by ID or by email.
type CreateClientInput struct {
	UserID primitive.ObjectID `json:"userId"`
	Email  string             `json:"email" validate:"omitempty,email"`
	DocID  string             `json:"docId" validate:"max=64"`
	Notes  string             `json:"notes" validate:"max=2000"`
}

type UpdateClientInput struct {
	DocID *string `json:"docId" validate:"omitempty,max=64"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// --- Service Interface ---

// ClientService manages a coach's roster.
type ClientService interface {
	ListClientsForCoach(ctx context.Context, id domain.Identity) ([]domain.ClientSummary, error)
	GetClient(ctx context.Context, id domain.Identity, clientID primitive.ObjectID) (*domain.ClientSummary, error)
	CreateClient(ctx context.Context, id domain.Identity, input CreateClientInput) (*domain.ClientSummary, error)
	UpdateClient(ctx context.Context, id domain.Identity, clientID primitive.ObjectID, input UpdateClientInput) (*domain.ClientSummary, error)
}

// --- Service Implementation ---

type clientService struct {
	userRepo   repository.UserRepository
	coachRepo  repository.CoachRepository
	clientRepo repository.ClientRepository
	planRepo   repository.PlanRepository
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewClientService(
	userRepo repository.UserRepository,
	coachRepo repository.CoachRepository,
	clientRepo repository.ClientRepository,
	planRepo repository.PlanRepository,
	logger zerolog.Logger,
) ClientService {
	return &clientService{
		userRepo:   userRepo,
		coachRepo:  coachRepo,
		clientRepo: clientRepo,
		planRepo:   planRepo,
		validate:   newValidator(),
		logger:     logger.With().Str("component", "clients").Logger(),
	}
}

// ListClientsForCoach returns the roster sorted by user name.
func (s *clientService) ListClientsForCoach(ctx context.Context, id domain.Identity) ([]domain.ClientSummary, error) {
	if err := Authorize(id, nil, CoachOnly, "client"); err != nil {
		return nil, err
	}
	clients, err := s.clientRepo.ListByCoach(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return []domain.ClientSummary{}, nil
	}

	ids := make([]primitive.ObjectID, len(clients))
	for i, c := range clients {
		ids[i] = c.UserID
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]domain.ClientSummary, 0, len(clients))
	for _, c := range clients {
		count, err := s.planRepo.CountByClientAndCoach(ctx, c.UserID, id.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ClientSummary{Client: c, User: byID[c.UserID], PlanCount: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].User.Name) < strings.ToLower(out[j].User.Name)
	})
	return out, nil
}

func (s *clientService) GetClient(ctx context.Context, id domain.Identity, clientID primitive.ObjectID) (*domain.ClientSummary, error) {
	client, err := loadRosterClient(ctx, s.clientRepo, id, clientID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, id, client)
}

// CreateClient puts a user on the calling coach's roster. A self-registered
// client without a coach is claimed; a user with no profile yet gets one.
func (s *clientService) CreateClient(ctx context.Context, id domain.Identity, input CreateClientInput) (*domain.ClientSummary, error) {
	if err := Authorize(id, nil, CoachOnly, "client"); err != nil {
		return nil, err
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	// 1. Find the user.
	user, err := s.findUser(ctx, input)
	if err != nil {
		return nil, err
	}

	// 2. A coach cannot be anyone's client.
	if _, err := s.coachRepo.GetByUserID(ctx, user.ID); err == nil {
		return nil, newError(KindConflict, "user is a coach and cannot be added as a client")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 3. Create or claim the client profile.
	existing, err := s.clientRepo.GetByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		coachID := id.UserID
		client := &domain.Client{UserID: user.ID, CoachID: &coachID, DocID: input.DocID, Notes: input.Notes}
		if err := s.clientRepo.Create(ctx, client); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, newError(KindConflict, "client already exists")
			}
			return nil, err
		}
	case err != nil:
		return nil, err
	case existing.IsManagedBy(id.UserID):
		return nil, newError(KindConflict, "client already exists")
	case existing.CoachID != nil:
		return nil, newError(KindConflict, "client is already assigned to another coach")
	default:
		if err := s.clientRepo.ClaimForCoach(ctx, user.ID, id.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Another coach claimed the client between the read and the write.
				return nil, newError(KindConflict, "client is already assigned to another coach")
			}
			return nil, err
		}
		if input.DocID != "" || input.Notes != "" {
			if err := s.clientRepo.UpdateDetails(ctx, user.ID, input.DocID, input.Notes); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info().Str("client_id", user.ID.Hex()).Str("coach_id", id.UserID.Hex()).Msg("client added to roster")
	return s.GetClient(ctx, id, user.ID)
}

func (s *clientService) UpdateClient(ctx context.Context, id domain.Identity, clientID primitive.ObjectID, input UpdateClientInput) (*domain.ClientSummary, error) {
	client, err := loadRosterClient(ctx, s.clientRepo, id, clientID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}
	docID, notes := client.DocID, client.Notes
	if input.DocID != nil {
		docID = *input.DocID
	}
	if input.Notes != nil {
		notes = *input.Notes
	}
	if err := s.clientRepo.UpdateDetails(ctx, clientID, docID, notes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("client")
		}
		return nil, err
	}
	return s.GetClient(ctx, id, clientID)
}

func (s *clientService) findUser(ctx context.Context, input CreateClientInput) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case input.UserID != primitive.NilObjectID:
		user, err = s.userRepo.GetByID(ctx, input.UserID)
	case input.Email != "":
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	default:
		return nil, validationError("userId or email is required")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("user")
	}
	return user, err
}

func (s *clientService) summarize(ctx context.Context, id domain.Identity, client *domain.Client) (*domain.ClientSummary, error) {
	user, err := s.userRepo.GetByID(ctx, client.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("client")
		}
		return nil, err
	}
	count, err := s.planRepo.CountByClientAndCoach(ctx, client.UserID, id.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.ClientSummary{Client: *client, User: *user, PlanCount: count}, nil
}

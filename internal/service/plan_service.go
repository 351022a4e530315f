package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/observability"
	"alcyxob/coach-plans/internal/repository"
	"alcyxob/coach-plans/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxPlanNumberAttempts bounds retries when a freshly allocated number is
// already taken by the unique (clientId, planNumberPerClient) index.
const maxPlanNumberAttempts = 5

// --- Inputs ---

type CreatePlanInput struct {
	ClientID    primitive.ObjectID    `json:"clientId"`
	Title       string                `json:"title" validate:"min=3"`
	DateStart   time.Time             `json:"dateStart"`
	DateEnd     time.Time             `json:"dateEnd"`
	MonthlyGoal string                `json:"monthlyGoal"`
	Notes       string                `json:"notes"`
	Status      domain.PlanStatus     `json:"status" validate:"omitempty,oneof=draft published archived"`
	Visibility  domain.PlanVisibility `json:"visibility" validate:"omitempty,oneof=private public"`
	Days        []DayInput            `json:"days" validate:"dive"`
}

// UpdatePlanInput changes top-level fields only; nil fields are left alone.
type UpdatePlanInput struct {
	Title       *string                `json:"title" validate:"omitempty,min=3"`
	MonthlyGoal *string                `json:"monthlyGoal"`
	Notes       *string                `json:"notes"`
	Status      *domain.PlanStatus     `json:"status" validate:"omitempty,oneof=draft published archived"`
	Visibility  *domain.PlanVisibility `json:"visibility" validate:"omitempty,oneof=private public"`
	DateStart   *time.Time             `json:"dateStart"`
	DateEnd     *time.Time             `json:"dateEnd"`
}

// DuplicatePlanInput overrides the copied client and dates when set.
type DuplicatePlanInput struct {
	Title     string              `json:"title" validate:"min=3"`
	ClientID  *primitive.ObjectID `json:"clientId"`
	DateStart *time.Time          `json:"dateStart"`
	DateEnd   *time.Time          `json:"dateEnd"`
}

type FromTemplateInput struct {
	ClientID  primitive.ObjectID `json:"clientId"`
	Title     string             `json:"title" validate:"min=3"`
	DateStart time.Time          `json:"dateStart"`
	DateEnd   time.Time          `json:"dateEnd"`
}

// PlanExport points at a JSON export of a plan in object storage.
type PlanExport struct {
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// --- Service Interface ---

type PlanService interface {
	CreatePlan(ctx context.Context, id domain.Identity, input CreatePlanInput) (*domain.Plan, error)
	GetPlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) (*domain.Plan, error)
	ListPlansForClient(ctx context.Context, id domain.Identity, clientID primitive.ObjectID) ([]domain.PlanSummary, error)
	ListMyPlans(ctx context.Context, id domain.Identity) ([]domain.PlanSummary, error)
	UpdatePlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID, input UpdatePlanInput) (*domain.Plan, error)
	PublishPlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) (*domain.Plan, error)
	DeletePlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) error
	DuplicatePlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID, input DuplicatePlanInput) (*domain.Plan, error)
	CreatePlanFromTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID, input FromTemplateInput) (*domain.Plan, error)
	ExportPlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) (*PlanExport, error)
}

// --- Service Implementation ---

type planService struct {
	planRepo      repository.PlanRepository
	templateRepo  repository.PlanTemplateRepository
	clientRepo    repository.ClientRepository
	builder       *treeBuilder
	files         storage.FileStorage // nil disables exports
	presignExpiry time.Duration
	logger        zerolog.Logger
}

// PlanServiceDeps groups the collaborators of NewPlanService.
type PlanServiceDeps struct {
	Plans            repository.PlanRepository
	Templates        repository.PlanTemplateRepository
	Clients          repository.ClientRepository
	Exercises        repository.ExerciseRepository
	Sections         repository.SectionRepository
	ProgressionTypes repository.ProgressionTypeRepository
	Files            storage.FileStorage
	PresignExpiry    time.Duration
	Logger           zerolog.Logger
}

func NewPlanService(deps PlanServiceDeps) PlanService {
	return &planService{
		planRepo:      deps.Plans,
		templateRepo:  deps.Templates,
		clientRepo:    deps.Clients,
		builder:       newTreeBuilder(deps.Exercises, deps.Sections, deps.ProgressionTypes, newValidator()),
		files:         deps.Files,
		presignExpiry: deps.PresignExpiry,
		logger:        deps.Logger.With().Str("component", "plans").Logger(),
	}
}

func (s *planService) CreatePlan(ctx context.Context, id domain.Identity, input CreatePlanInput) (*domain.Plan, error) {
	if err := Authorize(id, nil, CoachOnly, "plan"); err != nil {
		return nil, err
	}
	if err := validateInput(s.builder.validate, input); err != nil {
		return nil, err
	}
	if err := checkDateRange(input.DateStart, input.DateEnd); err != nil {
		return nil, err
	}
	if _, err := loadRosterClient(ctx, s.clientRepo, id, input.ClientID); err != nil {
		return nil, err
	}

	days, err := s.builder.build(ctx, id.UserID, input.Days, true)
	if err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		CoachID:     id.UserID,
		ClientID:    input.ClientID,
		CreatedBy:   id.UserID,
		Title:       input.Title,
		DateStart:   input.DateStart,
		DateEnd:     input.DateEnd,
		MonthlyGoal: input.MonthlyGoal,
		Notes:       input.Notes,
		Status:      orDefaultStatus(input.Status),
		Visibility:  orDefaultVisibility(input.Visibility),
		Days:        days,
	}
	if err := s.insertNumbered(ctx, plan); err != nil {
		return nil, err
	}
	observability.RecordPlanCreated(observability.SourcePayload)
	s.logger.Info().
		Str("plan_id", plan.ID.Hex()).
		Str("client_id", plan.ClientID.Hex()).
		Int("plan_number", plan.PlanNumberPerClient).
		Msg("plan created")
	return plan, nil
}

func (s *planService) GetPlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(id, planResource(plan), OwnerOrAssignee, "plan"); err != nil {
		return nil, err
	}
	if err := s.builder.hydrate(ctx, plan.Days); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListPlansForClient(ctx context.Context, id domain.Identity, clientID primitive.ObjectID) ([]domain.PlanSummary, error) {
	if err := Authorize(id, nil, CoachOnly, "client"); err != nil {
		return nil, err
	}
	if _, err := loadRosterClient(ctx, s.clientRepo, id, clientID); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	// A client moved between coaches keeps older plans from the previous coach.
	out := make([]domain.PlanSummary, 0, len(plans))
	for _, p := range plans {
		if p.CoachID == id.UserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *planService) ListMyPlans(ctx context.Context, id domain.Identity) ([]domain.PlanSummary, error) {
	if err := requireParticipant(id, "plan"); err != nil {
		return nil, err
	}
	if !id.IsClient() {
		return nil, forbidden("plan")
	}
	return s.planRepo.ListByClient(ctx, id.UserID)
}

func (s *planService) UpdatePlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID, input UpdatePlanInput) (*domain.Plan, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(id, planResource(plan), Owner, "plan"); err != nil {
		return nil, err
	}
	if err := validateInput(s.builder.validate, input); err != nil {
		return nil, err
	}

	if input.Title != nil {
		plan.Title = *input.Title
	}
	if input.MonthlyGoal != nil {
		plan.MonthlyGoal = *input.MonthlyGoal
	}
	if input.Notes != nil {
		plan.Notes = *input.Notes
	}
	if input.Status != nil {
		plan.Status = *input.Status
	}
	if input.Visibility != nil {
		plan.Visibility = *input.Visibility
	}
	if input.DateStart != nil {
		plan.DateStart = *input.DateStart
	}
	if input.DateEnd != nil {
		plan.DateEnd = *input.DateEnd
	}
	if err := checkDateRange(plan.DateStart, plan.DateEnd); err != nil {
		return nil, err
	}

	if err := s.planRepo.UpdateFields(ctx, plan); err != nil {
		return nil, s.mapRepoErr(err, "plan")
	}
	return plan, nil
}

func (s *planService) PublishPlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) (*domain.Plan, error) {
	status := domain.StatusPublished
	plan, err := s.UpdatePlan(ctx, id, planID, UpdatePlanInput{Status: &status})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("plan_id", plan.ID.Hex()).Msg("plan published")
	return plan, nil
}

func (s *planService) DeletePlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) error {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return err
	}
	if err := Authorize(id, planResource(plan), Owner, "plan"); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return s.mapRepoErr(err, "plan")
	}

	if s.files != nil {
		// A stale export would outlive its plan otherwise.
		if err := s.files.DeleteObject(ctx, exportKey(plan)); err != nil {
			s.logger.Warn().Err(err).Str("plan_id", planID.Hex()).Msg("failed to remove plan export")
		}
	}
	s.logger.Info().Str("plan_id", planID.Hex()).Msg("plan deleted")
	return nil
}

func (s *planService) DuplicatePlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID, input DuplicatePlanInput) (*domain.Plan, error) {
	// 1. Load and authorize the source.
	src, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(id, planResource(src), Owner, "plan"); err != nil {
		return nil, err
	}
	if err := validateInput(s.builder.validate, input); err != nil {
		return nil, err
	}

	// 2. Resolve overrides.
	clientID := src.ClientID
	if input.ClientID != nil {
		clientID = *input.ClientID
	}
	dateStart, dateEnd := src.DateStart, src.DateEnd
	if input.DateStart != nil {
		dateStart = *input.DateStart
	}
	if input.DateEnd != nil {
		dateEnd = *input.DateEnd
	}
	if err := checkDateRange(dateStart, dateEnd); err != nil {
		return nil, err
	}
	if _, err := loadRosterClient(ctx, s.clientRepo, id, clientID); err != nil {
		return nil, err
	}

	// 3. Rebuild the tree with fresh IDs.
	days, err := s.builder.build(ctx, id.UserID, daysToInput(src.Days), false)
	if err != nil {
		return nil, err
	}
	plan := &domain.Plan{
		CoachID:     id.UserID,
		ClientID:    clientID,
		CreatedBy:   id.UserID,
		Title:       input.Title,
		DateStart:   dateStart,
		DateEnd:     dateEnd,
		MonthlyGoal: src.MonthlyGoal,
		Notes:       src.Notes,
		Status:      domain.StatusDraft,
		Visibility:  src.Visibility,
		Days:        days,
	}
	if err := s.insertNumbered(ctx, plan); err != nil {
		return nil, err
	}
	observability.RecordPlanCreated(observability.SourceDuplicate)
	s.logger.Info().
		Str("source_plan_id", src.ID.Hex()).
		Str("plan_id", plan.ID.Hex()).
		Int("plan_number", plan.PlanNumberPerClient).
		Msg("plan duplicated")
	return plan, nil
}

func (s *planService) CreatePlanFromTemplate(ctx context.Context, id domain.Identity, templateID primitive.ObjectID, input FromTemplateInput) (*domain.Plan, error) {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if errors.Is(err, repository.ErrNotFound) {
		tpl = nil
	}
	if err := Authorize(id, templateResource(tpl), Owner, "plan template"); err != nil {
		return nil, err
	}
	if err := validateInput(s.builder.validate, input); err != nil {
		return nil, err
	}
	if err := checkDateRange(input.DateStart, input.DateEnd); err != nil {
		return nil, err
	}
	if _, err := loadRosterClient(ctx, s.clientRepo, id, input.ClientID); err != nil {
		return nil, err
	}

	days, err := s.builder.build(ctx, id.UserID, daysToInput(tpl.Days), false)
	if err != nil {
		return nil, err
	}
	plan := &domain.Plan{
		CoachID:     id.UserID,
		ClientID:    input.ClientID,
		CreatedBy:   id.UserID,
		Title:       input.Title,
		DateStart:   input.DateStart,
		DateEnd:     input.DateEnd,
		MonthlyGoal: tpl.MonthlyGoal,
		Notes:       tpl.Notes,
		Status:      domain.StatusDraft,
		Visibility:  tpl.Visibility,
		Days:        days,
	}
	if err := s.insertNumbered(ctx, plan); err != nil {
		return nil, err
	}
	observability.RecordPlanCreated(observability.SourceTemplate)
	s.logger.Info().
		Str("template_id", tpl.ID.Hex()).
		Str("plan_id", plan.ID.Hex()).
		Int("plan_number", plan.PlanNumberPerClient).
		Msg("plan created from template")
	return plan, nil
}

func (s *planService) ExportPlan(ctx context.Context, id domain.Identity, planID primitive.ObjectID) (*PlanExport, error) {
	plan, err := s.GetPlan(ctx, id, planID)
	if err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, newError(KindUnavailable, "plan export is not configured")
	}

	body, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	key := exportKey(plan)
	if err := s.files.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, err
	}

	expiry := s.presignExpiry
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, expiry)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("plan_id", plan.ID.Hex()).Str("key", key).Msg("plan export written")
	return &PlanExport{ObjectKey: key, URL: url, ExpiresAt: time.Now().Add(expiry)}, nil
}

// insertNumbered allocates the next number for the plan's client and inserts
// the plan. A collision on the unique index means the counter lagged behind
// existing data, so a new number is drawn.
func (s *planService) insertNumbered(ctx context.Context, plan *domain.Plan) error {
	for attempt := 1; attempt <= maxPlanNumberAttempts; attempt++ {
		n, err := s.clientRepo.NextPlanNumber(ctx, plan.ClientID)
		if err != nil {
			return s.mapRepoErr(err, "client")
		}
		plan.PlanNumberPerClient = n
		plan.ID = primitive.NilObjectID

		insertedID, err := s.planRepo.Create(ctx, plan)
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Warn().
				Str("client_id", plan.ClientID.Hex()).
				Int("plan_number", n).
				Int("attempt", attempt).
				Msg("plan number already taken, retrying")
			continue
		}
		if err != nil {
			return err
		}
		plan.ID = insertedID
		return nil
	}
	return newError(KindConflict, "could not allocate a plan number for this client")
}

func (s *planService) loadPlan(ctx context.Context, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return plan, err
}

func (s *planService) mapRepoErr(err error, kind string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(kind)
	}
	return err
}

// exportKey is stable per plan so a re-export overwrites the previous file.
func exportKey(p *domain.Plan) string {
	return fmt.Sprintf("plans/%s/%d-%s.json", p.ClientID.Hex(), p.PlanNumberPerClient, p.ID.Hex())
}

// --- Shared helpers ---

// loadRosterClient returns the client profile when it is on the calling
// coach's roster.
func loadRosterClient(ctx context.Context, clients repository.ClientRepository, id domain.Identity, clientID primitive.ObjectID) (*domain.Client, error) {
	if clientID == primitive.NilObjectID {
		return nil, validationError("clientId is required")
	}
	client, err := clients.GetByUserID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		client = nil
	} else if err != nil {
		return nil, err
	}
	if err := Authorize(id, clientResource(client), Owner, "client"); err != nil {
		return nil, err
	}
	return client, nil
}

func checkDateRange(start, end time.Time) error {
	if start.IsZero() {
		return validationError("dateStart is required")
	}
	if end.IsZero() {
		return validationError("dateEnd is required")
	}
	if start.After(end) {
		return validationError("dateStart must not be after dateEnd")
	}
	return nil
}

func orDefaultStatus(s domain.PlanStatus) domain.PlanStatus {
	if s == "" {
		return domain.StatusDraft
	}
	return s
}

func orDefaultVisibility(v domain.PlanVisibility) domain.PlanVisibility {
	if v == "" {
		return domain.VisibilityPrivate
	}
	return v
}

// Package memory implements the repository interfaces in process memory.
// It backs unit tests and local development without a MongoDB instance.
package memory

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind one lock. Records are copied on the way
// in and out, so callers never share memory with the store.
type Store struct {
	mu               sync.RWMutex
	users            map[primitive.ObjectID]domain.User
	coaches          map[primitive.ObjectID]domain.Coach
	clients          map[primitive.ObjectID]domain.Client
	exercises        map[primitive.ObjectID]domain.Exercise
	sections         map[primitive.ObjectID]domain.Section
	progressionTypes map[primitive.ObjectID]domain.ProgressionType
	plans            map[primitive.ObjectID]domain.Plan
	templates        map[primitive.ObjectID]domain.PlanTemplate
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:            make(map[primitive.ObjectID]domain.User),
		coaches:          make(map[primitive.ObjectID]domain.Coach),
		clients:          make(map[primitive.ObjectID]domain.Client),
		exercises:        make(map[primitive.ObjectID]domain.Exercise),
		sections:         make(map[primitive.ObjectID]domain.Section),
		progressionTypes: make(map[primitive.ObjectID]domain.ProgressionType),
		plans:            make(map[primitive.ObjectID]domain.Plan),
		templates:        make(map[primitive.ObjectID]domain.PlanTemplate),
	}
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Coaches() repository.CoachRepository      { return coachRepo{s} }
func (s *Store) Clients() repository.ClientRepository     { return clientRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository { return exerciseRepo{s} }
func (s *Store) Sections() repository.SectionRepository   { return sectionRepo{s} }
func (s *Store) ProgressionTypes() repository.ProgressionTypeRepository {
	return progressionTypeRepo{s}
}
func (s *Store) Plans() repository.PlanRepository                 { return planRepo{s} }
func (s *Store) PlanTemplates() repository.PlanTemplateRepository { return templateRepo{s} }

func now() time.Time {
	return time.Now().UTC()
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := []domain.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r userRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// --- profiles ---

type coachRepo struct{ s *Store }

func (r coachRepo) Create(ctx context.Context, coach *domain.Coach) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.coaches[coach.UserID]; ok {
		return repository.ErrDuplicate
	}
	coach.CreatedAt = now()
	r.s.coaches[coach.UserID] = *coach
	return nil
}

func (r coachRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Coach, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.coaches[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type clientRepo struct{ s *Store }

func (r clientRepo) Create(ctx context.Context, client *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.UserID]; ok {
		return repository.ErrDuplicate
	}
	client.CreatedAt = now()
	client.UpdatedAt = client.CreatedAt
	r.s.clients[client.UserID] = copyClient(*client)
	return nil
}

func (r clientRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = copyClient(c)
	return &c, nil
}

func (r clientRepo) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	clients := []domain.Client{}
	for _, c := range r.s.clients {
		if c.IsManagedBy(coachID) {
			clients = append(clients, copyClient(c))
		}
	}
	return clients, nil
}

func (r clientRepo) ClaimForCoach(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[clientID]
	if !ok || c.CoachID != nil {
		return repository.ErrNotFound
	}
	id := coachID
	c.CoachID = &id
	c.UpdatedAt = now()
	r.s.clients[clientID] = c
	return nil
}

func (r clientRepo) UpdateDetails(ctx context.Context, clientID primitive.ObjectID, docID, notes string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	c.DocID = docID
	c.Notes = notes
	c.UpdatedAt = now()
	r.s.clients[clientID] = c
	return nil
}

func (r clientRepo) NextPlanNumber(ctx context.Context, clientID primitive.ObjectID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[clientID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	c.LastPlanNumber++
	r.s.clients[clientID] = c
	return c.LastPlanNumber, nil
}

func copyClient(c domain.Client) domain.Client {
	if c.CoachID != nil {
		id := *c.CoachID
		c.CoachID = &id
	}
	return c
}

// --- catalog ---

type exerciseRepo struct{ s *Store }

func (r exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = now()
	exercise.UpdatedAt = exercise.CreatedAt
	r.s.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r exerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r exerciseRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	exercises := []domain.Exercise{}
	for _, id := range ids {
		if e, ok := r.s.exercises[id]; ok {
			exercises = append(exercises, e)
		}
	}
	return exercises, nil
}

func (r exerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	exercises := make([]domain.Exercise, 0, len(r.s.exercises))
	for _, e := range r.s.exercises {
		exercises = append(exercises, e)
	}
	sort.Slice(exercises, func(i, j int) bool { return exercises[i].Name < exercises[j].Name })
	return exercises, nil
}

func (r exerciseRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.exercises)), nil
}

type sectionRepo struct{ s *Store }

func (r sectionRepo) Create(ctx context.Context, section *domain.Section) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	section.ID = primitive.NewObjectID()
	section.CreatedAt = now()
	section.UpdatedAt = section.CreatedAt
	r.s.sections[section.ID] = *section
	return section.ID, nil
}

func (r sectionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Section, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sec, ok := r.s.sections[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sec, nil
}

func (r sectionRepo) ListVisible(ctx context.Context, coachID primitive.ObjectID) ([]domain.Section, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sections := []domain.Section{}
	for _, sec := range r.s.sections {
		if sec.VisibleTo(coachID) {
			sections = append(sections, sec)
		}
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Name < sections[j].Name })
	return sections, nil
}

func (r sectionRepo) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sec, ok := r.s.sections[id]
	if !ok {
		return repository.ErrNotFound
	}
	sec.Name = name
	sec.UpdatedAt = now()
	r.s.sections[id] = sec
	return nil
}

type progressionTypeRepo struct{ s *Store }

func (r progressionTypeRepo) Create(ctx context.Context, pt *domain.ProgressionType) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pt.ID = primitive.NewObjectID()
	pt.CreatedAt = now()
	pt.UpdatedAt = pt.CreatedAt
	r.s.progressionTypes[pt.ID] = *pt
	return pt.ID, nil
}

func (r progressionTypeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressionType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	pt, ok := r.s.progressionTypes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &pt, nil
}

func (r progressionTypeRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ProgressionType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	types := []domain.ProgressionType{}
	for _, id := range ids {
		if pt, ok := r.s.progressionTypes[id]; ok {
			types = append(types, pt)
		}
	}
	return types, nil
}

func (r progressionTypeRepo) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgressionType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	types := []domain.ProgressionType{}
	for _, pt := range r.s.progressionTypes {
		if pt.CoachID == coachID {
			types = append(types, pt)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (r progressionTypeRepo) Update(ctx context.Context, pt *domain.ProgressionType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.progressionTypes[pt.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = pt.Name
	existing.ColorHex = pt.ColorHex
	existing.Description = pt.Description
	existing.IsActive = pt.IsActive
	existing.UpdatedAt = now()
	pt.UpdatedAt = existing.UpdatedAt
	r.s.progressionTypes[pt.ID] = existing
	return nil
}

func (r progressionTypeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.progressionTypes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.progressionTypes, id)
	return nil
}

// --- plans ---

type planRepo struct{ s *Store }

func (r planRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.plans {
		if p.ClientID == plan.ClientID && p.PlanNumberPerClient == plan.PlanNumberPerClient {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = now()
	plan.UpdatedAt = plan.CreatedAt
	if plan.Days == nil {
		plan.Days = []domain.Day{}
	}
	stored := *plan
	stored.Days = domain.CopyDays(plan.Days)
	r.s.plans[plan.ID] = stored
	return plan.ID, nil
}

func (r planRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Days = domain.CopyDays(p.Days)
	return &p, nil
}

func (r planRepo) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.PlanSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	plans := []domain.PlanSummary{}
	for _, p := range r.s.plans {
		if p.ClientID == clientID {
			plans = append(plans, p.Summary())
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].PlanNumberPerClient > plans[j].PlanNumberPerClient })
	return plans, nil
}

func (r planRepo) CountByClientAndCoach(ctx context.Context, clientID, coachID primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, p := range r.s.plans {
		if p.ClientID == clientID && p.CoachID == coachID {
			n++
		}
	}
	return n, nil
}

func (r planRepo) UpdateFields(ctx context.Context, plan *domain.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = plan.Title
	existing.DateStart = plan.DateStart
	existing.DateEnd = plan.DateEnd
	existing.MonthlyGoal = plan.MonthlyGoal
	existing.Notes = plan.Notes
	existing.Status = plan.Status
	existing.Visibility = plan.Visibility
	existing.UpdatedAt = now()
	plan.UpdatedAt = existing.UpdatedAt
	r.s.plans[plan.ID] = existing
	return nil
}

func (r planRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.plans, id)
	return nil
}

type templateRepo struct{ s *Store }

func (r templateRepo) Create(ctx context.Context, tpl *domain.PlanTemplate) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tpl.ID = primitive.NewObjectID()
	tpl.CreatedAt = now()
	tpl.UpdatedAt = tpl.CreatedAt
	if tpl.Days == nil {
		tpl.Days = []domain.Day{}
	}
	stored := *tpl
	stored.Days = domain.CopyDays(tpl.Days)
	r.s.templates[tpl.ID] = stored
	return tpl.ID, nil
}

func (r templateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Days = domain.CopyDays(t.Days)
	return &t, nil
}

func (r templateRepo) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.TemplateSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	templates := []domain.TemplateSummary{}
	for _, t := range r.s.templates {
		if t.CoachID == coachID {
			templates = append(templates, t.Summary())
		}
	}
	sort.SliceStable(templates, func(i, j int) bool { return templates[i].UpdatedAt.After(templates[j].UpdatedAt) })
	return templates, nil
}

func (r templateRepo) UpdateFields(ctx context.Context, tpl *domain.PlanTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.templates[tpl.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = tpl.Title
	existing.MonthlyGoal = tpl.MonthlyGoal
	existing.Notes = tpl.Notes
	existing.Status = tpl.Status
	existing.Visibility = tpl.Visibility
	existing.UpdatedAt = now()
	tpl.UpdatedAt = existing.UpdatedAt
	r.s.templates[tpl.ID] = existing
	return nil
}

func (r templateRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.templates, id)
	return nil
}

package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository/memory"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeFiles is an in-memory FileStorage.
type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: make(map[string][]byte)}
}

func (f *fakeFiles) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), body...)
	return nil
}

func (f *fakeFiles) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://files.test/" + key + "?expires=" + expires.String(), nil
}

func (f *fakeFiles) DeleteObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	files *fakeFiles

	plans     PlanService
	templates PlanTemplateService
	clients   ClientService
	catalog   CatalogService
	exercises ExerciseService

	coach       domain.Identity // owns client
	otherCoach  domain.Identity // owns otherClient
	client      domain.Identity
	otherClient domain.Identity
	stranger    domain.Identity // user with no profile

	coreSectionID     primitive.ObjectID // global
	strengthSectionID primitive.ObjectID // global
	privateSectionID  primitive.ObjectID // owned by otherCoach
	benchID           primitive.ObjectID
	twistID           primitive.ObjectID
	heavyPTID         primitive.ObjectID // owned by coach
	foreignPTID       primitive.ObjectID // owned by otherCoach
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	logger := zerolog.Nop()

	f := &fixture{ctx: ctx, store: store, files: newFakeFiles()}

	f.coach = f.addCoach(t, "Coach Demo", "coach@example.com")
	f.otherCoach = f.addCoach(t, "Other Coach", "other.coach@example.com")
	f.client = f.addClient(t, "Client Demo", "client@example.com", &f.coach.UserID)
	f.otherClient = f.addClient(t, "Other Client", "other.client@example.com", &f.otherCoach.UserID)
	f.stranger = f.addUser(t, "Stranger", "stranger@example.com")

	f.coreSectionID = f.addSection(t, "Core Circuit", nil)
	f.strengthSectionID = f.addSection(t, "Strength Station", nil)
	f.privateSectionID = f.addSection(t, "Other Private", &f.otherCoach.UserID)

	f.benchID = f.addExercise(t, "BARBELL BENCH PRESS")
	f.twistID = f.addExercise(t, "WEIGHTED RUSSIAN TWIST")

	f.heavyPTID = f.addProgressionType(t, f.coach.UserID, "Heavy")
	f.foreignPTID = f.addProgressionType(t, f.otherCoach.UserID, "Theirs")

	f.plans = NewPlanService(PlanServiceDeps{
		Plans:            store.Plans(),
		Templates:        store.PlanTemplates(),
		Clients:          store.Clients(),
		Exercises:        store.Exercises(),
		Sections:         store.Sections(),
		ProgressionTypes: store.ProgressionTypes(),
		Files:            f.files,
		PresignExpiry:    10 * time.Minute,
		Logger:           logger,
	})
	f.templates = NewPlanTemplateService(store.PlanTemplates(), store.Exercises(), store.Sections(), store.ProgressionTypes(), logger)
	f.clients = NewClientService(store.Users(), store.Coaches(), store.Clients(), store.Plans(), logger)
	f.catalog = NewCatalogService(store.ProgressionTypes(), store.Sections())
	f.exercises = NewExerciseService(store.Exercises())
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string) domain.Identity {
	t.Helper()
	id, err := f.store.Users().Create(f.ctx, &domain.User{Name: name, Email: email})
	require.NoError(t, err)
	return domain.Identity{UserID: id, Role: domain.RoleNone}
}

func (f *fixture) addCoach(t *testing.T, name, email string) domain.Identity {
	t.Helper()
	id := f.addUser(t, name, email)
	require.NoError(t, f.store.Coaches().Create(f.ctx, &domain.Coach{UserID: id.UserID}))
	id.Role = domain.RoleCoach
	return id
}

func (f *fixture) addClient(t *testing.T, name, email string, coachID *primitive.ObjectID) domain.Identity {
	t.Helper()
	id := f.addUser(t, name, email)
	require.NoError(t, f.store.Clients().Create(f.ctx, &domain.Client{UserID: id.UserID, CoachID: coachID}))
	id.Role = domain.RoleClient
	return id
}

func (f *fixture) addSection(t *testing.T, name string, owner *primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	id, err := f.store.Sections().Create(f.ctx, &domain.Section{Name: name, CoachID: owner, IsGlobal: owner == nil})
	require.NoError(t, err)
	return id
}

func (f *fixture) addExercise(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	id, err := f.store.Exercises().Create(f.ctx, &domain.Exercise{Name: name})
	require.NoError(t, err)
	return id
}

func (f *fixture) addProgressionType(t *testing.T, coachID primitive.ObjectID, name string) primitive.ObjectID {
	t.Helper()
	id, err := f.store.ProgressionTypes().Create(f.ctx, &domain.ProgressionType{CoachID: coachID, Name: name, ColorHex: "#E53935", IsActive: true})
	require.NoError(t, err)
	return id
}

// sampleDays is a two-day tree submitted out of order at every level.
func (f *fixture) sampleDays() []DayInput {
	rest := 90
	pt := f.heavyPTID
	return []DayInput{
		{
			DayIndex:   intPtr(2),
			WarmupText: "Row 5'",
			Sections: []DaySectionInput{
				{SectionID: f.strengthSectionID, SortOrder: intPtr(1), Blocks: []BlockInput{
					{BlockType: domain.BlockSeries, SortOrder: intPtr(1), Exercises: []BlockExerciseInput{
						{ExerciseID: f.benchID, SortOrder: intPtr(1), Microcycles: []MicrocycleInput{
							{MicroIndex: intPtr(1), Sets: intPtr(5), Reps: "5"},
						}},
					}},
				}},
			},
		},
		{
			DayIndex:   intPtr(1),
			WarmupText: "Bike 5' + mobility",
			Sections: []DaySectionInput{
				{SectionID: f.strengthSectionID, SortOrder: intPtr(2), Blocks: []BlockInput{
					{BlockType: domain.BlockSeries, SortOrder: intPtr(1), MacroRestS: &rest, Exercises: []BlockExerciseInput{
						{ExerciseID: f.benchID, ProgressionTypeID: &pt, SortOrder: intPtr(1), Microcycles: []MicrocycleInput{
							{MicroIndex: intPtr(2), Sets: intPtr(4), Reps: "6-8", RIR: "2"},
							{MicroIndex: intPtr(1), Sets: intPtr(3), Reps: "8-10", RIR: "2", Load: "70%"},
						}},
					}},
				}},
				{SectionID: f.coreSectionID, SortOrder: intPtr(1), Blocks: []BlockInput{
					{BlockType: domain.BlockCircuit, SortOrder: intPtr(2), Exercises: []BlockExerciseInput{
						{ExerciseID: f.twistID, SortOrder: intPtr(1), Microcycles: []MicrocycleInput{
							{MicroIndex: intPtr(1), Sets: intPtr(3), Reps: "20"},
						}},
					}},
					{BlockType: domain.BlockSuperset, SortOrder: intPtr(1), Exercises: []BlockExerciseInput{
						{ExerciseID: f.twistID, SortOrder: intPtr(2), Microcycles: []MicrocycleInput{
							{MicroIndex: intPtr(1), Sets: intPtr(2), Reps: "12"},
						}},
						{ExerciseID: f.benchID, SortOrder: intPtr(1), Microcycles: []MicrocycleInput{
							{MicroIndex: intPtr(1), Sets: intPtr(2), Reps: "10"},
						}},
					}},
				}},
			},
		},
	}
}

func (f *fixture) planInput(title string) CreatePlanInput {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return CreatePlanInput{
		ClientID:  f.client.UserID,
		Title:     title,
		DateStart: start,
		DateEnd:   start.AddDate(0, 1, 0),
		Days:      f.sampleDays(),
	}
}

func (f *fixture) createPlan(t *testing.T, title string) *domain.Plan {
	t.Helper()
	plan, err := f.plans.CreatePlan(f.ctx, f.coach, f.planInput(title))
	require.NoError(t, err)
	return plan
}

// treeShape strips IDs and catalog lookups so two trees can be compared
// structurally.
func treeShape(days []domain.Day) []domain.Day {
	out := domain.CopyDays(days)
	for i := range out {
		out[i].ID = primitive.NilObjectID
		for j := range out[i].Sections {
			out[i].Sections[j].ID = primitive.NilObjectID
			for k := range out[i].Sections[j].Blocks {
				out[i].Sections[j].Blocks[k].ID = primitive.NilObjectID
				for l := range out[i].Sections[j].Blocks[k].Exercises {
					out[i].Sections[j].Blocks[k].Exercises[l].ID = primitive.NilObjectID
					out[i].Sections[j].Blocks[k].Exercises[l].Exercise = nil
					out[i].Sections[j].Blocks[k].Exercises[l].ProgressionType = nil
					for m := range out[i].Sections[j].Blocks[k].Exercises[l].Microcycles {
						out[i].Sections[j].Blocks[k].Exercises[l].Microcycles[m].ID = primitive.NilObjectID
					}
				}
			}
		}
	}
	return out
}

// treeIDs collects every node ID in a tree.
func treeIDs(days []domain.Day) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, d := range days {
		ids = append(ids, d.ID)
		for _, s := range d.Sections {
			ids = append(ids, s.ID)
			for _, b := range s.Blocks {
				ids = append(ids, b.ID)
				for _, e := range b.Exercises {
					ids = append(ids, e.ID)
					for _, mc := range e.Microcycles {
						ids = append(ids, mc.ID)
					}
				}
			}
		}
	}
	return ids
}

//go:build integration

package mongo

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoImage = "mongo:7.0"

// mongoURI is shared by every test in the package; each test gets its own database.
var mongoURI string

// TestMain starts one MongoDB container for the package. Setting MONGO_URI
// points the tests at an existing server instead.
func TestMain(m *testing.M) {
	os.Exit(runWithMongo(m))
}

func runWithMongo(m *testing.M) int {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		mongoURI = uri
		return m.Run()
	}

	ctx := context.Background()
	container, err := mongocontainer.Run(ctx, mongoImage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start mongodb container: %v\n", err)
		return 1
	}
	defer func() { _ = container.Terminate(ctx) }()

	mongoURI, err = container.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mongodb connection string: %v\n", err)
		return 1
	}
	return m.Run()
}

// Run with: go test -tags integration ./internal/repository/mongo/
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := ConnectDB(mongoURI)
	require.NoError(t, err)

	db := client.Database("coach_plans_test_" + primitive.NewObjectID().Hex())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, EnsureIndexes(ctx, db, zerolog.Nop()))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})
	return db
}

func TestMongoPlanNumbering(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	clients := NewMongoClientRepository(db)
	plans := NewMongoPlanRepository(db)

	clientID := primitive.NewObjectID()
	require.NoError(t, clients.Create(ctx, &domain.Client{UserID: clientID}))

	const n = 10
	var wg sync.WaitGroup
	got := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := clients.NextPlanNumber(ctx, clientID)
			if assert.NoError(t, err) {
				got <- num
			}
		}()
	}
	wg.Wait()
	close(got)
	seen := map[int]bool{}
	for num := range got {
		assert.False(t, seen[num], "number %d handed out twice", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)

	_, err := plans.Create(ctx, &domain.Plan{ClientID: clientID, CoachID: primitive.NewObjectID(), PlanNumberPerClient: 1, Title: "One"})
	require.NoError(t, err)
	_, err = plans.Create(ctx, &domain.Plan{ClientID: clientID, CoachID: primitive.NewObjectID(), PlanNumberPerClient: 1, Title: "Dup"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestMongoPlanRoundTripKeepsTree(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	plans := NewMongoPlanRepository(db)

	rest := 90
	plan := &domain.Plan{
		ClientID:            primitive.NewObjectID(),
		CoachID:             primitive.NewObjectID(),
		PlanNumberPerClient: 1,
		Title:               "Round trip",
		Status:              domain.StatusDraft,
		Visibility:          domain.VisibilityPrivate,
		Days: []domain.Day{{
			ID:       primitive.NewObjectID(),
			DayIndex: 1,
			Sections: []domain.DaySection{{
				ID:                  primitive.NewObjectID(),
				SectionNameSnapshot: "Core",
				SortOrder:           1,
				Blocks: []domain.Block{{
					ID:         primitive.NewObjectID(),
					BlockType:  domain.BlockSeries,
					MacroRestS: &rest,
					SortOrder:  1,
				}},
			}},
		}},
	}
	id, err := plans.Create(ctx, plan)
	require.NoError(t, err)

	got, err := plans.GetByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "Core", got.Days[0].Sections[0].SectionNameSnapshot)
	require.NotNil(t, got.Days[0].Sections[0].Blocks[0].MacroRestS)
	assert.Equal(t, 90, *got.Days[0].Sections[0].Blocks[0].MacroRestS)

	require.NoError(t, plans.Delete(ctx, id))
	_, err = plans.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMongoUserEmailUnique(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewMongoUserRepository(db)

	_, err := users.Create(ctx, &domain.User{Name: "A", Email: "a@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = users.Create(ctx, &domain.User{Name: "B", Email: "a@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

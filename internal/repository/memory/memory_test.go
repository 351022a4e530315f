package memory

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanNumberUniquePerClient(t *testing.T) {
	ctx := context.Background()
	store := New()
	client := primitive.NewObjectID()

	_, err := store.Plans().Create(ctx, &domain.Plan{ClientID: client, PlanNumberPerClient: 1})
	require.NoError(t, err)

	_, err = store.Plans().Create(ctx, &domain.Plan{ClientID: client, PlanNumberPerClient: 1})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = store.Plans().Create(ctx, &domain.Plan{ClientID: primitive.NewObjectID(), PlanNumberPerClient: 1})
	assert.NoError(t, err)
}

func TestStoredPlanIsIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	store := New()
	plan := &domain.Plan{
		ClientID:            primitive.NewObjectID(),
		PlanNumberPerClient: 1,
		Days:                []domain.Day{{DayIndex: 1, WarmupText: "Bike"}},
	}
	id, err := store.Plans().Create(ctx, plan)
	require.NoError(t, err)

	plan.Days[0].WarmupText = "mutated after insert"
	got, err := store.Plans().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bike", got.Days[0].WarmupText)

	got.Days[0].WarmupText = "mutated after read"
	again, err := store.Plans().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bike", again.Days[0].WarmupText)
}

func TestNextPlanNumberIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := New()
	clientID := primitive.NewObjectID()
	require.NoError(t, store.Clients().Create(ctx, &domain.Client{UserID: clientID}))

	for want := 1; want <= 3; want++ {
		n, err := store.Clients().NextPlanNumber(ctx, clientID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	_, err := store.Clients().NextPlanNumber(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimForCoachOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := New()
	clientID := primitive.NewObjectID()
	require.NoError(t, store.Clients().Create(ctx, &domain.Client{UserID: clientID}))

	first, second := primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, store.Clients().ClaimForCoach(ctx, clientID, first))
	assert.ErrorIs(t, store.Clients().ClaimForCoach(ctx, clientID, second), repository.ErrNotFound)

	roster, err := store.Clients().ListByCoach(ctx, first)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestUserEmailUnique(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, err := store.Users().Create(ctx, &domain.User{Email: "a@example.com"})
	require.NoError(t, err)
	_, err = store.Users().Create(ctx, &domain.User{Email: "A@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

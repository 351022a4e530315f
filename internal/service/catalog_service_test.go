package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateProgressionType(t *testing.T) {
	f := newFixture(t)

	pt, err := f.catalog.CreateProgressionType(f.ctx, f.coach, CreateProgressionTypeInput{Name: "Deload", ColorHex: "#1e88e5"})
	require.NoError(t, err)
	assert.NotEqual(t, primitive.NilObjectID, pt.ID)
	assert.Equal(t, f.coach.UserID, pt.CoachID)
	assert.True(t, pt.IsActive, "isActive defaults to true")

	inactive := false
	pt, err = f.catalog.CreateProgressionType(f.ctx, f.coach, CreateProgressionTypeInput{Name: "Retired", ColorHex: "#000000", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, pt.IsActive)

	list, err := f.catalog.ListProgressionTypes(f.ctx, f.coach)
	require.NoError(t, err)
	assert.Len(t, list, 3) // includes the fixture's "Heavy"
}

func TestProgressionTypeColorValidation(t *testing.T) {
	f := newFixture(t)
	for _, color := range []string{"red", "#FFF", "E53935", "#GGGGGG", "#E539351", ""} {
		t.Run(color, func(t *testing.T) {
			_, err := f.catalog.CreateProgressionType(f.ctx, f.coach, CreateProgressionTypeInput{Name: "Bad", ColorHex: color})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestProgressionTypeOwnership(t *testing.T) {
	f := newFixture(t)
	name := "Stolen"

	_, err := f.catalog.UpdateProgressionType(f.ctx, f.otherCoach, f.heavyPTID, UpdateProgressionTypeInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.catalog.DeleteProgressionType(f.ctx, f.otherCoach, f.heavyPTID), ErrForbidden)
	_, err = f.catalog.CreateProgressionType(f.ctx, f.client, CreateProgressionTypeInput{Name: "Mine", ColorHex: "#FFFFFF"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.catalog.UpdateProgressionType(f.ctx, f.coach, primitive.NewObjectID(), UpdateProgressionTypeInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	color := "#43A047"
	updated, err := f.catalog.UpdateProgressionType(f.ctx, f.coach, f.heavyPTID, UpdateProgressionTypeInput{ColorHex: &color})
	require.NoError(t, err)
	assert.Equal(t, color, updated.ColorHex)
	assert.Equal(t, "Heavy", updated.Name)
}

func TestDeleteProgressionTypeLeavesPlansIntact(t *testing.T) {
	f := newFixture(t)
	plan := f.createPlan(t, "Tagged plan")

	require.NoError(t, f.catalog.DeleteProgressionType(f.ctx, f.coach, f.heavyPTID))

	got, err := f.plans.GetPlan(f.ctx, f.coach, plan.ID)
	require.NoError(t, err)
	tagged := got.Days[0].Sections[1].Blocks[0].Exercises[0]
	require.NotNil(t, tagged.ProgressionTypeID)
	assert.Equal(t, f.heavyPTID, *tagged.ProgressionTypeID)
	assert.Nil(t, tagged.ProgressionType, "a deleted tag no longer resolves")
	assert.NotNil(t, tagged.Exercise)

	// New plans can no longer reference it.
	_, err = f.plans.CreatePlan(f.ctx, f.coach, f.planInput("After delete"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSections(t *testing.T) {
	f := newFixture(t)

	own, err := f.catalog.CreateSection(f.ctx, f.coach, CreateSectionInput{Name: "Accessory"})
	require.NoError(t, err)
	require.NotNil(t, own.CoachID)
	assert.Equal(t, f.coach.UserID, *own.CoachID)

	visible, err := f.catalog.ListSections(f.ctx, f.coach)
	require.NoError(t, err)
	names := make([]string, 0, len(visible))
	for _, s := range visible {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"Accessory", "Core Circuit", "Strength Station"}, names)

	renamed, err := f.catalog.RenameSection(f.ctx, f.coach, own.ID, "Accessory Work")
	require.NoError(t, err)
	assert.Equal(t, "Accessory Work", renamed.Name)

	_, err = f.catalog.RenameSection(f.ctx, f.coach, f.coreSectionID, "Mine now")
	assert.ErrorIs(t, err, ErrForbidden, "global sections belong to nobody")
	_, err = f.catalog.RenameSection(f.ctx, f.otherCoach, own.ID, "Theirs")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.catalog.RenameSection(f.ctx, f.coach, own.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.catalog.RenameSection(f.ctx, f.coach, primitive.NewObjectID(), "Ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.catalog.ListSections(f.ctx, f.client)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExerciseCatalog(t *testing.T) {
	f := newFixture(t)

	created, err := f.exercises.CreateExercise(f.ctx, f.coach, CreateExerciseInput{Name: "GOBLET SQUAT", MuscleGroup: "Legs"})
	require.NoError(t, err)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, f.coach.UserID, *created.CreatedBy)

	_, err = f.exercises.CreateExercise(f.ctx, f.client, CreateExerciseInput{Name: "CURL"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.exercises.CreateExercise(f.ctx, f.coach, CreateExerciseInput{})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := f.exercises.ListExercises(f.ctx, f.client)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	got, err := f.exercises.GetExercise(f.ctx, f.client, f.benchID)
	require.NoError(t, err)
	assert.Equal(t, "BARBELL BENCH PRESS", got.Name)

	_, err = f.exercises.GetExercise(f.ctx, f.client, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.exercises.ListExercises(f.ctx, f.stranger)
	assert.ErrorIs(t, err, ErrForbidden)
}

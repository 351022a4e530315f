package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// CatalogSeedDeps holds the stores SeedCatalog writes to.
type CatalogSeedDeps struct {
	Exercises repository.ExerciseRepository
	Sections  repository.SectionRepository
	Logger    zerolog.Logger
}

var defaultExercises = []domain.Exercise{
	{Name: "BARBELL BENCH PRESS", MuscleGroup: "Chest", Pattern: "Push", Equipment: "Barbell", MMAxis: "Upper", DefaultTempo: "3010"},
	{Name: "BACK SQUAT", MuscleGroup: "Legs", Pattern: "Squat", Equipment: "Barbell", MMAxis: "Lower", DefaultTempo: "3010"},
	{Name: "ROMANIAN DEADLIFT", MuscleGroup: "Hamstrings", Pattern: "Hinge", Equipment: "Barbell", MMAxis: "Lower", DefaultTempo: "3110"},
	{Name: "PULL UP", MuscleGroup: "Back", Pattern: "Pull", Equipment: "Bodyweight", MMAxis: "Upper", DefaultTempo: "2011"},
	{Name: "DUMBBELL SHOULDER PRESS", MuscleGroup: "Shoulders", Pattern: "Push", Equipment: "Dumbbells", MMAxis: "Upper", DefaultTempo: "2010"},
	{Name: "WEIGHTED RUSSIAN TWIST", MuscleGroup: "Core", Pattern: "Rotation", Equipment: "Dumbbells", MMAxis: "Mixed", DefaultTempo: "2010"},
	{Name: "PLANK", MuscleGroup: "Core", Pattern: "Anti-extension", Equipment: "Bodyweight", MMAxis: "Mixed"},
}

var defaultSections = []domain.Section{
	{Name: "Core Circuit", Description: "Core work as a circuit", IsGlobal: true},
	{Name: "Strength Station", Description: "Strength work by station", IsGlobal: true},
	{Name: "Conditioning", Description: "Metabolic finisher", IsGlobal: true},
}

// SeedCatalog inserts the default global exercises and sections when the
// exercise catalog is empty. Running it again is a no-op.
func SeedCatalog(ctx context.Context, deps CatalogSeedDeps) error {
	count, err := deps.Exercises.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count exercises: %w", err)
	}
	if count > 0 {
		deps.Logger.Debug().Int64("exercises", count).Msg("catalog already seeded")
		return nil
	}

	for _, e := range defaultExercises {
		e := e
		if _, err := deps.Exercises.Create(ctx, &e); err != nil {
			return fmt.Errorf("failed to seed exercise %q: %w", e.Name, err)
		}
	}
	for _, sec := range defaultSections {
		sec := sec
		if _, err := deps.Sections.Create(ctx, &sec); err != nil {
			return fmt.Errorf("failed to seed section %q: %w", sec.Name, err)
		}
	}

	deps.Logger.Info().
		Int("exercises", len(defaultExercises)).
		Int("sections", len(defaultSections)).
		Msg("catalog seeded")
	return nil
}

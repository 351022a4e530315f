package service

import (
	"alcyxob/coach-plans/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// hydrate attaches the referenced exercise and progression type to every
// BlockExercise of days, with one batch lookup per collection. References
// that no longer resolve, such as a deleted progression type, stay nil.
func (b *treeBuilder) hydrate(ctx context.Context, days []domain.Day) error {
	exerciseIDs, ptIDs := collectRefs(days)
	if len(exerciseIDs) == 0 {
		return nil
	}

	exercises, err := b.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return err
	}
	exerciseByID := make(map[primitive.ObjectID]domain.Exercise, len(exercises))
	for _, e := range exercises {
		exerciseByID[e.ID] = e
	}

	ptByID := make(map[primitive.ObjectID]domain.ProgressionType, len(ptIDs))
	if len(ptIDs) > 0 {
		types, err := b.progressionTypeRepo.GetByIDs(ctx, ptIDs)
		if err != nil {
			return err
		}
		for _, pt := range types {
			ptByID[pt.ID] = pt
		}
	}

	for i := range days {
		for j := range days[i].Sections {
			for k := range days[i].Sections[j].Blocks {
				exs := days[i].Sections[j].Blocks[k].Exercises
				for l := range exs {
					if e, ok := exerciseByID[exs[l].ExerciseID]; ok {
						exs[l].Exercise = &e
					}
					if exs[l].ProgressionTypeID == nil {
						continue
					}
					if pt, ok := ptByID[*exs[l].ProgressionTypeID]; ok {
						exs[l].ProgressionType = &pt
					}
				}
			}
		}
	}
	return nil
}

// collectRefs returns the distinct exercise and progression type IDs of days.
func collectRefs(days []domain.Day) (exerciseIDs, ptIDs []primitive.ObjectID) {
	seen := make(map[primitive.ObjectID]struct{})
	add := func(dst []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
		if _, ok := seen[id]; ok {
			return dst
		}
		seen[id] = struct{}{}
		return append(dst, id)
	}
	for _, d := range days {
		for _, s := range d.Sections {
			for _, bl := range s.Blocks {
				for _, e := range bl.Exercises {
					exerciseIDs = add(exerciseIDs, e.ExerciseID)
					if e.ProgressionTypeID != nil {
						ptIDs = add(ptIDs, *e.ProgressionTypeID)
					}
				}
			}
		}
	}
	return exerciseIDs, ptIDs
}

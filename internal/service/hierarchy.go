package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayInput and its children describe a day tree as submitted by a coach.
// Ordering keys are pointers so a missing key is distinguishable from 0.
type DayInput struct {
	DayIndex   *int              `json:"dayIndex" validate:"required,min=0"`
	WarmupText string            `json:"warmupText"`
	Notes      string            `json:"notes"`
	Sections   []DaySectionInput `json:"sections" validate:"dive"`
}

type DaySectionInput struct {
	SectionID primitive.ObjectID `json:"sectionId"`
	SortOrder *int               `json:"sortOrder" validate:"required,min=0"`
	Blocks    []BlockInput       `json:"blocks" validate:"dive"`

	// Set only when copying an existing tree.
	sectionNameSnapshot string
}

type BlockInput struct {
	BlockType  domain.BlockType     `json:"blockType" validate:"required,oneof=series circuit superset"`
	MacroRestS *int                 `json:"macroRestS" validate:"omitempty,min=0"`
	Notes      string               `json:"notes"`
	SortOrder  *int                 `json:"sortOrder" validate:"required,min=0"`
	Exercises  []BlockExerciseInput `json:"exercises" validate:"dive"`
}

type BlockExerciseInput struct {
	ExerciseID        primitive.ObjectID  `json:"exerciseId"`
	ProgressionTypeID *primitive.ObjectID `json:"progressionTypeId"`
	SortOrder         *int                `json:"sortOrder" validate:"required,min=0"`
	MicroRestS        *int                `json:"microRestS" validate:"omitempty,min=0"`
	TempoOverride     string              `json:"tempoOverride"`
	Notes             string              `json:"notes"`
	Microcycles       []MicrocycleInput   `json:"microcycles" validate:"dive"`
}

type MicrocycleInput struct {
	MicroIndex *int   `json:"microIndex" validate:"required,min=0"`
	Sets       *int   `json:"sets" validate:"required,min=0"`
	Reps       string `json:"reps" validate:"required"`
	RIR        string `json:"rir"`
	Load       string `json:"load"`
	RestS      *int   `json:"restS" validate:"omitempty,min=0"`
	Tempo      string `json:"tempo"`
}

// treeBuilder turns validated input into a domain day tree with fresh IDs.
type treeBuilder struct {
	exerciseRepo        repository.ExerciseRepository
	sectionRepo         repository.SectionRepository
	progressionTypeRepo repository.ProgressionTypeRepository
	validate            *validator.Validate
}

func newTreeBuilder(exerciseRepo repository.ExerciseRepository, sectionRepo repository.SectionRepository, ptRepo repository.ProgressionTypeRepository, v *validator.Validate) *treeBuilder {
	return &treeBuilder{
		exerciseRepo:        exerciseRepo,
		sectionRepo:         sectionRepo,
		progressionTypeRepo: ptRepo,
		validate:            v,
	}
}

// refCache memoizes reference lookups for one build.
type refCache struct {
	sections  map[primitive.ObjectID]string
	exercises map[primitive.ObjectID]struct{}
	ptypes    map[primitive.ObjectID]struct{}
}

// build validates the tree shape, then resolves references when resolveRefs
// is set, and finally assigns new IDs with every level sorted by its key.
// Copied trees skip resolution and keep their section name snapshots.
func (b *treeBuilder) build(ctx context.Context, coachID primitive.ObjectID, days []DayInput, resolveRefs bool) ([]domain.Day, error) {
	if err := checkTreeKeys(days); err != nil {
		return nil, err
	}

	cache := &refCache{
		sections:  make(map[primitive.ObjectID]string),
		exercises: make(map[primitive.ObjectID]struct{}),
		ptypes:    make(map[primitive.ObjectID]struct{}),
	}

	out := make([]domain.Day, 0, len(days))
	for _, d := range sortedDays(days) {
		day := domain.Day{
			ID:         primitive.NewObjectID(),
			DayIndex:   *d.DayIndex,
			WarmupText: d.WarmupText,
			Notes:      d.Notes,
			Sections:   make([]domain.DaySection, 0, len(d.Sections)),
		}
		for _, s := range sortedSections(d.Sections) {
			snapshot := s.sectionNameSnapshot
			if resolveRefs {
				name, err := b.resolveSection(ctx, coachID, s.SectionID, cache)
				if err != nil {
					return nil, err
				}
				snapshot = name
			}
			ds := domain.DaySection{
				ID:                  primitive.NewObjectID(),
				SectionID:           s.SectionID,
				SectionNameSnapshot: snapshot,
				SortOrder:           *s.SortOrder,
				Blocks:              make([]domain.Block, 0, len(s.Blocks)),
			}
			for _, bl := range sortedBlocks(s.Blocks) {
				block := domain.Block{
					ID:         primitive.NewObjectID(),
					BlockType:  bl.BlockType,
					MacroRestS: copyIntPtr(bl.MacroRestS),
					Notes:      bl.Notes,
					SortOrder:  *bl.SortOrder,
					Exercises:  make([]domain.BlockExercise, 0, len(bl.Exercises)),
				}
				for _, e := range sortedExercises(bl.Exercises) {
					if resolveRefs {
						if err := b.resolveExercise(ctx, e.ExerciseID, cache); err != nil {
							return nil, err
						}
						if e.ProgressionTypeID != nil {
							if err := b.resolveProgressionType(ctx, coachID, *e.ProgressionTypeID, cache); err != nil {
								return nil, err
							}
						}
					}
					be := domain.BlockExercise{
						ID:            primitive.NewObjectID(),
						ExerciseID:    e.ExerciseID,
						SortOrder:     *e.SortOrder,
						MicroRestS:    copyIntPtr(e.MicroRestS),
						TempoOverride: e.TempoOverride,
						Notes:         e.Notes,
						Microcycles:   make([]domain.Microcycle, 0, len(e.Microcycles)),
					}
					if e.ProgressionTypeID != nil {
						id := *e.ProgressionTypeID
						be.ProgressionTypeID = &id
					}
					for _, mc := range sortedMicrocycles(e.Microcycles) {
						be.Microcycles = append(be.Microcycles, domain.Microcycle{
							ID:         primitive.NewObjectID(),
							MicroIndex: *mc.MicroIndex,
							Sets:       *mc.Sets,
							Reps:       mc.Reps,
							RIR:        mc.RIR,
							Load:       mc.Load,
							RestS:      copyIntPtr(mc.RestS),
							Tempo:      mc.Tempo,
						})
					}
					block.Exercises = append(block.Exercises, be)
				}
				ds.Blocks = append(ds.Blocks, block)
			}
			day.Sections = append(day.Sections, ds)
		}
		out = append(out, day)
	}
	return out, nil
}

func (b *treeBuilder) resolveSection(ctx context.Context, coachID, sectionID primitive.ObjectID, cache *refCache) (string, error) {
	if name, ok := cache.sections[sectionID]; ok {
		return name, nil
	}
	if sectionID == primitive.NilObjectID {
		return "", validationError("sectionId is required")
	}
	section, err := b.sectionRepo.GetByID(ctx, sectionID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", validationError("section %s does not exist", sectionID.Hex())
	}
	if err != nil {
		return "", fmt.Errorf("failed to load section: %w", err)
	}
	if !section.VisibleTo(coachID) {
		return "", validationError("section %s is not available", sectionID.Hex())
	}
	cache.sections[sectionID] = section.Name
	return section.Name, nil
}

func (b *treeBuilder) resolveExercise(ctx context.Context, exerciseID primitive.ObjectID, cache *refCache) error {
	if _, ok := cache.exercises[exerciseID]; ok {
		return nil
	}
	if exerciseID == primitive.NilObjectID {
		return validationError("exerciseId is required")
	}
	_, err := b.exerciseRepo.GetByID(ctx, exerciseID)
	if errors.Is(err, repository.ErrNotFound) {
		return validationError("exercise %s does not exist", exerciseID.Hex())
	}
	if err != nil {
		return fmt.Errorf("failed to load exercise: %w", err)
	}
	cache.exercises[exerciseID] = struct{}{}
	return nil
}

func (b *treeBuilder) resolveProgressionType(ctx context.Context, coachID, ptID primitive.ObjectID, cache *refCache) error {
	if _, ok := cache.ptypes[ptID]; ok {
		return nil
	}
	pt, err := b.progressionTypeRepo.GetByID(ctx, ptID)
	if errors.Is(err, repository.ErrNotFound) {
		return validationError("progression type %s does not exist", ptID.Hex())
	}
	if err != nil {
		return fmt.Errorf("failed to load progression type: %w", err)
	}
	if pt.CoachID != coachID {
		return validationError("progression type %s is not available", ptID.Hex())
	}
	cache.ptypes[ptID] = struct{}{}
	return nil
}

// checkTreeKeys rejects duplicate ordering keys among siblings. Struct tags
// have already rejected missing keys.
func checkTreeKeys(days []DayInput) error {
	seenDays := make(map[int]bool, len(days))
	for i, d := range days {
		if seenDays[*d.DayIndex] {
			return validationError("days[%d].dayIndex %d is used twice", i, *d.DayIndex)
		}
		seenDays[*d.DayIndex] = true

		seenSections := make(map[int]bool, len(d.Sections))
		for j, s := range d.Sections {
			if seenSections[*s.SortOrder] {
				return validationError("days[%d].sections[%d].sortOrder %d is used twice", i, j, *s.SortOrder)
			}
			seenSections[*s.SortOrder] = true

			seenBlocks := make(map[int]bool, len(s.Blocks))
			for k, bl := range s.Blocks {
				if seenBlocks[*bl.SortOrder] {
					return validationError("days[%d].sections[%d].blocks[%d].sortOrder %d is used twice", i, j, k, *bl.SortOrder)
				}
				seenBlocks[*bl.SortOrder] = true

				seenExercises := make(map[int]bool, len(bl.Exercises))
				for l, e := range bl.Exercises {
					if seenExercises[*e.SortOrder] {
						return validationError("days[%d].sections[%d].blocks[%d].exercises[%d].sortOrder %d is used twice", i, j, k, l, *e.SortOrder)
					}
					seenExercises[*e.SortOrder] = true

					seenMicro := make(map[int]bool, len(e.Microcycles))
					for m, mc := range e.Microcycles {
						if seenMicro[*mc.MicroIndex] {
							return validationError("days[%d].sections[%d].blocks[%d].exercises[%d].microcycles[%d].microIndex %d is used twice", i, j, k, l, m, *mc.MicroIndex)
						}
						seenMicro[*mc.MicroIndex] = true
					}
				}
			}
		}
	}
	return nil
}

func sortedDays(in []DayInput) []DayInput {
	out := append([]DayInput(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return *out[i].DayIndex < *out[j].DayIndex })
	return out
}

func sortedSections(in []DaySectionInput) []DaySectionInput {
	out := append([]DaySectionInput(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return *out[i].SortOrder < *out[j].SortOrder })
	return out
}

func sortedBlocks(in []BlockInput) []BlockInput {
	out := append([]BlockInput(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return *out[i].SortOrder < *out[j].SortOrder })
	return out
}

func sortedExercises(in []BlockExerciseInput) []BlockExerciseInput {
	out := append([]BlockExerciseInput(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return *out[i].SortOrder < *out[j].SortOrder })
	return out
}

func sortedMicrocycles(in []MicrocycleInput) []MicrocycleInput {
	out := append([]MicrocycleInput(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return *out[i].MicroIndex < *out[j].MicroIndex })
	return out
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func intPtr(v int) *int { return &v }

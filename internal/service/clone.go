package service

import (
	"alcyxob/coach-plans/internal/domain"
)

// daysToInput converts a stored tree back into builder input, keeping every
// reference and section name snapshot as it is. The builder then gives the
// copy its own IDs.
func daysToInput(days []domain.Day) []DayInput {
	out := make([]DayInput, 0, len(days))
	for _, d := range days {
		di := DayInput{
			DayIndex:   intPtr(d.DayIndex),
			WarmupText: d.WarmupText,
			Notes:      d.Notes,
			Sections:   make([]DaySectionInput, 0, len(d.Sections)),
		}
		for _, s := range d.Sections {
			si := DaySectionInput{
				SectionID:           s.SectionID,
				SortOrder:           intPtr(s.SortOrder),
				Blocks:              make([]BlockInput, 0, len(s.Blocks)),
				sectionNameSnapshot: s.SectionNameSnapshot,
			}
			for _, b := range s.Blocks {
				bi := BlockInput{
					BlockType:  b.BlockType,
					MacroRestS: copyIntPtr(b.MacroRestS),
					Notes:      b.Notes,
					SortOrder:  intPtr(b.SortOrder),
					Exercises:  make([]BlockExerciseInput, 0, len(b.Exercises)),
				}
				for _, e := range b.Exercises {
					ei := BlockExerciseInput{
						ExerciseID:    e.ExerciseID,
						SortOrder:     intPtr(e.SortOrder),
						MicroRestS:    copyIntPtr(e.MicroRestS),
						TempoOverride: e.TempoOverride,
						Notes:         e.Notes,
						Microcycles:   make([]MicrocycleInput, 0, len(e.Microcycles)),
					}
					if e.ProgressionTypeID != nil {
						id := *e.ProgressionTypeID
						ei.ProgressionTypeID = &id
					}
					for _, mc := range e.Microcycles {
						ei.Microcycles = append(ei.Microcycles, MicrocycleInput{
							MicroIndex: intPtr(mc.MicroIndex),
							Sets:       intPtr(mc.Sets),
							Reps:       mc.Reps,
							RIR:        mc.RIR,
							Load:       mc.Load,
							RestS:      copyIntPtr(mc.RestS),
							Tempo:      mc.Tempo,
						})
					}
					bi.Exercises = append(bi.Exercises, ei)
				}
				si.Blocks = append(si.Blocks, bi)
			}
			di.Sections = append(di.Sections, si)
		}
		out = append(out, di)
	}
	return out
}

// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus is the lifecycle state shared by plans and templates.
type PlanStatus string

const (
	StatusDraft     PlanStatus = "draft"
	StatusPublished PlanStatus = "published"
	StatusArchived  PlanStatus = "archived"
)

// PlanVisibility controls who besides the owner may see a plan or template.
type PlanVisibility string

const (
	VisibilityPrivate PlanVisibility = "private"
	VisibilityPublic  PlanVisibility = "public"
)

// BlockType describes how the exercises of a block are performed.
type BlockType string

const (
	BlockSeries   BlockType = "series"
	BlockCircuit  BlockType = "circuit"
	BlockSuperset BlockType = "superset"
)

// Plan is a dated program assigned to one client by one coach. The whole
// day tree is embedded, so a plan is written and deleted as one document.
type Plan struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID             primitive.ObjectID `bson:"coachId" json:"coachId"`
	ClientID            primitive.ObjectID `bson:"clientId" json:"clientId"`
	CreatedBy           primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	PlanNumberPerClient int                `bson:"planNumberPerClient" json:"planNumberPerClient"`
	Title               string             `bson:"title" json:"title"`
	DateStart           time.Time          `bson:"dateStart" json:"dateStart"`
	DateEnd             time.Time          `bson:"dateEnd" json:"dateEnd"`
	MonthlyGoal         string             `bson:"monthlyGoal,omitempty" json:"monthlyGoal,omitempty"`
	Notes               string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status              PlanStatus         `bson:"status" json:"status"`
	Visibility          PlanVisibility     `bson:"visibility" json:"visibility"`
	Days                []Day              `bson:"days" json:"days"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanTemplate is an undated blueprint with the same day tree as a Plan.
type PlanTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Title       string             `bson:"title" json:"title"`
	MonthlyGoal string             `bson:"monthlyGoal,omitempty" json:"monthlyGoal,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status      PlanStatus         `bson:"status" json:"status"`
	Visibility  PlanVisibility     `bson:"visibility" json:"visibility"`
	Days        []Day              `bson:"days" json:"days"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Day is one training day, ordered by DayIndex within its plan or template.
type Day struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	DayIndex   int                `bson:"dayIndex" json:"dayIndex"`
	WarmupText string             `bson:"warmupText,omitempty" json:"warmupText,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Sections   []DaySection       `bson:"sections" json:"sections"`
}

// DaySection attaches a Section to a Day. SectionNameSnapshot is copied once
// and never re-derived from the Section.
type DaySection struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	SectionID           primitive.ObjectID `bson:"sectionId" json:"sectionId"`
	SectionNameSnapshot string             `bson:"sectionNameSnapshot" json:"sectionNameSnapshot"`
	SortOrder           int                `bson:"sortOrder" json:"sortOrder"`
	Blocks              []Block            `bson:"blocks" json:"blocks"`
}

type Block struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	BlockType  BlockType          `bson:"blockType" json:"blockType"`
	MacroRestS *int               `bson:"macroRestS,omitempty" json:"macroRestS,omitempty"` // rest after the block
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	SortOrder  int                `bson:"sortOrder" json:"sortOrder"`
	Exercises  []BlockExercise    `bson:"exercises" json:"exercises"`
}

type BlockExercise struct {
	ID                primitive.ObjectID  `bson:"_id" json:"id"`
	ExerciseID        primitive.ObjectID  `bson:"exerciseId" json:"exerciseId"`
	ProgressionTypeID *primitive.ObjectID `bson:"progressionTypeId,omitempty" json:"progressionTypeId,omitempty"`
	SortOrder         int                 `bson:"sortOrder" json:"sortOrder"`
	MicroRestS        *int                `bson:"microRestS,omitempty" json:"microRestS,omitempty"` // rest between sets
	TempoOverride     string              `bson:"tempoOverride,omitempty" json:"tempoOverride,omitempty"`
	Notes             string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Microcycles       []Microcycle        `bson:"microcycles" json:"microcycles"`

	// Filled in on reads from the catalog; never stored with the plan.
	Exercise        *Exercise        `bson:"-" json:"exercise,omitempty"`
	ProgressionType *ProgressionType `bson:"-" json:"progressionType,omitempty"`
}

// Microcycle is one week's prescription for one exercise.
type Microcycle struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	MicroIndex int                `bson:"microIndex" json:"microIndex"`
	Sets       int                `bson:"sets" json:"sets"`
	Reps       string             `bson:"reps" json:"reps"` // free form, e.g. "8-10"
	RIR        string             `bson:"rir,omitempty" json:"rir,omitempty"`
	Load       string             `bson:"load,omitempty" json:"load,omitempty"`
	RestS      *int               `bson:"restS,omitempty" json:"restS,omitempty"`
	Tempo      string             `bson:"tempo,omitempty" json:"tempo,omitempty"`
}

// PlanSummary is the list view of a plan, without the day tree.
type PlanSummary struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	CoachID             primitive.ObjectID `bson:"coachId" json:"coachId"`
	ClientID            primitive.ObjectID `bson:"clientId" json:"clientId"`
	PlanNumberPerClient int                `bson:"planNumberPerClient" json:"planNumberPerClient"`
	Title               string             `bson:"title" json:"title"`
	DateStart           time.Time          `bson:"dateStart" json:"dateStart"`
	DateEnd             time.Time          `bson:"dateEnd" json:"dateEnd"`
	Status              PlanStatus         `bson:"status" json:"status"`
	Visibility          PlanVisibility     `bson:"visibility" json:"visibility"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateSummary is the list view of a template.
type TemplateSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	MonthlyGoal string             `bson:"monthlyGoal,omitempty" json:"monthlyGoal,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status      PlanStatus         `bson:"status" json:"status"`
	Visibility  PlanVisibility     `bson:"visibility" json:"visibility"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Plan) Summary() PlanSummary {
	return PlanSummary{
		ID:                  p.ID,
		CoachID:             p.CoachID,
		ClientID:            p.ClientID,
		PlanNumberPerClient: p.PlanNumberPerClient,
		Title:               p.Title,
		DateStart:           p.DateStart,
		DateEnd:             p.DateEnd,
		Status:              p.Status,
		Visibility:          p.Visibility,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (t *PlanTemplate) Summary() TemplateSummary {
	return TemplateSummary{
		ID:          t.ID,
		Title:       t.Title,
		MonthlyGoal: t.MonthlyGoal,
		Notes:       t.Notes,
		Status:      t.Status,
		Visibility:  t.Visibility,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// CopyDays returns a deep copy of a day tree, including optional pointer fields.
func CopyDays(days []Day) []Day {
	if days == nil {
		return nil
	}
	out := make([]Day, len(days))
	for i, d := range days {
		out[i] = d
		out[i].Sections = make([]DaySection, len(d.Sections))
		for j, s := range d.Sections {
			out[i].Sections[j] = s
			out[i].Sections[j].Blocks = make([]Block, len(s.Blocks))
			for k, b := range s.Blocks {
				b.MacroRestS = copyInt(b.MacroRestS)
				out[i].Sections[j].Blocks[k] = b
				out[i].Sections[j].Blocks[k].Exercises = make([]BlockExercise, len(b.Exercises))
				for l, e := range b.Exercises {
					e.MicroRestS = copyInt(e.MicroRestS)
					if e.ProgressionTypeID != nil {
						id := *e.ProgressionTypeID
						e.ProgressionTypeID = &id
					}
					if e.Exercise != nil {
						ex := *e.Exercise
						e.Exercise = &ex
					}
					if e.ProgressionType != nil {
						pt := *e.ProgressionType
						e.ProgressionType = &pt
					}
					mcs := make([]Microcycle, len(e.Microcycles))
					for m, mc := range e.Microcycles {
						mc.RestS = copyInt(mc.RestS)
						mcs[m] = mc
					}
					e.Microcycles = mcs
					out[i].Sections[j].Blocks[k].Exercises[l] = e
				}
			}
		}
	}
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

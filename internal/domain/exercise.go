// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a global catalog entry. It is shared by every coach; CreatedBy
// only records who added it.
type Exercise struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CreatedBy    *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	Name         string              `bson:"name" json:"name"`
	MuscleGroup  string              `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g. "Chest", "Core"
	Pattern      string              `bson:"pattern,omitempty" json:"pattern,omitempty"`         // movement pattern, e.g. "Push"
	Equipment    string              `bson:"equipment,omitempty" json:"equipment,omitempty"`
	MMAxis       string              `bson:"mmAxis,omitempty" json:"mmAxis,omitempty"` // upper/lower/mixed limb axis
	DefaultTempo string              `bson:"defaultTempo,omitempty" json:"defaultTempo,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Section is a reusable named group of blocks. Days reference it by ID and
// keep a snapshot of its name.
type Section struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID     *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"` // nil for seeded global sections
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	IsGlobal    bool                `bson:"isGlobal" json:"isGlobal"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo reports whether a coach may attach the section to a day.
func (s *Section) VisibleTo(coachID primitive.ObjectID) bool {
	return s.IsGlobal || (s.CoachID != nil && *s.CoachID == coachID)
}

// OwnedBy reports whether the coach may edit the section.
func (s *Section) OwnedBy(coachID primitive.ObjectID) bool {
	return s.CoachID != nil && *s.CoachID == coachID
}

// ProgressionType is a coach-scoped tag classifying an exercise's emphasis.
type ProgressionType struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name        string             `bson:"name" json:"name"`
	ColorHex    string             `bson:"colorHex" json:"colorHex"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is derived from which profile a user owns. It is never stored on the
// user record and never read from a token.
type Role string

const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
	RoleNone   Role = "none"
)

// User is the login identity. Coach and Client profiles hang off its ID.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // never exposed
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Coach profile, keyed by the owning user's ID.
type Coach struct {
	UserID         primitive.ObjectID `bson:"_id" json:"userId"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Certifications string             `bson:"certifications,omitempty" json:"certifications,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// Client profile, keyed by the owning user's ID. CoachID is nil until a coach
// adds the client to their roster.
type Client struct {
	UserID         primitive.ObjectID  `bson:"_id" json:"userId"`
	CoachID        *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`
	DocID          string              `bson:"docId,omitempty" json:"docId,omitempty"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	LastPlanNumber int                 `bson:"lastPlanNumber" json:"-"` // monotonic, never decremented
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsManagedBy reports whether the client is on the given coach's roster.
func (c *Client) IsManagedBy(coachID primitive.ObjectID) bool {
	return c.CoachID != nil && *c.CoachID == coachID
}

// ClientSummary is a roster row: the client profile joined with its user and
// the number of plans the listing coach has written for them.
type ClientSummary struct {
	Client    Client `json:"client"`
	User      User   `json:"user"`
	PlanCount int64  `json:"planCount"`
}

// Identity is the resolved caller, threaded explicitly into every operation.
type Identity struct {
	UserID primitive.ObjectID
	Role   Role
}

func (i Identity) IsCoach() bool {
	return i.Role == RoleCoach
}

func (i Identity) IsClient() bool {
	return i.Role == RoleClient
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != primitive.NilObjectID
}

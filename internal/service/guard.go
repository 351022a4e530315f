package service

import (
	"alcyxob/coach-plans/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relation is the access a caller needs to a resource.
type Relation int

const (
	// CoachOnly: list/create on a coach-scoped collection.
	CoachOnly Relation = iota
	// Owner: the calling coach created the resource.
	Owner
	// OwnerOrAssignee: Owner, or the calling client is the resource's assignee.
	OwnerOrAssignee
)

// Resource is the ownership view of an already-fetched record. A nil
// *Resource means the record does not exist.
type Resource struct {
	CoachID  primitive.ObjectID
	ClientID primitive.ObjectID // zero unless the resource is assigned to a client
}

// Authorize is a pure predicate over the identity and the fetched resource.
// Role is checked first, existence second, ownership last. Forbidden
// messages do not say which of role or ownership failed.
func Authorize(id domain.Identity, res *Resource, rel Relation, kind string) error {
	if !id.IsAuthenticated() {
		return newError(KindUnauthenticated, "authentication required")
	}
	if rel != OwnerOrAssignee && !id.IsCoach() {
		return forbidden(kind)
	}
	if rel == OwnerOrAssignee && !id.IsCoach() && !id.IsClient() {
		return forbidden(kind)
	}
	if rel == CoachOnly {
		return nil
	}
	if res == nil {
		return notFound(kind)
	}

	if id.IsCoach() && res.CoachID == id.UserID {
		return nil
	}
	if rel == OwnerOrAssignee && id.IsClient() && res.ClientID != primitive.NilObjectID && res.ClientID == id.UserID {
		return nil
	}
	return forbidden(kind)
}

// requireParticipant admits any coach or client, for shared read-only data.
func requireParticipant(id domain.Identity, kind string) error {
	if !id.IsAuthenticated() {
		return newError(KindUnauthenticated, "authentication required")
	}
	if !id.IsCoach() && !id.IsClient() {
		return forbidden(kind)
	}
	return nil
}

func forbidden(kind string) *Error {
	return newError(KindForbidden, "you do not have access to this %s", kind)
}

func planResource(p *domain.Plan) *Resource {
	if p == nil {
		return nil
	}
	return &Resource{CoachID: p.CoachID, ClientID: p.ClientID}
}

func templateResource(t *domain.PlanTemplate) *Resource {
	if t == nil {
		return nil
	}
	return &Resource{CoachID: t.CoachID}
}

func progressionTypeResource(pt *domain.ProgressionType) *Resource {
	if pt == nil {
		return nil
	}
	return &Resource{CoachID: pt.CoachID}
}

func clientResource(c *domain.Client) *Resource {
	if c == nil {
		return nil
	}
	res := &Resource{}
	if c.CoachID != nil {
		res.CoachID = *c.CoachID
	}
	return res
}

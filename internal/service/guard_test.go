package service

import (
	"alcyxob/coach-plans/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthorize(t *testing.T) {
	coach := domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleCoach}
	otherCoach := domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleCoach}
	client := domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleClient}
	otherClient := domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleClient}
	noProfile := domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleNone}

	owned := &Resource{CoachID: coach.UserID, ClientID: client.UserID}
	unassigned := &Resource{CoachID: coach.UserID}

	tests := []struct {
		name string
		id   domain.Identity
		res  *Resource
		rel  Relation
		want ErrorKind
	}{
		{"anonymous", domain.Identity{}, owned, OwnerOrAssignee, KindUnauthenticated},
		{"anonymous on missing", domain.Identity{}, nil, Owner, KindUnauthenticated},

		{"coach only as coach", coach, nil, CoachOnly, ""},
		{"coach only as client", client, nil, CoachOnly, KindForbidden},
		{"coach only without profile", noProfile, nil, CoachOnly, KindForbidden},

		{"owner", coach, owned, Owner, ""},
		{"owner, other coach", otherCoach, owned, Owner, KindForbidden},
		{"owner, assignee client", client, owned, Owner, KindForbidden},
		{"owner, missing", coach, nil, Owner, KindNotFound},
		{"owner, missing as client", client, nil, Owner, KindForbidden},

		{"read as owner", coach, owned, OwnerOrAssignee, ""},
		{"read as assignee", client, owned, OwnerOrAssignee, ""},
		{"read as other client", otherClient, owned, OwnerOrAssignee, KindForbidden},
		{"read as other coach", otherCoach, owned, OwnerOrAssignee, KindForbidden},
		{"read without profile", noProfile, owned, OwnerOrAssignee, KindForbidden},
		{"read missing as client", client, nil, OwnerOrAssignee, KindNotFound},
		{"read unassigned as client", client, unassigned, OwnerOrAssignee, KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.id, tt.res, tt.rel, "plan")
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestAuthorizeNamesRequestedKind(t *testing.T) {
	coach := domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleCoach}
	other := domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleCoach}
	res := &Resource{CoachID: coach.UserID}

	assert.EqualError(t, Authorize(other, res, Owner, "section"), "you do not have access to this section")
	assert.EqualError(t, Authorize(coach, nil, Owner, "plan template"), "plan template not found")
}

func TestRequireParticipant(t *testing.T) {
	assert.NoError(t, requireParticipant(domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleClient}, "exercise"))
	assert.NoError(t, requireParticipant(domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleCoach}, "exercise"))
	assert.ErrorIs(t, requireParticipant(domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleNone}, "exercise"), ErrForbidden)
	assert.ErrorIs(t, requireParticipant(domain.Identity{}, "exercise"), ErrUnauthenticated)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(notFound("plan")))
	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

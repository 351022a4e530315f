package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdentityResolver derives a caller's role from which profile they own.
type IdentityResolver interface {
	ResolveRole(ctx context.Context, userID primitive.ObjectID) (domain.Identity, error)
}

type identityResolver struct {
	coachRepo  repository.CoachRepository
	clientRepo repository.ClientRepository
}

func NewIdentityResolver(coachRepo repository.CoachRepository, clientRepo repository.ClientRepository) IdentityResolver {
	return &identityResolver{coachRepo: coachRepo, clientRepo: clientRepo}
}

// ResolveRole checks the coach profile first, then the client profile.
// A user with neither resolves to RoleNone, which is not an error.
func (r *identityResolver) ResolveRole(ctx context.Context, userID primitive.ObjectID) (domain.Identity, error) {
	if userID == primitive.NilObjectID {
		return domain.Identity{}, newError(KindUnauthenticated, "no authenticated user")
	}
	identity := domain.Identity{UserID: userID, Role: domain.RoleNone}

	_, err := r.coachRepo.GetByUserID(ctx, userID)
	if err == nil {
		identity.Role = domain.RoleCoach
		return identity, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Identity{}, err
	}

	_, err = r.clientRepo.GetByUserID(ctx, userID)
	if err == nil {
		identity.Role = domain.RoleClient
		return identity, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Identity{}, err
	}
	return identity, nil
}

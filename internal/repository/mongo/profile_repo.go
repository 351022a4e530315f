package mongo

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoCoachRepository implements repository.CoachRepository.
type mongoCoachRepository struct {
	collection *mongo.Collection
}

// NewMongoCoachRepository creates a coach profile repository.
func NewMongoCoachRepository(db *mongo.Database) repository.CoachRepository {
	return &mongoCoachRepository{collection: db.Collection(coachCollectionName)}
}

func (r *mongoCoachRepository) Create(ctx context.Context, coach *domain.Coach) error {
	if coach.UserID == primitive.NilObjectID {
		return errors.New("coach profile requires a user ID")
	}
	coach.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, coach); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoCoachRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Coach, error) {
	var coach domain.Coach
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&coach)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &coach, nil
}

// mongoClientRepository implements repository.ClientRepository.
type mongoClientRepository struct {
	collection *mongo.Collection
}

// NewMongoClientRepository creates a client profile repository.
func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{collection: db.Collection(clientCollectionName)}
}

func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) error {
	if client.UserID == primitive.NilObjectID {
		return errors.New("client profile requires a user ID")
	}
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, client); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoClientRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *mongoClientRepository) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Client, error) {
	clients := []domain.Client{}
	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// ClaimForCoach only matches clients without a coach, so two coaches racing
// for the same client cannot both win.
func (r *mongoClientRepository) ClaimForCoach(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": clientID, "coachId": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"coachId": coachID, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoClientRepository) UpdateDetails(ctx context.Context, clientID primitive.ObjectID, docID, notes string) error {
	update := bson.M{"$set": bson.M{"docId": docID, "notes": notes, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": clientID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// NextPlanNumber increments the client's counter with a single $inc, so
// concurrent callers always observe distinct values.
func (r *mongoClientRepository) NextPlanNumber(ctx context.Context, clientID primitive.ObjectID) (int, error) {
	update := bson.M{
		"$inc": bson.M{"lastPlanNumber": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var client domain.Client
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": clientID}, update, opts).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return client.LastPlanNumber, nil
}

// EnsureClientIndexes creates the roster lookup index.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}

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

// mongoSectionRepository implements repository.SectionRepository.
type mongoSectionRepository struct {
	collection *mongo.Collection
}

func NewMongoSectionRepository(db *mongo.Database) repository.SectionRepository {
	return &mongoSectionRepository{collection: db.Collection(sectionCollectionName)}
}

func (r *mongoSectionRepository) Create(ctx context.Context, section *domain.Section) (primitive.ObjectID, error) {
	if section.Name == "" {
		return primitive.NilObjectID, errors.New("section name is required")
	}
	section.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, section); err != nil {
		return primitive.NilObjectID, err
	}
	return section.ID, nil
}

func (r *mongoSectionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Section, error) {
	var section domain.Section
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&section)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &section, nil
}

func (r *mongoSectionRepository) ListVisible(ctx context.Context, coachID primitive.ObjectID) ([]domain.Section, error) {
	sections := []domain.Section{}
	filter := bson.M{"$or": bson.A{
		bson.M{"isGlobal": true},
		bson.M{"coachId": coachID},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *mongoSectionRepository) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureSectionIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isGlobal", Value: 1}}},
		{Keys: bson.D{{Key: "coachId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
}

// mongoProgressionTypeRepository implements repository.ProgressionTypeRepository.
type mongoProgressionTypeRepository struct {
	collection *mongo.Collection
}

func NewMongoProgressionTypeRepository(db *mongo.Database) repository.ProgressionTypeRepository {
	return &mongoProgressionTypeRepository{collection: db.Collection(progressionTypeCollectionName)}
}

func (r *mongoProgressionTypeRepository) Create(ctx context.Context, pt *domain.ProgressionType) (primitive.ObjectID, error) {
	if pt.CoachID == primitive.NilObjectID || pt.Name == "" {
		return primitive.NilObjectID, errors.New("progression type requires coachId and name")
	}
	pt.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	pt.CreatedAt = now
	pt.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, pt); err != nil {
		return primitive.NilObjectID, err
	}
	return pt.ID, nil
}

func (r *mongoProgressionTypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressionType, error) {
	var pt domain.ProgressionType
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &pt, nil
}

func (r *mongoProgressionTypeRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ProgressionType, error) {
	types := []domain.ProgressionType{}
	if len(ids) == 0 {
		return types, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *mongoProgressionTypeRepository) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ProgressionType, error) {
	types := []domain.ProgressionType{}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// Update rewrites the mutable fields. CoachID is never changed here.
func (r *mongoProgressionTypeRepository) Update(ctx context.Context, pt *domain.ProgressionType) error {
	pt.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":        pt.Name,
		"colorHex":    pt.ColorHex,
		"description": pt.Description,
		"isActive":    pt.IsActive,
		"updatedAt":   pt.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": pt.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete is a hard delete; plans referencing the type keep the dangling ID.
func (r *mongoProgressionTypeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureProgressionTypeIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "coachId", Value: 1}, {Key: "name", Value: 1}}},
	})
}

package mongo

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names.
const (
	userCollectionName            = "users"
	coachCollectionName           = "coaches"
	clientCollectionName          = "clients"
	exerciseCollectionName        = "exercises"
	sectionCollectionName         = "sections"
	progressionTypeCollectionName = "progression_types"
	planCollectionName            = "plans"
	planTemplateCollectionName    = "plan_templates"
)

// ConnectDB establishes a connection to MongoDB and verifies it with a ping
// against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The connect call can succeed against an unresponsive server, so ping separately.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates every index the repositories rely on and stops at the
// first failure.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger zerolog.Logger) error {
	steps := []struct {
		collection string
		ensure     func(context.Context, *mongo.Collection) error
	}{
		{userCollectionName, EnsureUserIndexes},
		{clientCollectionName, EnsureClientIndexes},
		{exerciseCollectionName, EnsureExerciseIndexes},
		{sectionCollectionName, EnsureSectionIndexes},
		{progressionTypeCollectionName, EnsureProgressionTypeIndexes},
		{planCollectionName, EnsurePlanIndexes},
		{planTemplateCollectionName, EnsurePlanTemplateIndexes},
	}
	for _, step := range steps {
		if err := step.ensure(ctx, db.Collection(step.collection)); err != nil {
			logger.Error().Err(err).Str("collection", step.collection).Msg("failed to create indexes")
			return err
		}
		logger.Debug().Str("collection", step.collection).Msg("indexes ensured")
	}
	return nil
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) error {
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

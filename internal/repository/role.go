package repository

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/inkwellhq/inkwell-api/internal/model"
)

// RoleRepository defines the interface for role-related database operations.
type RoleRepository interface {
	GetRole(ctx context.Context, id bson.ObjectID) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	EnsureRoles(ctx context.Context, names []string) error
}

const roleCollection = "roles"

type roleMongoRepository struct {
	db *mongo.Database
}

func NewRoleMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) RoleRepository {
	collection := db.Collection(roleCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create role indexes")
	}

	return &roleMongoRepository{db: db}
}

func (r *roleMongoRepository) GetRole(ctx context.Context, id bson.ObjectID) (*model.Role, error) {
	result := r.db.Collection(roleCollection).FindOne(ctx, bson.M{"_id": id})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var role model.Role
	if err := result.Decode(&role); err != nil {
		return nil, err
	}

	return &role, nil
}

func (r *roleMongoRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	result := r.db.Collection(roleCollection).FindOne(ctx, bson.M{"name": name})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var role model.Role
	if err := result.Decode(&role); err != nil {
		return nil, err
	}

	return &role, nil
}

// EnsureRoles upserts the given role names so they exist before the server
// starts accepting signups.
func (r *roleMongoRepository) EnsureRoles(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := r.db.Collection(roleCollection).UpdateOne(
			ctx,
			bson.M{"name": name},
			bson.M{"$setOnInsert": bson.M{"name": name}},
			options.UpdateOne().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

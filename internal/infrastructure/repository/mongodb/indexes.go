package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every repository relies on. The unique
// ones carry correctness: external_ref for post creation and subject for
// user provisioning.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		postsCollection: {
			{Keys: bson.D{{Key: "external_ref", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_external_ref")},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "liked_by", Value: 1}}},
			{Keys: bson.D{{Key: "needs_new_image", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		mediaCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "subject", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_subject")},
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_local_email").
					SetPartialFilterExpression(bson.M{"password_hash": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

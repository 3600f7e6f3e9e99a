package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mediaCollection = "media"

// metaProjection leaves the payload on the server.
var metaProjection = bson.M{"payload": 0}

// MediaRepository represents the MongoDB implementation of the IMediaRepository interface.
type MediaRepository struct {
	collection *mongo.Collection
}

// NewMediaRepository creates and returns a new MediaRepository instance.
func NewMediaRepository(db *mongo.Database) *MediaRepository {
	return &MediaRepository{
		collection: db.Collection(mediaCollection),
	}
}

var _ contract.IMediaRepository = (*MediaRepository)(nil)

// CreateMedia inserts a new media record into the database.
func (r *MediaRepository) CreateMedia(ctx context.Context, media *entity.Media) error {
	_, err := r.collection.InsertOne(ctx, media)
	if err != nil {
		return fmt.Errorf("failed to create media record: %w", err)
	}
	return nil
}

// GetMediaByID retrieves a single media record with its payload.
func (r *MediaRepository) GetMediaByID(ctx context.Context, mediaID string) (*entity.Media, error) {
	return r.findOne(ctx, mediaID, nil)
}

// GetMediaMetaByID retrieves a single media record without its payload.
func (r *MediaRepository) GetMediaMetaByID(ctx context.Context, mediaID string) (*entity.Media, error) {
	return r.findOne(ctx, mediaID, options.FindOne().SetProjection(metaProjection))
}

func (r *MediaRepository) findOne(ctx context.Context, mediaID string, opts *options.FindOneOptions) (*entity.Media, error) {
	var media entity.Media
	findOpts := []*options.FindOneOptions{}
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": mediaID}, findOpts...).Decode(&media)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("media with ID %s: %w", mediaID, contract.ErrMediaNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve media record with ID %s: %w", mediaID, err)
	}
	return &media, nil
}

// ListMediaByOwner lists metadata for ownerID's media, newest first.
func (r *MediaRepository) ListMediaByOwner(ctx context.Context, ownerID string, category *entity.MediaCategory) ([]*entity.Media, error) {
	filter := bson.M{"owner_id": ownerID}
	if category != nil {
		filter["category"] = *category
	}
	opts := options.Find().
		SetProjection(metaProjection).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve media records: %w", err)
	}
	defer cursor.Close(ctx)

	var mediaList []*entity.Media
	if err = cursor.All(ctx, &mediaList); err != nil {
		return nil, fmt.Errorf("failed to decode media records: %w", err)
	}
	if len(mediaList) == 0 {
		return []*entity.Media{}, nil
	}
	return mediaList, nil
}

// DeleteOwnedMedia hard deletes a media record when ownerID owns it.
func (r *MediaRepository) DeleteOwnedMedia(ctx context.Context, mediaID, ownerID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": mediaID, "owner_id": ownerID})
	if err != nil {
		return false, fmt.Errorf("failed to delete media record with ID %s: %w", mediaID, err)
	}
	return res.DeletedCount > 0, nil
}

// MediaExists reports whether a record with mediaID is stored.
func (r *MediaRepository) MediaExists(ctx context.Context, mediaID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": mediaID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check media %s: %w", mediaID, err)
	}
	return count > 0, nil
}

// ExistingMediaIDs returns the subset of ids present in the collection.
func (r *MediaRepository) ExistingMediaIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	present, err := r.distinctIDs(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, id := range present {
		found[id] = struct{}{}
	}
	return found, nil
}

// ListMediaIDsByCategory returns the ids of every record in category.
func (r *MediaRepository) ListMediaIDsByCategory(ctx context.Context, category entity.MediaCategory) ([]string, error) {
	return r.distinctIDs(ctx, bson.M{"category": category})
}

func (r *MediaRepository) distinctIDs(ctx context.Context, filter bson.M) ([]string, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list media ids: %w", err)
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode media id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list media ids: %w", err)
	}
	return ids, nil
}

// DeleteMediaByIDs removes every listed record regardless of owner.
func (r *MediaRepository) DeleteMediaByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete media records: %w", err)
	}
	return res.DeletedCount, nil
}

// CountMediaByCategory groups the collection by category.
func (r *MediaRepository) CountMediaByCategory(ctx context.Context) (map[entity.MediaCategory]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count media by category: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category entity.MediaCategory `bson:"_id"`
		Count    int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode media counts: %w", err)
	}
	counts := make(map[entity.MediaCategory]int64, len(rows))
	for _, c := range entity.MediaCategories() {
		counts[c] = 0
	}
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// TotalPayloadBytes sums the stored payload sizes on the server.
func (r *MediaRepository) TotalPayloadBytes(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "bytes": bson.M{"$sum": bson.M{"$binarySize": bson.M{"$ifNull": bson.A{"$payload", ""}}}}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum media sizes: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Bytes int64 `bson:"bytes"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode media size sum: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Bytes, nil
}

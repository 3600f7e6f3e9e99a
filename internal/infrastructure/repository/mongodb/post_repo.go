package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

// postDocument is the stored shape of a post. media_ref keeps whatever string
// was written, canonical or not, so the auditor can inspect and repair it.
type postDocument struct {
	ID            string    `bson:"_id"`
	ExternalRef   string    `bson:"external_ref"`
	OwnerID       string    `bson:"owner_id"`
	MediaRef      *string   `bson:"media_ref"`
	NeedsNewImage bool      `bson:"needs_new_image,omitempty"`
	Description   *string   `bson:"description,omitempty"`
	LikeCount     int       `bson:"like_count"`
	LikedBy       []string  `bson:"liked_by"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func newPostDocument(p *entity.Post) *postDocument {
	doc := &postDocument{
		ID:            p.ID,
		ExternalRef:   p.ExternalRef,
		OwnerID:       p.OwnerID,
		NeedsNewImage: p.NeedsNewImage,
		Description:   p.Description,
		LikeCount:     p.LikeCount,
		LikedBy:       p.LikedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if doc.LikedBy == nil {
		doc.LikedBy = []string{}
	}
	if !p.MediaRef.IsPending() {
		raw := p.MediaRef.Raw()
		doc.MediaRef = &raw
	}
	return doc
}

func (d postDocument) toEntity() *entity.Post {
	ref := mediaref.Pending()
	if d.MediaRef != nil {
		ref = mediaref.Decode(*d.MediaRef)
	}
	likedBy := d.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return &entity.Post{
		ID:            d.ID,
		ExternalRef:   d.ExternalRef,
		OwnerID:       d.OwnerID,
		MediaRef:      ref,
		NeedsNewImage: d.NeedsNewImage,
		Description:   d.Description,
		LikeCount:     d.LikeCount,
		LikedBy:       likedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// storedRefFilter matches media_ref holding exactly what expected was decoded from.
func storedRefFilter(expected mediaref.Ref) interface{} {
	if expected.IsPending() {
		return bson.M{"$in": bson.A{nil, ""}}
	}
	return expected.Raw()
}

// PostRepository represents the MongoDB implementation of the IPostRepository interface.
type PostRepository struct {
	collection *mongo.Collection
}

// NewPostRepository creates and returns a new PostRepository instance.
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{collection: db.Collection(postsCollection)}
}

var _ contract.IPostRepository = (*PostRepository)(nil)

// CreatePost inserts the post; the unique external_ref index rejects duplicates.
func (r *PostRepository) CreatePost(ctx context.Context, post *entity.Post) error {
	_, err := r.collection.InsertOne(ctx, newPostDocument(post))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return contract.ErrDuplicateExternalRef
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetPostByExternalRef(ctx context.Context, externalRef string) (*entity.Post, error) {
	var doc postDocument
	err := r.collection.FindOne(ctx, bson.M{"external_ref": externalRef}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to retrieve post %s: %w", externalRef, err)
	}
	return doc.toEntity(), nil
}

// feedRow is a post with its owner joined by $lookup.
type feedRow struct {
	Post  postDocument `bson:",inline"`
	Owner *struct {
		ID     string   `bson:"_id"`
		Name   string   `bson:"name"`
		Photos []string `bson:"photos"`
	} `bson:"owner"`
}

// ListFeed returns one reverse chronological page with owner display data.
func (r *PostRepository) ListFeed(ctx context.Context, page, limit int) ([]entity.FeedItem, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total post count: %w", err)
	}

	skip := int64((page - 1) * limit)
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "owner_id",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$owner",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$project", Value: bson.M{"owner.password_hash": 0, "owner.email": 0}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve feed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []feedRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to decode feed: %w", err)
	}

	items := make([]entity.FeedItem, 0, len(rows))
	for i := range rows {
		item := entity.FeedItem{Post: *rows[i].Post.toEntity()}
		if o := rows[i].Owner; o != nil {
			u := entity.User{ID: o.ID, Name: o.Name, Photos: o.Photos}
			summary := u.Summary()
			item.Owner = &summary
		}
		items = append(items, item)
	}
	return items, total, nil
}

func (r *PostRepository) ListPostsByOwner(ctx context.Context, ownerID string) ([]*entity.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve posts for owner %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	posts := make([]*entity.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toEntity())
	}
	return posts, nil
}

func (r *PostRepository) UpdateDescription(ctx context.Context, externalRef, ownerID string, description *string) (*entity.Post, error) {
	filter := bson.M{"external_ref": externalRef, "owner_id": ownerID}
	var update bson.M
	if description == nil {
		update = bson.M{
			"$unset": bson.M{"description": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	} else {
		update = bson.M{"$set": bson.M{"description": *description, "updated_at": time.Now().UTC()}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post %s: %w", externalRef, err)
	}
	return doc.toEntity(), nil
}

func (r *PostRepository) DeletePost(ctx context.Context, externalRef, ownerID string) (*entity.Post, error) {
	var doc postDocument
	err := r.collection.FindOneAndDelete(ctx, bson.M{"external_ref": externalRef, "owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to delete post %s: %w", externalRef, err)
	}
	return doc.toEntity(), nil
}

// ToggleLike flips userID's membership with a pipeline update so the set
// and its count change together.
func (r *PostRepository) ToggleLike(ctx context.Context, externalRef, userID string) (*entity.Post, error) {
	likedBy := bson.M{"$ifNull": bson.A{"$liked_by", bson.A{}}}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"liked_by": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, likedBy}},
				bson.M{"$setDifference": bson.A{likedBy, bson.A{userID}}},
				bson.M{"$concatArrays": bson.A{likedBy, bson.A{userID}}},
			}},
		}}},
		bson.D{{Key: "$set", Value: bson.M{
			"like_count": bson.M{"$size": "$liked_by"},
			"updated_at": "$$NOW",
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"external_ref": externalRef}, pipeline, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to toggle like on post %s: %w", externalRef, err)
	}
	return doc.toEntity(), nil
}

// IteratePosts streams the collection in _id order through a cursor.
func (r *PostRepository) IteratePosts(ctx context.Context, fn func(*entity.Post, error) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetBatchSize(500)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to open post cursor: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc postDocument
		if err := cursor.Decode(&doc); err != nil {
			if err := fn(nil, &contract.PostDecodeError{PostID: rawID(cursor.Current), Err: err}); err != nil {
				return err
			}
			continue
		}
		if err := fn(doc.toEntity(), nil); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("post cursor failed: %w", err)
	}
	return nil
}

// rawID renders the _id of an undecodable document for logs.
func rawID(doc bson.Raw) string {
	v, err := doc.LookupErr("_id")
	if err != nil {
		return "<missing _id>"
	}
	if id, ok := v.StringValueOK(); ok {
		return id
	}
	return v.String()
}

// conditionalMiss tells a concurrently changed post apart from a deleted one.
func (r *PostRepository) conditionalMiss(ctx context.Context, postID string) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check post %s: %w", postID, err)
	}
	if count == 0 {
		return contract.ErrPostNotFound
	}
	return contract.ErrMediaRefChanged
}

func (r *PostRepository) ReplaceMediaRef(ctx context.Context, postID string, expected mediaref.Ref, canonical string) error {
	filter := bson.M{"_id": postID, "media_ref": storedRefFilter(expected)}
	update := bson.M{"$set": bson.M{"media_ref": canonical, "updated_at": time.Now().UTC()}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to rewrite media reference of post %s: %w", postID, err)
	}
	if res.MatchedCount == 0 {
		return r.conditionalMiss(ctx, postID)
	}
	return nil
}

func (r *PostRepository) DeletePostIfMediaRef(ctx context.Context, postID string, expected mediaref.Ref) error {
	filter := bson.M{"_id": postID, "media_ref": storedRefFilter(expected)}
	if expected.IsPending() {
		filter["needs_new_image"] = bson.M{"$ne": true}
	}

	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", postID, err)
	}
	if res.DeletedCount == 0 {
		return r.conditionalMiss(ctx, postID)
	}
	return nil
}

func (r *PostRepository) MarkPending(ctx context.Context, postIDs []string) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	update := bson.M{"$set": bson.M{
		"media_ref":       nil,
		"needs_new_image": true,
		"updated_at":      time.Now().UTC(),
	}}
	res, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": postIDs}}, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark posts pending: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *PostRepository) CountPosts(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *PostRepository) CountPendingPosts(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"needs_new_image": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending posts: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quillpress/blog-api/internal/post"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection. Posts are keyed by ObjectID and
// the slug carries a unique index.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the slug uniqueness and listing indexes (idempotent).
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}
	return nil
}

func filterFor(id primitive.ObjectID, cond Condition) bson.M {
	f := bson.M{"_id": id}
	if cond.Author != nil {
		f["author"] = *cond.Author
	}
	return f
}

func mapWriteErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrDuplicateKey, err)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (m *MongoRepo) Insert(ctx context.Context, p *post.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.EnsureSlices()
	if _, err := m.col.InsertOne(ctx, p); err != nil {
		return mapWriteErr("insert post", err)
	}
	return nil
}

func (m *MongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*post.Post, error) {
	var p post.Post
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	p.EnsureSlices()
	return &p, nil
}

func (m *MongoRepo) List(ctx context.Context, skip, limit int64) ([]*post.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)
	out := []*post.Post{}
	for cur.Next(ctx) {
		var p post.Post
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		p.EnsureSlices()
		out = append(out, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

func (m *MongoRepo) Count(ctx context.Context) (int64, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (m *MongoRepo) Update(ctx context.Context, p *post.Post, cond Condition) (*post.Post, error) {
	p.EnsureSlices()
	set := bson.M{
		"title":         p.Title,
		"content":       p.Content,
		"slug":          p.Slug,
		"categories":    p.Categories,
		"featuredImage": p.FeaturedImage,
		"status":        p.Status,
		"updatedAt":     p.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated post.Post
	err := m.col.FindOneAndUpdate(ctx, filterFor(p.ID, cond), bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, mapWriteErr("update post", err)
	}
	updated.EnsureSlices()
	return &updated, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id primitive.ObjectID, cond Condition) error {
	res, err := m.col.DeleteOne(ctx, filterFor(id, cond))
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) PushComment(ctx context.Context, id primitive.ObjectID, c post.Comment, updatedAt time.Time) (*post.Post, error) {
	upd := bson.M{
		"$push": bson.M{"comments": bson.M{"$each": bson.A{c}, "$position": 0}},
		"$set":  bson.M{"updatedAt": updatedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated post.Post
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, upd, opts).Decode(&updated); err != nil {
		return nil, mapWriteErr("push comment", err)
	}
	updated.EnsureSlices()
	return &updated, nil
}

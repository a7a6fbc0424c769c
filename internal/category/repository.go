package category

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quillpress/blog-api/internal/apierr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateKey = apierr.ErrDuplicateKey

// Repository persists categories. Name or slug collisions return ErrDuplicateKey.
type Repository interface {
	Insert(ctx context.Context, c *Category) error
	// List returns every category sorted by name.
	List(ctx context.Context) ([]*Category, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Category, error)
}

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("categories indexes: %w", err)
	}
	return nil
}

func (m *MongoRepo) Insert(ctx context.Context, c *Category) error {
	if _, err := m.col.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert category: %w: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M) ([]*Category, error) {
	cur, err := m.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	out := []*Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*Category, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Category, error) {
	return m.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]Category
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: map[primitive.ObjectID]Category{}}
}

func (m *MemoryRepo) Insert(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.items {
		if other.ID == c.ID || other.Name == c.Name || other.Slug == c.Slug {
			return fmt.Errorf("category %q: %w", c.Name, ErrDuplicateKey)
		}
	}
	m.items[c.ID] = *c
	return nil
}

func (m *MemoryRepo) List(_ context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Category, 0, len(m.items))
	for _, c := range m.items {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Category{}
	for _, id := range ids {
		if c, ok := m.items[id]; ok {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quillpress/blog-api/internal/post"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory repository used by unit tests and local runs without MongoDB.
// It enforces the same slug uniqueness as the Mongo index.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*post.Post
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]*post.Post)}
}

func (m *MemoryRepo) slugTaken(slug string, except primitive.ObjectID) bool {
	for id, p := range m.store {
		if id != except && p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *MemoryRepo) Insert(_ context.Context, p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := m.store[p.ID]; ok {
		return fmt.Errorf("post %s: %w", p.ID.Hex(), ErrDuplicateKey)
	}
	if m.slugTaken(p.Slug, p.ID) {
		return fmt.Errorf("slug %q: %w", p.Slug, ErrDuplicateKey)
	}
	m.store[p.ID] = p.Clone()
	return nil
}

func (m *MemoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		return p.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(_ context.Context, skip, limit int64) ([]*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]*post.Post, 0, len(m.store))
	for _, p := range m.store {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.Hex() > all[j].ID.Hex()
	})
	if skip < 0 {
		skip = 0
	}
	out := []*post.Post{}
	for i := skip; i < int64(len(all)) && int64(len(out)) < limit; i++ {
		out = append(out, all[i].Clone())
	}
	return out, nil
}

func (m *MemoryRepo) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.store)), nil
}

func (m *MemoryRepo) Update(_ context.Context, p *post.Post, cond Condition) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[p.ID]
	if !ok || !cond.matches(cur) {
		return nil, ErrNotFound
	}
	if m.slugTaken(p.Slug, p.ID) {
		return nil, fmt.Errorf("slug %q: %w", p.Slug, ErrDuplicateKey)
	}
	next := cur.Clone()
	in := p.Clone()
	next.Title = in.Title
	next.Content = in.Content
	next.Slug = in.Slug
	next.Categories = in.Categories
	next.FeaturedImage = in.FeaturedImage
	next.Status = in.Status
	next.UpdatedAt = in.UpdatedAt
	m.store[p.ID] = next
	return next.Clone(), nil
}

func (m *MemoryRepo) Delete(_ context.Context, id primitive.ObjectID, cond Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[id]
	if !ok || !cond.matches(cur) {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) PushComment(_ context.Context, id primitive.ObjectID, c post.Comment, updatedAt time.Time) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := cur.Clone()
	next.Comments = append([]post.Comment{c}, next.Comments...)
	next.UpdatedAt = updatedAt
	m.store[id] = next
	return next.Clone(), nil
}

package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/quillpress/blog-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository keeps users in process. It mirrors the unique indexes of the Mongo
// repository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[primitive.ObjectID]models.User{}}
}

func (r *MemoryUserRepository) conflict(u *models.User) error {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		switch {
		case other.Email == u.Email:
			return fmt.Errorf("email %q: %w", u.Email, ErrDuplicateKey)
		case other.Username == u.Username:
			return fmt.Errorf("username %q: %w", u.Username, ErrDuplicateKey)
		case u.Sub != "" && other.Sub == u.Sub:
			return fmt.Errorf("sub %q: %w", u.Sub, ErrDuplicateKey)
		}
	}
	return nil
}

func (r *MemoryUserRepository) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID.Hex(), ErrDuplicateKey)
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) GetBySub(_ context.Context, sub string) (*models.User, error) {
	return r.find(func(u models.User) bool { return sub != "" && u.Sub == sub })
}

func (r *MemoryUserRepository) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			u := u
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) UpsertBySub(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := models.Now()
	for id, existing := range r.users {
		if existing.Sub == u.Sub {
			existing.Email = u.Email
			existing.UpdatedAt = now
			r.users[id] = existing
			return &existing, nil
		}
	}
	created := models.User{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      models.RoleUser,
		Sub:       u.Sub,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.conflict(&created); err != nil {
		return nil, err
	}
	r.users[created.ID] = created
	return &created, nil
}

func (r *MemoryUserRepository) SetRoleByEmail(_ context.Context, email, role string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Email == email {
			u.Role = role
			u.UpdatedAt = models.Now()
			r.users[id] = u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

package repository

import (
	"context"
	"time"

	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/post"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = apierr.ErrNotFound
	ErrDuplicateKey = apierr.ErrDuplicateKey
)

// Condition narrows a write to documents owned by Author. A nil Author matches any owner.
type Condition struct {
	Author *primitive.ObjectID
}

// Any matches regardless of owner.
var Any = Condition{}

// OwnedBy restricts a write to posts authored by id.
func OwnedBy(id primitive.ObjectID) Condition { return Condition{Author: &id} }

func (c Condition) matches(p *post.Post) bool {
	return c.Author == nil || p.Author == *c.Author
}

// Repository persists posts. Writes that match no document return ErrNotFound;
// slug collisions return ErrDuplicateKey.
type Repository interface {
	Insert(ctx context.Context, p *post.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*post.Post, error)
	// List returns posts newest first.
	List(ctx context.Context, skip, limit int64) ([]*post.Post, error)
	Count(ctx context.Context) (int64, error)
	// Update writes the mutable fields of p (title, content, slug, categories,
	// featuredImage, status, updatedAt) and returns the stored document.
	Update(ctx context.Context, p *post.Post, cond Condition) (*post.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID, cond Condition) error
	// PushComment prepends c and sets updatedAt in one write.
	PushComment(ctx context.Context, id primitive.ObjectID, c post.Comment, updatedAt time.Time) (*post.Post, error)
}

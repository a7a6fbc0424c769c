package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/post"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPost(title string, author primitive.ObjectID, created time.Time) *post.Post {
	p := &post.Post{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Content:   "some long enough content",
		Author:    author,
		Status:    post.StatusDraft,
		CreatedAt: created,
	}
	p.Touch(created)
	return p
}

func TestMemoryRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	author := primitive.NewObjectID()
	p := newPost("first post", author, models.Now())
	require.NoError(t, r.Insert(ctx, p))

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "first-post", got.Slug)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got.Title = "renamed post"
	got.Touch(models.Now())
	updated, err := r.Update(ctx, got, Any)
	require.NoError(t, err)
	require.Equal(t, "renamed-post", updated.Slug)

	require.NoError(t, r.Delete(ctx, p.ID, Any))
	_, err = r.FindByID(ctx, p.ID)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	p := newPost("copy semantics", primitive.NewObjectID(), models.Now())
	require.NoError(t, r.Insert(ctx, p))

	p.Title = "mutated after insert"
	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "copy semantics", got.Title)

	got.Comments = append(got.Comments, post.Comment{Content: "leak"})
	again, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, again.Comments)
}

func TestMemoryRepo_DuplicateSlug(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	require.NoError(t, r.Insert(ctx, newPost("A B", primitive.NewObjectID(), models.Now())))
	err := r.Insert(ctx, newPost("A-B", primitive.NewObjectID(), models.Now()))
	require.True(t, errors.Is(err, ErrDuplicateKey))

	other := newPost("other", primitive.NewObjectID(), models.Now())
	require.NoError(t, r.Insert(ctx, other))
	other.Title = "a b"
	other.Touch(models.Now())
	_, err = r.Update(ctx, other, Any)
	require.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestMemoryRepo_ConditionalWrites(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()
	p := newPost("guarded", owner, models.Now())
	require.NoError(t, r.Insert(ctx, p))

	p.Title = "hijacked"
	p.Touch(models.Now())
	_, err := r.Update(ctx, p, OwnedBy(stranger))
	require.True(t, errors.Is(err, ErrNotFound))
	require.True(t, errors.Is(r.Delete(ctx, p.ID, OwnedBy(stranger)), ErrNotFound))

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "guarded", got.Title)

	require.NoError(t, r.Delete(ctx, p.ID, OwnedBy(owner)))
}

func TestMemoryRepo_ListOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	base := models.Now()
	author := primitive.NewObjectID()
	for i, title := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, r.Insert(ctx, newPost(title, author, base.Add(time.Duration(i)*time.Second))))
	}

	page, err := r.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "newest", page[0].Title)
	require.Equal(t, "middle", page[1].Title)

	page, err = r.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "oldest", page[0].Title)

	page, err = r.List(ctx, 10, 2)
	require.NoError(t, err)
	require.NotNil(t, page)
	require.Empty(t, page)

	page, err = r.List(ctx, -20, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "newest", page[0].Title)
}

func TestMemoryRepo_PushCommentPrepends(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	p := newPost("discussed", primitive.NewObjectID(), models.Now())
	require.NoError(t, r.Insert(ctx, p))

	for _, text := range []string{"one", "two", "three"} {
		c := post.Comment{ID: primitive.NewObjectID(), Content: text, Author: primitive.NewObjectID(), CreatedAt: models.Now()}
		got, err := r.PushComment(ctx, p.ID, c, models.Now())
		require.NoError(t, err)
		require.Equal(t, text, got.Comments[0].Content)
	}
	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"three", "two", "one"}, []string{got.Comments[0].Content, got.Comments[1].Content, got.Comments[2].Content})

	_, err = r.PushComment(ctx, primitive.NewObjectID(), post.Comment{}, models.Now())
	require.True(t, errors.Is(err, ErrNotFound))
}

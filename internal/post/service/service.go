package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/post"
	"github.com/quillpress/blog-api/internal/post/repository"
	"github.com/quillpress/blog-api/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	msgPostNotFound   = "Post not found"
	msgUpdateDenied   = "Not authorized to update this post"
	msgDeleteDenied   = "Not authorized to delete this post"
	msgCommentMissing = "Comment content is required"
)

// AuthorResolver reduces user ids to {_id, username}. Unknown ids are omitted from the result.
type AuthorResolver interface {
	AuthorRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AuthorRef, error)
}

// CategoryResolver reduces category ids to {_id, name}. Unknown ids are omitted from the result.
type CategoryResolver interface {
	CategoryRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CategoryRef, error)
}

// Page is one page of the post listing.
type Page struct {
	Posts       []post.View
	Count       int
	Total       int64
	TotalPages  int64
	CurrentPage int
}

// Service defines the post business operations used by the handler layer.
// Failures are returned as *apierr.Error or as errors apierr.From can classify.
type Service interface {
	List(ctx context.Context, page, limit int) (*Page, error)
	Get(ctx context.Context, id string) (*post.View, error)
	Create(ctx context.Context, author primitive.ObjectID, in post.CreateInput) (*post.Post, error)
	Update(ctx context.Context, id string, caller models.Identity, in post.UpdateInput) (*post.Post, error)
	Delete(ctx context.Context, id string, caller models.Identity) error
	AddComment(ctx context.Context, id string, author primitive.ObjectID, in post.CommentInput) (*post.View, error)
}

// Option configures a Service.
type Option func(*postService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *postService) { s.now = now }
}

// NewService returns a Service over repo. authors and categories populate references in
// responses; either may be nil, in which case the matching references render empty.
func NewService(repo repository.Repository, authors AuthorResolver, categories CategoryResolver, opts ...Option) Service {
	s := &postService{repo: repo, authors: authors, categories: categories, now: models.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

type postService struct {
	repo       repository.Repository
	authors    AuthorResolver
	categories CategoryResolver
	now        func() time.Time
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, apierr.From(err)
	}
	return oid, nil
}

// notFound turns a repository miss into the post-specific message.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierr.NotFound(msgPostNotFound)
	}
	return err
}

func (s *postService) refs(ctx context.Context, posts []*post.Post, withCommentAuthors bool) (post.Refs, error) {
	refs := post.Refs{}
	authorIDs, categoryIDs := post.ReferencedIDs(posts, withCommentAuthors)
	if s.authors != nil && len(authorIDs) > 0 {
		m, err := s.authors.AuthorRefs(ctx, authorIDs)
		if err != nil {
			return refs, err
		}
		refs.Authors = m
	}
	if s.categories != nil && len(categoryIDs) > 0 {
		m, err := s.categories.CategoryRefs(ctx, categoryIDs)
		if err != nil {
			return refs, err
		}
		refs.Categories = m
	}
	return refs, nil
}

func (s *postService) expand(ctx context.Context, p *post.Post) (*post.View, error) {
	refs, err := s.refs(ctx, []*post.Post{p}, true)
	if err != nil {
		return nil, err
	}
	v := post.NewView(p, refs, true)
	return &v, nil
}

func (s *postService) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	lim := int64(limit)
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalPages := total / lim
	if total%lim != 0 {
		totalPages++
	}
	// A skip that would overflow lies past any stored post.
	posts := []*post.Post{}
	if int64(page-1) <= math.MaxInt64/lim {
		posts, err = s.repo.List(ctx, int64(page-1)*lim, lim)
		if err != nil {
			return nil, err
		}
	}
	refs, err := s.refs(ctx, posts, false)
	if err != nil {
		return nil, err
	}
	views := make([]post.View, 0, len(posts))
	for _, p := range posts {
		views = append(views, post.NewView(p, refs, false))
	}
	return &Page{
		Posts:       views,
		Count:       len(views),
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *postService) Get(ctx context.Context, id string) (*post.View, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound(err)
	}
	return s.expand(ctx, p)
}

func (s *postService) Create(ctx context.Context, author primitive.ObjectID, in post.CreateInput) (*post.Post, error) {
	categories, bad := post.ParseCategoryIDs(in.Categories)
	status := in.Status
	if status == "" {
		status = post.StatusDraft
	}
	now := s.now()
	p := &post.Post{
		ID:            primitive.NewObjectID(),
		Title:         in.Title,
		Content:       in.Content,
		Author:        author,
		Categories:    categories,
		FeaturedImage: post.NormalizeImage(in.FeaturedImage),
		Status:        status,
		CreatedAt:     now,
	}
	p.Touch(now)
	if msgs := append(p.Validate(), bad...); len(msgs) > 0 {
		return nil, apierr.Validation(msgs...)
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	metrics.PostsCreated.Inc()
	return p, nil
}

// authorize loads the post and checks that caller may modify it. The returned condition
// pins the subsequent write to the owner the check was made against.
func (s *postService) authorize(ctx context.Context, id string, caller models.Identity, denied string) (*post.Post, repository.Condition, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, repository.Any, err
	}
	p, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, repository.Any, notFound(err)
	}
	if !p.CanModify(caller) {
		return nil, repository.Any, apierr.Forbidden(denied)
	}
	if caller.IsAdmin() {
		return p, repository.Any, nil
	}
	return p, repository.OwnedBy(caller.ID), nil
}

func (s *postService) Update(ctx context.Context, id string, caller models.Identity, in post.UpdateInput) (*post.Post, error) {
	p, cond, err := s.authorize(ctx, id, caller, msgUpdateDenied)
	if err != nil {
		return nil, err
	}
	var bad []string
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Categories != nil {
		p.Categories, bad = post.ParseCategoryIDs(*in.Categories)
	}
	if in.FeaturedImage != nil {
		p.FeaturedImage = post.NormalizeImage(in.FeaturedImage)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	p.Touch(s.now())
	if msgs := append(p.Validate(), bad...); len(msgs) > 0 {
		return nil, apierr.Validation(msgs...)
	}
	updated, err := s.repo.Update(ctx, p, cond)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *postService) Delete(ctx context.Context, id string, caller models.Identity) error {
	p, cond, err := s.authorize(ctx, id, caller, msgDeleteDenied)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID, cond); err != nil {
		return notFound(err)
	}
	metrics.PostsDeleted.Inc()
	return nil
}

func (s *postService) AddComment(ctx context.Context, id string, author primitive.ObjectID, in post.CommentInput) (*post.View, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apierr.Validation(msgCommentMissing)
	}
	now := s.now()
	c := post.Comment{ID: primitive.NewObjectID(), Content: content, Author: author, CreatedAt: now}
	p, err := s.repo.PushComment(ctx, oid, c, now)
	if err != nil {
		return nil, notFound(err)
	}
	metrics.CommentsAdded.Inc()
	return s.expand(ctx, p)
}

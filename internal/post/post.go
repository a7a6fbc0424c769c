package post

import (
	"strings"
	"time"

	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Comment is embedded in a Post and never addressed on its own.
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Content   string             `json:"content" bson:"content"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Post is the persisted blog post document. Comments are kept newest-first.
type Post struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id"`
	Title         string               `json:"title" bson:"title"`
	Content       string               `json:"content" bson:"content"`
	Slug          string               `json:"slug" bson:"slug"`
	Author        primitive.ObjectID   `json:"author" bson:"author"`
	Categories    []primitive.ObjectID `json:"categories" bson:"categories"`
	FeaturedImage *string              `json:"featuredImage" bson:"featuredImage"`
	Status        string               `json:"status" bson:"status"`
	Comments      []Comment            `json:"comments" bson:"comments"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CreateInput is the payload accepted when creating a post.
type CreateInput struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Categories    []string `json:"categories"`
	FeaturedImage *string  `json:"featuredImage"`
	Status        string   `json:"status"`
}

// UpdateInput lists the only fields an update may touch. Nil means unchanged;
// an empty FeaturedImage clears it.
type UpdateInput struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	Categories    *[]string `json:"categories"`
	FeaturedImage *string   `json:"featuredImage"`
	Status        *string   `json:"status"`
}

// CommentInput is the payload for appending a comment.
type CommentInput struct {
	Content string `json:"content"`
}

type rules struct {
	Title   string `validate:"required,min=3"`
	Content string `validate:"required,min=10"`
	Status  string `validate:"oneof=draft published"`
}

var messages = validation.Messages{
	"Title.required":   "Post title is required",
	"Title.min":        "Title must be at least 3 characters long",
	"Content.required": "Post content is required",
	"Content.min":      "Content must be at least 10 characters long",
	"Status.oneof":     "Status must be either draft or published",
}

// Validate returns one message per violated field; empty when valid.
func (p *Post) Validate() []string {
	return validation.Struct(rules{Title: p.Title, Content: p.Content, Status: p.Status}, messages)
}

// Touch trims text fields, re-derives the slug from the current title and stamps updatedAt.
// Runs before every save.
func (p *Post) Touch(now time.Time) {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	p.Slug = models.Slugify(p.Title)
	p.EnsureSlices()
	p.UpdatedAt = now
}

// EnsureSlices replaces nil slices so they serialize as [] rather than null.
func (p *Post) EnsureSlices() {
	if p.Categories == nil {
		p.Categories = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// CanModify reports whether caller may update or delete p: the author or any admin.
func (p *Post) CanModify(caller models.Identity) bool {
	return p.Author == caller.ID || caller.IsAdmin()
}

// Clone returns a deep copy so stored documents never alias caller-held values.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Categories = append([]primitive.ObjectID{}, p.Categories...)
	cp.Comments = append([]Comment{}, p.Comments...)
	if p.FeaturedImage != nil {
		img := *p.FeaturedImage
		cp.FeaturedImage = &img
	}
	return &cp
}

// ParseCategoryIDs converts hex ids, reporting one message per malformed id.
func ParseCategoryIDs(raw []string) ([]primitive.ObjectID, []string) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	var bad []string
	for _, s := range raw {
		id, err := models.ParseID(strings.TrimSpace(s))
		if err != nil {
			bad = append(bad, "Invalid category id: "+s)
			continue
		}
		ids = append(ids, id)
	}
	return ids, bad
}

// NormalizeImage maps an empty or blank URL to nil.
func NormalizeImage(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

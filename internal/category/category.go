package category

import (
	"strings"
	"time"

	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups posts. Name and slug are unique.
type Category struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Slug        string             `json:"slug" bson:"slug"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateInput is the payload accepted when creating a category.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rules struct {
	Name string `validate:"required,min=2"`
}

var messages = validation.Messages{
	"Name.required": "Category name is required",
	"Name.min":      "Category name must be at least 2 characters long",
}

// New builds a validated category from in.
func New(in CreateInput, now time.Time) (*Category, []string) {
	c := &Category{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
	}
	c.Slug = models.Slugify(c.Name)
	if msgs := validation.Struct(rules{Name: c.Name}, messages); len(msgs) > 0 {
		return nil, msgs
	}
	return c, nil
}

func (c *Category) Ref() models.CategoryRef {
	return models.CategoryRef{ID: c.ID, Name: c.Name}
}

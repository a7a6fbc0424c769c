package post

import (
	"time"

	"github.com/quillpress/blog-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// View is a post with its references populated for responses.
type View struct {
	ID            primitive.ObjectID   `json:"_id"`
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	Slug          string               `json:"slug"`
	Author        *models.AuthorRef    `json:"author"`
	Categories    []models.CategoryRef `json:"categories"`
	FeaturedImage *string              `json:"featuredImage"`
	Status        string               `json:"status"`
	Comments      []CommentView        `json:"comments"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// CommentView carries either the raw author id (list view) or a *models.AuthorRef (detail view).
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	Content   string             `json:"content"`
	Author    interface{}        `json:"author"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Refs holds resolved references for a batch of posts.
type Refs struct {
	Authors    map[primitive.ObjectID]models.AuthorRef
	Categories map[primitive.ObjectID]models.CategoryRef
}

// NewView populates p from refs. Comment authors are expanded only when expandComments is set.
// Unknown authors render as null and unknown categories are dropped.
func NewView(p *Post, refs Refs, expandComments bool) View {
	v := View{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Slug:          p.Slug,
		FeaturedImage: p.FeaturedImage,
		Status:        p.Status,
		Categories:    make([]models.CategoryRef, 0, len(p.Categories)),
		Comments:      make([]CommentView, 0, len(p.Comments)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if a, ok := refs.Authors[p.Author]; ok {
		a := a
		v.Author = &a
	}
	for _, id := range p.Categories {
		if c, ok := refs.Categories[id]; ok {
			v.Categories = append(v.Categories, c)
		}
	}
	for _, c := range p.Comments {
		cv := CommentView{ID: c.ID, Content: c.Content, Author: c.Author, CreatedAt: c.CreatedAt}
		if expandComments {
			if a, ok := refs.Authors[c.Author]; ok {
				a := a
				cv.Author = &a
			} else {
				cv.Author = nil
			}
		}
		v.Comments = append(v.Comments, cv)
	}
	return v
}

// ReferencedIDs collects the author and category ids referenced by posts.
func ReferencedIDs(posts []*Post, withCommentAuthors bool) (authors, categories []primitive.ObjectID) {
	seenA := map[primitive.ObjectID]bool{}
	seenC := map[primitive.ObjectID]bool{}
	addA := func(id primitive.ObjectID) {
		if !seenA[id] {
			seenA[id] = true
			authors = append(authors, id)
		}
	}
	for _, p := range posts {
		addA(p.Author)
		if withCommentAuthors {
			for _, c := range p.Comments {
				addA(c.Author)
			}
		}
		for _, id := range p.Categories {
			if !seenC[id] {
				seenC[id] = true
				categories = append(categories, id)
			}
		}
	}
	return authors, categories
}

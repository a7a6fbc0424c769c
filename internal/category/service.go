package category

import (
	"context"

	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Category, error) {
	c, msgs := New(in, models.Now())
	if len(msgs) > 0 {
		return nil, apierr.Validation(msgs...)
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

// CategoryRefs reduces the given categories to {_id, name}; unknown ids are left out.
func (s *Service) CategoryRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CategoryRef, error) {
	out := make(map[primitive.ObjectID]models.CategoryRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		out[c.ID] = c.Ref()
	}
	return out, nil
}

package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// Service wraps repository operations with refresh-token business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// CreateSession stores a new refresh session for userID and returns the refresh token.
func (s *Service) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := s.now()
	sess := &Session{
		RefreshToken: hex.EncodeToString(b),
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return sess.RefreshToken, nil
}

// ValidateRefresh returns the live session for refresh, or ErrNotFound. Expired sessions
// are removed on sight.
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	if refresh == "" {
		return nil, ErrNotFound
	}
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		return nil, ErrNotFound
	}
	return sess, nil
}

// DeleteRefresh drops the session. Unknown tokens are not an error.
func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	if err := s.repo.DeleteByRefresh(ctx, refresh); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

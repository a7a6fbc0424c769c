package users

import (
	"context"
	"testing"

	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const localIssuer = "blog-api"

func newTestService() *Service {
	s := NewService(NewMemoryUserRepository(), WithLocalIssuer(localIssuer))
	s.cost = bcrypt.MinCost
	return s
}

func register(t *testing.T, s *Service, username, email string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: "secret123"})
	require.NoError(t, err)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	u := register(t, s, "alice", "Alice@Example.com")
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, models.RoleUser, u.Role)
	require.NotEqual(t, "secret123", u.PasswordHash)

	got, err := s.Authenticate(ctx, LoginInput{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	require.True(t, apierr.Is(err, apierr.KindUnauthenticated))
	_, err = s.Authenticate(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	require.True(t, apierr.Is(err, apierr.KindUnauthenticated))
	_, err = s.Authenticate(ctx, LoginInput{})
	require.True(t, apierr.Is(err, apierr.KindValidation))
}

func TestRegister_Validation(t *testing.T) {
	s := newTestService()
	_, err := s.Register(context.Background(), RegisterInput{Username: "al", Email: "not-an-email", Password: "123"})
	require.True(t, apierr.Is(err, apierr.KindValidation))
	require.ElementsMatch(t, []string{
		"Username must be at least 3 characters long",
		"Please provide a valid email",
		"Password must be at least 6 characters long",
	}, apierr.From(err).Messages)
}

func TestRegister_Duplicates(t *testing.T) {
	s := newTestService()
	register(t, s, "alice", "alice@example.com")
	_, err := s.Register(context.Background(), RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	require.True(t, apierr.Is(err, apierr.KindDuplicateKey))
	_, err = s.Register(context.Background(), RegisterInput{Username: "other", Email: "alice@example.com", Password: "secret123"})
	require.True(t, apierr.Is(err, apierr.KindDuplicateKey))
}

func TestAuthorRefs(t *testing.T) {
	s := newTestService()
	a := register(t, s, "alice", "alice@example.com")
	b := register(t, s, "bob", "bob@example.com")
	ghost := primitive.NewObjectID()

	refs, err := s.AuthorRefs(context.Background(), []primitive.ObjectID{a.ID, b.ID, ghost})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, models.AuthorRef{ID: b.ID, Username: "bob"}, refs[b.ID])

	refs, err = s.AuthorRefs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, refs)
}

func TestResolveIdentity(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	u := register(t, s, "alice", "alice@example.com")

	id, err := s.ResolveIdentity(ctx, map[string]interface{}{"sub": u.ID.Hex(), "iss": localIssuer, "role": "admin"})
	require.NoError(t, err)
	require.Equal(t, models.Identity{ID: u.ID, Username: "alice", Role: models.RoleUser}, id)

	_, err = s.ResolveIdentity(ctx, map[string]interface{}{"sub": primitive.NewObjectID().Hex(), "iss": localIssuer})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.ResolveIdentity(ctx, map[string]interface{}{"sub": "not-an-object-id", "iss": localIssuer})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.ResolveIdentity(ctx, map[string]interface{}{})
	require.Error(t, err)
}

func TestResolveIdentity_ExternalIssuerNeverMatchesLocalIDs(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	local := register(t, s, "alice", "alice@example.com")

	// An external subject that happens to look like a local user id.
	claims := map[string]interface{}{
		"sub":                local.ID.Hex(),
		"iss":                "https://sso.example.com/realms/blog",
		"email":              "mallory@example.com",
		"preferred_username": "mallory",
	}
	id, err := s.ResolveIdentity(ctx, claims)
	require.NoError(t, err)
	require.NotEqual(t, local.ID, id.ID)
	require.Equal(t, "mallory", id.Username)

	u, err := s.GetBySub(ctx, local.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, id.ID, u.ID)
}

func TestResolveIdentity_ProvisionsOIDCSubjects(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	claims := map[string]interface{}{
		"sub":                "kc-7f3a",
		"iss":                "https://sso.example.com/realms/blog",
		"email":              "Carol@Example.com",
		"preferred_username": "carol",
	}
	first, err := s.ResolveIdentity(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, "carol", first.Username)
	require.Equal(t, models.RoleUser, first.Role)

	claims["email"] = "carol@new.example.com"
	second, err := s.ResolveIdentity(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	u, err := s.GetBySub(ctx, "kc-7f3a")
	require.NoError(t, err)
	require.Equal(t, "carol@new.example.com", u.Email)
}

func TestPromoteByEmail(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	u := register(t, s, "alice", "alice@example.com")

	promoted, err := s.PromoteByEmail(ctx, " Alice@example.com ")
	require.NoError(t, err)
	require.True(t, promoted.IsAdmin())

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, got.Role)

	_, err = s.PromoteByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

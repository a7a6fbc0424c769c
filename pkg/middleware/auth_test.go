package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier accepts a single raw token.
type fakeVerifier struct{ good string }

func (f *fakeVerifier) Verify(_ context.Context, raw string) (Token, error) {
	if raw == f.good {
		return &fakeToken{data: map[string]interface{}{"sub": userID.Hex(), "role": "user"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

var userID = primitive.NewObjectID()

// fakeResolver knows exactly one user.
type fakeResolver struct{}

func (fakeResolver) ResolveIdentity(_ context.Context, claims map[string]interface{}) (models.Identity, error) {
	if claims["sub"] == userID.Hex() {
		return models.Identity{ID: userID, Username: "alice", Role: models.RoleUser}, nil
	}
	return models.Identity{}, fmt.Errorf("no such user")
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	g := gin.New()
	g.Use(apierr.Handler())
	g.GET("/", mw, func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": id.Username, "token": RawToken(c), "claims": ClaimsFrom(c)})
	})
	return g
}

func do(g *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func requireUnauthorized(t *testing.T, rw *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "Not authorized to access this route", body["message"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	g := newRouter(AuthMiddleware(&fakeVerifier{good: "goodtoken"}, fakeResolver{}))

	requireUnauthorized(t, do(g, ""))
	requireUnauthorized(t, do(g, "BadHeader"))
	requireUnauthorized(t, do(g, "Bearer "))
	requireUnauthorized(t, do(g, "Basic goodtoken"))
	requireUnauthorized(t, do(g, "Bearer badtoken"))
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := newRouter(AuthMiddleware(&fakeVerifier{good: "goodtoken"}, fakeResolver{}))
	rw := do(g, "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "alice", got["username"])
	require.Equal(t, "goodtoken", got["token"])
	require.Contains(t, got, "claims")
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	ver := VerifierFunc(func(_ context.Context, raw string) (Token, error) {
		return &fakeToken{data: map[string]interface{}{"sub": primitive.NewObjectID().Hex()}}, nil
	})
	g := newRouter(AuthMiddleware(ver, fakeResolver{}))
	requireUnauthorized(t, do(g, "Bearer anything"))
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	g := newRouter(AuthMiddleware(&fakeVerifier{good: "goodtoken"}, fakeResolver{}, WithRevocations(bl)))
	require.Equal(t, http.StatusOK, do(g, "Bearer goodtoken").Code)

	require.NoError(t, bl.Add(context.Background(), "goodtoken", 5*time.Second))
	requireUnauthorized(t, do(g, "Bearer goodtoken"))
}

func TestChain(t *testing.T) {
	ch := Chain(nil, &fakeVerifier{good: "a"}, &fakeVerifier{good: "b"})
	_, err := ch.Verify(context.Background(), "b")
	require.NoError(t, err)
	_, err = ch.Verify(context.Background(), "c")
	require.Error(t, err)

	_, err = Chain().Verify(context.Background(), "a")
	require.Error(t, err)
}

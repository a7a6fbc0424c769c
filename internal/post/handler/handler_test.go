package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/post/repository"
	"github.com/quillpress/blog-api/internal/post/service"
	"github.com/quillpress/blog-api/pkg/middleware"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	alice = models.Identity{ID: primitive.NewObjectID(), Username: "alice", Role: models.RoleUser}
	bob   = models.Identity{ID: primitive.NewObjectID(), Username: "bob", Role: models.RoleUser}
	admin = models.Identity{ID: primitive.NewObjectID(), Username: "root", Role: models.RoleAdmin}
)

// fakeAuth admits the bearer tokens "alice", "bob" and "admin".
func fakeAuth(c *gin.Context) {
	ids := map[string]models.Identity{"Bearer alice": alice, "Bearer bob": bob, "Bearer admin": admin}
	id, ok := ids[c.GetHeader("Authorization")]
	if !ok {
		apierr.Abort(c, apierr.Unauthenticated("Not authorized to access this route"))
		return
	}
	c.Set(middleware.IdentityKey, id)
	c.Next()
}

func newEngine() *gin.Engine {
	g := gin.New()
	g.Use(apierr.Handler())
	svc := service.NewService(repository.NewMemoryRepo(), nil, nil)
	RegisterPostRoutes(g.Group("/api/posts"), svc, fakeAuth)
	g.NoRoute(apierr.NoRoute)
	return g
}

type envelope struct {
	Success     bool            `json:"success"`
	Message     json.RawMessage `json:"message"`
	Count       int             `json:"count"`
	Total       int             `json:"total"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Data        json.RawMessage `json:"data"`
}

func call(t *testing.T, g *gin.Engine, method, path, user, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func createPost(t *testing.T, g *gin.Engine, user, title string) string {
	t.Helper()
	code, env := call(t, g, http.MethodPost, "/api/posts", user,
		`{"title":"`+title+`","content":"This is my first post content."}`)
	require.Equal(t, http.StatusCreated, code)
	var p struct {
		ID     string `json:"_id"`
		Slug   string `json:"slug"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.Equal(t, "draft", p.Status)
	return p.ID
}

func TestPostHandler_CRUD(t *testing.T) {
	g := newEngine()
	id := createPost(t, g, "alice", "Hello, World!")

	code, env := call(t, g, http.MethodGet, "/api/posts/"+id, "", "")
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	require.Contains(t, string(env.Data), `"slug":"hello--world-"`)

	code, env = call(t, g, http.MethodPut, "/api/posts/"+id, "alice", `{"title":"New Title","status":"published"}`)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(env.Data), `"slug":"new-title"`)

	code, env = call(t, g, http.MethodPost, "/api/posts/"+id+"/comments", "bob", `{"content":"Nice"}`)
	require.Equal(t, http.StatusCreated, code)
	require.Contains(t, string(env.Data), `"content":"Nice"`)

	code, env = call(t, g, http.MethodDelete, "/api/posts/"+id, "alice", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{}`, string(env.Data))

	code, env = call(t, g, http.MethodGet, "/api/posts/"+id, "", "")
	require.Equal(t, http.StatusNotFound, code)
	require.JSONEq(t, `"Post not found"`, string(env.Message))
}

func TestPostHandler_List(t *testing.T) {
	g := newEngine()
	for _, title := range []string{"Post one", "Post two", "Post three"} {
		createPost(t, g, "alice", title)
	}

	code, env := call(t, g, http.MethodGet, "/api/posts?page=2&limit=2", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, env.Count)
	require.Equal(t, 3, env.Total)
	require.Equal(t, 2, env.TotalPages)
	require.Equal(t, 2, env.CurrentPage)

	code, env = call(t, g, http.MethodGet, "/api/posts?page=abc&limit=-1", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, env.CurrentPage)
	require.Equal(t, 3, env.Count)

	code, env = call(t, g, http.MethodGet, "/api/posts?page=9", "", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `[]`, string(env.Data))
}

func TestPostHandler_ListPageBeyondInt64Range(t *testing.T) {
	g := newEngine()
	createPost(t, g, "alice", "Only post")

	code, env := call(t, g, http.MethodGet, "/api/posts?page=9223372036854775807&limit=10", "", "")
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	require.JSONEq(t, `[]`, string(env.Data))
	require.Equal(t, 0, env.Count)
	require.Equal(t, 1, env.Total)
	require.Equal(t, 1, env.TotalPages)

	code, env = call(t, g, http.MethodGet, "/api/posts?page=2&limit=9223372036854775807", "", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `[]`, string(env.Data))
	require.Equal(t, 1, env.TotalPages)

	code, env = call(t, g, http.MethodGet, "/api/posts?limit=9223372036854775807", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, env.Count)
}

func TestPostHandler_Errors(t *testing.T) {
	g := newEngine()
	id := createPost(t, g, "alice", "Owned by alice")

	code, env := call(t, g, http.MethodPost, "/api/posts", "", `{"title":"x"}`)
	require.Equal(t, http.StatusUnauthorized, code)
	require.JSONEq(t, `"Not authorized to access this route"`, string(env.Message))

	code, env = call(t, g, http.MethodPut, "/api/posts/"+id, "bob", `{"title":"Mine now"}`)
	require.Equal(t, http.StatusForbidden, code)
	require.JSONEq(t, `"Not authorized to update this post"`, string(env.Message))

	code, env = call(t, g, http.MethodDelete, "/api/posts/"+id, "bob", "")
	require.Equal(t, http.StatusForbidden, code)
	require.JSONEq(t, `"Not authorized to delete this post"`, string(env.Message))

	code, env = call(t, g, http.MethodPost, "/api/posts", "alice", `{"title":"Hi","content":"short"}`)
	require.Equal(t, http.StatusBadRequest, code)
	var msgs []string
	require.NoError(t, json.Unmarshal(env.Message, &msgs))
	require.Len(t, msgs, 2)

	code, env = call(t, g, http.MethodPost, "/api/posts", "bob", `{"title":"Owned-by alice","content":"clashing slug content"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.JSONEq(t, `"Duplicate field value entered"`, string(env.Message))

	code, env = call(t, g, http.MethodPost, "/api/posts/"+id+"/comments", "bob", `{"content":""}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.JSONEq(t, `["Comment content is required"]`, string(env.Message))

	code, _ = call(t, g, http.MethodPost, "/api/posts", "alice", `{"title":`)
	require.Equal(t, http.StatusBadRequest, code)

	code, env = call(t, g, http.MethodGet, "/api/posts/not-an-id", "", "")
	require.Equal(t, http.StatusNotFound, code)
	require.JSONEq(t, `"Resource not found"`, string(env.Message))

	code, env = call(t, g, http.MethodGet, "/api/nothing-here", "", "")
	require.Equal(t, http.StatusNotFound, code)
	require.JSONEq(t, `"Route not found"`, string(env.Message))

	code, _ = call(t, g, http.MethodDelete, "/api/posts/"+id, "admin", "")
	require.Equal(t, http.StatusOK, code)
}

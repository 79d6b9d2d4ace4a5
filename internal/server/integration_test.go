package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorisDmv/blog-posts-api/internal/config"
	"github.com/BorisDmv/blog-posts-api/internal/models"
)

// The suite runs against TEST_DATABASE_URL (memory:// unless set), so the
// same tests cover MongoDB or Postgres when pointed at one.

var postKeys = []string{"author", "content", "id", "title"}

type blogAPI struct {
	t   *testing.T
	srv *Server
}

func startBlogAPI(t *testing.T) *blogAPI {
	t.Helper()
	logger := zerolog.Nop()
	cfg := testConfig(config.Load().TestDatabaseURL)

	srv, err := Start(context.Background(), cfg, &logger)
	require.NoError(t, err)
	require.NoError(t, srv.store.DropPosts(context.Background()))

	t.Cleanup(func() {
		ctx := context.Background()
		assert.NoError(t, srv.store.DropPosts(ctx))
		assert.NoError(t, srv.Stop(ctx))
	})
	return &blogAPI{t: t, srv: srv}
}

func (a *blogAPI) seed(n int) []models.Post {
	a.t.Helper()
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		p, err := a.srv.store.CreatePost(context.Background(), models.Post{
			Title:   gofakeit.Sentence(5),
			Content: gofakeit.Paragraph(1, 3, 8, " "),
			Author: models.Author{
				FirstName: gofakeit.FirstName(),
				LastName:  gofakeit.LastName(),
			},
		})
		require.NoError(a.t, err)
		posts = append(posts, *p)
	}
	return posts
}

func (a *blogAPI) request(method, path string, body any) (int, []byte) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL()+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestBlogAPIList(t *testing.T) {
	api := startBlogAPI(t)
	api.seed(15)

	status, body := api.request(http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, status)

	var posts []map[string]any
	require.NoError(t, json.Unmarshal(body, &posts))
	assert.Len(t, posts, 10)
	for _, p := range posts {
		assert.Equal(t, postKeys, keysOf(p))
		assert.IsType(t, "", p["author"])
	}
}

func TestBlogAPIGetByID(t *testing.T) {
	api := startBlogAPI(t)
	seeded := api.seed(3)[1]

	status, body := api.request(http.MethodGet, "/posts/"+seeded.ID, nil)
	require.Equal(t, http.StatusOK, status)

	var got models.PostResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, models.Serialize(seeded), got)
}

func TestBlogAPICreateRoundTrip(t *testing.T) {
	api := startBlogAPI(t)
	newPost := map[string]string{"title": "A", "author": "Illana S", "content": "hello"}

	status, body := api.request(http.MethodPost, "/posts", newPost)
	require.Equal(t, http.StatusCreated, status)

	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, postKeys, keysOf(created))
	require.NotEmpty(t, created["id"])
	id := created["id"].(string)
	assert.Equal(t, map[string]any{"id": id, "title": "A", "author": "Illana S", "content": "hello"}, created)

	status, body = api.request(http.MethodGet, "/posts/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	var fetched map[string]any
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created, fetched)
}

func TestBlogAPIAuthorSplitsAtFirstSpace(t *testing.T) {
	api := startBlogAPI(t)

	status, body := api.request(http.MethodPost, "/posts",
		map[string]string{"title": "t", "author": "Anne Marie Smith", "content": "c"})
	require.Equal(t, http.StatusCreated, status)

	var created models.PostResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Anne Marie Smith", created.Author)

	stored, err := api.srv.store.GetPostByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Author{FirstName: "Anne", LastName: "Marie Smith"}, stored.Author)
}

func TestBlogAPICreateMissingContent(t *testing.T) {
	api := startBlogAPI(t)

	status, _ := api.request(http.MethodPost, "/posts", map[string]string{"title": "t", "author": "A B"})
	assert.Equal(t, http.StatusBadRequest, status)

	posts, err := api.srv.store.ListPosts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestBlogAPIUpdate(t *testing.T) {
	api := startBlogAPI(t)
	seeded := api.seed(1)[0]

	update := map[string]string{"id": seeded.ID, "title": "A", "author": "Illana", "content": "hello"}
	status, body := api.request(http.MethodPut, "/posts/"+seeded.ID, update)
	require.Equal(t, http.StatusOK, status)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, map[string]any{"id": seeded.ID, "title": "A", "author": "Illana", "content": "hello"}, got)
}

func TestBlogAPIUpdateIDMismatch(t *testing.T) {
	api := startBlogAPI(t)
	seeded := api.seed(1)[0]

	bad := map[string]string{"id": "AAA", "title": "changed", "author": "Illana", "content": "hello"}
	status, _ := api.request(http.MethodPut, "/posts/"+seeded.ID, bad)
	assert.Equal(t, http.StatusBadRequest, status)

	stored, err := api.srv.store.GetPostByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded, *stored)
}

func TestBlogAPIDelete(t *testing.T) {
	api := startBlogAPI(t)
	seeded := api.seed(2)[0]

	status, body := api.request(http.MethodDelete, "/posts/"+seeded.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)

	status, _ = api.request(http.MethodGet, "/posts/"+seeded.ID, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestBlogAPIUnknownRoute(t *testing.T) {
	api := startBlogAPI(t)

	status, body := api.request(http.MethodGet, "/blog-posts", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found\n", string(body))
}

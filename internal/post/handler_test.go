package post

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"userpost-service/internal/shared/httpx"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMux(t *testing.T) (*http.ServeMux, *fixture) {
	t.Helper()
	f := newFixture(t)
	h := NewHandler(f.posts)
	mux := http.NewServeMux()
	mux.Handle("POST /posts", httpx.Wrap(h.Create))
	mux.Handle("GET /posts/{id}", httpx.Wrap(h.GetByID))
	return mux, f
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandlerCreateThenGet(t *testing.T) {
	mux, f := newMux(t)
	u, err := f.users.Create(context.Background(), "author")
	require.NoError(t, err)

	rec := do(mux, http.MethodPost, "/posts", `{"user_id":1,"content":"first post"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.EqualValues(t, u.ID, created["user_id"])
	assert.Equal(t, "first post", created["content"])
	assert.EqualValues(t, 1, created["post_id"])
	assert.NotEmpty(t, created["created_time"])

	rec = do(mux, http.MethodGet, "/posts/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
}

func TestHandlerUnknownUser(t *testing.T) {
	mux, f := newMux(t)

	rec := do(mux, http.MethodPost, "/posts", `{"user_id":9,"content":"nobody"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"User not found"}`, rec.Body.String())
	assert.Zero(t, testutil.ToFloat64(f.created))
}

func TestHandlerValidation(t *testing.T) {
	mux, f := newMux(t)
	_, err := f.users.Create(context.Background(), "author")
	require.NoError(t, err)

	for _, body := range []string{
		`{"content":"no user"}`,
		`{"user_id":1}`,
		`{"user_id":"one","content":"x"}`,
		`{"user_id":1,"content":7}`,
		`{}`,
		`{"user_id":1,"content":"x"} trailing`,
	} {
		rec := do(mux, http.MethodPost, "/posts", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
	}
	assert.Zero(t, testutil.ToFloat64(f.created))
}

func TestHandlerGetErrors(t *testing.T) {
	mux, _ := newMux(t)

	rec := do(mux, http.MethodGet, "/posts/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Post not found"}`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/posts/x", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

package search

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
)

type fakeTransport struct {
	status int
	body   string

	methods []string
	paths   []string
	bodies  []string
}

func (f *fakeTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.methods = append(f.methods, r.Method)
	f.paths = append(f.paths, r.URL.Path)
	if r.Body != nil {
		b, _ := io.ReadAll(r.Body)
		f.bodies = append(f.bodies, string(b))
	}
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: f.status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Request:    r,
	}, nil
}

func newDirectory(t *testing.T, ft *fakeTransport) *UserDirectory {
	t.Helper()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: ft,
	})
	require.NoError(t, err)
	return NewUserDirectory(es, "users")
}

func TestIndex_OmitsPassword(t *testing.T) {
	ft := &fakeTransport{status: http.StatusCreated, body: `{"result":"created"}`}
	dir := newDirectory(t, ft)

	u := &entity.User{ID: 3, Username: "alice", Password: "ciphertext", Branch: "HQ", Role: "admin", Status: entity.StatusActive}
	require.NoError(t, dir.Index(context.Background(), u))

	require.Len(t, ft.paths, 1)
	assert.Equal(t, "/users/_doc/3", ft.paths[0])
	require.Len(t, ft.bodies, 1)
	assert.Contains(t, ft.bodies[0], `"username":"alice"`)
	assert.NotContains(t, ft.bodies[0], "ciphertext")
}

func TestIndex_ErrorStatus(t *testing.T) {
	dir := newDirectory(t, &fakeTransport{status: http.StatusBadRequest, body: `{"error":"bad"}`})
	assert.Error(t, dir.Index(context.Background(), &entity.User{ID: 1}))
}

func TestRemove_MissingDocumentIsFine(t *testing.T) {
	ft := &fakeTransport{status: http.StatusNotFound, body: `{"result":"not_found"}`}
	dir := newDirectory(t, ft)

	require.NoError(t, dir.Remove(context.Background(), 9))
	assert.Equal(t, []string{http.MethodDelete}, ft.methods)
	assert.Equal(t, "/users/_doc/9", ft.paths[0])
}

func TestSearch_ParsesHits(t *testing.T) {
	ft := &fakeTransport{status: http.StatusOK, body: `{"hits":{"hits":[
		{"_id":"1","_source":{"user_id":1,"username":"alice","branch":"HQ","role":"admin","status":"Active"}},
		{"_id":"2","_source":{"user_id":2,"username":"alina","branch":"B2","role":"clerk","status":"Inactive"}}
	]}}`}
	dir := newDirectory(t, ft)

	users, err := dir.Search(context.Background(), "ali", 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alina", users[1].Username)
	assert.Equal(t, entity.StatusInactive, users[1].Status)

	require.Len(t, ft.bodies, 1)
	assert.Contains(t, ft.bodies[0], "multi_match")
	assert.Contains(t, ft.bodies[0], `"size":10`)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	ft := &fakeTransport{status: http.StatusOK, body: `{"hits":{"hits":[]}}`}
	dir := newDirectory(t, ft)

	users, err := dir.Search(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Contains(t, ft.bodies[0], "match_all")
}

func TestSearch_MissingIndex(t *testing.T) {
	dir := newDirectory(t, &fakeTransport{status: http.StatusNotFound, body: `{"error":"index_not_found_exception"}`})

	users, err := dir.Search(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Empty(t, users)
}

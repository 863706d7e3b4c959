package api

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_NamedPages(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	for route, want := range map[string]string{
		"/":            "<h1>index</h1>",
		"/market.html": "<h1>market</h1>",
		"/sell.html":   "<h1>sell</h1>",
		"/repair.html": "<h1>repair</h1>",
	} {
		rec := f.do(http.MethodGet, route, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, route)
		assert.Equal(t, want, rec.Body.String(), route)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", route)
	}
}

func TestStatic_HeadRequests(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	for route, size := range map[string]string{
		"/":             "14",
		"/market.html":  "15",
		"/css/site.css": "6",
	} {
		rec := f.do(http.MethodHead, route, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, route)
		assert.Equal(t, size, rec.Header().Get("Content-Length"), route)
		assert.Empty(t, rec.Body.String(), route)
	}

	rec := f.do(http.MethodHead, "/missing.js", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatic_Assets(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	rec := f.do(http.MethodGet, "/css/site.css", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())

	rec = f.do(http.MethodGet, "/missing.js", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", errorBody(t, rec))
}

func TestStatic_RejectsEscapes(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, os.Symlink(
		filepath.Join(filepath.Dir(f.static), "secret.txt"),
		filepath.Join(f.static, "link.txt")))

	for _, target := range []string{
		"/../secret.txt",
		"/css/../../secret.txt",
		"/link.txt",
		"/.hidden",
		"/css",
		"/css/",
	} {
		rec := f.do(http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "outside", target)
	}
}

func TestStatic_UnknownRoutesAreJSON404(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	rec := f.do(http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", errorBody(t, rec))

	rec = f.do(http.MethodPost, "/market.html", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPut, "/api/products", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveAsset(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))

	got, ok := resolveAsset(root, "/a.txt")
	assert.True(t, ok)
	assert.Equal(t, "a.txt", filepath.Base(got))

	_, ok = resolveAsset(root, "/../a.txt")
	assert.True(t, ok, "cleaned path stays inside root")

	_, ok = resolveAsset("", "/a.txt")
	assert.False(t, ok)

	_, ok = resolveAsset(root, "/nope")
	assert.False(t, ok)
}

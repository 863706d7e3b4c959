package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// namedPages maps fixed routes to documents under the static root.
var namedPages = map[string]string{
	"/":            "index.html",
	"/market.html": "market.html",
	"/sell.html":   "sell.html",
	"/repair.html": "repair.html",
}

func registerStatic(r *gin.Engine, root string) {
	for route, name := range namedPages {
		name := name
		r.Match([]string{http.MethodGet, http.MethodHead}, route, func(c *gin.Context) {
			serveFile(c, root, "/"+name)
		})
	}
	r.NoRoute(func(c *gin.Context) {
		if (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) ||
			strings.HasPrefix(c.Request.URL.Path, "/api/") {
			abortWithError(c, ErrNotFound)
			return
		}
		serveFile(c, root, c.Request.URL.Path)
	})
}

func serveFile(c *gin.Context, root, urlPath string) {
	full, ok := resolveAsset(root, urlPath)
	if !ok {
		abortWithError(c, ErrNotFound)
		return
	}
	f, err := os.Open(full)
	if err != nil {
		abortWithError(c, ErrNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		abortWithError(c, err)
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// resolveAsset maps a request path to a regular file inside root. Paths that
// climb out of root (directly or through a symlink), name a directory or
// touch a dot-file are rejected.
func resolveAsset(root, urlPath string) (string, bool) {
	if root == "" || strings.ContainsRune(urlPath, 0) {
		return "", false
	}
	clean := path.Clean("/" + urlPath)
	for _, seg := range strings.Split(clean, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", false
	}
	full, err := filepath.EvalSymlinks(filepath.Join(absRoot, filepath.FromSlash(clean)))
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(realRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return full, true
}

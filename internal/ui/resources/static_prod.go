//go:build !dev

package resources

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"
	"sync"
	"time"
)

//go:embed static/*
var staticFS embed.FS

// stylesheet is minified once, on first request.
var stylesheet = sync.OnceValues(func() ([]byte, error) {
	src, err := staticFS.ReadFile("static/" + Stylesheet)
	if err != nil {
		return nil, err
	}
	return MinifyCSS(src)
})

// Handler serves the assets embedded in the binary. The stylesheet is served
// minified; a stylesheet that fails to minify is served as written.
func Handler() http.Handler {
	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Embedded assets only change with a new release.
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		if r.URL.Path == StaticPath(Stylesheet) {
			if css, err := stylesheet(); err == nil {
				w.Header().Set("Content-Type", "text/css; charset=utf-8")
				http.ServeContent(w, r, Stylesheet, time.Time{}, bytes.NewReader(css))
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}

// Package web embeds the browser deck viewer.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var files embed.FS

// Static returns the viewer assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		// ALLOW-PANIC: the embedded directory is fixed at build time
		panic(err)
	}
	return sub
}

// IndexHandler serves the viewer page.
func IndexHandler() http.Handler {
	static := Static()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, "index.html")
	})
}

// StaticHandler serves the viewer assets under prefix, e.g. "/static/".
func StaticHandler(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServerFS(Static()))
}

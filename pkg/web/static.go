// Package web provides routing and embedded asset serving for UI modules.
package web

import (
	"io/fs"
	"net/http"
)

// DistServer returns a handler that serves files from subdir of the given
// filesystem, stripping urlPrefix from request paths first. It is the usual
// fallback for a UI module's embedded assets.
func DistServer(fsys fs.FS, subdir, urlPrefix string) http.HandlerFunc {
	sub, err := fs.Sub(fsys, subdir)
	if err != nil {
		panic("failed to create sub-filesystem: " + err.Error())
	}
	server := http.StripPrefix(urlPrefix, http.FileServer(http.FS(sub)))
	return func(w http.ResponseWriter, r *http.Request) {
		server.ServeHTTP(w, r)
	}
}

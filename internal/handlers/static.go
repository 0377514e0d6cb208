package handlers

import (
	"io/fs"
	"net/http"
)

// HandleStatic serves the embedded stylesheet under /static/.
func (h *Handler) HandleStatic() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

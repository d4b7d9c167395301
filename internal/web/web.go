// Package web serves the embedded HTML front-ends.
package web

import (
	"embed"
	"net/http"
)

//go:embed static
var static embed.FS

// Page returns a handler serving one embedded page from static/.
func Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := static.ReadFile("static/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}
}

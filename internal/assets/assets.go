// Package assets bundles the installer's front end into the binary.
package assets

import (
	"embed"
	"net/http"
)

//go:embed index.html
var content embed.FS

// Handler serves the bundled front end.
func Handler() http.Handler {
	return http.FileServer(http.FS(content))
}

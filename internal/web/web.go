// Package web embeds the browser frontend served at the site root.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var dist embed.FS

// Dist returns the frontend with paths relative to the build directory.
func Dist() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		// dist is a compile-time constant path
		panic(err)
	}
	return sub
}

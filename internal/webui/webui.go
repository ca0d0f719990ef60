// Package webui embeds the single-page demo served at the root of the HTTP
// server.
package webui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// FS returns the page assets rooted at the static directory.
func FS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// the embed pattern above guarantees the directory exists
		panic(err)
	}
	return sub
}

// StaticFS returns the page assets as an http.FileSystem.
func StaticFS() http.FileSystem {
	return http.FS(FS())
}

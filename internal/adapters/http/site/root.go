// Package site serves the embedded landing page at the service root.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("landing page serve failed")
)

// Register attaches the embedded landing page to mux. The page is served
// at / only; every other unmatched path falls through to a 404 from the
// embedded filesystem.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("/", files)
}

// Package imagestore abstracts where vehicle thumbnails live.
// The service layer depends on the Store interface only; the shipped
// implementation writes to local disk and the files are served back by the
// /uploads static route.
package imagestore

import (
	"context"
	"io"
)

// Store saves vehicle images and returns the public URL they are served at.
type Store interface {
	// Save writes the image for the given plate, overwriting any previous
	// image for the same plate, and returns its public URL. filename is the
	// client-supplied name and is used only for its extension.
	Save(ctx context.Context, plate, filename string, r io.Reader) (string, error)
}

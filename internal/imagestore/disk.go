package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Disk is a Store that writes images to a local directory.
// One file per vehicle, named after the plate, so re-uploading replaces the
// previous image — the same overwrite semantics the lot has always relied on.
type Disk struct {
	dir     string
	baseURL string
}

// NewDisk returns a Disk store rooted at dir. The directory is created if
// missing. baseURL is prefixed to returned URLs; leave it empty to return
// paths relative to the API host (e.g. "/uploads/AB1234.jpg").
func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore.NewDisk: %w", err)
	}
	return &Disk{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the image to <dir>/<plate><ext> and returns its public URL.
func (d *Disk) Save(_ context.Context, plate, filename string, r io.Reader) (string, error) {
	name := sanitizePlate(plate) + normalizeExt(filename)
	path := filepath.Join(d.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("imagestore.Disk.Save: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("imagestore.Disk.Save: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("imagestore.Disk.Save: %w", err)
	}

	return d.baseURL + "/uploads/" + name, nil
}

// sanitizePlate keeps only characters safe for a filename.
// Plates are short alphanumeric codes; everything else is dropped.
func sanitizePlate(plate string) string {
	var b strings.Builder
	for _, r := range plate {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "vehicle"
	}
	return b.String()
}

// normalizeExt returns a lowercase image extension, defaulting to ".jpg"
// when the upload has none.
func normalizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return ext
	default:
		return ".jpg"
	}
}

// Package imagesource normalizes the three input modes (bundled example,
// file upload, camera capture) into a single in-memory image.
package imagesource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"labelens/internal/domain"
)

// ErrInputMissing means no usable image input was available for the selected
// mode. ErrUnsupportedFormat is the same class, raised when bytes were
// provided but are not an accepted image.
var (
	ErrInputMissing      = errors.New("no image input available")
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported image format", ErrInputMissing)
)

// acceptedTypes is the set of image MIME types forwarded to the agent.
var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Example is one bundled, read-only sample product image.
type Example struct {
	Name     string // filename inside the examples directory
	Label    string // human-readable form of the filename
	MimeType string
}

// Resolver turns mode-specific input into a domain.Image. The example catalog
// is enumerated once at construction and never changes.
type Resolver struct {
	dir      string
	examples []Example
}

// New scans dir for example images. Files that are not accepted image formats
// are skipped. A missing or empty directory yields an empty catalog, not an
// error; example mode simply offers nothing.
func New(dir string) (*Resolver, error) {
	r := &Resolver{dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read examples directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		mt, err := mimetype.DetectFile(filepath.Join(dir, entry.Name()))
		if err != nil || !acceptedTypes[mt.String()] {
			continue
		}
		r.examples = append(r.examples, Example{
			Name:     entry.Name(),
			Label:    labelFromFilename(entry.Name()),
			MimeType: mt.String(),
		})
	}
	sort.Slice(r.examples, func(i, j int) bool { return r.examples[i].Name < r.examples[j].Name })
	return r, nil
}

// Examples returns the catalog in stable order.
func (r *Resolver) Examples() []Example {
	return r.examples
}

// FromExample loads a bundled sample by filename.
func (r *Resolver) FromExample(name string) (*domain.Image, error) {
	var ex *Example
	for i := range r.examples {
		if r.examples[i].Name == name {
			ex = &r.examples[i]
			break
		}
	}
	if ex == nil {
		return nil, fmt.Errorf("%w: unknown example %q", ErrInputMissing, name)
	}

	data, err := os.ReadFile(filepath.Join(r.dir, ex.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to read example %q: %w", name, err)
	}
	return resolve(data, ex.Label, domain.SourceExample)
}

// FromUpload accepts a user-uploaded file payload.
func (r *Resolver) FromUpload(filename string, data []byte) (*domain.Image, error) {
	label := strings.TrimSpace(filepath.Base(filename))
	if label == "" || label == "." {
		label = "Uploaded image"
	}
	return resolve(data, label, domain.SourceUpload)
}

// FromCamera accepts a captured frame posted by the browser.
func (r *Resolver) FromCamera(data []byte) (*domain.Image, error) {
	return resolve(data, "Camera capture", domain.SourceCamera)
}

// resolve sniffs the payload and builds the normalized image. The bytes pass
// through unchanged; no resize or recompression happens here.
func resolve(data []byte, label string, source domain.SourceKind) (*domain.Image, error) {
	if len(data) == 0 {
		return nil, ErrInputMissing
	}
	mt := mimetype.Detect(data)
	if !acceptedTypes[mt.String()] {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedFormat, mt.String())
	}
	return &domain.Image{
		Data:     data,
		MimeType: mt.String(),
		Label:    label,
		Source:   source,
	}, nil
}

// labelFromFilename turns "chocolate_bar.jpg" into "Chocolate Bar".
func labelFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

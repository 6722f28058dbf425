package imagesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelens/internal/domain"
)

// minimalJPEG is 512 bytes with the JPEG magic bytes followed by zeros;
// enough for magic-byte sniffing.
var minimalJPEG = func() []byte {
	b := make([]byte, 512)
	b[0], b[1], b[2], b[3] = 0xFF, 0xD8, 0xFF, 0xE0
	return b
}()

var minimalPNG = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

func writeExamples(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chocolate_bar.jpg"), minimalJPEG, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "energy-drink.png"), minimalPNG, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644))
	return dir
}

func TestNewCatalogSkipsNonImages(t *testing.T) {
	r, err := New(writeExamples(t))
	require.NoError(t, err)

	examples := r.Examples()
	require.Len(t, examples, 2)
	assert.Equal(t, "chocolate_bar.jpg", examples[0].Name)
	assert.Equal(t, "Chocolate Bar", examples[0].Label)
	assert.Equal(t, "image/jpeg", examples[0].MimeType)
	assert.Equal(t, "Energy Drink", examples[1].Label)
}

func TestNewMissingDir(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, r.Examples())
}

func TestFromExample(t *testing.T) {
	r, err := New(writeExamples(t))
	require.NoError(t, err)

	img, err := r.FromExample("chocolate_bar.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceExample, img.Source)
	assert.Equal(t, "image/jpeg", img.MimeType)
	assert.Equal(t, "Chocolate Bar", img.Label)
	assert.Equal(t, minimalJPEG, img.Data, "bytes must pass through unchanged")
}

func TestFromExampleUnknown(t *testing.T) {
	r, err := New(writeExamples(t))
	require.NoError(t, err)

	_, err = r.FromExample("shampoo.jpg")
	assert.ErrorIs(t, err, ErrInputMissing)
}

func TestFromUpload(t *testing.T) {
	r := &Resolver{}

	img, err := r.FromUpload("label.png", minimalPNG)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceUpload, img.Source)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, "label.png", img.Label)
}

func TestFromUploadRejectsNonImage(t *testing.T) {
	r := &Resolver{}

	_, err := r.FromUpload("report.pdf", []byte("%PDF-1.4 not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, err, ErrInputMissing)
}

func TestFromUploadEmptyPayload(t *testing.T) {
	r := &Resolver{}

	_, err := r.FromUpload("empty.jpg", nil)
	assert.ErrorIs(t, err, ErrInputMissing)
}

func TestFromCamera(t *testing.T) {
	r := &Resolver{}

	img, err := r.FromCamera(minimalJPEG)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCamera, img.Source)
	assert.Equal(t, "Camera capture", img.Label)
}

func TestLabelFromFilename(t *testing.T) {
	assert.Equal(t, "Chocolate Bar", labelFromFilename("chocolate_bar.jpg"))
	assert.Equal(t, "Potato Chips", labelFromFilename("potato-chips.webp"))
	assert.Equal(t, "Shampoo", labelFromFilename("shampoo.png"))
}

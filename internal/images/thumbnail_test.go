package images

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &buf
}

func TestSaveDerivesBoundedThumbnail(t *testing.T) {
	store := &MediaStore{Dir: t.TempDir()}

	imagePath, thumbPath, err := store.Save(pngImage(t, 800, 600))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(imagePath, ".jpg"))
	assert.True(t, strings.HasSuffix(thumbPath, ".jpg"))

	thumb, err := imaging.Open(filepath.Join(store.Dir, thumbPath))
	require.NoError(t, err)
	b := thumb.Bounds()
	assert.LessOrEqual(t, b.Dx(), 200)
	assert.LessOrEqual(t, b.Dy(), 200)
	// 800x600 keeps its aspect ratio inside the box
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 150, b.Dy())

	full, err := imaging.Open(filepath.Join(store.Dir, imagePath))
	require.NoError(t, err)
	assert.Equal(t, 800, full.Bounds().Dx())
	assert.Equal(t, 600, full.Bounds().Dy())
}

func TestSavePortraitBoundedByHeight(t *testing.T) {
	store := &MediaStore{Dir: t.TempDir()}

	_, thumbPath, err := store.Save(pngImage(t, 300, 900))
	require.NoError(t, err)

	thumb, err := imaging.Open(filepath.Join(store.Dir, thumbPath))
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.Bounds().Dy())
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 200)
}

func TestSaveSmallImageNotUpscaled(t *testing.T) {
	store := &MediaStore{Dir: t.TempDir()}

	_, thumbPath, err := store.Save(pngImage(t, 120, 80))
	require.NoError(t, err)

	thumb, err := imaging.Open(filepath.Join(store.Dir, thumbPath))
	require.NoError(t, err)
	assert.Equal(t, 120, thumb.Bounds().Dx())
	assert.Equal(t, 80, thumb.Bounds().Dy())
}

func TestSaveUndecodableInput(t *testing.T) {
	store := &MediaStore{Dir: t.TempDir()}

	_, _, err := store.Save(strings.NewReader("definitely not an image"))
	require.Error(t, err)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written for a bad upload")
}

func TestRemove(t *testing.T) {
	store := &MediaStore{Dir: t.TempDir()}
	imagePath, thumbPath, err := store.Save(pngImage(t, 50, 50))
	require.NoError(t, err)

	// missing paths and empty strings are ignored
	store.Remove(imagePath, thumbPath, "", "product_images/ghost.jpg")

	_, statErr := os.Stat(filepath.Join(store.Dir, imagePath))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(store.Dir, thumbPath))
	assert.True(t, os.IsNotExist(statErr))
}

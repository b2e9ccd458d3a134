package images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	thumbWidth  = 200
	thumbHeight = 200

	imageDir = "product_images"
	thumbDir = "product_thumbnails"
)

// MediaStore keeps product images on disk under Dir and derives a thumbnail
// for every stored image. Returned paths are relative to Dir.
type MediaStore struct {
	Dir string
}

// Save decodes the uploaded image, writes it as JPEG, and writes a thumbnail
// fitted into 200x200 next to it.
func (m *MediaStore) Save(r io.Reader) (imagePath, thumbPath string, err error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", "", fmt.Errorf("decode image: %w", err)
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	imagePath = filepath.Join(imageDir, "image_"+id+".jpg")
	thumbPath = filepath.Join(thumbDir, "thumbnail_"+id+".jpg")

	for _, d := range []string{imageDir, thumbDir} {
		if err := os.MkdirAll(filepath.Join(m.Dir, d), 0o755); err != nil {
			return "", "", err
		}
	}

	if err := imaging.Save(img, filepath.Join(m.Dir, imagePath)); err != nil {
		return "", "", fmt.Errorf("save image: %w", err)
	}

	thumb := imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(m.Dir, thumbPath)); err != nil {
		_ = os.Remove(filepath.Join(m.Dir, imagePath))
		return "", "", fmt.Errorf("save thumbnail: %w", err)
	}
	return imagePath, thumbPath, nil
}

// Remove deletes previously stored media files; missing files are ignored.
func (m *MediaStore) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.Remove(filepath.Join(m.Dir, p))
	}
}

package submission

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wailsapp/mimetype"

	"ocr-desk/internal/domain"
)

// ImageExtensions lists the file types offered by the image picker.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff"}

// LoadImageFile reads path into memory and sniffs its content type.
// An empty path means the picker was cancelled and yields nil, nil.
func LoadImageFile(path string) (*domain.ImageFile, error) {
	return loadImageFile(path, os.ReadFile)
}

func loadImageFile(path string, readFile func(string) ([]byte, error)) (*domain.ImageFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image file is empty: %s", path)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("not an image file: %s (%s)", path, mime.String())
	}

	return &domain.ImageFile{
		Name:        filepath.Base(path),
		ContentType: mime.String(),
		Data:        data,
	}, nil
}

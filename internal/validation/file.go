package validation

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/templui/fliptrack/internal/model"
)

// FileConstraints defines validation rules for uploaded or captured files
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

const DefaultMaxImageSize = 10 << 20 // 10MB

var (
	// ImageConstraints defines validation rules for photo attachments
	ImageConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/jpg":  true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
		MaxSize: DefaultMaxImageSize,
	}
)

// WithMaxSize returns a copy of the constraints with a different size limit.
// Non-positive sizes keep the current limit.
func (c FileConstraints) WithMaxSize(size int64) FileConstraints {
	if size > 0 {
		c.MaxSize = size
	}
	return c
}

// ValidateImage checks an image against the constraints and returns every violation found.
// An empty result means the image is acceptable.
func ValidateImage(img model.Image, constraints FileConstraints) []string {
	var violations []string

	if img.IsEmpty() {
		violations = append(violations, "File is empty.")
	}

	if img.Size() > constraints.MaxSize {
		violations = append(violations, fmt.Sprintf("File too large. Maximum size is %s.", humanize.IBytes(uint64(constraints.MaxSize))))
	}

	declared := strings.ToLower(strings.TrimSpace(img.MimeType))
	if !img.DeclaredImage() {
		violations = append(violations, "Please select an image file.")
	} else if !constraints.AllowedMimeTypes[declared] {
		violations = append(violations, "Invalid file type. Please use JPEG, PNG, WebP, or GIF.")
	}

	// Magic numbers cannot be faked by renaming the file or changing the declared type
	if !img.IsEmpty() && img.DeclaredImage() {
		detected := http.DetectContentType(img.Data)
		if !constraints.AllowedMimeTypes[detected] {
			violations = append(violations, fmt.Sprintf("File content is not a supported image (detected: %s).", detected))
		}
	}

	// Camera frames carry no file name, only picked files are checked
	ext := strings.ToLower(filepath.Ext(img.SourceName))
	if ext != "" && !constraints.AllowedExtensions[ext] {
		violations = append(violations, fmt.Sprintf("Invalid file extension: %s", ext))
	}

	return violations
}

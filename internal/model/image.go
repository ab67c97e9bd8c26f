package model

import (
	"strings"
	"time"
)

// Image is binary image data, whether it came from a camera frame or a picked file.
type Image struct {
	Data       []byte
	MimeType   string
	CreatedAt  time.Time
	SourceName string
}

func (i Image) Size() int64 {
	return int64(len(i.Data))
}

func (i Image) IsEmpty() bool {
	return len(i.Data) == 0
}

// DeclaredImage reports whether the declared MIME type is an image type.
func (i Image) DeclaredImage() bool {
	return strings.HasPrefix(strings.ToLower(i.MimeType), "image/")
}

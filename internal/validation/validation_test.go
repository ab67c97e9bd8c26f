package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/model"
)

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("1428 Elm Street"))

	err := ValidateAddress("   ")
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "address", verr.Field)

	assert.Error(t, ValidateAddress(strings.Repeat("a", MaxAddressLength+1)))
}

func TestValidateCaption(t *testing.T) {
	assert.NoError(t, ValidateCaption(""))
	assert.NoError(t, ValidateCaption(strings.Repeat("é", MaxCaptionLength)))
	assert.EqualError(t, ValidateCaption(strings.Repeat("é", MaxCaptionLength+1)), "caption is too long (max 280 characters)")
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"owner@example.com", true},
		{"", false},
		{"not-an-email", false},
		{"Owner <owner@example.com>", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n")

	t.Run("reports a sub-megabyte limit", func(t *testing.T) {
		img := model.Image{Data: append(png, make([]byte, 600<<10)...), MimeType: "image/png", SourceName: "a.png"}

		violations := ValidateImage(img, ImageConstraints.WithMaxSize(512<<10))
		require.Len(t, violations, 1)
		assert.Equal(t, "File too large. Maximum size is 512 KiB.", violations[0])
	})

	t.Run("reports the default limit", func(t *testing.T) {
		img := model.Image{Data: append(png, make([]byte, DefaultMaxImageSize)...), MimeType: "image/png"}

		violations := ValidateImage(img, ImageConstraints)
		require.Len(t, violations, 1)
		assert.Equal(t, "File too large. Maximum size is 10 MiB.", violations[0])
	})

	t.Run("lists every accepted type", func(t *testing.T) {
		img := model.Image{Data: png, MimeType: "image/tiff"}

		violations := ValidateImage(img, ImageConstraints)
		assert.Contains(t, violations, "Invalid file type. Please use JPEG, PNG, WebP, or GIF.")
	})

	t.Run("accepts gif", func(t *testing.T) {
		img := model.Image{Data: []byte("GIF89a\x01\x00\x01\x00"), MimeType: "image/gif", SourceName: "a.gif"}

		assert.Empty(t, ValidateImage(img, ImageConstraints))
	})
}

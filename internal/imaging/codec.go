// Package imaging resizes and re-encodes photos before they are attached to an update.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/validation"

	// Registered decoders
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	MimeJPEG = "image/jpeg"

	DefaultQuality       = 0.8
	DefaultMaxWidth      = 1200
	DefaultMaxHeight     = 1200
	DefaultThumbnailSize = 200

	// MaxPixels caps width*height before a full decode.
	MaxPixels = 50_000_000
)

var (
	ErrInvalidInput           = errors.New("invalid input: not image data")
	ErrDecodeFailed           = errors.New("image could not be decoded")
	ErrEncodeFailed           = errors.New("image could not be encoded")
	ErrUnsupportedEnvironment = errors.New("no encoder available for output format")
	ErrTooManyPixels          = fmt.Errorf("%w: image dimensions exceed %d pixels", ErrInvalidInput, MaxPixels)
)

// Options controls Compress. Zero values fall back to the defaults.
type Options struct {
	Quality   float64 // 0..1
	MaxWidth  int
	MaxHeight int
	Format    string // output MIME type
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validation is the outcome of Validate. It never carries an error value,
// violations are user-facing messages.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

type encoderFunc func(w io.Writer, img image.Image, quality float64) error

var encoders = map[string]encoderFunc{
	MimeJPEG: func(w io.Writer, img image.Image, quality float64) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
	},
}

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func DefaultOptions() Options {
	return Options{
		Quality:   DefaultQuality,
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Format:    MimeJPEG,
	}
}

func (o Options) normalized() Options {
	if o.Quality <= 0 || o.Quality > 1 {
		o.Quality = DefaultQuality
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Format == "" {
		o.Format = MimeJPEG
	}
	return o
}

// Compress decodes src, scales it down to fit within the configured maxima and
// re-encodes it. Images already inside the bounds keep their dimensions.
func Compress(src model.Image, opts Options) (model.Image, error) {
	if src.IsEmpty() || !src.DeclaredImage() {
		return model.Image{}, ErrInvalidInput
	}

	opts = opts.normalized()
	enc, ok := encoders[opts.Format]
	if !ok {
		return model.Image{}, fmt.Errorf("%w: %s", ErrUnsupportedEnvironment, opts.Format)
	}

	err := checkPixels(src.Data)
	if err != nil {
		return model.Image{}, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	b := decoded.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), opts.MaxWidth, opts.MaxHeight)
	if w <= 0 || h <= 0 {
		return model.Image{}, fmt.Errorf("%w: empty image bounds", ErrDecodeFailed)
	}

	data, err := encode(enc, render(decoded, b, image.Rect(0, 0, w, h)), opts.Quality)
	if err != nil {
		return model.Image{}, err
	}

	return model.Image{
		Data:       data,
		MimeType:   opts.Format,
		CreatedAt:  time.Now(),
		SourceName: rename(src.SourceName, opts.Format),
	}, nil
}

// Thumbnail crops the centre square of src and scales it to size x size.
func Thumbnail(src model.Image, size int) (model.Image, error) {
	if src.IsEmpty() || !src.DeclaredImage() {
		return model.Image{}, ErrInvalidInput
	}
	if size <= 0 {
		size = DefaultThumbnailSize
	}

	err := checkPixels(src.Data)
	if err != nil {
		return model.Image{}, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	b := decoded.Bounds()
	minDim := min(b.Dx(), b.Dy())
	if minDim <= 0 {
		return model.Image{}, fmt.Errorf("%w: empty image bounds", ErrDecodeFailed)
	}
	x := b.Min.X + (b.Dx()-minDim)/2
	y := b.Min.Y + (b.Dy()-minDim)/2
	crop := image.Rect(x, y, x+minDim, y+minDim)

	data, err := encode(encoders[MimeJPEG], render(decoded, crop, image.Rect(0, 0, size, size)), DefaultQuality)
	if err != nil {
		return model.Image{}, err
	}

	return model.Image{
		Data:       data,
		MimeType:   MimeJPEG,
		CreatedAt:  time.Now(),
		SourceName: "thumb_" + rename(src.SourceName, MimeJPEG),
	}, nil
}

// Dimensions reads the natural pixel size from the image header without decoding pixels.
func Dimensions(src model.Image) (Size, error) {
	if src.IsEmpty() || !src.DeclaredImage() {
		return Size{}, ErrInvalidInput
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(src.Data))
	if err != nil {
		return Size{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return Size{Width: cfg.Width, Height: cfg.Height}, nil
}

// Validate checks type, emptiness, size and pixel count. maxSize <= 0 means
// the 10MB default.
func Validate(src model.Image, maxSize int64) Validation {
	violations := validation.ValidateImage(src, validation.ImageConstraints.WithMaxSize(maxSize))
	if len(violations) == 0 && errors.Is(checkPixels(src.Data), ErrTooManyPixels) {
		violations = append(violations, fmt.Sprintf("Image dimensions too large. Maximum is %d megapixels.", MaxPixels/1_000_000))
	}
	return Validation{
		Valid:  len(violations) == 0,
		Errors: violations,
	}
}

// checkPixels reads the header and rejects images whose decoded bitmap would
// exceed MaxPixels.
func checkPixels(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image bounds", ErrDecodeFailed)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w (%dx%d)", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	return nil
}

// FitWithin scales (w, h) down so that neither side exceeds its maximum,
// preserving the aspect ratio. It never scales up.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}

	ratio := 1.0
	if maxW > 0 {
		ratio = math.Min(ratio, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		ratio = math.Min(ratio, float64(maxH)/float64(h))
	}
	if ratio == 1 {
		return w, h
	}

	nw := max(1, int(math.Round(float64(w)*ratio)))
	nh := max(1, int(math.Round(float64(h)*ratio)))
	if maxW > 0 {
		nw = min(nw, maxW)
	}
	if maxH > 0 {
		nh = min(nh, maxH)
	}
	return nw, nh
}

// render draws the src region onto a white canvas of the target size.
// JPEG has no alpha channel, transparent pixels end up white.
func render(src image.Image, region, target image.Rectangle) *image.RGBA {
	canvas := image.NewRGBA(target)
	draw.Draw(canvas, target, &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	if region.Dx() == target.Dx() && region.Dy() == target.Dy() {
		draw.Draw(canvas, target, src, region.Min, draw.Over)
		return canvas
	}

	draw.CatmullRom.Scale(canvas, target, src, region, draw.Over, nil)
	return canvas
}

func encode(enc encoderFunc, img image.Image, quality float64) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	err := enc(buf, img, quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	if buf.Len() == 0 {
		return nil, ErrEncodeFailed
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func jpegQuality(q float64) int {
	return min(100, max(1, int(math.Round(q*100))))
}

func rename(name, mimeType string) string {
	if name == "" {
		return ""
	}
	ext := ".jpg"
	if mimeType != MimeJPEG {
		ext = "." + strings.TrimPrefix(mimeType, "image/")
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// Package imaging normalizes uploaded images: classify the input format,
// decode (including HEIC/HEIF camera files), apply the confirmed crop,
// downscale to a bounded size and re-encode as WebP.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxInputBytes is the input-size ceiling. Larger files are rejected before
// any decoding happens; raster operations degrade badly past this size.
const MaxInputBytes = 30 << 20

// MaxDimension is the default bound on the output's larger dimension.
const MaxDimension = 2400

// WebPQuality is the default WebP encoding quality.
const WebPQuality = 92

// Sentinel errors for the validation stage; later stages return ordinary
// wrapped errors.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = fmt.Errorf("file exceeds %d MB limit", MaxInputBytes>>20)
)

// Format classifies an input file.
type Format int

const (
	// FormatStandard covers everything the stdlib (plus x/image) decodes.
	FormatStandard Format = iota
	// FormatHEIC is the proprietary camera container (HEIC/HEIF).
	FormatHEIC
)

var heicExtensions = map[string]bool{
	".heic": true,
	".heif": true,
}

var heicMIMEs = map[string]bool{
	"image/heic":          true,
	"image/heif":          true,
	"image/heic-sequence": true,
	"image/heif-sequence": true,
}

var standardExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Classify decides how to treat a file from its declared MIME type and
// filename extension. Extension matching is case-insensitive, so
// "photo.HEIC" straight off a camera is recognized. Non-image files are
// rejected with ErrUnsupportedType.
func Classify(filename, mime string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mime = strings.ToLower(strings.TrimSpace(mime))

	if heicExtensions[ext] || heicMIMEs[mime] {
		return FormatHEIC, nil
	}
	if strings.HasPrefix(mime, "image/") || standardExtensions[ext] {
		return FormatStandard, nil
	}
	return 0, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, filename, mime)
}

// CropRect is a crop rectangle in image pixel coordinates, relative to the
// image's top-left corner.
type CropRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Options tune the resize and encode stages. Zero values mean defaults.
type Options struct {
	MaxDimension int
	Quality      int
}

func (o Options) withDefaults() Options {
	if o.MaxDimension <= 0 {
		o.MaxDimension = MaxDimension
	}
	if o.Quality <= 0 {
		o.Quality = WebPQuality
	}
	return o
}

// Result is the pipeline output.
type Result struct {
	Data           []byte
	Width          int
	Height         int
	OriginalSize   int64
	ConvertedSize  int64
	SavingsPercent int
}

// Process runs the full pipeline on an input file: validate, decode
// (HEIC via the on-demand decoder), crop, downscale, encode WebP.
// A nil crop keeps the full frame.
func Process(data []byte, filename, mime string, crop *CropRect, opts Options) (*Result, error) {
	if int64(len(data)) > MaxInputBytes {
		return nil, ErrTooLarge
	}

	format, err := Classify(filename, mime)
	if err != nil {
		return nil, err
	}

	var img image.Image
	if format == FormatHEIC {
		img, err = decodeHEIC(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("decoding image: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	if crop != nil {
		img, err = Crop(img, *crop)
		if err != nil {
			return nil, err
		}
	}

	opts = opts.withDefaults()
	img = downscale(img, opts.MaxDimension)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encoding WebP: %w", err)
	}

	bounds := img.Bounds()
	return &Result{
		Data:           buf.Bytes(),
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		OriginalSize:   int64(len(data)),
		ConvertedSize:  int64(buf.Len()),
		SavingsPercent: SavingsPercent(int64(len(data)), int64(buf.Len())),
	}, nil
}

// Crop extracts the rectangle from the image, clamped to its bounds.
func Crop(img image.Image, rect CropRect) (image.Image, error) {
	bounds := img.Bounds()
	r := image.Rect(
		bounds.Min.X+rect.X,
		bounds.Min.Y+rect.Y,
		bounds.Min.X+rect.X+rect.W,
		bounds.Min.Y+rect.Y+rect.H,
	).Intersect(bounds)
	if r.Empty() {
		return nil, fmt.Errorf("crop rectangle %+v outside image bounds %v", rect, bounds.Size())
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

// SavingsPercent computes the size reduction, rounded to the nearest
// percent. Growth comes out negative.
func SavingsPercent(original, converted int64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(converted)/float64(original)) * 100))
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses high-quality Catmull-Rom interpolation.
// Returns the original image if already within bounds (never upscales).
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	// Calculate new dimensions preserving aspect ratio.
	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

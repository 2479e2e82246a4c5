// Package transcode turns arbitrary raster images into width-clamped WebP.
//
// Every entry point converges on one pipeline: decode, resize when the source
// is wider than the configured maximum, encode to WebP. Thumbnails are a
// separate decode/encode pass over already processed bytes.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/semaphore"

	// Registers the WebP decoder with image.Decode; imaging registers the rest.
	_ "golang.org/x/image/webp"
)

// DefaultMaxWidth is used when a non-positive width is configured.
const DefaultMaxWidth = 1600

// MaxSnapshotPixels bounds width*height of a raw RGBA snapshot.
const MaxSnapshotPixels = 1 << 26

// ContentType is the MIME type of every encoded output.
const ContentType = "image/webp"

// Extension is the file extension matching ContentType.
const Extension = "webp"

var (
	// ErrDecode is returned when the source cannot be read or decoded.
	ErrDecode = errors.New("decode image")
	// ErrEncode is returned when the WebP encoder rejects the pixel buffer.
	ErrEncode = errors.New("encode image")
	// ErrInvalidSnapshot is returned when raw RGBA dimensions and data disagree.
	ErrInvalidSnapshot = errors.New("invalid rgba snapshot")
)

// Image is a transcoded WebP buffer and its pixel dimensions.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// SizeInfo describes the encoded size, e.g. "123.45 KB".
func (i *Image) SizeInfo() string {
	return DescribeSize(len(i.Data))
}

// Transcoder runs the decode → resize → encode pipeline.
type Transcoder struct {
	maxWidth int
	sem      *semaphore.Weighted
}

// Option customises a Transcoder.
type Option func(*Transcoder)

// WithMaxConcurrent bounds the number of simultaneous decode/encode passes.
func WithMaxConcurrent(n int) Option {
	return func(t *Transcoder) {
		if n > 0 {
			t.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithSemaphore shares sem between Transcoders so one bound covers all of
// them, whatever width each clamps to.
func WithSemaphore(sem *semaphore.Weighted) Option {
	return func(t *Transcoder) {
		if sem != nil {
			t.sem = sem
		}
	}
}

// New creates a Transcoder that clamps output width to maxWidth.
func New(maxWidth int, opts ...Option) *Transcoder {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	t := &Transcoder{maxWidth: maxWidth}
	for _, opt := range opts {
		opt(t)
	}
	if t.sem == nil {
		t.sem = semaphore.NewWeighted(int64(runtime.NumCPU()))
	}
	return t
}

// MaxWidth returns the configured width clamp.
func (t *Transcoder) MaxWidth() int {
	return t.maxWidth
}

// FromPath transcodes the image file at path.
func (t *Transcoder) FromPath(ctx context.Context, path string) (*Image, error) {
	if err := t.acquire(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDecode, path, err)
	}
	return t.transcode(img)
}

// FromBytes transcodes an encoded image held in memory.
func (t *Transcoder) FromBytes(ctx context.Context, data []byte) (*Image, error) {
	if err := t.acquire(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return t.transcode(img)
}

// FromRGBA transcodes a raw clipboard snapshot: width*height pixels of
// non-premultiplied RGBA, four bytes each. The snapshot is first wrapped in a
// PNG container so it enters the same pipeline as any other source.
func (t *Transcoder) FromRGBA(ctx context.Context, width, height int, pix []byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidSnapshot, width, height)
	}
	if height > MaxSnapshotPixels/width {
		return nil, fmt.Errorf("%w: dimensions %dx%d exceed %d pixels",
			ErrInvalidSnapshot, width, height, MaxSnapshotPixels)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: expected %d bytes for %dx%d, got %d",
			ErrInvalidSnapshot, width*height*4, width, height, len(pix))
	}

	snapshot := &image.NRGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, snapshot, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: wrap snapshot: %v", ErrEncode, err)
	}
	return t.FromBytes(ctx, buf.Bytes())
}

// Thumbnail decodes processed bytes and returns a WebP whose longest side is
// at most maxSize. Images already within bounds are re-encoded unscaled.
func (t *Transcoder) Thumbnail(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("thumbnail size must be positive (got %d)", maxSize)
	}
	if err := t.acquire(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	thumb := imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	return encode(thumb)
}

func (t *Transcoder) transcode(img image.Image) (*Image, error) {
	processed := img
	if w, h := TargetSize(img.Bounds().Dx(), img.Bounds().Dy(), t.maxWidth); w != img.Bounds().Dx() {
		processed = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	data, err := encode(processed)
	if err != nil {
		return nil, err
	}
	return &Image{
		Data:   data,
		Width:  processed.Bounds().Dx(),
		Height: processed.Bounds().Dy(),
	}, nil
}

func (t *Transcoder) acquire(ctx context.Context) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for transcode slot: %w", err)
	}
	return nil
}

// TargetSize returns the output dimensions for a width×height source under
// the maxWidth clamp. Only width is clamped; height follows the aspect ratio.
func TargetSize(width, height, maxWidth int) (int, int) {
	if width <= maxWidth {
		return width, height
	}
	h := int(math.Round(float64(height) * float64(maxWidth) / float64(width)))
	if h < 1 {
		h = 1
	}
	return maxWidth, h
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, &nativewebp.Options{}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// DescribeSize renders a byte count as "<v> KB" below 1024 KB and "<v> MB"
// otherwise, with two decimals.
func DescribeSize(n int) string {
	kb := float64(n) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.2f KB", kb)
	}
	return fmt.Sprintf("%.2f MB", kb/1024)
}

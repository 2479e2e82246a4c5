package transcode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

func gradientPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "webp", format)
	return cfg.Width, cfg.Height
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxW   int
		wantW, wantH int
	}{
		{"narrower passes through", 800, 600, 1600, 800, 600},
		{"equal passes through", 1600, 900, 1600, 1600, 900},
		{"wide is clamped", 3000, 2000, 1600, 1600, 1067},
		{"rounds half up", 400, 301, 200, 200, 151},
		{"tall image keeps height ratio", 2000, 8000, 1000, 1000, 4000},
		{"height never below one", 10000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetSize(tt.w, tt.h, tt.maxW)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestFromBytesPreservesSmallImages(t *testing.T) {
	tr := New(200)

	out, err := tr.FromBytes(context.Background(), gradientPNG(t, 120, 80))
	require.NoError(t, err)

	assert.Equal(t, 120, out.Width)
	assert.Equal(t, 80, out.Height)
	w, h := decodedSize(t, out.Data)
	assert.Equal(t, 120, w)
	assert.Equal(t, 80, h)
}

func TestFromBytesClampsWidth(t *testing.T) {
	tr := New(160)

	out, err := tr.FromBytes(context.Background(), gradientPNG(t, 400, 301))
	require.NoError(t, err)

	w, h := decodedSize(t, out.Data)
	assert.Equal(t, 160, w)
	assert.Equal(t, 120, h) // round(301 * 160 / 400) = round(120.4)
	assert.Equal(t, w, out.Width)
	assert.Equal(t, h, out.Height)
}

func TestOutputIsWebP(t *testing.T) {
	out, err := New(100).FromBytes(context.Background(), gradientPNG(t, 50, 50))
	require.NoError(t, err)

	require.Greater(t, len(out.Data), 12)
	assert.Equal(t, "RIFF", string(out.Data[0:4]))
	assert.Equal(t, "WEBP", string(out.Data[8:12]))
}

func TestTranscodeIsIdempotent(t *testing.T) {
	tr := New(160)
	ctx := context.Background()

	first, err := tr.FromBytes(ctx, gradientPNG(t, 400, 300))
	require.NoError(t, err)

	second, err := tr.FromBytes(ctx, first.Data)
	require.NoError(t, err)

	assert.Equal(t, first.Width, second.Width)
	assert.Equal(t, first.Height, second.Height)
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.png")
	require.NoError(t, os.WriteFile(path, gradientPNG(t, 300, 100), 0o644))

	out, err := New(150).FromPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 150, out.Width)
	assert.Equal(t, 50, out.Height)
}

func TestFromPathMissingFile(t *testing.T) {
	_, err := New(150).FromPath(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	_, err := New(150).FromBytes(context.Background(), []byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFromRGBA(t *testing.T) {
	const w, h = 64, 32
	pix := make([]byte, w*h*4)
	for i := range pix {
		pix[i] = 0xff
	}

	out, err := New(32).FromRGBA(context.Background(), w, h, pix)
	require.NoError(t, err)
	assert.Equal(t, 32, out.Width)
	assert.Equal(t, 16, out.Height)
}

func TestFromRGBARejectsMismatchedBuffer(t *testing.T) {
	tr := New(32)

	_, err := tr.FromRGBA(context.Background(), 10, 10, make([]byte, 399))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = tr.FromRGBA(context.Background(), 0, 10, nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	// width*height*4 wraps to zero on 64-bit ints.
	assert.NotPanics(t, func() {
		_, err = tr.FromRGBA(context.Background(), 1<<31, 1<<31, nil)
	})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = tr.FromRGBA(context.Background(), MaxSnapshotPixels, 2, nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Contains(t, err.Error(), "exceed")
}

func TestThumbnailBoundsLongestSide(t *testing.T) {
	tr := New(1600)
	ctx := context.Background()

	processed, err := tr.FromBytes(ctx, gradientPNG(t, 600, 400))
	require.NoError(t, err)

	thumb, err := tr.Thumbnail(ctx, processed.Data, 200)
	require.NoError(t, err)

	w, h := decodedSize(t, thumb)
	assert.LessOrEqual(t, w, 200)
	assert.LessOrEqual(t, h, 200)
	assert.Equal(t, 200, w)
}

func TestThumbnailDoesNotUpscale(t *testing.T) {
	tr := New(1600)
	ctx := context.Background()

	processed, err := tr.FromBytes(ctx, gradientPNG(t, 40, 30))
	require.NoError(t, err)

	thumb, err := tr.Thumbnail(ctx, processed.Data, 200)
	require.NoError(t, err)

	w, h := decodedSize(t, thumb)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(100, WithMaxConcurrent(1)).FromBytes(ctx, gradientPNG(t, 10, 10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribeSize(t *testing.T) {
	assert.Equal(t, "0.00 KB", DescribeSize(0))
	assert.Equal(t, "1.50 KB", DescribeSize(1536))
	assert.Equal(t, "1023.00 KB", DescribeSize(1023*1024))
	assert.Equal(t, "1.00 MB", DescribeSize(1025*1024))
	assert.Equal(t, "1.00 MB", DescribeSize(1024*1024))
}

func TestNewDefaultsWidth(t *testing.T) {
	assert.Equal(t, DefaultMaxWidth, New(0).MaxWidth())
	assert.Equal(t, DefaultMaxWidth, New(-5).MaxWidth())
}

func TestWithSemaphoreSharesBound(t *testing.T) {
	sem := semaphore.NewWeighted(1)
	require.True(t, sem.TryAcquire(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(100, WithSemaphore(sem)).FromBytes(ctx, gradientPNG(t, 10, 10))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	sem.Release(1)
	_, err = New(50, WithSemaphore(sem)).FromBytes(context.Background(), gradientPNG(t, 10, 10))
	assert.NoError(t, err)
}

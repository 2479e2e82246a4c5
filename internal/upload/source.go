package upload

import (
	"context"

	"github.com/optibridge/service/internal/transcode"
)

// Source labels reported to metrics.
const (
	SourceFile      = "file"
	SourceBytes     = "bytes"
	SourceClipboard = "clipboard"
)

// Source is an image waiting to be processed: a file path, encoded bytes,
// or a raw RGBA clipboard snapshot.
type Source struct {
	label  string
	path   string
	data   []byte
	width  int
	height int
}

// FromPath reads the image at path.
func FromPath(path string) Source {
	return Source{label: SourceFile, path: path}
}

// FromBytes decodes an encoded image held in memory.
func FromBytes(data []byte) Source {
	return Source{label: SourceBytes, data: data}
}

// FromRGBA wraps a width×height non-premultiplied RGBA snapshot.
func FromRGBA(width, height int, pix []byte) Source {
	return Source{label: SourceClipboard, data: pix, width: width, height: height}
}

// Label names the kind of source.
func (s Source) Label() string {
	return s.label
}

func (s Source) transcode(ctx context.Context, tr *transcode.Transcoder) (*transcode.Image, error) {
	switch s.label {
	case SourceFile:
		return tr.FromPath(ctx, s.path)
	case SourceClipboard:
		return tr.FromRGBA(ctx, s.width, s.height, s.data)
	default:
		return tr.FromBytes(ctx, s.data)
	}
}

package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aaronland/go-image-tools/util"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/sfomuseum/go-dropbox-photomap/operations/rotate"
)

// type LocalProvider implements the `Provider` interface by rendering a thumbnail from a record's own bytes.
// Images are rotated upright according to their EXIF orientation and scaled down to MaxWidth.
type LocalProvider struct {
	Provider
	MaxWidth int
}

func (p *LocalProvider) Thumbnail(ctx context.Context, rec *media.Record) (io.ReadCloser, error) {

	body, err := rec.Bytes(ctx)

	if err != nil {
		return nil, err
	}

	im, _, err := util.DecodeImageFromReader(bytes.NewReader(body))

	if err != nil {
		return nil, fmt.Errorf("Failed to decode image, %w", err)
	}

	orientation := media.ExifOrientation(bytes.NewReader(body))
	im = rotate.AutoOrient(im, orientation)

	max_width := p.MaxWidth

	if max_width <= 0 {
		max_width = DEFAULT_MAX_WIDTH
	}

	im = Scale(im, max_width)

	var buf bytes.Buffer

	err = util.EncodeImage(im, "jpeg", &buf)

	if err != nil {
		return nil, fmt.Errorf("Failed to encode image, %w", err)
	}

	return io.NopCloser(&buf), nil
}

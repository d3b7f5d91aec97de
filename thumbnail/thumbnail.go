// Package thumbnail provides methods for materializing a small, stable, locally-referenced preview image for each record.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path"

	"github.com/aaronland/go-image-tools/util"
	"github.com/nfnt/resize"
	"github.com/sfomuseum/go-dropbox-photomap/common"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"gocloud.dev/blob"
)

// DEFAULT_PREFIX is the bucket prefix under which thumbnails are written.
const DEFAULT_PREFIX string = "thumbnails"

// DEFAULT_MAX_WIDTH is the default maximum width, in pixels, of a thumbnail.
const DEFAULT_MAX_WIDTH int = 640

// type Provider is an interface for retrieving thumbnail image bytes for a record.
type Provider interface {
	Thumbnail(context.Context, *media.Record) (io.ReadCloser, error)
}

// type LinkProvider is an interface for deriving a publicly reachable image URL for a record.
type LinkProvider interface {
	ExternalURL(context.Context, *media.Record) (string, error)
}

// Filename returns the stable thumbnail filename for 'key': the SHA-1 hex digest of 'key' plus ".jpg".
func Filename(key string) string {
	return fmt.Sprintf("%s.jpg", common.FingerprintString(key))
}

// type Result is the outcome of materializing a thumbnail. At most one of LocalPath or ExternalURL is set
// and both may be empty.
type Result struct {
	// The bucket-relative path of the written thumbnail.
	LocalPath string
	// A publicly reachable image URL used when no thumbnail could be written.
	ExternalURL string
	// The average perceptual hash of the thumbnail.
	ImageHash string
}

// type MaterializerOptions is a struct containing configuration options for the `NewMaterializer` method.
type MaterializerOptions struct {
	// The bucket thumbnails are written to.
	Bucket *blob.Bucket
	// Thumbnail providers, tried in order.
	Providers []Provider
	// An optional fallback for deriving an external image URL.
	LinkProvider LinkProvider
	// Thumbnails wider than this are scaled down. Default is DEFAULT_MAX_WIDTH.
	MaxWidth int
	// Default is DEFAULT_PREFIX.
	Prefix string
	// Optional writer options, for example to set an ACL.
	WriterOptions *blob.WriterOptions
	// Derive results but do not write anything.
	Dryrun bool
}

// type Materializer writes a thumbnail for each record to a bucket using the first `Provider` that succeeds.
type Materializer struct {
	bucket    *blob.Bucket
	providers []Provider
	link      LinkProvider
	max_width int
	prefix    string
	wr_opts   *blob.WriterOptions
	dryrun    bool
}

// NewMaterializer returns a new `Materializer` instance configured by 'opts'.
func NewMaterializer(opts *MaterializerOptions) (*Materializer, error) {

	if opts.Bucket == nil && !opts.Dryrun {
		return nil, fmt.Errorf("Missing bucket")
	}

	max_width := opts.MaxWidth

	if max_width <= 0 {
		max_width = DEFAULT_MAX_WIDTH
	}

	prefix := opts.Prefix

	if prefix == "" {
		prefix = DEFAULT_PREFIX
	}

	wr_opts := opts.WriterOptions

	if wr_opts == nil {
		wr_opts = common.WriterOptions("image/jpeg", false)
	}

	m := &Materializer{
		bucket:    opts.Bucket,
		providers: opts.Providers,
		link:      opts.LinkProvider,
		max_width: max_width,
		prefix:    prefix,
		wr_opts:   wr_opts,
		dryrun:    opts.Dryrun,
	}

	return m, nil
}

// Key returns the bucket key for the thumbnail of 'rec'.
func (m *Materializer) Key(rec *media.Record) string {
	return path.Join(m.prefix, Filename(rec.CacheKey()))
}

// Materialize writes a thumbnail for 'rec'. Failures are logged; if no provider succeeds the optional
// `LinkProvider` is asked for an external URL. Materialize never returns an error and the `Result` may be empty.
func (m *Materializer) Materialize(ctx context.Context, rec *media.Record) *Result {

	logger := slog.Default()
	logger = logger.With("path", rec.DisplayPath)

	key := m.Key(rec)

	for idx, p := range m.providers {

		select {
		case <-ctx.Done():
			return &Result{}
		default:
			// pass
		}

		rsp, err := m.materialize(ctx, p, rec, key)

		if err != nil {
			logger.Debug("Thumbnail provider failed", "provider", idx, "error", err)
			continue
		}

		return rsp
	}

	if m.link != nil {

		url, err := m.link.ExternalURL(ctx, rec)

		if err != nil {
			logger.Debug("Failed to derive external URL", "error", err)
		} else if url != "" {
			return &Result{ExternalURL: url}
		}
	}

	logger.Warn("Failed to materialize thumbnail")
	return &Result{}
}

func (m *Materializer) materialize(ctx context.Context, p Provider, rec *media.Record, key string) (*Result, error) {

	r, err := p.Thumbnail(ctx, rec)

	if err != nil {
		return nil, err
	}

	defer r.Close()

	body, err := io.ReadAll(r)

	if err != nil {
		return nil, fmt.Errorf("Failed to read thumbnail, %w", err)
	}

	im, _, err := util.DecodeImageFromReader(bytes.NewReader(body))

	if err != nil {
		return nil, fmt.Errorf("Failed to decode thumbnail, %w", err)
	}

	im = Scale(im, m.max_width)

	var buf bytes.Buffer

	err = util.EncodeImage(im, "jpeg", &buf)

	if err != nil {
		return nil, fmt.Errorf("Failed to encode thumbnail, %w", err)
	}

	if m.dryrun {
		slog.Info("[dryrun] Write thumbnail", "key", key)
	} else {

		err = common.WriteBytes(ctx, m.bucket, key, buf.Bytes(), m.wr_opts)

		if err != nil {
			return nil, err
		}
	}

	rsp := &Result{
		LocalPath: key,
	}

	hashes, err := common.ImageHashes(ctx, im, "avg")

	if err != nil {
		slog.Debug("Failed to derive image hash", "key", key, "error", err)
	} else {
		rsp.ImageHash = hashes[0].Hash
	}

	return rsp, nil
}

// Scale returns 'im' scaled down, preserving its aspect ratio, so that it is no wider than 'max_width'.
// Images that are already narrow enough are returned as-is.
func Scale(im image.Image, max_width int) image.Image {

	w := im.Bounds().Dx()

	if max_width <= 0 || w <= max_width {
		return im
	}

	return resize.Resize(uint(max_width), 0, im, resize.Lanczos3)
}

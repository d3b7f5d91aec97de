// Package gather provides methods for enumerating the images stored in a gocloud.dev/blob bucket.
package gather

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sfomuseum/go-dropbox-photomap/common"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"gocloud.dev/blob"
)

// type GatherImagesResponse is a summary of a single image, used for inspecting a bucket before building a map.
type GatherImagesResponse struct {
	Path        string                 `json:"path"`
	Fingerprint string                 `json:"fingerprint"`
	MimeType    string                 `json:"mimetype"`
	ImageHashes []*common.ImageHashRsp `json:"imagehashes,omitempty"`
	Location    *media.Location        `json:"location,omitempty"`
}

type GatherImageCallbackFunc func(context.Context, *GatherImagesResponse) error

type GatherImagesOptions struct {
	Callback   GatherImageCallbackFunc
	HashImages bool
}

// type BucketLister enumerates the images in a bucket as `media.Record` instances.
type BucketLister struct {
	bucket *blob.Bucket
}

// NewBucketLister returns a new `BucketLister` for 'bucket'. The bucket must remain open for as long as
// the records it lists are being read.
func NewBucketLister(bucket *blob.Bucket) *BucketLister {
	return &BucketLister{bucket: bucket}
}

// List returns every image in the bucket, in key order.
func (l *BucketLister) List(ctx context.Context) ([]*media.Record, error) {
	return ListImages(ctx, l.bucket)
}

// ListImages returns every image in 'bucket', in key order.
func ListImages(ctx context.Context, bucket *blob.Bucket) ([]*media.Record, error) {

	rec_ch := make(chan *media.Record)
	err_ch := make(chan error, 1)

	go func() {
		err_ch <- CrawlImages(ctx, bucket, rec_ch)
		close(rec_ch)
	}()

	records := make([]*media.Record, 0)

	for rec := range rec_ch {
		records = append(records, rec)
	}

	err := <-err_ch

	if err != nil {
		return nil, err
	}

	return records, nil
}

func GatherImages(ctx context.Context, bucket *blob.Bucket, cb GatherImageCallbackFunc) error {

	opts := &GatherImagesOptions{
		Callback:   cb,
		HashImages: true,
	}

	return GatherImagesWithOptions(ctx, bucket, opts)
}

func GatherImagesWithOptions(ctx context.Context, bucket *blob.Bucket, opts *GatherImagesOptions) error {

	rec_ch := make(chan *media.Record)
	err_ch := make(chan error, 1)

	go func() {
		err_ch <- CrawlImages(ctx, bucket, rec_ch)
		close(rec_ch)
	}()

	wg := new(sync.WaitGroup)

	for rec := range rec_ch {

		wg.Add(1)

		go func(rec *media.Record) {

			defer wg.Done()

			rsp, err := GatherImageResponseWithRecord(ctx, bucket, rec, opts.HashImages)

			if err != nil {
				slog.Warn("Failed to gather image", "path", rec.DisplayPath, "error", err)
				return
			}

			err = opts.Callback(ctx, rsp)

			if err != nil {
				slog.Warn("Failed to process image", "path", rec.DisplayPath, "error", err)
			}

		}(rec)
	}

	wg.Wait()
	return <-err_ch
}

// Iterate through all the items stored in a blob.Bucket instance, generate a media.Record for things that are images
// and dispatch that record to a user-defined channel.
func CrawlImages(ctx context.Context, bucket *blob.Bucket, rec_ch chan *media.Record) error {

	var list func(context.Context, *blob.Bucket, string) error

	list = func(ctx context.Context, b *blob.Bucket, prefix string) error {

		iter := b.List(&blob.ListOptions{
			Delimiter: "/",
			Prefix:    prefix,
		})

		for {

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				// pass
			}

			obj, err := iter.Next(ctx)

			if err == io.EOF {
				break
			}

			if err != nil {
				return fmt.Errorf("Failed to list %s, %w", prefix, err)
			}

			if obj.IsDir {

				err := list(ctx, b, obj.Key)

				if err != nil {
					return err
				}

				continue
			}

			rec, ok := RecordWithPath(bucket, obj.Key)

			if !ok {
				continue
			}

			rec_ch <- rec
		}

		return nil
	}

	return list(ctx, bucket, "")
}

// RecordWithPath returns a new `media.Record` for the image stored at 'path' in 'bucket'. It returns false
// if 'path' is not an image.
func RecordWithPath(bucket *blob.Bucket, path string) (*media.Record, bool) {

	ext := strings.ToLower(filepath.Ext(path))

	t := mime.TypeByExtension(ext)

	if t == "" {
		return nil, false
	}

	t, _, _ = strings.Cut(t, ";")

	if !strings.HasPrefix(t, "image/") {
		return nil, false
	}

	fetch := func(ctx context.Context) ([]byte, error) {
		return bucket.ReadAll(ctx, path)
	}

	display_path := "/" + strings.TrimLeft(path, "/")

	rec := media.NewRecord(filepath.Base(path), strings.ToLower(display_path), display_path, fetch)
	rec.MimeType = t

	return rec, true
}

func GatherImageResponseWithRecord(ctx context.Context, bucket *blob.Bucket, rec *media.Record, hash_images bool) (*GatherImagesResponse, error) {

	key := strings.TrimLeft(rec.DisplayPath, "/")

	fp, err := common.FingerprintFile(ctx, bucket, key)

	if err != nil {
		return nil, err
	}

	rsp := &GatherImagesResponse{
		Path:        rec.DisplayPath,
		MimeType:    rec.MimeType,
		Fingerprint: fp,
	}

	body, err := rec.Bytes(ctx)

	if err != nil {
		return nil, err
	}

	loc, err := media.ExifLocation(bytes.NewReader(body))

	if err == nil {
		rsp.Location = loc
	}

	if hash_images {

		hashes, err := common.ImageHashesWithBytes(ctx, body)

		if err != nil {
			return nil, err
		}

		rsp.ImageHashes = hashes
	}

	return rsp, nil
}

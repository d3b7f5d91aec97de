package common

// Buckets are not pooled. Callers close what they open.

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

// BucketURI returns a gocloud.dev/blob URI for 'uri'. If 'uri' is a plain filesystem path it is
// converted to an absolute file:// URI which creates the directory if it does not exist.
func BucketURI(uri string) (string, error) {

	if strings.Contains(uri, "://") {
		return uri, nil
	}

	abs_path, err := filepath.Abs(uri)

	if err != nil {
		return "", fmt.Errorf("Failed to derive absolute path for %s, %w", uri, err)
	}

	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs_path),
		RawQuery: "create_dir=true",
	}

	return u.String(), nil
}

// OpenBucket opens a gocloud.dev/blob Bucket for 'uri', which may be a blob URI or a plain filesystem path.
func OpenBucket(ctx context.Context, uri string) (*blob.Bucket, error) {

	bucket_uri, err := BucketURI(uri)

	if err != nil {
		return nil, err
	}

	if !strings.Contains(uri, "://") {

		err := os.MkdirAll(uri, 0755)

		if err != nil {
			return nil, fmt.Errorf("Failed to create %s, %w", uri, err)
		}
	}

	bucket, err := blob.OpenBucket(ctx, bucket_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to open bucket for %s, %w", uri, err)
	}

	return bucket, nil
}

// WriterOptions returns a blob.WriterOptions for 'content_type'. If 'public_read' is true the
// options will assign a "public-read" ACL to objects written to S3 buckets.
func WriterOptions(content_type string, public_read bool) *blob.WriterOptions {

	wr_opts := &blob.WriterOptions{
		ContentType: content_type,
	}

	if !public_read {
		return wr_opts
	}

	before := func(asFunc func(interface{}) bool) error {

		s3_req := &s3manager.UploadInput{}
		ok := asFunc(&s3_req)

		if ok {
			s3_req.ACL = aws.String("public-read")
		}

		return nil
	}

	wr_opts.BeforeWrite = before
	return wr_opts
}

// WriteBytes writes 'body' to 'key' in 'bucket'.
func WriteBytes(ctx context.Context, bucket *blob.Bucket, key string, body []byte, wr_opts *blob.WriterOptions) error {

	wr, err := bucket.NewWriter(ctx, key, wr_opts)

	if err != nil {
		return fmt.Errorf("Failed to create writer for %s, %w", key, err)
	}

	_, err = wr.Write(body)

	if err != nil {
		wr.Close()
		return fmt.Errorf("Failed to write %s, %w", key, err)
	}

	err = wr.Close()

	if err != nil {
		return fmt.Errorf("Failed to close %s, %w", key, err)
	}

	return nil
}

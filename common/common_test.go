package common

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func TestFingerprintString(t *testing.T) {

	fp := FingerprintString("/romania/bicaz.jpg")

	assert.Len(t, fp, 40)
	assert.Equal(t, fp, FingerprintString("/romania/bicaz.jpg"))
	assert.NotEqual(t, fp, FingerprintString("/romania/bicaz2.jpg"))
}

func TestFingerprintFile(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	err := WriteBytes(ctx, bucket, "hello.txt", []byte("hello"), nil)
	require.NoError(t, err)

	fp, err := FingerprintFile(ctx, bucket, "hello.txt")
	require.NoError(t, err)

	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", fp)
	assert.Equal(t, FingerprintString("hello"), fp)
}

func TestBucketURI(t *testing.T) {

	uri, err := BucketURI("s3://example-bucket?region=us-west-2")
	require.NoError(t, err)
	assert.Equal(t, "s3://example-bucket?region=us-west-2", uri)

	uri, err = BucketURI("dist")
	require.NoError(t, err)

	abs_path, _ := filepath.Abs("dist")

	assert.True(t, strings.HasPrefix(uri, "file://"))
	assert.True(t, strings.HasSuffix(uri, "?create_dir=true"))
	assert.Contains(t, uri, filepath.ToSlash(abs_path))
}

func TestOpenBucketCreatesDirectory(t *testing.T) {

	ctx := context.Background()

	root := filepath.Join(t.TempDir(), "nested", "dist")

	bucket, err := OpenBucket(ctx, root)
	require.NoError(t, err)

	defer bucket.Close()

	err = WriteBytes(ctx, bucket, "thumbnails/a.jpg", []byte("a"), WriterOptions("image/jpeg", false))
	require.NoError(t, err)

	r, err := bucket.NewReader(ctx, "thumbnails/a.jpg", nil)
	require.NoError(t, err)

	defer r.Close()

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), body)
}

func TestWriterOptions(t *testing.T) {

	opts := WriterOptions("image/jpeg", false)
	assert.Equal(t, "image/jpeg", opts.ContentType)
	assert.Nil(t, opts.BeforeWrite)

	opts = WriterOptions("image/jpeg", true)
	assert.NotNil(t, opts.BeforeWrite)

	// Non-S3 drivers don't recognize the As type and the hook is a no-op
	err := opts.BeforeWrite(func(interface{}) bool { return false })
	assert.NoError(t, err)
}

func TestImageHashes(t *testing.T) {

	ctx := context.Background()

	im := image.NewRGBA(image.Rect(0, 0, 32, 32))

	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			im.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), 128, 255})
		}
	}

	var buf bytes.Buffer
	err := png.Encode(&buf, im)
	require.NoError(t, err)

	hashes, err := ImageHashesWithBytes(ctx, buf.Bytes())
	require.NoError(t, err)
	require.Len(t, hashes, 2)

	assert.Equal(t, "avg", hashes[0].Approach)
	assert.True(t, strings.HasPrefix(hashes[0].Hash, "a:"))
	assert.Equal(t, "diff", hashes[1].Approach)

	_, err = ImageHashesWithBytes(ctx, []byte("not an image"))
	assert.Error(t, err)

	_, err = ImageHashes(ctx, im, "bogus")
	assert.Error(t, err)
}

func TestReadersAndWritersAreShared(t *testing.T) {

	ctx := context.Background()

	uri := fmt.Sprintf("fs://%s", filepath.ToSlash(t.TempDir()))

	r1, err := NewReader(ctx, uri)
	require.NoError(t, err)

	r2, err := NewReader(ctx, uri)
	require.NoError(t, err)

	assert.Same(t, r1, r2)

	w1, err := NewWriter(ctx, uri)
	require.NoError(t, err)

	w2, err := NewWriter(ctx, uri)
	require.NoError(t, err)

	assert.Same(t, w1, w2)

	_, err = NewReader(ctx, "unsupported-scheme://")
	assert.Error(t, err)
}

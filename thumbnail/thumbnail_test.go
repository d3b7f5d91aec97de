package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"testing"

	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func testJPEG(t *testing.T, w int, h int) []byte {

	t.Helper()

	im := image.NewRGBA(image.Rect(0, 0, w, h))

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			im.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 64, 255})
		}
	}

	var buf bytes.Buffer

	err := jpeg.Encode(&buf, im, nil)
	require.NoError(t, err)

	return buf.Bytes()
}

func testRecord(name string, body []byte) *media.Record {

	fetch := func(ctx context.Context) ([]byte, error) {
		return body, nil
	}

	return media.NewRecord(name, strings.ToLower("/romania/"+name), "/Romania/"+name, fetch)
}

type failingProvider struct {
	calls int
}

func (p *failingProvider) Thumbnail(ctx context.Context, rec *media.Record) (io.ReadCloser, error) {
	p.calls += 1
	return nil, errors.New("thumbnail unavailable")
}

type staticLinks struct {
	url string
	err error
}

func (l *staticLinks) ExternalURL(ctx context.Context, rec *media.Record) (string, error) {
	return l.url, l.err
}

func TestFilename(t *testing.T) {

	fname := Filename("/romania/bicaz.jpg")

	assert.True(t, strings.HasSuffix(fname, ".jpg"))
	assert.Len(t, fname, 44)
	assert.Equal(t, fname, Filename("/romania/bicaz.jpg"))
	assert.NotEqual(t, fname, Filename("/romania/bicaz2.jpg"))
}

func TestMaterializeLocal(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	failing := &failingProvider{}

	m, err := NewMaterializer(&MaterializerOptions{
		Bucket:    bucket,
		Providers: []Provider{failing, &LocalProvider{MaxWidth: 100}},
		MaxWidth:  100,
	})

	require.NoError(t, err)

	rec := testRecord("Bicaz.jpg", testJPEG(t, 400, 200))

	rsp := m.Materialize(ctx, rec)

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, "thumbnails/"+Filename("/romania/bicaz.jpg"), rsp.LocalPath)
	assert.Empty(t, rsp.ExternalURL)
	assert.True(t, strings.HasPrefix(rsp.ImageHash, "a:"))

	r, err := bucket.NewReader(ctx, rsp.LocalPath, nil)
	require.NoError(t, err)

	defer r.Close()

	im, format, err := image.Decode(r)
	require.NoError(t, err)

	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, im.Bounds().Dx())
	assert.Equal(t, 50, im.Bounds().Dy())

	// Reruns overwrite the same key
	rsp2 := m.Materialize(ctx, rec)
	assert.Equal(t, rsp.LocalPath, rsp2.LocalPath)
}

func TestMaterializeFallsBackToLink(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m, err := NewMaterializer(&MaterializerOptions{
		Bucket:       bucket,
		Providers:    []Provider{&failingProvider{}, &LocalProvider{}},
		LinkProvider: &staticLinks{url: "https://www.dropbox.com/s/abc/Bicaz.jpg?raw=1"},
	})

	require.NoError(t, err)

	rec := testRecord("Bicaz.jpg", []byte("not an image"))

	rsp := m.Materialize(ctx, rec)

	assert.Empty(t, rsp.LocalPath)
	assert.Equal(t, "https://www.dropbox.com/s/abc/Bicaz.jpg?raw=1", rsp.ExternalURL)
}

func TestMaterializeNeverFails(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m, err := NewMaterializer(&MaterializerOptions{
		Bucket:       bucket,
		Providers:    []Provider{&failingProvider{}},
		LinkProvider: &staticLinks{err: errors.New("no shared links")},
	})

	require.NoError(t, err)

	rsp := m.Materialize(ctx, testRecord("Bicaz.jpg", nil))

	require.NotNil(t, rsp)
	assert.Empty(t, rsp.LocalPath)
	assert.Empty(t, rsp.ExternalURL)
}

func TestMaterializeDryrun(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m, err := NewMaterializer(&MaterializerOptions{
		Bucket:    bucket,
		Providers: []Provider{&LocalProvider{}},
		Dryrun:    true,
	})

	require.NoError(t, err)

	rsp := m.Materialize(ctx, testRecord("Bicaz.jpg", testJPEG(t, 32, 32)))
	assert.NotEmpty(t, rsp.LocalPath)

	exists, err := bucket.Exists(ctx, rsp.LocalPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestScale(t *testing.T) {

	im := image.NewRGBA(image.Rect(0, 0, 64, 32))

	assert.Equal(t, im, Scale(im, 640))
	assert.Equal(t, im, Scale(im, 0))
	assert.Equal(t, image.Pt(32, 16), Scale(im, 32).Bounds().Size())
}

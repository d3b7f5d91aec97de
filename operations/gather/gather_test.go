package gather

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

func newTestBucket(t *testing.T) *blob.Bucket {

	t.Helper()

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })

	var buf bytes.Buffer

	err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil)
	require.NoError(t, err)

	files := map[string][]byte{
		"Romania/Bicaz.jpg":            buf.Bytes(),
		"Romania/Neamt/Lacul Rosu.JPG": buf.Bytes(),
		"Romania/notes.txt":            []byte("notes"),
		"Sibiu.png":                    buf.Bytes(),
		"README":                       []byte("readme"),
	}

	for k, body := range files {
		err := bucket.WriteAll(ctx, k, body, nil)
		require.NoError(t, err)
	}

	return bucket
}

func TestListImages(t *testing.T) {

	ctx := context.Background()

	bucket := newTestBucket(t)

	records, err := NewBucketLister(bucket).List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	paths := make([]string, len(records))

	for i, r := range records {
		paths[i] = r.DisplayPath
	}

	assert.Equal(t, []string{"/Romania/Bicaz.jpg", "/Romania/Neamt/Lacul Rosu.JPG", "/Sibiu.png"}, paths)

	rec := records[1]
	assert.Equal(t, "Lacul Rosu.JPG", rec.Name)
	assert.Equal(t, "/romania/neamt/lacul rosu.jpg", rec.PathKey)
	assert.Equal(t, "image/jpeg", rec.MimeType)
	assert.Nil(t, rec.Embedded)

	body, err := rec.Bytes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestListImagesCancelled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ListImages(ctx, newTestBucket(t))
	assert.Error(t, err)
}

func TestGatherImages(t *testing.T) {

	ctx := context.Background()

	bucket := newTestBucket(t)

	mu := new(sync.Mutex)
	responses := make(map[string]*GatherImagesResponse)

	cb := func(ctx context.Context, rsp *GatherImagesResponse) error {
		mu.Lock()
		defer mu.Unlock()
		responses[rsp.Path] = rsp
		return nil
	}

	err := GatherImages(ctx, bucket, cb)
	require.NoError(t, err)

	require.Len(t, responses, 3)

	rsp := responses["/Sibiu.png"]
	require.NotNil(t, rsp)

	assert.Equal(t, "image/png", rsp.MimeType)
	assert.Len(t, rsp.Fingerprint, 40)
	assert.Len(t, rsp.ImageHashes, 2)
	assert.Nil(t, rsp.Location)
}

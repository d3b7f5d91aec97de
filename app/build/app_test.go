package build

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/sfomuseum/go-dropbox-photomap/operations/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeTestImage(t *testing.T, path string) {

	t.Helper()

	var buf bytes.Buffer

	err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24)), nil)
	require.NoError(t, err)

	err = os.WriteFile(path, buf.Bytes(), 0644)
	require.NoError(t, err)
}

func TestSetupAndBuildFromDirectory(t *testing.T) {

	ctx := context.Background()

	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "site")

	writeTestImage(t, filepath.Join(src, "Bicaz.jpg"))
	writeTestImage(t, filepath.Join(src, "IMG_0042.jpg"))

	fs := DefaultFlagSet(ctx)

	err := fs.Parse([]string{
		"-source", src,
		"-output", out,
		"-overrides-uri", fmt.Sprintf("fs://%s", filepath.ToSlash(src)),
		"-title", "Romania",
	})

	require.NoError(t, err)

	opts, closer, err := setup(ctx)
	require.NoError(t, err)

	defer closer()

	summary, err := build.Build(ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Resolved)
	assert.Equal(t, 1, summary.Thumbnails)

	body, err := os.ReadFile(filepath.Join(out, "photos.geojson"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), gjson.GetBytes(body, "features.#").Int())
	assert.Equal(t, "Bicaz.jpg", gjson.GetBytes(body, "features.0.properties.title").String())

	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>Romania</title>")

	thumbs, err := filepath.Glob(filepath.Join(out, "thumbnails", "*.jpg"))
	require.NoError(t, err)
	assert.Len(t, thumbs, 1)
}

func TestSetupRequiresSource(t *testing.T) {

	ctx := context.Background()

	fs := DefaultFlagSet(ctx)

	err := fs.Parse([]string{
		"-output", t.TempDir(),
	})

	require.NoError(t, err)

	_, _, err = setup(ctx)
	assert.Error(t, err)
}

func TestSetupRequiresDropboxToken(t *testing.T) {

	ctx := context.Background()

	fs := DefaultFlagSet(ctx)

	err := fs.Parse([]string{
		"-source", "dropbox:///Photos/Romania",
		"-output", t.TempDir(),
		"-overrides-uri", fmt.Sprintf("fs://%s", filepath.ToSlash(t.TempDir())),
	})

	require.NoError(t, err)

	_, _, err = setup(ctx)
	assert.Error(t, err)
}

func TestSetupRequiresUserAgentForGeocoding(t *testing.T) {

	ctx := context.Background()

	fs := DefaultFlagSet(ctx)

	err := fs.Parse([]string{
		"-source", t.TempDir(),
		"-output", t.TempDir(),
		"-overrides-uri", fmt.Sprintf("fs://%s", filepath.ToSlash(t.TempDir())),
		"-enable-geocoding",
	})

	require.NoError(t, err)

	_, _, err = setup(ctx)
	assert.Error(t, err)
}

func TestSetupRejectsRemoteOutput(t *testing.T) {

	ctx := context.Background()

	fs := DefaultFlagSet(ctx)

	err := fs.Parse([]string{
		"-source", t.TempDir(),
		"-output", "s3://photomap?region=eu-central-1",
	})

	require.NoError(t, err)

	_, _, err = setup(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a local directory")
}

package artifacts

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/aaronland/go-string/random"
	"github.com/sfomuseum/go-dropbox-photomap/common"
	"gocloud.dev/blob"
)

//go:embed templates/*.html
var templates_fs embed.FS

// DEFAULT_INDEX_NAME is the default filename for the HTML page.
const DEFAULT_INDEX_NAME string = "index.html"

// type IndexOptions is a struct containing configuration options for the `WriteIndex` method.
type IndexOptions struct {
	// The page title.
	Title string
	// The URL of the GeoJSON file, relative to the page. Default is DEFAULT_GEOJSON_NAME.
	GeoJSON string
	// The key the page is written to. Default is DEFAULT_INDEX_NAME.
	Key string
	// The initial map center and zoom level, used until the features have loaded.
	Latitude  float64
	Longitude float64
	Zoom      int
	// Optional writer options, for example to set an ACL.
	WriterOptions *blob.WriterOptions
	Dryrun        bool
}

type indexVars struct {
	Title       string
	GeoJSON     string
	CacheBuster string
	Latitude    float64
	Longitude   float64
	Zoom        int
}

// RenderIndex returns the HTML page described by 'opts'.
func RenderIndex(opts *IndexOptions) ([]byte, error) {

	t, err := template.ParseFS(templates_fs, "templates/index.html")

	if err != nil {
		return nil, fmt.Errorf("Failed to parse template, %w", err)
	}

	rand_opts := random.DefaultOptions()
	rand_opts.AlphaNumeric = true
	rand_opts.Length = 12

	token, err := random.String(rand_opts)

	if err != nil {
		return nil, fmt.Errorf("Failed to generate cache-busting token, %w", err)
	}

	vars := indexVars{
		Title:       opts.Title,
		GeoJSON:     opts.GeoJSON,
		CacheBuster: token,
		Latitude:    opts.Latitude,
		Longitude:   opts.Longitude,
		Zoom:        opts.Zoom,
	}

	if vars.Title == "" {
		vars.Title = "Photos"
	}

	if vars.GeoJSON == "" {
		vars.GeoJSON = DEFAULT_GEOJSON_NAME
	}

	if vars.Zoom <= 0 {
		vars.Zoom = 2
	}

	var buf bytes.Buffer

	err = t.Execute(&buf, vars)

	if err != nil {
		return nil, fmt.Errorf("Failed to render template, %w", err)
	}

	return buf.Bytes(), nil
}

// WriteIndex renders the HTML page described by 'opts' and writes it to 'bucket'.
func WriteIndex(ctx context.Context, bucket *blob.Bucket, opts *IndexOptions) error {

	body, err := RenderIndex(opts)

	if err != nil {
		return err
	}

	key := opts.Key

	if key == "" {
		key = DEFAULT_INDEX_NAME
	}

	if opts.Dryrun {
		slog.Info("[dryrun] Write index", "key", key)
		return nil
	}

	wr_opts := opts.WriterOptions

	if wr_opts == nil {
		wr_opts = common.WriterOptions("text/html; charset=utf-8", false)
	}

	return common.WriteBytes(ctx, bucket, key, body, wr_opts)
}

// Package build implements the command-line and Lambda application for building a static map of geolocated
// photos.
package build

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sfomuseum/go-dropbox-photomap/artifacts"
	"github.com/sfomuseum/go-dropbox-photomap/common"
	"github.com/sfomuseum/go-dropbox-photomap/dropbox"
	"github.com/sfomuseum/go-dropbox-photomap/gazetteer"
	"github.com/sfomuseum/go-dropbox-photomap/geocode"
	"github.com/sfomuseum/go-dropbox-photomap/operations/build"
	"github.com/sfomuseum/go-dropbox-photomap/operations/gather"
	"github.com/sfomuseum/go-dropbox-photomap/overrides"
	"github.com/sfomuseum/go-dropbox-photomap/resolve"
	"github.com/sfomuseum/go-dropbox-photomap/thumbnail"
	"github.com/sfomuseum/go-flags/flagset"
	"github.com/whosonfirst/go-writer/v3"
	"gocloud.dev/blob"
)

// Run executes the "build photo map" application with a default `flag.FlagSet` instance.
func Run(ctx context.Context) error {
	fs := DefaultFlagSet(ctx)
	return RunWithFlagSet(ctx, fs)
}

// RunWithFlagSet executes the "build photo map" application with a `flag.FlagSet` instance defined by 'fs'.
func RunWithFlagSet(ctx context.Context, fs *flag.FlagSet) error {

	// A missing .env file is not an error
	godotenv.Load()

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "PHOTOMAP")

	if err != nil {
		return fmt.Errorf("Failed to set flags from environment variables, %w", err)
	}

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}

	opts, closer, err := setup(ctx)

	if err != nil {
		return err
	}

	defer closer()

	switch mode {
	case "cli":
		return runCommandLine(ctx, opts)
	case "lambda":
		return runLambda(ctx, opts)
	default:
		return fmt.Errorf("Invalid or unsupported mode")
	}
}

// setup derives the build options from the package-level flag values. Everything that can fail at
// startup fails here, before any images are listed.
func setup(ctx context.Context) (*build.BuildOptions, func(), error) {

	buckets := make([]*blob.Bucket, 0)

	closer := func() {
		for _, b := range buckets {
			b.Close()
		}
	}

	fail := func(err error) (*build.BuildOptions, func(), error) {
		closer()
		return nil, nil, err
	}

	if source == "" {
		return fail(fmt.Errorf("Missing -source"))
	}

	if output == "" {
		return fail(fmt.Errorf("Missing -output"))
	}

	// photos.geojson and index.html are always written side by side on local disk

	if strings.Contains(output, "://") {
		return fail(fmt.Errorf("Invalid -output '%s', must be a local directory", output))
	}

	output_bucket, err := common.OpenBucket(ctx, output)

	if err != nil {
		return fail(fmt.Errorf("Failed to open output, %w", err))
	}

	buckets = append(buckets, output_bucket)

	thumbnail_bucket := output_bucket

	if thumbnail_bucket_uri != "" {

		thumbnail_bucket, err = common.OpenBucket(ctx, thumbnail_bucket_uri)

		if err != nil {
			return fail(fmt.Errorf("Failed to open thumbnail bucket, %w", err))
		}

		buckets = append(buckets, thumbnail_bucket)
	}

	// Curator inputs

	r_uri := overrides_uri

	if r_uri == "" {

		cwd, err := os.Getwd()

		if err != nil {
			return fail(fmt.Errorf("Failed to determine current working directory, %w", err))
		}

		r_uri = fmt.Sprintf("fs://%s", filepath.ToSlash(cwd))
	}

	r, err := common.NewReader(ctx, r_uri)

	if err != nil {
		return fail(fmt.Errorf("Failed to create overrides reader, %w", err))
	}

	tbl, err := overrides.LoadTable(ctx, r, overrides_path)

	if err != nil {
		return fail(fmt.Errorf("Failed to load overrides, %w", err))
	}

	rules, err := overrides.LoadRules(ctx, r, rules_path)

	if err != nil {
		return fail(fmt.Errorf("Failed to load rules, %w", err))
	}

	gz := gazetteer.Default()

	if gazetteer_path != "" {

		extra, err := gazetteer.Load(ctx, r, gazetteer_path)

		if err != nil {
			return fail(fmt.Errorf("Failed to load gazetteer, %w", err))
		}

		gz = gz.Merge(extra)
	}

	slog.Debug("Loaded curator inputs", "overrides", tbl.Len(), "rules", rules.Len(), "gazetteer", gz.Len())

	// Geocoding

	var geocoder geocode.Geocoder
	var blob_cache *geocode.BlobCache

	if enable_geocoding || enable_reverse_geocoding {

		geocode.SetInterval(geocode_interval)

		client_opts := &geocode.ClientOptions{
			Endpoint:  nominatim_endpoint,
			UserAgent: user_agent,
			Timeout:   request_timeout,
		}

		client, err := geocode.NewClient(client_opts)

		if err != nil {
			return fail(fmt.Errorf("Failed to create geocoder, %w", err))
		}

		var cache geocode.Cache = geocode.NewMemoryCache()

		if geocode_cache {

			blob_cache = geocode.NewBlobCache(output_bucket, "")

			err = blob_cache.Load(ctx)

			if err != nil {
				return fail(fmt.Errorf("Failed to load geocode cache, %w", err))
			}

			cache = blob_cache
		}

		geocoder = geocode.NewCachingClient(client, cache, geocode.DEFAULT_PRECISION)
	}

	resolver_opts := &resolve.ResolverOptions{
		DeepRead:  enable_embedded_metadata,
		Overrides: tbl,
		Gazetteer: gz,
	}

	if enable_geocoding {
		resolver_opts.Geocoder = geocoder
	}

	// Listing and thumbnail providers

	var lister build.Lister

	providers := make([]thumbnail.Provider, 0)
	var link_provider thumbnail.LinkProvider

	dropbox_source, is_dropbox := dropbox.ParseSource(source)

	if is_dropbox {

		token, err := dropbox.ResolveToken(ctx, dropbox_access_token)

		if err != nil {
			return fail(err)
		}

		client_opts := &dropbox.ClientOptions{
			Token:   token,
			Source:  dropbox_source,
			Timeout: request_timeout,
		}

		client, err := dropbox.NewClient(ctx, client_opts)

		if err != nil {
			return fail(fmt.Errorf("Failed to create Dropbox client, %w", err))
		}

		lister = client
		providers = append(providers, client.PathThumbnails(), client.IDThumbnails())
		link_provider = client.Links()

	} else {

		source_bucket, err := common.OpenBucket(ctx, source)

		if err != nil {
			return fail(fmt.Errorf("Failed to open source, %w", err))
		}

		buckets = append(buckets, source_bucket)
		lister = gather.NewBucketLister(source_bucket)
	}

	providers = append(providers, &thumbnail.LocalProvider{MaxWidth: thumbnail_max_width})

	m_opts := &thumbnail.MaterializerOptions{
		Bucket:        thumbnail_bucket,
		Providers:     providers,
		LinkProvider:  link_provider,
		MaxWidth:      thumbnail_max_width,
		WriterOptions: common.WriterOptions("image/jpeg", thumbnail_public_read),
		Dryrun:        dryrun,
	}

	m, err := thumbnail.NewMaterializer(m_opts)

	if err != nil {
		return fail(fmt.Errorf("Failed to create thumbnail materializer, %w", err))
	}

	// Outputs

	abs_output, err := filepath.Abs(output)

	if err != nil {
		return fail(fmt.Errorf("Failed to derive absolute path for output, %w", err))
	}

	writer_uris := []string{
		fmt.Sprintf("fs://%s", filepath.ToSlash(abs_output)),
	}

	writer_uris = append(writer_uris, geojson_writer_uris...)

	writers := make([]writer.Writer, len(writer_uris))

	for idx, uri := range writer_uris {

		wr, err := common.NewWriter(ctx, uri)

		if err != nil {
			return fail(fmt.Errorf("Failed to create GeoJSON writer, %w", err))
		}

		writers[idx] = wr
	}

	geojson_wr, err := writer.NewMultiWriter(ctx, writers...)

	if err != nil {
		return fail(fmt.Errorf("Failed to create GeoJSON multi writer, %w", err))
	}

	opts := &build.BuildOptions{
		Lister:             lister,
		Resolver:           resolve.NewDefaultResolver(resolver_opts),
		Materializer:       m,
		ThumbnailURLPrefix: thumbnail_url_prefix,
		Rules:              rules,
		GeoJSONWriter:      geojson_wr,
		GeoJSONName:        geojson_name,
		IndexBucket:        output_bucket,
		Index: &artifacts.IndexOptions{
			Title: map_title,
		},
		Prune:           prune,
		ThumbnailBucket: thumbnail_bucket,
		GeocodeCache:    blob_cache,
		Workers:         workers,
		Dryrun:          dryrun,
	}

	if enable_reverse_geocoding {
		opts.ReverseGeocoder = geocoder
	}

	return opts, closer, nil
}

// Package build provides methods for turning a listing of images into a static map: a GeoJSON FeatureCollection,
// a thumbnails directory and an HTML page.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sfomuseum/go-dropbox-photomap/artifacts"
	"github.com/sfomuseum/go-dropbox-photomap/geocode"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/sfomuseum/go-dropbox-photomap/operations/remove"
	"github.com/sfomuseum/go-dropbox-photomap/overrides"
	"github.com/sfomuseum/go-dropbox-photomap/resolve"
	"github.com/sfomuseum/go-dropbox-photomap/thumbnail"
	"github.com/whosonfirst/go-writer/v3"
	"gocloud.dev/blob"
)

// DEFAULT_WORKERS is the default number of images processed concurrently.
const DEFAULT_WORKERS int = 4

// type Lister is an interface for enumerating the images to build a map from.
type Lister interface {
	List(context.Context) ([]*media.Record, error)
}

// type BuildOptions is a struct containing configuration options for the `Build` method.
type BuildOptions struct {
	// The source of images. Required.
	Lister Lister
	// The coordinate resolver. Required.
	Resolver *resolve.Resolver
	// An optional thumbnail materializer.
	Materializer *thumbnail.Materializer
	// An optional prefix prepended to thumbnail paths in feature properties, for thumbnails not written
	// alongside the HTML page.
	ThumbnailURLPrefix string
	// Optional title and description rules.
	Rules *overrides.Rules
	// An optional geocoder used to add place names to features.
	ReverseGeocoder geocode.Geocoder
	// The writer for the GeoJSON file. Required.
	GeoJSONWriter writer.Writer
	// Default is artifacts.DEFAULT_GEOJSON_NAME.
	GeoJSONName string
	// An optional bucket the HTML page is written to.
	IndexBucket *blob.Bucket
	// Optional configuration for the HTML page.
	Index *artifacts.IndexOptions
	// Delete thumbnails in ThumbnailBucket that no feature references.
	Prune           bool
	ThumbnailBucket *blob.Bucket
	// An optional cache saved at the end of the build.
	GeocodeCache *geocode.BlobCache
	// Default is DEFAULT_WORKERS.
	Workers int
	// Process everything but write nothing.
	Dryrun bool
}

type result struct {
	feature       *media.Feature
	thumbnail_key string
}

// Build lists, resolves and materializes images and writes the resulting artifacts. Per-image failures
// are logged and never abort the build; listing and write failures are returned as errors. Features are
// emitted in listing order.
func Build(ctx context.Context, opts *BuildOptions) (*Summary, error) {

	if opts.Lister == nil {
		return nil, fmt.Errorf("Missing lister")
	}

	if opts.Resolver == nil {
		return nil, fmt.Errorf("Missing resolver")
	}

	if opts.GeoJSONWriter == nil && !opts.Dryrun {
		return nil, fmt.Errorf("Missing GeoJSON writer")
	}

	logger := slog.Default()

	records, err := opts.Lister.List(ctx)

	if err != nil {
		return nil, fmt.Errorf("Failed to list images, %w", err)
	}

	logger.Info("Listed images", "count", len(records))

	results := process(ctx, opts, records)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("Build cancelled, %w", ctx.Err())
	}

	summary := NewSummary()

	features := make([]*media.Feature, 0)
	keep := make(map[string]bool)

	for _, r := range results {

		summary.Add(r.feature)

		if r.feature == nil {
			continue
		}

		features = append(features, r.feature)

		if r.thumbnail_key != "" {
			keep[r.thumbnail_key] = true
		}
	}

	geojson_name := opts.GeoJSONName

	if geojson_name == "" {
		geojson_name = artifacts.DEFAULT_GEOJSON_NAME
	}

	if opts.Dryrun {
		logger.Info("[dryrun] Write feature collection", "key", geojson_name, "count", len(features))
	} else {

		err = artifacts.WriteFeatureCollection(ctx, opts.GeoJSONWriter, geojson_name, features)

		if err != nil {
			return nil, err
		}
	}

	if opts.IndexBucket != nil {

		index_opts := opts.Index

		if index_opts == nil {
			index_opts = &artifacts.IndexOptions{}
		}

		if index_opts.GeoJSON == "" {
			index_opts.GeoJSON = geojson_name
		}

		index_opts.Dryrun = opts.Dryrun

		err = artifacts.WriteIndex(ctx, opts.IndexBucket, index_opts)

		if err != nil {
			return nil, fmt.Errorf("Failed to write index, %w", err)
		}
	}

	if opts.Prune && opts.ThumbnailBucket != nil {

		r := remove.NewRemoval(opts.ThumbnailBucket, thumbnail.DEFAULT_PREFIX)
		r.Dryrun = opts.Dryrun

		stale, err := r.RemoveStale(ctx, keep)

		if err != nil {
			logger.Warn("Failed to prune thumbnails", "error", err)
		} else {
			summary.Pruned = len(stale)
		}
	}

	if opts.GeocodeCache != nil && !opts.Dryrun {

		err = opts.GeocodeCache.Save(ctx)

		if err != nil {
			logger.Warn("Failed to save geocode cache", "error", err)
		}
	}

	return summary, nil
}

// process handles 'records' using up to opts.Workers goroutines. Results are stored by input index.
func process(ctx context.Context, opts *BuildOptions, records []*media.Record) []*result {

	workers := opts.Workers

	if workers <= 0 {
		workers = DEFAULT_WORKERS
	}

	results := make([]*result, len(records))

	idx_ch := make(chan int)
	wg := new(sync.WaitGroup)

	for i := 0; i < workers; i++ {

		wg.Add(1)

		go func() {

			defer wg.Done()

			for idx := range idx_ch {
				results[idx] = processRecord(ctx, opts, records[idx])
			}
		}()
	}

dispatch:
	for idx := range records {

		select {
		case <-ctx.Done():
			break dispatch
		case idx_ch <- idx:
			// pass
		}
	}

	close(idx_ch)
	wg.Wait()

	for idx, r := range results {
		if r == nil {
			results[idx] = &result{}
		}
	}

	return results
}

func processRecord(ctx context.Context, opts *BuildOptions, rec *media.Record) *result {

	defer rec.Release()

	logger := slog.Default()
	logger = logger.With("path", rec.DisplayPath)

	rsp := &result{}

	res, ok := opts.Resolver.Resolve(ctx, rec)

	if !ok {
		logger.Info("No coordinates, skipping")
		return rsp
	}

	f := &media.Feature{
		Point:  res.Point,
		Title:  rec.Name,
		Path:   rec.DisplayPath,
		Time:   res.Time,
		Source: res.Source,
	}

	if opts.Materializer != nil {

		t := opts.Materializer.Materialize(ctx, rec)

		if t.LocalPath != "" {
			rsp.thumbnail_key = t.LocalPath
			f.Thumbnail = thumbnailURL(opts.ThumbnailURLPrefix, t.LocalPath)
		}

		f.ExternalURL = t.ExternalURL
		f.ImageHash = t.ImageHash
	}

	rule, ok := opts.Rules.Match(rec.Name)

	if ok {

		if rule.Title != "" {
			f.Title = rule.Title
		}

		if rule.Description != "" {
			f.Description = rule.Description
		}
	}

	if opts.ReverseGeocoder != nil {

		place, ok, err := opts.ReverseGeocoder.Reverse(ctx, f.Point)

		if err != nil {
			logger.Warn("Failed to reverse geocode", "error", err)
		} else if ok {
			f.Place = place
		}
	}

	logger.Debug("Resolved", "source", f.Source, "latitude", f.Point.Lat(), "longitude", f.Point.Lon())

	rsp.feature = f
	return rsp
}

func thumbnailURL(prefix string, key string) string {

	if prefix == "" {
		return key
	}

	return strings.TrimRight(prefix, "/") + "/" + key
}

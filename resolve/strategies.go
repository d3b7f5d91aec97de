package resolve

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/sfomuseum/go-dropbox-photomap/gazetteer"
	"github.com/sfomuseum/go-dropbox-photomap/geocode"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/sfomuseum/go-dropbox-photomap/normalize"
	"github.com/sfomuseum/go-dropbox-photomap/overrides"
)

// type EmbeddedStrategy yields the location reported by the listing provider's media metadata or,
// if DeepRead is true, the GPS coordinates in the image's own EXIF data.
type EmbeddedStrategy struct {
	Strategy
	DeepRead bool
}

func (s *EmbeddedStrategy) Name() string {
	return "embedded"
}

func (s *EmbeddedStrategy) Mode() Mode {
	return MODE_FILL
}

func (s *EmbeddedStrategy) Resolve(ctx context.Context, rec *media.Record) (*Candidate, error) {

	if rec.Embedded.IsValid() {

		c := &Candidate{
			Point:  orb.Point{rec.Embedded.Longitude, rec.Embedded.Latitude},
			Time:   rec.Embedded.Time,
			Source: media.SOURCE_MEDIA_INFO,
		}

		return c, nil
	}

	if !s.DeepRead {
		return nil, nil
	}

	body, err := rec.Bytes(ctx)

	if err != nil {
		return nil, err
	}

	loc, err := media.ExifLocation(bytes.NewReader(body))

	if err != nil {
		slog.Debug("No EXIF location", "path", rec.DisplayPath, "error", err)
		return nil, nil
	}

	c := &Candidate{
		Point:  orb.Point{loc.Longitude, loc.Latitude},
		Time:   loc.Time,
		Source: media.SOURCE_EXIF,
	}

	return c, nil
}

// type OverrideStrategy yields the curator-supplied coordinate for an image's exact display path.
type OverrideStrategy struct {
	Strategy
	Table *overrides.Table
}

func (s *OverrideStrategy) Name() string {
	return string(media.SOURCE_OVERRIDE)
}

func (s *OverrideStrategy) Mode() Mode {
	return MODE_SUPERSEDE
}

func (s *OverrideStrategy) Resolve(ctx context.Context, rec *media.Record) (*Candidate, error) {

	pt, ok := s.Table.Lookup(rec.DisplayPath)

	if !ok {
		return nil, nil
	}

	c := &Candidate{
		Point:  pt,
		Source: media.SOURCE_OVERRIDE,
	}

	return c, nil
}

// type GazetteerStrategy yields the coordinate of the longest gazetteer key found in an image's
// normalized filename.
type GazetteerStrategy struct {
	Strategy
	Gazetteer *gazetteer.Gazetteer
}

func (s *GazetteerStrategy) Name() string {
	return string(media.SOURCE_FILENAME)
}

func (s *GazetteerStrategy) Mode() Mode {
	return MODE_FILL
}

func (s *GazetteerStrategy) Resolve(ctx context.Context, rec *media.Record) (*Candidate, error) {

	if s.Gazetteer == nil {
		return nil, nil
	}

	pt, key, ok := s.Gazetteer.Lookup(normalize.NormalizeFilename(rec.Name))

	if !ok {
		return nil, nil
	}

	slog.Debug("Gazetteer match", "path", rec.DisplayPath, "key", key)

	c := &Candidate{
		Point:  pt,
		Source: media.SOURCE_FILENAME,
	}

	return c, nil
}

// type GeocodeStrategy yields the first forward geocoding result for an image's cleaned-up filename.
type GeocodeStrategy struct {
	Strategy
	Geocoder geocode.Geocoder
}

func (s *GeocodeStrategy) Name() string {
	return string(media.SOURCE_GEOCODE)
}

func (s *GeocodeStrategy) Mode() Mode {
	return MODE_FILL
}

func (s *GeocodeStrategy) Resolve(ctx context.Context, rec *media.Record) (*Candidate, error) {

	q := normalize.Query(rec.Name)

	if q == "" {
		return nil, nil
	}

	pt, ok, err := s.Geocoder.Search(ctx, q)

	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	c := &Candidate{
		Point:  pt,
		Source: media.SOURCE_GEOCODE,
	}

	return c, nil
}

// type ResolverOptions is a struct containing configuration options for the `NewDefaultResolver` method.
type ResolverOptions struct {
	// Read EXIF data from image bytes when the listing provider reports no location.
	DeepRead bool
	// The override table. May be nil.
	Overrides *overrides.Table
	// The gazetteer. May be nil.
	Gazetteer *gazetteer.Gazetteer
	// An optional forward geocoder. If nil the geocode strategy is not used.
	Geocoder geocode.Geocoder
}

// NewDefaultResolver returns a new `Resolver` with the embedded, override, gazetteer and (optionally)
// geocode strategies, in that order.
func NewDefaultResolver(opts *ResolverOptions) *Resolver {

	strategies := []Strategy{
		&EmbeddedStrategy{DeepRead: opts.DeepRead},
		&OverrideStrategy{Table: opts.Overrides},
		&GazetteerStrategy{Gazetteer: opts.Gazetteer},
	}

	if opts.Geocoder != nil {
		strategies = append(strategies, &GeocodeStrategy{Geocoder: opts.Geocoder})
	}

	return NewResolver(strategies...)
}

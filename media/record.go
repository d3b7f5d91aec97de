package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// type Source is a label identifying which source yielded a record's coordinates.
type Source string

const (
	// Coordinates read from the embedded EXIF tags of the image itself.
	SOURCE_EXIF Source = "exif"
	// Coordinates supplied by the listing provider's own media metadata.
	SOURCE_MEDIA_INFO Source = "media_info"
	// Coordinates assigned by a curator in the override table.
	SOURCE_OVERRIDE Source = "override"
	// Coordinates guessed from a gazetteer match against the filename.
	SOURCE_FILENAME Source = "filename"
	// Coordinates returned by an external forward geocoding service.
	SOURCE_GEOCODE Source = "geocode"
)

// Sources returns the list of known sources in resolution priority order.
func Sources() []Source {
	return []Source{
		SOURCE_MEDIA_INFO,
		SOURCE_EXIF,
		SOURCE_OVERRIDE,
		SOURCE_FILENAME,
		SOURCE_GEOCODE,
	}
}

// type Location is a latitude, longitude and optional capture time. A nil *Location means no location.
type Location struct {
	Latitude  float64
	Longitude float64
	Time      *time.Time
}

// IsValid returns true if the location's latitude and longitude are finite and within range.
func (l *Location) IsValid() bool {

	if l == nil {
		return false
	}

	return ValidCoordinate(l.Latitude, l.Longitude)
}

// ValidCoordinate returns true if 'lat' and 'lon' are finite and within the WGS84 bounds.
func ValidCoordinate(lat float64, lon float64) bool {

	for _, v := range []float64{lat, lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	if lat < -90.0 || lat > 90.0 {
		return false
	}

	if lon < -180.0 || lon > 180.0 {
		return false
	}

	return true
}

// FetchFunc is a function that returns the raw bytes for a record.
type FetchFunc func(context.Context) ([]byte, error)

// ErrNoFetcher is returned by Record.Bytes when the record has no way to fetch its bytes.
var ErrNoFetcher = errors.New("Record has no fetcher")

// type Record is a single image discovered by a listing provider.
type Record struct {
	// The display name of the image, typically its filename.
	Name string `json:"name"`
	// The lower-cased path of the image, unique within a single listing.
	PathKey string `json:"path_key"`
	// The path of the image as displayed by the listing provider. This is the key used by the override table.
	DisplayPath string `json:"display_path"`
	// The listing provider's identifier for the image, if any.
	ID string `json:"id,omitempty"`
	// The mimetype of the image.
	MimeType string `json:"mimetype,omitempty"`
	// The location reported by the listing provider's media metadata, if any.
	Embedded *Location `json:"embedded,omitempty"`

	fetch    FetchFunc
	mu       sync.Mutex
	done     bool
	body     []byte
	fetchErr error
}

// NewRecord returns a new Record instance whose bytes are (lazily) fetched with 'fetch'.
func NewRecord(name string, path_key string, display_path string, fetch FetchFunc) *Record {

	r := &Record{
		Name:        name,
		PathKey:     path_key,
		DisplayPath: display_path,
		fetch:       fetch,
	}

	return r
}

// Bytes returns the raw bytes for the record. The bytes are fetched at most once until `Release` is
// called; subsequent calls return the same bytes (or error).
func (r *Record) Bytes(ctx context.Context) ([]byte, error) {

	if r.fetch == nil {
		return nil, ErrNoFetcher
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return r.body, r.fetchErr
	}

	body, err := r.fetch(ctx)

	if err != nil {
		r.fetchErr = fmt.Errorf("Failed to fetch %s, %w", r.DisplayPath, err)
	} else {
		r.body = body
	}

	r.done = true
	return r.body, r.fetchErr
}

// Release discards the record's cached bytes (and error). A later call to `Bytes` fetches them again.
func (r *Record) Release() {

	r.mu.Lock()
	defer r.mu.Unlock()

	r.done = false
	r.body = nil
	r.fetchErr = nil
}

// Fetched returns true if the record's bytes have been (successfully) retrieved and not released.
func (r *Record) Fetched() bool {

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.body != nil
}

// CacheKey returns the key used to derive stable, per-record artifact names. This is the record's
// PathKey or, if empty, its ID.
func (r *Record) CacheKey() string {

	if r.PathKey != "" {
		return r.PathKey
	}

	return r.ID
}

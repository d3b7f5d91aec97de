// Package geocode provides a rate-limited Nominatim client and caches for forward and reverse geocoding lookups.
package geocode

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/time/rate"
)

// DEFAULT_ENDPOINT is the public Nominatim endpoint.
const DEFAULT_ENDPOINT string = "https://nominatim.openstreetmap.org"

// DEFAULT_INTERVAL is the minimum interval between geocoding requests for the whole process.
const DEFAULT_INTERVAL time.Duration = time.Second

// DEFAULT_TIMEOUT is the per-request timeout.
const DEFAULT_TIMEOUT time.Duration = 10 * time.Second

// DEFAULT_PRECISION is the number of decimal places reverse lookup keys are rounded to.
const DEFAULT_PRECISION int = 4

// type Geocoder is an interface for forward and reverse geocoding. A lookup that finds nothing
// returns false and a nil error.
type Geocoder interface {
	// Search returns the first point matching 'query'.
	Search(context.Context, string) (orb.Point, bool, error)
	// Reverse returns a display name for 'pt'.
	Reverse(context.Context, orb.Point) (string, bool, error)
}

// ErrUnavailable is returned when the geocoder is rate limiting requests or failing (HTTP 429 or 5xx).
// Callers treat it as no contribution; it is never cached.
var ErrUnavailable = errors.New("Geocoder unavailable")

var default_limiter *rate.Limiter
var default_limiter_once sync.Once

// DefaultLimiter returns the process-global limiter shared by every Client that does not supply its own.
// It allows one request per DEFAULT_INTERVAL with a burst of 1.
func DefaultLimiter() *rate.Limiter {

	default_limiter_once.Do(func() {
		default_limiter = rate.NewLimiter(rate.Every(DEFAULT_INTERVAL), 1)
	})

	return default_limiter
}

// SetInterval updates the process-global limiter to allow one request per 'd'. Values <= 0 are ignored.
func SetInterval(d time.Duration) {

	if d <= 0 {
		return
	}

	DefaultLimiter().SetLimit(rate.Every(d))
}

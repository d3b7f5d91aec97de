package geocode

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// type CachingClient implements the `Geocoder` interface by consulting a `Cache` before delegating to
// another `Geocoder`. Errors from the underlying geocoder are not cached.
type CachingClient struct {
	geocoder  Geocoder
	cache     Cache
	precision int
}

// NewCachingClient returns a new `CachingClient` for 'g' backed by 'c'. Reverse lookups are keyed on
// coordinates rounded to 'precision' decimal places; values < 0 mean DEFAULT_PRECISION.
func NewCachingClient(g Geocoder, c Cache, precision int) *CachingClient {

	if precision < 0 {
		precision = DEFAULT_PRECISION
	}

	return &CachingClient{
		geocoder:  g,
		cache:     c,
		precision: precision,
	}
}

// SearchKey returns the cache key for a forward lookup of 'query'.
func SearchKey(query string) string {
	return fmt.Sprintf("search:%s", query)
}

// ReverseKey returns the cache key for a reverse lookup of 'pt', rounded to 'precision' decimal places.
func ReverseKey(pt orb.Point, precision int) string {

	if precision < 0 {
		precision = DEFAULT_PRECISION
	}

	lat := round(pt.Lat(), precision)
	lon := round(pt.Lon(), precision)

	return fmt.Sprintf("reverse:%s,%s", strconv.FormatFloat(lat, 'f', precision, 64), strconv.FormatFloat(lon, 'f', precision, 64))
}

func round(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

// Search returns a cached result for 'query' or delegates to the underlying geocoder.
func (c *CachingClient) Search(ctx context.Context, query string) (orb.Point, bool, error) {

	key := SearchKey(query)

	e, ok := c.cache.Get(key)

	if ok {
		return orb.Point{e.Longitude, e.Latitude}, e.Found, nil
	}

	pt, found, err := c.geocoder.Search(ctx, query)

	if err != nil {
		return orb.Point{}, false, err
	}

	e = Entry{Found: found}

	if found {
		e.Latitude = pt.Lat()
		e.Longitude = pt.Lon()
	}

	c.cache.Set(key, e)
	return pt, found, nil
}

// Reverse returns a cached result for 'pt' or delegates to the underlying geocoder.
func (c *CachingClient) Reverse(ctx context.Context, pt orb.Point) (string, bool, error) {

	key := ReverseKey(pt, c.precision)

	e, ok := c.cache.Get(key)

	if ok {
		return e.Name, e.Found, nil
	}

	name, found, err := c.geocoder.Reverse(ctx, pt)

	if err != nil {
		return "", false, err
	}

	c.cache.Set(key, Entry{Found: found, Name: name})
	return name, found, nil
}

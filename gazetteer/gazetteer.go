// Package gazetteer provides a static lookup table of normalized place names mapped to [longitude, latitude] coordinates.
package gazetteer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sfomuseum/go-dropbox-photomap/normalize"
	"github.com/tidwall/gjson"
	"github.com/whosonfirst/go-reader/v2"
)

// type Gazetteer is an immutable mapping of normalized place names to coordinates.
type Gazetteer struct {
	entries map[string]orb.Point
	// keys are sorted longest first, then alphabetically, so that Lookup can stop at the first match.
	keys []string
}

// New returns a new Gazetteer for 'entries'. Keys are passed through normalize.Normalize; empty keys are ignored.
func New(entries map[string]orb.Point) *Gazetteer {

	g := &Gazetteer{
		entries: make(map[string]orb.Point),
	}

	for k, pt := range entries {

		k = normalize.Normalize(k)

		if k == "" {
			continue
		}

		g.entries[k] = pt
	}

	g.keys = make([]string, 0, len(g.entries))

	for k := range g.entries {
		g.keys = append(g.keys, k)
	}

	sort.Slice(g.keys, func(i, j int) bool {

		a := g.keys[i]
		b := g.keys[j]

		if len(a) != len(b) {
			return len(a) > len(b)
		}

		return a < b
	})

	return g
}

// Default returns a Gazetteer instance populated with the built-in place names.
func Default() *Gazetteer {
	return New(default_entries)
}

// Merge returns a new Gazetteer containing the entries of 'g' and 'other'. Entries in 'other' take precedence.
func (g *Gazetteer) Merge(other *Gazetteer) *Gazetteer {

	entries := make(map[string]orb.Point)

	for k, pt := range g.entries {
		entries[k] = pt
	}

	if other != nil {
		for k, pt := range other.entries {
			entries[k] = pt
		}
	}

	return New(entries)
}

// Len returns the number of entries in the gazetteer.
func (g *Gazetteer) Len() int {
	return len(g.entries)
}

// Lookup returns the coordinate for the longest gazetteer key that is a substring of 'normalized_name',
// along with the matching key. Keys of equal length are compared alphabetically.
func (g *Gazetteer) Lookup(normalized_name string) (orb.Point, string, bool) {

	if normalized_name == "" {
		return orb.Point{}, "", false
	}

	for _, k := range g.keys {

		if !strings.Contains(normalized_name, k) {
			continue
		}

		return g.entries[k], k, true
	}

	return orb.Point{}, "", false
}

// Load reads a JSON dictionary of place names mapped to [longitude, latitude] pairs from 'path' using 'r'.
func Load(ctx context.Context, r reader.Reader, path string) (*Gazetteer, error) {

	fh, err := r.Read(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	body, err := io.ReadAll(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", path, err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("Invalid JSON in %s", path)
	}

	entries := make(map[string]orb.Point)

	var parse_err error

	gjson.ParseBytes(body).ForEach(func(k gjson.Result, v gjson.Result) bool {

		coords := v.Array()

		if len(coords) != 2 {
			parse_err = fmt.Errorf("Invalid coordinates for '%s', expected [lon, lat]", k.String())
			return false
		}

		entries[k.String()] = orb.Point{coords[0].Float(), coords[1].Float()}
		return true
	})

	if parse_err != nil {
		return nil, parse_err
	}

	return New(entries), nil
}

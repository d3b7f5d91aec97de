package overrides

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
	"github.com/whosonfirst/go-reader/v2"
)

// type Table maps the exact display path of an image to a curator-supplied coordinate. A Table is
// read-only once loaded and safe for concurrent use.
type Table struct {
	points map[string]orb.Point
}

// NewTable returns a new Table for 'points', keyed by exact display path. Points are [longitude, latitude].
func NewTable(points map[string]orb.Point) *Table {

	t := &Table{
		points: make(map[string]orb.Point),
	}

	for k, pt := range points {
		t.points[k] = pt
	}

	return t
}

// EmptyTable returns a Table with no entries.
func EmptyTable() *Table {
	return NewTable(nil)
}

// Lookup returns the override for 'display_path'. The match is exact (case and all).
func (t *Table) Lookup(display_path string) (orb.Point, bool) {

	if t == nil {
		return orb.Point{}, false
	}

	pt, ok := t.points[display_path]
	return pt, ok
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {

	if t == nil {
		return 0
	}

	return len(t.points)
}

// LoadTable reads a JSON dictionary mapping display paths to { "lat": number, "lon": number } from 'path'
// using 'r'. A missing file yields an empty Table. Entries without numeric "lat" and "lon" properties are
// skipped. Invalid JSON is an error.
func LoadTable(ctx context.Context, r reader.Reader, path string) (*Table, error) {

	body, err := readOptional(ctx, r, path)

	if err != nil {
		return nil, err
	}

	if body == nil {
		return EmptyTable(), nil
	}

	return ParseTable(body)
}

// ParseTable parses 'body' as a JSON-encoded override table.
func ParseTable(body []byte) (*Table, error) {

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("Invalid JSON for override table")
	}

	doc := gjson.ParseBytes(body)

	if !doc.IsObject() {
		return nil, fmt.Errorf("Override table must be a JSON object")
	}

	points := make(map[string]orb.Point)

	doc.ForEach(func(k gjson.Result, v gjson.Result) bool {

		path := k.String()

		lat_rsp := v.Get("lat")
		lon_rsp := v.Get("lon")

		if lat_rsp.Type != gjson.Number || lon_rsp.Type != gjson.Number {
			slog.Warn("Override is missing numeric lat/lon properties, skipping", "path", path)
			return true
		}

		points[path] = orb.Point{lon_rsp.Float(), lat_rsp.Float()}
		return true
	})

	return NewTable(points), nil
}

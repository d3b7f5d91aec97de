// Package artifacts provides methods for writing the static output of a build: a GeoJSON FeatureCollection and
// the HTML page that renders it.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/tidwall/sjson"
	"github.com/whosonfirst/go-ioutil"
	"github.com/whosonfirst/go-writer/v3"
)

// DEFAULT_GEOJSON_NAME is the default filename for the FeatureCollection.
const DEFAULT_GEOJSON_NAME string = "photos.geojson"

// FeatureCollection returns a GeoJSON FeatureCollection of Point features for 'features', in order.
func FeatureCollection(features []*media.Feature) *geojson.FeatureCollection {

	fc := geojson.NewFeatureCollection()

	for _, f := range features {

		gf := geojson.NewFeature(f.Point)
		gf.Properties = f.Properties()

		fc.Append(gf)
	}

	return fc
}

// MarshalFeatureCollection returns the pretty-printed GeoJSON encoding of 'features'. Output is stable
// for the same input: properties are sorted and a "metadata" member summarizes the collection.
func MarshalFeatureCollection(features []*media.Feature) ([]byte, error) {

	fc := FeatureCollection(features)

	body, err := json.Marshal(fc)

	if err != nil {
		return nil, fmt.Errorf("Failed to marshal feature collection, %w", err)
	}

	sources := make(map[media.Source]int)

	for _, f := range features {
		sources[f.Source] += 1
	}

	body, err = sjson.SetBytes(body, "metadata.count", len(features))

	if err != nil {
		return nil, fmt.Errorf("Failed to assign count, %w", err)
	}

	for _, s := range media.Sources() {

		count, ok := sources[s]

		if !ok {
			continue
		}

		path := fmt.Sprintf("metadata.sources.%s", s)

		body, err = sjson.SetBytes(body, path, count)

		if err != nil {
			return nil, fmt.Errorf("Failed to assign %s, %w", path, err)
		}
	}

	var out bytes.Buffer

	err = json.Indent(&out, body, "", "  ")

	if err != nil {
		return nil, fmt.Errorf("Failed to indent feature collection, %w", err)
	}

	out.WriteString("\n")
	return out.Bytes(), nil
}

// WriteFeatureCollection writes the GeoJSON encoding of 'features' to 'key' using 'wr'. The file is always
// written whole.
func WriteFeatureCollection(ctx context.Context, wr writer.Writer, key string, features []*media.Feature) error {

	body, err := MarshalFeatureCollection(features)

	if err != nil {
		return err
	}

	fh, err := ioutil.NewReadSeekCloser(bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("Failed to create ReadSeekCloser, %w", err)
	}

	defer fh.Close()

	_, err = wr.Write(ctx, key, fh)

	if err != nil {
		return fmt.Errorf("Failed to write %s, %w", key, err)
	}

	return nil
}

// Package photomap builds a static map of geolocated photos from a Dropbox folder (or any gocloud.dev/blob bucket).
// Each image is assigned a coordinate from its embedded metadata, a curated override table, a gazetteer of place
// names found in its filename or, optionally, a Nominatim geocoder. The output is a GeoJSON FeatureCollection, a
// directory of thumbnails and an HTML page that renders them on a Leaflet map.
package photomap

package build

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sfomuseum/go-dropbox-photomap/artifacts"
	"github.com/sfomuseum/go-dropbox-photomap/geocode"
	"github.com/sfomuseum/go-dropbox-photomap/operations/build"
	"github.com/sfomuseum/go-dropbox-photomap/thumbnail"
	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-flags/multi"
)

var mode string

var source string
var dropbox_access_token string

var output string

var geojson_writer_uris multi.MultiString
var geojson_name string

var thumbnail_bucket_uri string
var thumbnail_url_prefix string
var thumbnail_public_read bool
var thumbnail_max_width int

var overrides_uri string
var overrides_path string
var rules_path string
var gazetteer_path string

var map_title string

var enable_embedded_metadata bool
var enable_geocoding bool
var enable_reverse_geocoding bool

var nominatim_endpoint string
var user_agent string
var geocode_interval time.Duration
var request_timeout time.Duration
var geocode_cache bool

var workers int
var prune bool
var dryrun bool
var verbose bool

// DefaultFlagSet returns a `flag.FlagSet` instance with the flags used to build a photo map.
func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("photomap")

	fs.StringVar(&mode, "mode", "cli", "Valid options are: cli, lambda.")

	fs.StringVar(&source, "source", "", "A Dropbox shared folder link, a dropbox:///path/to/folder URI or a valid gocloud.dev/blob bucket URI.")
	fs.StringVar(&dropbox_access_token, "dropbox-access-token", "", "A Dropbox API access token or a valid gocloud.dev/runtimevar URI that resolves to one.")

	fs.StringVar(&output, "output", "photomap", "The local directory the map is written to. It will be created if it does not exist.")

	fs.Var(&geojson_writer_uris, "geojson-writer-uri", "Zero or more additional whosonfirst/go-writer URIs to publish the GeoJSON file to.")
	fs.StringVar(&geojson_name, "geojson-name", artifacts.DEFAULT_GEOJSON_NAME, "The filename of the GeoJSON file.")

	fs.StringVar(&thumbnail_bucket_uri, "thumbnail-bucket-uri", "", "An optional gocloud.dev/blob bucket URI to write thumbnails to. Default is the output directory.")
	fs.StringVar(&thumbnail_url_prefix, "thumbnail-url-prefix", "", "An optional URL prefix for thumbnails written to a bucket other than the output directory.")
	fs.BoolVar(&thumbnail_public_read, "thumbnail-public-read", false, "Assign a public-read ACL to thumbnails written to S3.")
	fs.IntVar(&thumbnail_max_width, "thumbnail-max-width", thumbnail.DEFAULT_MAX_WIDTH, "The maximum width, in pixels, of thumbnails.")

	fs.StringVar(&overrides_uri, "overrides-uri", "", "A valid whosonfirst/go-reader URI for reading the overrides table and rules. Default is the current working directory.")
	fs.StringVar(&overrides_path, "overrides-path", "overrides.json", "The path of a JSON dictionary mapping Dropbox display paths to {\"lat\": ..., \"lon\": ...} objects.")
	fs.StringVar(&rules_path, "rules-path", "rules.json", "The path of a JSON list of title and description rules.")
	fs.StringVar(&gazetteer_path, "gazetteer-path", "", "The path of an optional JSON dictionary of additional gazetteer entries.")

	fs.StringVar(&map_title, "title", "Photos", "The title of the HTML page.")

	fs.BoolVar(&enable_embedded_metadata, "enable-embedded-metadata", true, "Read GPS coordinates from EXIF data when the source does not report a location.")
	fs.BoolVar(&enable_geocoding, "enable-geocoding", false, "Forward geocode filenames that could not be resolved any other way.")
	fs.BoolVar(&enable_reverse_geocoding, "enable-reverse-geocoding", false, "Add reverse geocoded place names to features.")

	fs.StringVar(&nominatim_endpoint, "nominatim-endpoint", geocode.DEFAULT_ENDPOINT, "The root URL of a Nominatim API.")
	fs.StringVar(&user_agent, "user-agent", "", "The User-Agent header sent to the Nominatim API. Required if geocoding is enabled.")
	fs.DurationVar(&geocode_interval, "geocode-interval", geocode.DEFAULT_INTERVAL, "The minimum interval between Nominatim requests.")
	fs.DurationVar(&request_timeout, "request-timeout", geocode.DEFAULT_TIMEOUT, "The timeout for individual network requests.")
	fs.BoolVar(&geocode_cache, "geocode-cache", true, "Persist geocoding results in the output directory between runs.")

	fs.IntVar(&workers, "workers", build.DEFAULT_WORKERS, "The number of images to process concurrently.")
	fs.BoolVar(&prune, "prune", false, "Remove thumbnails not referenced by the current map.")
	fs.BoolVar(&dryrun, "dryrun", false, "Process images but do not write anything.")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Build a static map of geolocated photos from a Dropbox folder.\n")
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}

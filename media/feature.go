package media

import (
	"time"

	"github.com/paulmach/orb"
)

// type Feature is the output unit of a build: an image whose coordinates have been resolved.
type Feature struct {
	// The [longitude, latitude] coordinate of the image.
	Point orb.Point
	// The title of the image (its display name, unless overridden by a content rule).
	Title string
	// The (display) path of the image in the source listing.
	Path string
	// The capture time of the image, if known.
	Time *time.Time
	// The source which yielded the image's coordinates.
	Source Source
	// The path of a local thumbnail, relative to the output root.
	Thumbnail string
	// A URL for the image hosted elsewhere, used when no local thumbnail exists (or for full-size views).
	ExternalURL string
	// An optional description assigned by a content rule.
	Description string
	// An optional place name derived by reverse geocoding.
	Place string
	// The perceptual (average) hash of the thumbnail, if one was generated.
	ImageHash string
}

// Properties returns the GeoJSON properties dictionary for 'f'. Empty values are omitted.
func (f *Feature) Properties() map[string]interface{} {

	props := map[string]interface{}{
		"title":  f.Title,
		"source": string(f.Source),
	}

	optional := map[string]string{
		"path":        f.Path,
		"thumbnail":   f.Thumbnail,
		"url":         f.ExternalURL,
		"description": f.Description,
		"place":       f.Place,
		"imagehash":   f.ImageHash,
	}

	for k, v := range optional {

		if v == "" {
			continue
		}

		props[k] = v
	}

	if f.Time != nil {
		props["time"] = f.Time.UTC().Format(time.RFC3339)
	}

	return props
}

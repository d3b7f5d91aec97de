package media

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

var register_once sync.Once

func registerParsers() {
	register_once.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})
}

// DecodeExif decodes the EXIF data in 'r'.
func DecodeExif(r io.Reader) (*exif.Exif, error) {

	registerParsers()

	x, err := exif.Decode(r)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode EXIF data, %w", err)
	}

	return x, nil
}

// ExifLocation returns the GPS location (and capture time, if present) encoded in the EXIF data of 'r'.
func ExifLocation(r io.Reader) (*Location, error) {

	x, err := DecodeExif(r)

	if err != nil {
		return nil, err
	}

	lat, lon, err := x.LatLong()

	if err != nil {
		return nil, fmt.Errorf("Failed to derive GPS coordinates, %w", err)
	}

	loc := &Location{
		Latitude:  lat,
		Longitude: lon,
	}

	if !loc.IsValid() {
		return nil, fmt.Errorf("Invalid GPS coordinates (%f, %f)", lat, lon)
	}

	// Null Island is what a lot of cameras write when they don't have a fix

	if lat == 0.0 && lon == 0.0 {
		return nil, fmt.Errorf("Empty GPS coordinates")
	}

	t, ok := ExifTime(x)

	if ok {
		loc.Time = &t
	}

	return loc, nil
}

// ExifTime returns the capture time encoded in 'x', preferring the DateTimeOriginal tag.
func ExifTime(x *exif.Exif) (time.Time, bool) {

	tag, err := x.Get(exif.DateTimeOriginal)

	if err == nil {

		str_dt, err := tag.StringVal()

		if err == nil {

			str_dt = strings.Trim(str_dt, "\" \x00")

			// remember these datetime formats are Go's internal cray-cray
			// for working with time...

			t, err := time.ParseInLocation("2006:01:02 15:04:05", str_dt, time.UTC)

			if err == nil {
				return t, true
			}
		}
	}

	t, err := x.DateTime()

	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// ExifOrientation returns the EXIF orientation tag value for 'r', or 1 (normal) if it is absent.
func ExifOrientation(r io.Reader) int {

	x, err := DecodeExif(r)

	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)

	if err != nil {
		return 1
	}

	v, err := tag.Int(0)

	if err != nil || v < 1 || v > 8 {
		return 1
	}

	return v
}

// Package rotate provides methods for rotating images, including correcting the orientation reported by EXIF data.
package rotate

import (
	"errors"
	"image"
	"image/color"

	"github.com/aaronland/go-image-tools/imaging"
)

// Orientation values as defined by the EXIF specification.
const (
	ORIENTATION_NORMAL     int = 1
	ORIENTATION_FLIP_H     int = 2
	ORIENTATION_ROTATE180  int = 3
	ORIENTATION_FLIP_V     int = 4
	ORIENTATION_TRANSPOSE  int = 5
	ORIENTATION_ROTATE90   int = 6
	ORIENTATION_TRANSVERSE int = 7
	ORIENTATION_ROTATE270  int = 8
)

// Rotate rotates 'im' counter-clockwise by 'degrees'.
func Rotate(im image.Image, degrees int) (image.Image, error) {

	if degrees == 0 {
		return nil, errors.New("Nothing to rotate")
	}

	if degrees < 0 || degrees > 360 {
		return nil, errors.New("Invalid rotation")
	}

	if degrees == 360 {
		return im, nil
	}

	return imaging.Rotate(im, float64(degrees), color.White), nil
}

// Degrees returns the counter-clockwise rotation needed to display an image with EXIF 'orientation'
// upright. Mirrored and unknown orientations return 0.
func Degrees(orientation int) int {

	switch orientation {
	case ORIENTATION_ROTATE180:
		return 180
	case ORIENTATION_ROTATE90:
		return 270
	case ORIENTATION_ROTATE270:
		return 90
	default:
		return 0
	}
}

// AutoOrient returns 'im' rotated and (for mirrored orientations) flipped so that it displays upright
// given its EXIF 'orientation'. Unknown orientations return 'im' unchanged.
func AutoOrient(im image.Image, orientation int) image.Image {

	switch orientation {
	case ORIENTATION_FLIP_H:
		return imaging.FlipH(im)
	case ORIENTATION_ROTATE180:
		return imaging.Rotate180(im)
	case ORIENTATION_FLIP_V:
		return imaging.FlipV(im)
	case ORIENTATION_TRANSPOSE:
		return imaging.Transpose(im)
	case ORIENTATION_ROTATE90:
		return imaging.Rotate270(im)
	case ORIENTATION_TRANSVERSE:
		return imaging.Transverse(im)
	case ORIENTATION_ROTATE270:
		return imaging.Rotate90(im)
	default:
		return im
	}
}

// Package normalize provides methods for deriving matchable text keys from image filenames.
package normalize

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var re_separators = regexp.MustCompile(`[_\-.]+`)

var re_whitespace = regexp.MustCompile(`\s+`)

var re_digits = regexp.MustCompile(`\d+`)

// camera_prefixes are filename tokens added by cameras and phones that never describe a place.
var camera_prefixes = map[string]bool{
	"img":        true,
	"dsc":        true,
	"dscn":       true,
	"dscf":       true,
	"pxl":        true,
	"mvimg":      true,
	"pano":       true,
	"vid":        true,
	"wp":         true,
	"photo":      true,
	"screenshot": true,
}

// Normalize lowercases 's', applies Unicode canonical decomposition and removes any combining
// diacritical marks. The result is trimmed of leading and trailing whitespace.
func Normalize(s string) string {

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	str, _, err := transform.String(t, s)

	if err != nil {
		str = s
	}

	str = strings.ToLower(str)
	return strings.TrimSpace(str)
}

// NormalizeFilename derives the gazetteer matching key for 'name'. The directory and file extension
// are removed, separator characters ("_", "-", ".") become spaces and the result is passed through Normalize.
func NormalizeFilename(name string) string {

	base := filepath.Base(name)

	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)

	base = re_separators.ReplaceAllString(base, " ")
	base = re_whitespace.ReplaceAllString(base, " ")

	return Normalize(base)
}

// Query derives a free-text geocoding query from 'name'. It is NormalizeFilename with runs of
// digits (camera counters, dates) and camera prefixes like "img" or "dsc" removed.
func Query(name string) string {

	q := NormalizeFilename(name)
	q = re_digits.ReplaceAllString(q, " ")

	words := make([]string, 0)

	for _, w := range strings.Fields(q) {

		if camera_prefixes[w] {
			continue
		}

		words = append(words, w)
	}

	return strings.Join(words, " ")
}

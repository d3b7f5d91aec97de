package build

import (
	"log/slog"

	"github.com/sfomuseum/go-dropbox-photomap/media"
)

// type Summary reports the outcome of a single build.
type Summary struct {
	// The number of images listed.
	Total int `json:"total"`
	// The number of images with a resolved coordinate.
	Resolved int `json:"resolved"`
	// The number of resolved images per coordinate source.
	BySource map[media.Source]int `json:"by_source"`
	// The number of images with a locally written thumbnail.
	Thumbnails int `json:"thumbnails"`
	// The number of images that fell back to an external image URL.
	ExternalLinks int `json:"external_links"`
	// The number of images left off the map because no coordinate could be resolved.
	Skipped int `json:"skipped"`
	// The number of stale thumbnails removed.
	Pruned int `json:"pruned"`
}

// NewSummary returns a new, empty `Summary` instance.
func NewSummary() *Summary {

	s := &Summary{
		BySource: make(map[media.Source]int),
	}

	return s
}

// Add tallies a single processed image.
func (s *Summary) Add(f *media.Feature) {

	s.Total += 1

	if f == nil {
		s.Skipped += 1
		return
	}

	s.Resolved += 1
	s.BySource[f.Source] += 1

	if f.Thumbnail != "" {
		s.Thumbnails += 1
	} else if f.ExternalURL != "" {
		s.ExternalLinks += 1
	}
}

// Log reports the summary using 'logger'.
func (s *Summary) Log(logger *slog.Logger) {

	args := []any{
		"total", s.Total,
		"resolved", s.Resolved,
		"skipped", s.Skipped,
		"thumbnails", s.Thumbnails,
		"external_links", s.ExternalLinks,
		"pruned", s.Pruned,
	}

	for _, src := range media.Sources() {
		args = append(args, string(src), s.BySource[src])
	}

	logger.Info("Build complete", args...)
}

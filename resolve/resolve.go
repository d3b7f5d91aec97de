// Package resolve provides methods for deriving a single coordinate for an image from a prioritized chain of strategies.
package resolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/paulmach/orb"
	"github.com/sfomuseum/go-dropbox-photomap/media"
)

// type Mode determines when a `Strategy` is consulted.
type Mode int

const (
	// MODE_FILL strategies are only consulted while no coordinates have been resolved.
	MODE_FILL Mode = iota
	// MODE_SUPERSEDE strategies are always consulted. A yield replaces any previously resolved
	// coordinates but not the capture time.
	MODE_SUPERSEDE
)

// type Candidate is a coordinate (and optional capture time) proposed by a `Strategy`.
type Candidate struct {
	Point  orb.Point
	Time   *time.Time
	Source media.Source
}

// type Strategy is an interface for proposing a coordinate for an image. Strategies that have nothing to
// contribute return a nil `Candidate` and a nil error.
type Strategy interface {
	// Name is a label used in logging and diagnostics.
	Name() string
	// Mode determines when the strategy is consulted.
	Mode() Mode
	// Resolve returns a candidate for 'rec', if any.
	Resolve(context.Context, *media.Record) (*Candidate, error)
}

// type Resolution is the outcome of resolving a single image.
type Resolution struct {
	Point  orb.Point
	Time   *time.Time
	Source media.Source
	// The names of the strategies that were consulted, in order.
	Attempted []string
}

// type Resolver folds a list of `Strategy` instances, in order, into a single `Resolution`. A Resolver
// is safe for concurrent use provided its strategies are.
type Resolver struct {
	strategies []Strategy
}

// NewResolver returns a new `Resolver` for 'strategies'. Order is significant.
func NewResolver(strategies ...Strategy) *Resolver {

	r := &Resolver{
		strategies: strategies,
	}

	return r
}

// Resolve derives a coordinate for 'rec'. It returns false if no strategy yielded a valid coordinate.
// Strategy errors are logged and otherwise treated as if the strategy had nothing to contribute.
func (r *Resolver) Resolve(ctx context.Context, rec *media.Record) (*Resolution, bool) {

	logger := slog.Default()
	logger = logger.With("path", rec.DisplayPath)

	var res *Resolution
	attempted := make([]string, 0)

	for _, s := range r.strategies {

		if s.Mode() == MODE_FILL && res != nil {
			continue
		}

		attempted = append(attempted, s.Name())

		c, err := s.Resolve(ctx, rec)

		if err != nil {
			logger.Warn("Strategy failed", "strategy", s.Name(), "error", err)
			continue
		}

		if c == nil {
			continue
		}

		if !media.ValidCoordinate(c.Point.Lat(), c.Point.Lon()) {
			logger.Warn("Strategy returned invalid coordinates, discarding", "strategy", s.Name(), "latitude", c.Point.Lat(), "longitude", c.Point.Lon())
			continue
		}

		logger.Debug("Strategy yielded coordinates", "strategy", s.Name(), "source", c.Source)

		if res == nil {

			res = &Resolution{
				Point:  c.Point,
				Time:   c.Time,
				Source: c.Source,
			}

			continue
		}

		res.Point = c.Point
		res.Source = c.Source

		if res.Time == nil {
			res.Time = c.Time
		}
	}

	if res == nil {
		logger.Debug("Failed to resolve coordinates", "attempted", attempted)
		return nil, false
	}

	res.Attempted = attempted
	return res, true
}

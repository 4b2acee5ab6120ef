// Package service holds the logic composed on top of repositories: seance
// availability and reservation publishing.
package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-catalog/internal/model"
	"github.com/iliyamo/cinema-catalog/internal/repository"
)

// SeanceFinder answers whether any seance references a movie uid.
type SeanceFinder interface {
	HasSeances(ctx context.Context, movieUID string) (bool, error)
}

// Availability derives hasReservationsAvailable for movies.  A failed or
// timed-out lookup counts as "no seances"; it never fails the request.
type Availability struct {
	finder  SeanceFinder
	timeout time.Duration
	fanOut  int
}

// NewAvailability builds a composer with a per-lookup timeout and a bound on
// concurrent lookups for lists.
func NewAvailability(finder SeanceFinder, timeout time.Duration, fanOut int) *Availability {
	if fanOut < 1 {
		fanOut = 1
	}
	return &Availability{finder: finder, timeout: timeout, fanOut: fanOut}
}

// Has reports whether the movie identified by uid has at least one seance.
func (a *Availability) Has(ctx context.Context, uid string) bool {
	lookupCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	ok, err := a.finder.HasSeances(lookupCtx, uid)
	if err != nil {
		err = repository.Degraded("seance", err)
		log.WithError(err).WithField("movie_uid", uid).Warn("seance lookup failed, reporting no availability")
		return false
	}
	return ok
}

// Compose returns one view per movie, in the same order, with availability
// filled in.  All lookups run concurrently (bounded by fanOut) and Compose
// returns once every lookup has finished.  id selects the identifier exposed
// as "id".
func (a *Availability) Compose(ctx context.Context, movies []model.Movie, id func(model.Movie) string) []model.MovieView {
	out := make([]model.MovieView, len(movies))
	var g errgroup.Group
	g.SetLimit(a.fanOut)
	for i := range movies {
		i := i
		out[i] = model.MovieView{ID: id(movies[i]), Movie: movies[i]}
		g.Go(func() error {
			out[i].HasReservationsAvailable = a.Has(ctx, movies[i].UID)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ComposeOne is Compose for a single movie.
func (a *Availability) ComposeOne(ctx context.Context, m model.Movie, id func(model.Movie) string) model.MovieView {
	return model.MovieView{ID: id(m), Movie: m, HasReservationsAvailable: a.Has(ctx, m.UID)}
}

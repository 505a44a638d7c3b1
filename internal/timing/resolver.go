package timing

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
	"github.com/xeniahunt/huntclient/internal/models"
)

// StatusAPI is what the resolver needs from the hunt backend.
type StatusAPI interface {
	HuntStatus(ctx context.Context) (*hunt_api_client.PhaseStatusResponse, error)
	BonusStatus(ctx context.Context, roundID int) (*hunt_api_client.PhaseStatusResponse, error)
}

// Resolver decides whether a time-gated phase has started or ended. On any
// fetch failure it fails safe: the phase is reported as not started, so an
// error can never expose puzzle content early.
type Resolver struct {
	api      StatusAPI
	clock    clockwork.Clock
	fallback func(models.Phase) (models.PhaseStatus, bool)
	log      zerolog.Logger
}

// NewResolver builds a resolver backed by the status API. api may be nil,
// in which case only the static fallback is consulted; the fallback is never
// used to override a server response.
func NewResolver(api StatusAPI, clock clockwork.Clock, log zerolog.Logger) *Resolver {
	return &Resolver{
		api:   api,
		clock: clock,
		log:   log,
	}
}

// WithStaticFallback installs statically configured start times, keyed by
// phase. Only consulted when the resolver has no status API.
func (r *Resolver) WithStaticFallback(starts map[models.Phase]time.Time) *Resolver {
	r.fallback = func(phase models.Phase) (models.PhaseStatus, bool) {
		start, ok := starts[phase]
		if !ok || start.IsZero() {
			return models.PhaseStatus{}, false
		}
		return models.PhaseStatus{
			Started:   !r.clock.Now().Before(start),
			StartTime: start,
		}, true
	}
	return r
}

// Resolve returns the current gate state for a phase.
func (r *Resolver) Resolve(ctx context.Context, phase models.Phase) models.PhaseStatus {
	if r.api == nil {
		if r.fallback != nil {
			if status, ok := r.fallback(phase); ok {
				return status
			}
		}
		r.log.Warn().Str("phase", string(phase)).Msg("no status source configured, treating phase as not started")
		return models.PhaseStatus{}
	}

	var (
		resp *hunt_api_client.PhaseStatusResponse
		err  error
	)
	if roundID, ok := phase.BonusRoundID(); ok {
		resp, err = r.api.BonusStatus(ctx, roundID)
	} else {
		resp, err = r.api.HuntStatus(ctx)
	}
	if err != nil {
		r.log.Error().Err(err).Str("phase", string(phase)).Msg("phase status fetch failed, failing safe to not started")
		return models.PhaseStatus{}
	}

	return models.PhaseStatus{
		Started:   resp.IsStarted,
		Ended:     resp.IsEnded,
		StartTime: resp.StartTime,
		EndTime:   resp.EndTime,
	}
}

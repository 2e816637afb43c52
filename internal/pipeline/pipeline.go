package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/hotspot"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/observability"
)

// ErrRunInProgress is returned when another generation cycle holds the run,
// in this process or, with a RunLock, anywhere in the deployment.
var ErrRunInProgress = errors.New("hotspot generation already in progress")

// ObservationSource reads every observation observed at or after since.
type ObservationSource interface {
	FetchObservations(ctx context.Context, since time.Time) ([]domain.Observation, error)
}

// HotspotStore replaces the persisted hotspot set with gen in one operation.
type HotspotStore interface {
	ReplaceHotspots(ctx context.Context, gen domain.Generation) error
}

// GenerationPublisher delivers a persisted generation to downstream partners.
type GenerationPublisher interface {
	PublishGeneration(ctx context.Context, gen domain.Generation) error
}

// RunLock serializes cycles across processes. TryAcquire does not block:
// acquired is false when another holder owns the lock.
type RunLock interface {
	TryAcquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

// Option configures optional Generator collaborators.
type Option func(*Generator)

// WithPublisher publishes each persisted generation.
func WithPublisher(p GenerationPublisher) Option {
	return func(g *Generator) { g.publisher = p }
}

// WithRunLock guards each cycle with a distributed lock.
func WithRunLock(l RunLock) Option {
	return func(g *Generator) { g.lock = l }
}

// WithGeocoder names hotspot centroids before they are stored.
func WithGeocoder(geo domain.Geocoder) Option {
	return func(g *Generator) { g.geocoder = geo }
}

// Generator runs hotspot generation cycles: fetch, generate, store, publish.
type Generator struct {
	source    ObservationSource
	store     HotspotStore
	publisher GenerationPublisher
	lock      RunLock
	geocoder  domain.Geocoder
	params    hotspot.Params
	logger    *slog.Logger
	metrics   *observability.Metrics
	running   atomic.Bool
	ready     atomic.Bool
}

// New creates a Generator over the given source and store.
func New(source ObservationSource, store HotspotStore, params hotspot.Params, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Generator {
	g := &Generator{
		source:  source,
		store:   store,
		params:  params,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.geocoder != nil {
		metrics.GeocodeEnabled.Set(1)
	}
	return g
}

// CheckReadiness returns nil once a cycle has persisted a generation.
func (g *Generator) CheckReadiness(_ context.Context) error {
	if !g.ready.Load() {
		return errors.New("no hotspot generation has completed yet")
	}
	return nil
}

// RunOnce executes one generation cycle and returns the persisted generation.
//
// Cycles never overlap: a call made while another is running returns
// ErrRunInProgress without touching the store. A fetch failure leaves the
// persisted set untouched. A store failure is returned as is; the store's
// replace is atomic, so the previous generation stays current. Publish and
// geocoding failures are logged and do not fail the cycle.
func (g *Generator) RunOnce(ctx context.Context) (domain.Generation, error) {
	if !g.running.CompareAndSwap(false, true) {
		g.metrics.Runs.WithLabelValues(observability.OutcomeSkipped).Inc()
		return domain.Generation{}, ErrRunInProgress
	}
	defer g.running.Store(false)

	if g.lock != nil {
		release, acquired, err := g.lock.TryAcquire(ctx)
		if err != nil {
			g.metrics.Runs.WithLabelValues(observability.OutcomeSkipped).Inc()
			return domain.Generation{}, fmt.Errorf("acquire run lock: %w", err)
		}
		if !acquired {
			g.metrics.Runs.WithLabelValues(observability.OutcomeSkipped).Inc()
			return domain.Generation{}, ErrRunInProgress
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				g.logger.Warn("release run lock failed", "error", err)
			}
		}()
	}

	clock := domain.Clock()
	now := clock.Now()
	g.logger.Info("hotspot generation started", "window", g.params.Window)

	observations, err := g.source.FetchObservations(ctx, now.Add(-g.params.Window))
	if err != nil {
		g.metrics.Runs.WithLabelValues(observability.OutcomeFetchError).Inc()
		g.logger.Error("fetch observations failed", "error", err)
		return domain.Generation{}, fmt.Errorf("fetch observations: %w", err)
	}
	g.metrics.ObservationsFetched.Add(float64(len(observations)))

	res := hotspot.Generate(observations, now, g.params)
	if res.Skipped > 0 {
		g.metrics.MalformedSkipped.Add(float64(res.Skipped))
		g.logger.Warn("skipped malformed observations", "count", res.Skipped)
	}

	outcome := observability.OutcomeSuccess
	if res.Insufficient {
		outcome = observability.OutcomeInsufficient
		g.logger.Info("not enough recent observations, clearing hotspots",
			"windowed", res.Windowed,
			"min_cluster_size", g.params.MinClusterSize,
		)
	} else {
		g.metrics.CandidateClusters.Observe(float64(res.Candidates))
		if failed := domain.EnrichWithPlaceNames(ctx, res.Hotspots, g.geocoder, g.logger); failed > 0 {
			g.metrics.GeocodeFailures.Add(float64(failed))
		}
	}

	gen := domain.Generation{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Hotspots:    res.Hotspots,
	}

	if err := g.store.ReplaceHotspots(ctx, gen); err != nil {
		g.metrics.Runs.WithLabelValues(observability.OutcomeWriteError).Inc()
		g.logger.Error("replace hotspots failed", "error", err, "generation_id", gen.ID)
		return domain.Generation{}, fmt.Errorf("replace hotspots: %w", err)
	}

	g.ready.Store(true)
	g.metrics.Runs.WithLabelValues(outcome).Inc()
	g.metrics.HotspotsCurrent.Set(float64(len(gen.Hotspots)))
	g.metrics.LastSuccessTimestamp.Set(float64(now.Unix()))

	if g.publisher != nil {
		if err := g.publisher.PublishGeneration(ctx, gen); err != nil {
			g.metrics.PublishErrors.Inc()
			g.logger.Warn("publish generation failed", "error", err, "generation_id", gen.ID)
		}
	}

	elapsed := clock.Since(now)
	g.metrics.CycleDuration.Observe(elapsed.Seconds())
	g.logger.Info("hotspot generation complete",
		"generation_id", gen.ID,
		"fetched", len(observations),
		"windowed", res.Windowed,
		"candidates", res.Candidates,
		"hotspots", len(gen.Hotspots),
		"duration", elapsed,
	)
	return gen, nil
}

// Package postgres implements the observation source and hotspot store on
// PostgreSQL using pgx.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

//go:embed schema.sql
var schema string

// Store reads observations and persists hotspot generations.
// It implements pipeline.ObservationSource and pipeline.HotspotStore.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore connects to databaseURL and verifies the connection.
func NewStore(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the tables the store needs if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const observationsQuery = `
	SELECT id::text, 'report', hazard_type, longitude, latitude, created_at
	FROM hazard_reports
	WHERE created_at >= $1
	UNION ALL
	SELECT id::text, 'social', '', longitude, latitude, tweeted_at
	FROM social_media_posts
	WHERE tweeted_at >= $1 AND longitude IS NOT NULL AND latitude IS NOT NULL
	ORDER BY 6, 2, 1
`

// observationRow mirrors one row of observationsQuery. Report coordinates
// are nullable; a missing coordinate surfaces as NaN so the engine counts
// the record as malformed instead of silently dropping it here.
type observationRow struct {
	ID         string
	Source     string
	HazardType string
	Longitude  *float64
	Latitude   *float64
	ObservedAt time.Time
}

func (r observationRow) toObservation() domain.Observation {
	obs := domain.Observation{
		ID:         r.ID,
		Source:     domain.Source(r.Source),
		HazardType: r.HazardType,
		Location:   domain.Geo{Lon: nullableCoord(r.Longitude), Lat: nullableCoord(r.Latitude)},
		ObservedAt: r.ObservedAt,
	}
	if obs.Source == domain.SourceSocial {
		obs.HazardType = domain.HazardOther
	}
	return obs
}

func nullableCoord(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// FetchObservations returns reports and geotagged social posts observed at or
// after since, ordered by observation time.
func (s *Store) FetchObservations(ctx context.Context, since time.Time) ([]domain.Observation, error) {
	rows, err := s.pool.Query(ctx, observationsQuery, since)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}

	observations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Observation, error) {
		var r observationRow
		if err := row.Scan(&r.ID, &r.Source, &r.HazardType, &r.Longitude, &r.Latitude, &r.ObservedAt); err != nil {
			return domain.Observation{}, err
		}
		return r.toObservation(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan observations: %w", err)
	}
	return observations, nil
}

var hotspotColumns = []string{
	"generation_id",
	"rank",
	"longitude",
	"latitude",
	"score",
	"report_count",
	"hazard_summary",
	"last_reported_at",
	"radius_meters",
	"place_name",
}

func hotspotRows(gen domain.Generation) ([][]any, error) {
	rows := make([][]any, len(gen.Hotspots))
	for i, h := range gen.Hotspots {
		summary, err := json.Marshal(h.HazardSummary)
		if err != nil {
			return nil, fmt.Errorf("encode hazard summary: %w", err)
		}
		rows[i] = []any{
			gen.ID,
			i,
			h.Location.Lon,
			h.Location.Lat,
			h.Score,
			h.ReportCount,
			summary,
			h.LastReportedAt,
			h.RadiusMeters,
			h.PlaceName,
		}
	}
	return rows, nil
}

// ReplaceHotspots writes gen and makes it current in a single transaction.
// Readers see either the previous generation or gen, never a mix.
func (s *Store) ReplaceHotspots(ctx context.Context, gen domain.Generation) error {
	rows, err := hotspotRows(gen)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO hotspot_generations (id, generated_at, hotspot_count) VALUES ($1, $2, $3)`,
			gen.ID, gen.GeneratedAt, len(gen.Hotspots),
		); err != nil {
			return fmt.Errorf("insert generation: %w", err)
		}

		if len(rows) > 0 {
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"hotspots"}, hotspotColumns, pgx.CopyFromRows(rows)); err != nil {
				return fmt.Errorf("copy %d hotspots: %w", len(rows), err)
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO hotspot_current (singleton, generation_id) VALUES (TRUE, $1)
			ON CONFLICT (singleton) DO UPDATE SET generation_id = EXCLUDED.generation_id`,
			gen.ID,
		); err != nil {
			return fmt.Errorf("swap current generation: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM hotspot_generations WHERE id <> $1`, gen.ID); err != nil {
			return fmt.Errorf("prune generations: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("hotspot generation stored", "generation_id", gen.ID, "hotspots", len(gen.Hotspots))
	return nil
}

// limitArg maps a non-positive limit to NULL, which PostgreSQL treats as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// ListHotspots returns up to limit hotspots of the current generation by
// descending score. A limit of zero or less returns all of them.
func (s *Store) ListHotspots(ctx context.Context, limit int) ([]domain.Hotspot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT h.longitude, h.latitude, h.score, h.report_count, h.hazard_summary,
		       h.last_reported_at, h.radius_meters, h.place_name
		FROM hotspots h
		JOIN hotspot_current c ON c.generation_id = h.generation_id
		ORDER BY h.score DESC, h.rank
		LIMIT $1`,
		limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query hotspots: %w", err)
	}

	hotspots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Hotspot, error) {
		var h domain.Hotspot
		err := row.Scan(
			&h.Location.Lon, &h.Location.Lat, &h.Score, &h.ReportCount, &h.HazardSummary,
			&h.LastReportedAt, &h.RadiusMeters, &h.PlaceName,
		)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan hotspots: %w", err)
	}
	return hotspots, nil
}

// CurrentGeneration returns the current generation with all its hotspots,
// or domain.ErrNoGeneration if none has been stored.
func (s *Store) CurrentGeneration(ctx context.Context) (domain.Generation, error) {
	var gen domain.Generation
	err := s.pool.QueryRow(ctx, `
		SELECT g.id, g.generated_at
		FROM hotspot_generations g
		JOIN hotspot_current c ON c.generation_id = g.id`,
	).Scan(&gen.ID, &gen.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Generation{}, domain.ErrNoGeneration
	}
	if err != nil {
		return domain.Generation{}, fmt.Errorf("query current generation: %w", err)
	}

	gen.Hotspots, err = s.ListHotspots(ctx, 0)
	if err != nil {
		return domain.Generation{}, err
	}
	return gen, nil
}

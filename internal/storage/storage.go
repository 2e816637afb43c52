// Package storage opens the configured hotspot store backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/adapter/mongo"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/adapter/postgres"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/config"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/pipeline"
)

// Store is the contract shared by every backend.
type Store interface {
	pipeline.ObservationSource
	pipeline.HotspotStore
	ListHotspots(ctx context.Context, limit int) ([]domain.Hotspot, error)
	CurrentGeneration(ctx context.Context) (domain.Generation, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type postgresStore struct {
	*postgres.Store
}

func (s postgresStore) Close(context.Context) error {
	s.Store.Close()
	return nil
}

// Open connects to the backend named by cfg.StoreBackend and prepares its
// schema or indexes.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	logger = logger.With("backend", cfg.StoreBackend)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		s, err := postgres.NewStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		logger.Info("store ready")
		return postgresStore{s}, nil

	case config.BackendMongo:
		s, err := mongo.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		logger.Info("store ready", "database", cfg.MongoDatabase)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

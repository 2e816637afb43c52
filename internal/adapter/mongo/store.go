// Package mongo implements the observation source and hotspot store on
// MongoDB, over the reports, socialmediaposts and hotspots collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

const (
	reportsCollection     = "reports"
	postsCollection       = "socialmediaposts"
	hotspotsCollection    = "hotspots"
	generationsCollection = "hotspot_generations"

	currentID = "current"
)

// Store reads observations and persists hotspot generations.
// It implements pipeline.ObservationSource and pipeline.HotspotStore.
type Store struct {
	client      *mongo.Client
	reports     *mongo.Collection
	posts       *mongo.Collection
	hotspots    *mongo.Collection
	generations *mongo.Collection
	logger      *slog.Logger
}

// NewStore connects to uri and verifies the connection.
func NewStore(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:      client,
		reports:     db.Collection(reportsCollection),
		posts:       db.Collection(postsCollection),
		hotspots:    db.Collection(hotspotsCollection),
		generations: db.Collection(generationsCollection),
		logger:      logger,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.reports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create reports index: %w", err)
	}
	if _, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tweetedAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}
	if _, err := s.hotspots.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "generationId", Value: 1}, {Key: "hotspotScore", Value: -1}}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	}); err != nil {
		return fmt.Errorf("create hotspot indexes: %w", err)
	}
	return nil
}

// FetchObservations returns reports and geotagged social posts observed at or
// after since, ordered by observation time.
func (s *Store) FetchObservations(ctx context.Context, since time.Time) ([]domain.Observation, error) {
	byTime := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.reports.Find(ctx, bson.M{"createdAt": bson.M{"$gte": since}}, byTime)
	if err != nil {
		return nil, fmt.Errorf("find reports: %w", err)
	}
	var reports []reportDoc
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	postFilter := bson.M{
		"tweetedAt":                   bson.M{"$gte": since},
		"geo.coordinates.coordinates": bson.M{"$exists": true},
	}
	cur, err = s.posts.Find(ctx, postFilter, options.Find().SetSort(bson.D{{Key: "tweetedAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find social posts: %w", err)
	}
	var posts []socialPostDoc
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode social posts: %w", err)
	}

	return mergeObservations(reports, posts), nil
}

// ReplaceHotspots inserts gen's hotspots, then swaps the current pointer to
// gen in a single-document update, then prunes older generations. Readers
// resolve hotspots through the pointer, so they never observe a mix.
func (s *Store) ReplaceHotspots(ctx context.Context, gen domain.Generation) error {
	if docs := hotspotDocs(gen); len(docs) > 0 {
		if _, err := s.hotspots.InsertMany(ctx, docs); err != nil {
			s.removeGeneration(ctx, gen.ID)
			return fmt.Errorf("insert %d hotspots: %w", len(docs), err)
		}
	}

	pointer := currentDoc{
		ID:           currentID,
		GenerationID: gen.ID,
		GeneratedAt:  gen.GeneratedAt,
		HotspotCount: len(gen.Hotspots),
	}
	if _, err := s.generations.ReplaceOne(ctx, bson.M{"_id": currentID}, pointer, options.Replace().SetUpsert(true)); err != nil {
		s.removeGeneration(ctx, gen.ID)
		return fmt.Errorf("swap current generation: %w", err)
	}

	res, err := s.hotspots.DeleteMany(ctx, bson.M{"generationId": bson.M{"$ne": gen.ID}})
	if err != nil {
		// The swap already happened; stale documents are pruned next cycle.
		s.logger.Warn("prune old hotspots failed", "generation_id", gen.ID, "error", err)
		return nil
	}
	s.logger.Debug("hotspot generation stored",
		"generation_id", gen.ID,
		"hotspots", len(gen.Hotspots),
		"pruned", res.DeletedCount,
	)
	return nil
}

// removeGeneration deletes documents of a generation that never became
// current. Failures are logged; the next successful prune removes them.
func (s *Store) removeGeneration(ctx context.Context, generationID string) {
	if _, err := s.hotspots.DeleteMany(context.WithoutCancel(ctx), bson.M{"generationId": generationID}); err != nil {
		s.logger.Warn("remove orphaned hotspots failed", "generation_id", generationID, "error", err)
	}
}

func (s *Store) current(ctx context.Context) (currentDoc, error) {
	var cur currentDoc
	err := s.generations.FindOne(ctx, bson.M{"_id": currentID}).Decode(&cur)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return currentDoc{}, domain.ErrNoGeneration
	}
	if err != nil {
		return currentDoc{}, fmt.Errorf("find current generation: %w", err)
	}
	return cur, nil
}

func (s *Store) listGeneration(ctx context.Context, generationID string, limit int) ([]domain.Hotspot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "hotspotScore", Value: -1}, {Key: "rank", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.hotspots.Find(ctx, bson.M{"generationId": generationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find hotspots: %w", err)
	}
	var docs []hotspotDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode hotspots: %w", err)
	}

	hotspots := make([]domain.Hotspot, len(docs))
	for i, d := range docs {
		hotspots[i] = d.hotspot()
	}
	return hotspots, nil
}

// ListHotspots returns up to limit hotspots of the current generation by
// descending score. A limit of zero or less returns all of them.
func (s *Store) ListHotspots(ctx context.Context, limit int) ([]domain.Hotspot, error) {
	cur, err := s.current(ctx)
	if errors.Is(err, domain.ErrNoGeneration) {
		return []domain.Hotspot{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.listGeneration(ctx, cur.GenerationID, limit)
}

// CurrentGeneration returns the current generation with all its hotspots,
// or domain.ErrNoGeneration if none has been stored.
func (s *Store) CurrentGeneration(ctx context.Context) (domain.Generation, error) {
	cur, err := s.current(ctx)
	if err != nil {
		return domain.Generation{}, err
	}
	hotspots, err := s.listGeneration(ctx, cur.GenerationID, 0)
	if err != nil {
		return domain.Generation{}, err
	}
	return domain.Generation{
		ID:          cur.GenerationID,
		GeneratedAt: cur.GeneratedAt,
		Hotspots:    hotspots,
	}, nil
}

// Command export writes the current hotspot generation as a GeoJSON
// FeatureCollection for partner bulk delivery and prints the top hotspots.
//
// Usage:
//
//	go run ./cmd/export -out hotspots.geojson.zst -top 20
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/config"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/export"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/observability"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/storage"
)

func main() {
	out := flag.String("out", "hotspots.geojson.zst", "output path; a .zst suffix writes zstd-compressed GeoJSON, - writes plain GeoJSON to stdout")
	top := flag.Int("top", 20, "number of highest-scoring hotspots to print, 0 for none")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if code := run(cfg, *out, *top, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(cfg *config.Config, out string, top int, timeout time.Duration) int {
	logger := observability.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store failed", "error", err)
		return 1
	}
	defer store.Close(context.Background()) //nolint:errcheck // process exits next

	gen, err := store.CurrentGeneration(ctx)
	if errors.Is(err, domain.ErrNoGeneration) {
		logger.Error("no hotspot generation to export; run the engine first")
		return 2
	}
	if err != nil {
		logger.Error("read current generation failed", "error", err)
		return 1
	}

	if err := writeGeneration(out, gen); err != nil {
		logger.Error("export failed", "error", err, "out", out)
		return 1
	}
	logger.Info("export complete", "generation_id", gen.ID, "hotspots", len(gen.Hotspots), "out", out)

	if top > 0 && out != "-" {
		hotspots, err := store.ListHotspots(ctx, top)
		if err != nil {
			logger.Error("list hotspots failed", "error", err)
			return 1
		}
		printTop(os.Stdout, hotspots)
	}
	return 0
}

func writeGeneration(out string, gen domain.Generation) error {
	if out == "-" {
		return export.WriteGeoJSON(os.Stdout, gen)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	write := export.WriteGeoJSON
	if strings.HasSuffix(out, ".zst") {
		write = export.WriteCompressed
	}
	if err := write(f, gen); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printTop(w io.Writer, hotspots []domain.Hotspot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tREPORTS\tLAT\tLON\tPLACE")
	for i, h := range hotspots {
		fmt.Fprintf(tw, "%d\t%.2f\t%d\t%.4f\t%.4f\t%s\n",
			i+1, h.Score, h.ReportCount, h.Location.Lat, h.Location.Lon, h.PlaceName)
	}
	tw.Flush() //nolint:errcheck // stdout
}

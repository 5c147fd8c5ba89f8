// Command extract drives the Extraction Pipeline over one or more
// .osm.pbf inputs and writes a pkg/store-compatible local feature-store
// file.
//
// Grounded on azybler-map_router/cmd/preprocess/main.go (flag parsing,
// bbox shortcuts, timing/log lines) and
// original_source/app/service/builder/src/bin/builder.rs's multi-input
// support (Vec<PathBuf> of source files folded into one output).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/mikemoraned/greenspace/pkg/config"
	"github.com/mikemoraned/greenspace/pkg/extract"
	"github.com/mikemoraned/greenspace/pkg/store"
)

func main() {
	var pbfPaths []string
	var outputPath string
	var logLevel string

	root := &cobra.Command{
		Use:   "extract",
		Short: "Extract green-space polygons from OSM PBF files into a feature store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(pbfPaths) == 0 {
				return fmt.Errorf("at least one --pbf is required")
			}
			logger := config.NewLogger(logLevel)

			start := time.Now()
			var allPolygons []orb.Polygon
			for _, path := range pbfPaths {
				logger.Info("extracting", "path", path)
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				polygons, err := extract.Run(context.Background(), logger, f)
				f.Close()
				if err != nil {
					return fmt.Errorf("extract %s: %w", path, err)
				}
				logger.Info("extracted", "path", path, "polygons", len(polygons))
				allPolygons = append(allPolygons, polygons...)
			}

			logger.Info("writing feature store", "path", outputPath, "polygons", len(allPolygons))
			if err := store.WriteLocal(outputPath, allPolygons); err != nil {
				return fmt.Errorf("write feature store: %w", err)
			}

			info, _ := os.Stat(outputPath)
			var size int64
			if info != nil {
				size = info.Size()
			}
			logger.Info("done",
				"elapsed", time.Since(start).Round(time.Second).String(),
				"output", outputPath,
				"size_mb", fmt.Sprintf("%.1f", float64(size)/(1024*1024)),
			)
			return nil
		},
	}

	root.Flags().StringArrayVar(&pbfPaths, "pbf", nil, "Path to a .osm.pbf input file (repeatable)")
	root.Flags().StringVar(&outputPath, "output", "regions.fgb", "Output feature store file path")
	root.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

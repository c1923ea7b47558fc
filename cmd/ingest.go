package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/instalily/partsassist/config"
	"github.com/instalily/partsassist/internal/catalog"
	"github.com/instalily/partsassist/internal/ingest"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var skipFetch bool
	var cmd = &cobra.Command{
		Use:   "ingest",
		Short: "Fetch source pages and rebuild the catalog snapshot and knowledge corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger := log.New(log.Writer(), "[INGEST] ", log.LstdFlags)

			if !skipFetch {
				fetcher := ingest.Fetcher{Timeout: 60 * time.Second, Logger: logger}
				outDir := filepath.Dir(cfg.Catalog.SnapshotPath)
				saved, err := fetcher.FetchPages(cmd.Context(), cfg.Catalog.SourcePages, outDir)
				if err != nil {
					return fmt.Errorf("fetching source pages: %w", err)
				}
				logger.Printf("fetched %d pages", len(saved))
			}

			items, err := catalog.BuildFromHTML(cfg.Catalog.HTMLSources, logger)
			if err != nil {
				return fmt.Errorf("building catalog: %w", err)
			}
			if err := catalog.WriteSnapshot(cfg.Catalog.SnapshotPath, items); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			logger.Printf("catalog snapshot written with %d items", len(items))

			n, err := ingest.BuildKnowledge(cfg.Knowledge.HTMLGlob, cfg.Knowledge.Path, logger)
			if err != nil {
				return fmt.Errorf("building knowledge corpus: %w", err)
			}
			logger.Printf("knowledge corpus written with %d chunks", n)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	cmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "rebuild from existing HTML snapshots without browsing")

	return cmd
}

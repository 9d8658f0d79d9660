package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ourkan95/Duplicate-Detector/internal/engine"
	"github.com/ourkan95/Duplicate-Detector/internal/metrics"
)

// createRunCmd creates the full detection command
func createRunCmd() *cobra.Command {
	var save bool
	var noGeoBlocking bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Detect duplicate listings and URL mismatches",
		Long:  `Scores every listing pair by address, distance and name, combines the scores, checks every deal URL slug against its listing name and writes the result artifacts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if noGeoBlocking {
				cfg.Pipeline.GeoBlocking = false
			}

			set, err := loadListings(cfg)
			if err != nil {
				return err
			}

			m := metrics.New()
			pipeline, err := newPipeline(cfg, m)
			if err != nil {
				return err
			}

			res, err := pipeline.Run(ctx, set)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			for _, stage := range engine.StageTables(set, res) {
				engine.PrintPreview(os.Stdout, stage.Title, stage.Table, cfg.Pipeline.Preview)
			}

			exporter, err := engine.NewExporter(cfg.Output.Dir, cfg.Output.Format)
			if err != nil {
				return err
			}
			paths, err := exporter.ExportResult(res)
			if err != nil {
				return err
			}

			if save || cfg.Database.Enabled {
				cfg.Database.Enabled = true
				store, closeStore, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer closeStore()
				if err := store.SaveRun(ctx, res); err != nil {
					return err
				}
				log.Info().Str("run_id", res.RunID).Msg("run saved to database")
			}

			fmt.Printf("Run %s: %d listings, %d duplicate candidates, %d mismatches\n",
				res.RunID, res.Listings, len(res.Candidates), len(engine.Mismatches(res.Mismatches)))
			for _, p := range paths {
				fmt.Printf("  wrote %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the run in Postgres")
	cmd.Flags().BoolVar(&noGeoBlocking, "no-geo-blocking", false, "Compare every pair by distance instead of geohash blocks")
	return cmd
}

// createMismatchCmd creates the slug-only check command
func createMismatchCmd() *cobra.Command {
	var name, url string

	cmd := &cobra.Command{
		Use:   "mismatch",
		Short: "Flag listings whose deal URL names a different property",
		Long:  `Compares each listing name with the slug of its deal URL. With --name and --url a single pair is checked and nothing is written`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := metrics.New()
			pipeline, err := newPipeline(cfg, m)
			if err != nil {
				return err
			}

			if name != "" || url != "" {
				rec, err := pipeline.SlugChecker().Check(ctx, name, url)
				if err != nil {
					return err
				}
				fmt.Printf("name: %q\nslug: %q\nsimilarity: %.3f\nmismatch: %t\n",
					rec.CleanedName, rec.CleanedSlug, rec.Similarity, rec.IsMismatch)
				return nil
			}

			set, err := loadListings(cfg)
			if err != nil {
				return err
			}
			records, err := pipeline.RunMismatch(ctx, set)
			if err != nil {
				return fmt.Errorf("slug check failed: %w", err)
			}

			engine.PrintPreview(os.Stdout, "Potential mismatches", engine.MismatchTable(engine.Mismatches(records)), cfg.Pipeline.Preview)

			exporter, err := engine.NewExporter(cfg.Output.Dir, cfg.Output.Format)
			if err != nil {
				return err
			}
			paths, err := exporter.ExportMismatches(records)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Printf("  wrote %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Listing name for a single check")
	cmd.Flags().StringVar(&url, "url", "", "Deal URL for a single check")
	return cmd
}

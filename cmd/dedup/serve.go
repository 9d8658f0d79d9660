package main

import (
	"github.com/spf13/cobra"

	"github.com/ourkan95/Duplicate-Detector/internal/engine"
	"github.com/ourkan95/Duplicate-Detector/internal/metrics"
	"github.com/ourkan95/Duplicate-Detector/internal/web"
)

// createServeCmd starts the review API over the output directory
func createServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve run results and slug checks over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m := metrics.New()
			pipeline, err := newPipeline(cfg, m)
			if err != nil {
				return err
			}
			exporter, err := engine.NewExporter(cfg.Output.Dir, cfg.Output.Format)
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			server, err := web.NewServer(web.NewConfig(cfg), web.Backends{
				Exporter: exporter,
				Checker:  pipeline.SlugChecker(),
				Store:    store,
				Metrics:  m,
			})
			if err != nil {
				return err
			}
			return server.Start(ctx)
		},
	}

	cmd.Flags().String("host", "", "Listen host")
	cmd.Flags().Int("port", 0, "Listen port")
	bindFlags(cmd, map[string]string{
		"server.host": "host",
		"server.port": "port",
	})
	return cmd
}

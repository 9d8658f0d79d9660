package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ourkan95/Duplicate-Detector/internal/config"
	"github.com/ourkan95/Duplicate-Detector/internal/debug"
)

const version = "1.0.0"

var (
	// v collects flags, env and file settings; cfg is loaded from it before each command
	v          = viper.New()
	cfg        *config.Config
	configFile string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := createRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func createRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dedup",
		Short:   "Hotel listing duplicate detector",
		Long:    `Finds listings that describe the same property by combining address, distance and name similarity, and flags listings whose deal URL names a different property`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			cfg = loaded

			level := cfg.Logging.Level
			if cfg.Pipeline.Debug {
				level = "debug"
			}
			debug.NewLogger(debug.LoggingConfig{
				Level:  level,
				Format: cfg.Logging.Format,
				Output: "stderr",
			})
			log.Debug().Str("command", cmd.Name()).Msg("configuration loaded")
			return nil
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to config file (default ./dedup.yaml)")
	flags.String("input", "", "Listing spreadsheet (.xlsx or .csv)")
	flags.String("sheet", "", "Worksheet name (default first sheet)")
	flags.String("output-dir", "", "Directory for result artifacts")
	flags.String("format", "", "Artifact format: xlsx or csv")
	flags.String("provider", "", "Embedding provider: openai or hash")
	flags.Float64("threshold", 0, "Combined score threshold")
	flags.Float64("mismatch-threshold", 0, "Slug similarity below which a listing is flagged")
	flags.Int("preview", 0, "Rows shown per stage preview")
	flags.Bool("debug", false, "Enable debug output")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")

	bindFlags(rootCmd, map[string]string{
		"input.path":                  "input",
		"input.sheet":                 "sheet",
		"output.dir":                  "output-dir",
		"output.format":               "format",
		"embedding.provider":          "provider",
		"pipeline.threshold":          "threshold",
		"pipeline.mismatch_threshold": "mismatch-threshold",
		"pipeline.preview":            "preview",
		"pipeline.debug":              "debug",
		"logging.level":               "log-level",
	})

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createMismatchCmd())
	rootCmd.AddCommand(createParseCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createDBCmd())

	return rootCmd
}

// bindFlags binds config keys to flags of cmd. A flag only overrides the
// key when it was set on the command line.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			panic("unknown flag " + name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			panic(err)
		}
	}
}

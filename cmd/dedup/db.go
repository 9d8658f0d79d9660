package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ourkan95/Duplicate-Detector/internal/db"
)

// createDBCmd groups the Postgres maintenance commands
func createDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the run database",
	}

	dbCmd.AddCommand(createPingCmd())
	dbCmd.AddCommand(createInitCmd())
	dbCmd.AddCommand(createRunsCmd())
	return dbCmd
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.NewConnection(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()
			fmt.Println("Database connection successful!")
			return nil
		},
	}
}

func createInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the run tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.NewConnection(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.NewStore(conn.DB).EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Schema ready")
			return nil
		},
	}
}

func createRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.NewConnection(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			runs, err := db.NewStore(conn.DB).RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs stored")
				return nil
			}
			for _, r := range runs {
				fmt.Printf("%s  %s  listings=%d candidates=%d mismatches=%d\n",
					r.RunID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Listings, r.Candidates, r.Mismatches)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}

package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/tap14/internal/db"
	"github.com/chriserin/tap14/internal/ui"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRuns(cmd.OutOrStdout())
	},
}

func init() {
	runsCmd.Flags().StringVar(&dbFlag, "db", "", "run database (default from config)")
	rootCmd.AddCommand(runsCmd)
}

// openExisting opens the run database without creating it.
func openExisting() (*sql.DB, error) {
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no run database at %s: run `tap14 init` or `tap14 record` first", cfg.DBPath)
	}
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return sqlDB, nil
}

func RunRuns(w io.Writer) error {
	sqlDB, err := openExisting()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	runs, err := db.ListRuns(sqlDB)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}

	sourceWidth := 0
	for _, r := range runs {
		if len(r.Source) > sourceWidth {
			sourceWidth = len(r.Source)
		}
	}
	for _, r := range runs {
		ui.RunRow(w, r.ID, r.Source, r.RecordedAt, r.Passed, r.Failed, sourceWidth)
	}
	return nil
}

package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/tap14/internal/db"
	"github.com/chriserin/tap14/internal/ui"
)

var dbFlag string

var recordCmd = &cobra.Command{
	Use:   "record [file|-]",
	Short: "Parse a TAP stream and store the run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRecord(cmd.OutOrStdout(), cmd.InOrStdin(), argPath(args))
	},
}

func init() {
	recordCmd.Flags().StringVar(&dbFlag, "db", "", "run database (default from config)")
	rootCmd.AddCommand(recordCmd)
}

func RunRecord(w io.Writer, in io.Reader, path string) error {
	doc, source, err := parseInput(in, path)
	if err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	id, err := db.RecordRun(sqlDB, source, doc)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	logger.WithFields(logrus.Fields{"run": id, "db": cfg.DBPath}).Debug("Recorded run")

	ui.RecordedLine(w, id, source)
	return nil
}

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/tap14/internal/report"
	"github.com/chriserin/tap14/internal/ui"
	"github.com/chriserin/tap14/tap"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [file|-]",
	Short: "Print each test point and the run totals",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSummary(cmd.OutOrStdout(), cmd.InOrStdin(), argPath(args))
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func RunSummary(w io.Writer, in io.Reader, path string) error {
	doc, _, err := parseInput(in, path)
	if err != nil {
		return err
	}

	err = tap.Walk(doc.Body, func(p []string, s tap.Statement) error {
		switch s := s.(type) {
		case *tap.Test:
			ui.TestLine(w, len(p), s)
		case *tap.Subtest:
			ui.SubtestLine(w, len(p), s.Name)
		case *tap.BailOut:
			ui.BailOutLine(w, len(p), s.Reason)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ui.SummaryLine(w, report.Count(doc))
	return nil
}

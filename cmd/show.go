package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/tap14/internal/db"
	"github.com/chriserin/tap14/internal/ui"
	"github.com/chriserin/tap14/tap"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the stored test points of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunShow(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	showCmd.Flags().StringVar(&dbFlag, "db", "", "run database (default from config)")
	rootCmd.AddCommand(showCmd)
}

func RunShow(w io.Writer, rawID string) error {
	rawID = strings.TrimPrefix(rawID, "#")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID: %s", rawID)
	}

	sqlDB, err := openExisting()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	results, err := db.Results(sqlDB, id)
	if err != nil {
		return err
	}

	for _, r := range results {
		ui.TestLine(w, r.Depth, storedTest(r))
		for _, y := range r.YAML {
			fmt.Fprintln(w, strings.Repeat("  ", r.Depth+2)+y)
		}
	}
	return nil
}

// storedTest rebuilds the test point a result row was recorded from.
func storedTest(r db.Result) *tap.Test {
	t := &tap.Test{Result: r.OK, Number: r.Number, Description: r.Description}
	if r.Directive != nil {
		if d, err := tap.ParseDirective("# " + *r.Directive); err == nil {
			d.Reason = r.Reason
			t.Directive = &d
		}
	}
	return t
}

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/tap14/internal/render"
)

var (
	formatFlag string
	indentFlag bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a TAP stream and print the document as JSON or YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunParse(cmd.OutOrStdout(), cmd.InOrStdin(), argPath(args))
	},
}

func init() {
	parseCmd.Flags().StringVar(&formatFlag, "format", "json", "output format: json or yaml")
	parseCmd.Flags().BoolVar(&indentFlag, "indent", false, "pretty-print JSON output")
	rootCmd.AddCommand(parseCmd)
}

func RunParse(w io.Writer, in io.Reader, path string) error {
	doc, _, err := parseInput(in, path)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	return render.Write(w, doc, format, cfg.Indent)
}

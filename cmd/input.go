package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"

	"github.com/chriserin/tap14/tap"
)

func argPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

// readInput reads the whole of path, or of in when path is "-".
func readInput(in io.Reader, path string) ([]byte, string, error) {
	if path == "" || path == "-" {
		if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			return nil, "", errors.New("no input: pass a file or pipe TAP to stdin")
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := afero.ReadFile(appFs, path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return data, path, nil
}

func parseOptions() tap.Options {
	return tap.Options{MaxDepth: cfg.MaxDepth, StrictPlans: cfg.StrictPlans, Logger: logger}
}

func parseInput(in io.Reader, path string) (*tap.Document, string, error) {
	data, source, err := readInput(in, path)
	if err != nil {
		return nil, "", err
	}
	doc, err := tap.ParseWithOptions(data, parseOptions())
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", source, err)
	}
	return doc, source, nil
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chriserin/tap14/internal/config"
	"github.com/chriserin/tap14/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the run database and a default tap14.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().StringVar(&dbFlag, "db", "", "run database (default from config)")
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer) error {
	// config file
	exists, err := afero.Exists(appFs, config.DefaultFile)
	if err != nil {
		return fmt.Errorf("checking %s: %w", config.DefaultFile, err)
	}
	if exists {
		fmt.Fprintf(w, "%s already exists\n", config.DefaultFile)
	} else {
		if err := config.Save(appFs, config.DefaultFile, cfg); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s created\n", config.DefaultFile)
	}

	// database
	_, err = os.Stat(cfg.DBPath)
	dbExists := err == nil
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.Close()
	if dbExists {
		fmt.Fprintf(w, "%s already exists\n", cfg.DBPath)
	} else {
		fmt.Fprintf(w, "%s created\n", cfg.DBPath)
	}

	// gitignore
	if filepath.IsAbs(cfg.DBPath) {
		return nil
	}
	msgs, err := ensureGitignore(filepath.ToSlash(filepath.Clean(cfg.DBPath)))
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}
	return nil
}

func ensureGitignore(entry string) ([]string, error) {
	data, err := afero.ReadFile(appFs, ".gitignore")
	if errors.Is(err, fs.ErrNotExist) {
		if err := afero.WriteFile(appFs, ".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := afero.WriteFile(appFs, ".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}

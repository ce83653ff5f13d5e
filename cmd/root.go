package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chriserin/tap14/internal/config"
	"github.com/chriserin/tap14/tap"
)

var (
	appFs     afero.Fs = afero.NewOsFs()
	lookupEnv          = os.LookupEnv
	logger             = logrus.New()
	cfg                = config.Default()
)

var (
	configFlag    string
	verboseFlag   bool
	logFormatFlag string
	maxDepthFlag  int
	strictFlag    bool
)

var rootCmd = &cobra.Command{
	Use:           "tap14",
	Short:         "tap14: parse and record TAP version 14 streams",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configure(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tap14:", err)
		os.Exit(1)
	}
}

func init() {
	logger.SetOutput(os.Stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", config.DefaultFile, "config file")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&logFormatFlag, "log-format", "text", "log format: text or json")
	pf.IntVar(&maxDepthFlag, "max-depth", tap.DefaultMaxDepth, "deepest subtest nesting accepted")
	pf.BoolVar(&strictFlag, "strict-plans", false, "reject subtests that declare more than one plan")
}

// configure resolves settings as flag > environment > file > default and
// sets up the logger.
func configure(cmd *cobra.Command) error {
	env, err := config.FromEnv(lookupEnv)
	if err != nil {
		return err
	}

	path, explicit := config.DefaultFile, false
	if env.ConfigFile.Valid {
		path, explicit = env.ConfigFile.String, true
	}
	if changed(cmd, "config") {
		path, explicit = configFlag, true
	}

	c, err := config.Load(appFs, path, explicit)
	if err != nil {
		return err
	}
	c = applyFlags(cmd, env.Apply(c))
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	if err := setupLogger(logger, c.LogLevel, logFormatFlag); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"config":       path,
		"format":       c.Format,
		"max_depth":    c.MaxDepth,
		"strict_plans": c.StrictPlans,
	}).Debug("Configuration resolved")
	return nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func applyFlags(cmd *cobra.Command, c config.Config) config.Config {
	if changed(cmd, "max-depth") {
		c.MaxDepth = maxDepthFlag
	}
	if changed(cmd, "strict-plans") {
		c.StrictPlans = strictFlag
	}
	if changed(cmd, "format") {
		c.Format = strings.ToLower(formatFlag)
	}
	if changed(cmd, "indent") {
		c.Indent = indentFlag
	}
	if changed(cmd, "db") {
		c.DBPath = dbFlag
	}
	if verboseFlag {
		c.LogLevel = "debug"
	}
	return c
}

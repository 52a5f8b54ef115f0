package main

import (
	"github.com/spf13/cobra"

	"github.com/litbook/litbook-server/internal/config"
	"github.com/litbook/litbook-server/internal/logger"
)

// globalFlags are forwarded to config.Load so the CLI resolves paths the
// same way the server does.
type globalFlags struct {
	dataDir  string
	dbPath   string
	envFile  string
	logLevel string
}

func (g *globalFlags) args() []string {
	var args []string
	add := func(name, value string) {
		if value != "" {
			args = append(args, "-"+name, value)
		}
	}
	add("data-dir", g.dataDir)
	add("db-path", g.dbPath)
	add("env-file", g.envFile)
	add("log-level", g.logLevel)
	return args
}

func (g *globalFlags) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(g.args())
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})
	return cfg, log, nil
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "litbookctl",
		Short: "Operate on a LitBook data directory",
		Long: `litbookctl works directly on the database, search index and cache
that the LitBook server uses. Stop the server before running commands
that write.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Base directory for database, index and cache")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db-path", "", "SQLite database path")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newSegmentCmd(flags))
	cmd.AddCommand(newSeedCmd(flags))
	cmd.AddCommand(newReindexCmd(flags))

	return cmd
}

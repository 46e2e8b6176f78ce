// Package cli defines the cobra command tree for the comment panel.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/comment-panel/internal/client"
	"github.com/evcraddock/comment-panel/internal/db"
	"github.com/evcraddock/comment-panel/internal/logging"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cpanel",
		Short:         "Read, filter and manage site comments",
		Long:          "A comment panel for a personal site. Browse comments from the terminal, serve the panel page, or run a development backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path for the development backend (default: db_path from config, else ~/.config/cpanel/comments.db)")

	root.AddCommand(
		newCommentsCmd(),
		newDeleteCmd(),
		newStatusCmd(),
		newServeCmd(),
		newBackendCmd(),
		newVersionCmd(),
	)

	return root
}

// dbPath returns the --db flag, falling back to the configured path.
func dbPath(cfg CLIConfig) string {
	if flagDB != "" {
		return flagDB
	}
	return cfg.DBPath
}

// openDB opens the development backend's database.
func openDB(cfg CLIConfig) (*sql.DB, error) {
	return db.Open(dbPath(cfg))
}

// setup resolves the configuration and installs the logger every command uses.
func setup() (CLIConfig, *slog.Logger, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return CLIConfig{}, nil, err
	}
	return cfg, logging.Setup(cfg.DevMode), nil
}

// newBackendClient creates a client for the configured comment backend.
func newBackendClient(cfg CLIConfig) *client.Client {
	return client.New(cfg.BackendURL)
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/evcraddock/comment-panel/internal/backend"
	"github.com/evcraddock/comment-panel/internal/logging"
	"github.com/evcraddock/comment-panel/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comment panel page",
		Long:  "Start an HTTP server that renders the comment panel and forwards form posts and login to the backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")

	return cmd
}

func runServe(port int) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	loc, err := cfg.location()
	if err != nil {
		return err
	}

	srv, err := web.NewServer(web.Config{
		BackendURL: cfg.BackendURL,
		Location:   loc,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(logging.RequestLogger(logger, logging.QuietPaths...)(srv), port)
}

func newBackendCmd() *cobra.Command {
	var (
		port     int
		minScore float64
	)

	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Run the development comment backend",
		Long:  "Start a SQLite-backed comment backend serving /data, /delete-comments, /user, /login and /logout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackend(port, minScore)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8081, "port to listen on")
	cmd.Flags().Float64Var(&minScore, "min-score", backend.DefaultMinScore, "reject comments whose sentiment score is below this")

	return cmd
}

func runBackend(port int, minScore float64) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(database)
	logger.Info("opened comment store", "path", dbPath(cfg))

	srv := backend.NewServer(database, backend.Options{MinScore: &minScore})
	if err := srv.PurgeExpiredSessions(context.Background()); err != nil {
		logger.Warn("purging expired sessions", "error", err)
	}
	return srv.ListenAndServe(logging.RequestLogger(logger, logging.QuietPaths...)(srv), port)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type statusReport struct {
	Backend    string `json:"backend"`
	Reachable  bool   `json:"reachable"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the backend connection and session state",
		Long:  "Asks the backend for the session state and reports whether it is reachable and where to log in.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	report := statusReport{Backend: cfg.BackendURL}
	status, err := newBackendClient(cfg).FetchSessionState(cmd.Context())
	if err != nil {
		logger.Warn("fetching session state", "backend", cfg.BackendURL, "error", err)
		report.Error = err.Error()
	} else {
		report.Reachable = true
		report.IsLoggedIn = status.IsLoggedIn
		report.URL = status.URL
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, report)
	}

	if _, err := fmt.Fprintf(out, "Backend: %s\n", report.Backend); err != nil {
		return err
	}
	switch {
	case !report.Reachable:
		_, err = fmt.Fprintf(out, "Status:  ✗ cannot reach backend (%s)\n", report.Error)
	case report.IsLoggedIn:
		_, err = fmt.Fprintf(out, "Status:  ✓ connected, logged in\nLogout:  %s\n", report.URL)
	default:
		_, err = fmt.Fprintf(out, "Status:  ✓ connected, logged out\nLogin:   %s\n", report.URL)
	}
	return err
}

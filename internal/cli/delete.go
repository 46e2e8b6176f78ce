package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/comment-panel/internal/panel"
)

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete all comments",
		Long:  "Delete every comment on the backend. Asks for confirmation unless --yes is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, yes bool) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	confirm := panel.ConfirmFunc(func(prompt string) bool {
		return yes || askYesNo(cmd.InOrStdin(), out, prompt)
	})
	if !confirm.Confirm(panel.DeletePrompt) {
		logger.Debug("delete declined")
		_, err := fmt.Fprintln(out, "Cancelled.")
		return err
	}

	if err := newBackendClient(cfg).DeleteAllComments(cmd.Context()); err != nil {
		return err
	}
	logger.Info("comments deleted", "backend", cfg.BackendURL)

	if isJSON() {
		return printJSON(out, map[string]bool{"deleted": true})
	}
	_, err = fmt.Fprintln(out, "All comments deleted.")
	return err
}

// askYesNo prints prompt and reads one line; only y or yes confirms.
func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	if _, err := fmt.Fprintf(out, "%s [y/N]: ", prompt); err != nil {
		return false
	}
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

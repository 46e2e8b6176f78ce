package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/evcraddock/comment-panel/internal/comment"
	"github.com/evcraddock/comment-panel/internal/panel"
)

type commentsOptions struct {
	num    int
	sort   string
	order  string
	asHTML bool
}

func newCommentsCmd() *cobra.Command {
	var opts commentsOptions

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List comments",
		Long:  "Fetch comments from the backend with the given filter and print them in the order the backend returns.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComments(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.num, "num", 5, "maximum number of comments")
	cmd.Flags().StringVar(&opts.sort, "sort", string(comment.SortTimestamp), "sort field (timestamp|sentiment|name)")
	cmd.Flags().StringVar(&opts.order, "order", string(comment.Descending), "sort order (desc|asc)")
	cmd.Flags().BoolVar(&opts.asHTML, "html", false, "print the rendered panel page instead")

	return cmd
}

func runComments(cmd *cobra.Command, opts commentsOptions) error {
	if opts.num < 1 {
		return fmt.Errorf("invalid --num %d: must be at least 1", opts.num)
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	loc, err := cfg.location()
	if err != nil {
		return err
	}

	backend := newBackendClient(cfg)
	criteria := comment.NewFilterCriteria(opts.num, comment.SortField(opts.sort), comment.SortOrder(opts.order))
	out := cmd.OutOrStdout()

	if opts.asHTML {
		page, err := panel.DefaultPage(panel.WithLocation(loc))
		if err != nil {
			return err
		}
		page.SetFilterControls(criteria)

		// Failures are rendered into the page.
		if err := panel.NewLoader(backend, page, logger).Load(cmd.Context(), &url.URL{}); err != nil {
			logger.Warn("loading comment panel", "error", err)
		}
		_, err = page.WriteTo(out)
		return err
	}

	comments, err := backend.FetchComments(cmd.Context(), criteria)
	if err != nil {
		return err
	}
	logger.Debug("fetched comments", "count", len(comments), "filter", criteria.Values().Encode())

	if isJSON() {
		return printJSON(out, comments)
	}
	return printCommentList(out, comments, loc)
}

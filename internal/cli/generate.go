package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/maadhav-codes/diff2commit/internal/config"
	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/message"
	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/prompt"
	"github.com/maadhav-codes/diff2commit/internal/services/generate"
	"github.com/maadhav-codes/diff2commit/internal/ui/console"
	"github.com/maadhav-codes/diff2commit/internal/ui/progress"
	"github.com/maadhav-codes/diff2commit/internal/ui/review"
	"github.com/maadhav-codes/diff2commit/internal/vcs"
)

type generateOptions struct {
	count    int
	provider string
	model    string
	review   bool
	noReview bool
	noCommit bool
	ticket   string
}

func newGenerateCmd(app *App) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate a commit message for the staged changes",
		Long: `Generate a Conventional Commits message for the staged changes.

The staged diff is summarized and sent to the configured AI provider. With
a terminal attached the suggestions are shown for review: accept, edit,
regenerate or cancel. Without one the first suggestion is used.`,
		Example: `  diff2commit generate
  diff2commit generate --count 3
  diff2commit generate --provider gemini --model gemini-1.5-flash
  diff2commit generate --no-review --no-commit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noReview {
				opts.review = false
			}
			return runGenerate(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "c", 1, fmt.Sprintf("Number of suggestions (1-%d)", generate.MaxCount))
	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "AI provider (openai, gemini, openrouter, anthropic)")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model to use")
	cmd.Flags().BoolVar(&opts.review, "review", true, "Review the message before committing")
	cmd.Flags().BoolVar(&opts.noReview, "no-review", false, "Skip the review and use the first suggestion")
	cmd.Flags().BoolVar(&opts.noCommit, "no-commit", false, "Print the message without committing")
	cmd.Flags().StringVar(&opts.ticket, "ticket", "", "Ticket id for the jira template")

	return cmd
}

func runGenerate(ctx context.Context, app *App, opts generateOptions) error {
	if opts.count < 1 || opts.count > generate.MaxCount {
		return errors.WithHintf(
			errors.Mark(errors.Newf("count must be between 1 and %d (got %d)", generate.MaxCount, opts.count), models.ErrConfiguration),
			"pass --count with a value from 1 to %d", generate.MaxCount)
	}

	cfg, err := app.config(config.Overrides{Provider: opts.provider, Model: opts.model})
	if err != nil {
		return err
	}

	repo, err := vcs.Open(app.repo)
	if err != nil {
		return err
	}

	staged, err := repo.HasStagedChanges()
	if err != nil {
		return err
	}
	if !staged {
		return errors.WithHint(models.ErrNoStagedChanges, "stage files with 'git add <file>' first")
	}

	summary, err := repo.StagedDiff()
	if err != nil {
		return err
	}

	info := repo.Info()
	out := app.printer()
	out.Repository(info)
	out.StagedChanges(summary)
	out.Println("")

	mgr, err := app.manager(cfg)
	if err != nil {
		return err
	}
	defer app.closeManager(mgr)

	ticket := opts.ticket
	if ticket == "" && cfg.TicketID == "" {
		ticket = prompt.TicketFromBranch(info.Branch)
	}
	gen, err := mgr.Generator(ticket)
	if err != nil {
		return err
	}

	interactive := app.IsInteractive()
	if opts.review && !interactive {
		out.Warning("Input is not a terminal, using the first suggestion without review")
	}
	reviewing := opts.review && interactive

	var chosen string
	for {
		suggestions, err := progress.Run(ctx, app.In, app.Out, interactive,
			func(ctx context.Context, report func(generate.Event)) ([]*models.CommitMessage, error) {
				return gen.Run(ctx, summary, generate.Options{Count: opts.count, Progress: report})
			})
		if err != nil {
			return err
		}

		if !reviewing {
			out.Message("Generated commit message", suggestions[0])
			chosen = suggestions[0].Format()
			break
		}

		result, err := review.Run(ctx, suggestions, app.In, app.Out)
		if err != nil {
			return err
		}
		logger.Debug("Review finished", "action", result.Action.String())

		switch result.Action {
		case review.Accepted:
			chosen = result.Message
		case review.Regenerate:
			out.Info("Regenerating...")
			continue
		default:
			out.Info("Commit cancelled")
			return nil
		}
		break
	}

	reportValidation(out, cfg, chosen, summary)

	if opts.noCommit {
		out.Success("Commit message generated (not committed)")
		out.Println(chosen)
		return nil
	}

	hash, err := repo.Commit(chosen)
	if err != nil {
		return err
	}
	out.Success(fmt.Sprintf("Committed %s", shortHash(hash)))
	return nil
}

// reportValidation warns about Conventional Commits violations without
// blocking the commit. A type is suggested only when the subject has none.
func reportValidation(out *console.Printer, cfg *config.Config, msg string, summary *models.DiffSummary) {
	if cfg.CommitFormat != config.FormatConventional {
		return
	}
	ok, issues := message.NewValidator(cfg.MaxSubjectLength).ValidateConventional(msg)
	if ok {
		return
	}
	for _, issue := range issues {
		out.Warning(issue)
	}

	subject, _, _ := strings.Cut(msg, "\n")
	if !(&models.CommitMessage{Subject: subject}).IsConventional() {
		out.Info("Suggested type for these changes: " + message.SuggestType(summary.Text))
	}
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/maadhav-codes/diff2commit/internal/config"
	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/message"
	"github.com/maadhav-codes/diff2commit/internal/models"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [message]",
		Short: "Check a commit message against Conventional Commits",
		Long: `Check a commit message against Conventional Commits.

The message is taken from the arguments, or read from stdin when none are
given. The exit status is 1 when the message has issues.`,
		Example: `  diff2commit validate "feat(cli): add usage chart"
  git log -1 --format=%B | diff2commit validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(app.In)
				if err != nil {
					return errors.Wrap(err, "read message from stdin")
				}
				msg = string(data)
			}
			return runValidate(app, strings.TrimSpace(msg))
		},
	}
}

func runValidate(app *App, msg string) error {
	maxSubject := config.Default().MaxSubjectLength
	if cfg, err := app.LoadConfig(); err == nil {
		maxSubject = cfg.MaxSubjectLength
	} else {
		logger.Debug("Using default subject length", "error", err)
	}

	ok, issues := message.NewValidator(maxSubject).ValidateConventional(msg)
	out := app.printer()
	out.Validation(issues, message.ExtractBreakingChange(msg))

	if parts := strings.SplitN(msg, "\n\n", 2); len(parts) == 2 {
		_, long := message.ValidateBodyLineLength(parts[1], message.DefaultBodyLineLength)
		for _, n := range long {
			out.Warning(fmt.Sprintf("Body line %d exceeds %d characters", n, message.DefaultBodyLineLength))
		}
	}

	if !ok {
		return errors.Mark(errSilent, models.ErrInvalidCommitMessage)
	}
	return nil
}

// Package cli implements the diff2commit command line.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/maadhav-codes/diff2commit/internal/config"
	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/services"
	"github.com/maadhav-codes/diff2commit/internal/ui/console"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

// errSilent fails a command whose problem has already been printed.
var errSilent = errors.New("silent failure")

// App holds the streams and hooks shared by every command.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// IsInteractive reports whether both In and Out are terminals.
	IsInteractive func() bool
	// LoadConfig returns the effective configuration.
	LoadConfig func() (*config.Config, error)
	// NewProvider, when set, replaces the provider factory.
	NewProvider services.ProviderFactory

	repo    string
	verbose bool
}

// NewApp returns an App bound to the process streams.
func NewApp() *App {
	return &App{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		IsInteractive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		LoadConfig: config.Load,
	}
}

func (a *App) printer() *console.Printer {
	return console.New(a.Out)
}

func (a *App) errPrinter() *console.Printer {
	return console.New(a.Err)
}

// config loads the configuration and applies the command-line overrides.
func (a *App) config(o config.Overrides) (*config.Config, error) {
	cfg, err := a.LoadConfig()
	if err != nil {
		return nil, err
	}
	o.Verbose = o.Verbose || a.verbose
	if err := cfg.Apply(o); err != nil {
		return nil, err
	}
	if cfg.Verbose && !a.verbose {
		if err := logger.Setup(true); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// manager opens the per-invocation services.
func (a *App) manager(cfg *config.Config) (*services.Manager, error) {
	mgr, err := services.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	if a.NewProvider != nil {
		mgr.SetProviderFactory(a.NewProvider)
	}
	return mgr, nil
}

func (a *App) closeManager(mgr *services.Manager) {
	if err := mgr.Close(); err != nil {
		logger.Warn("Error closing services", "error", err)
	}
}

// NewRootCmd creates the root command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "diff2commit",
		Short: "Generate commit messages from staged changes",
		Long: `diff2commit reads the staged git diff, asks an AI provider for a
Conventional Commits message and lets you review, edit and commit it.

Providers: openai, gemini, openrouter, anthropic. Settings come from
~/.config/d2c/config.toml, .env files and D2C_* environment variables.`,
		Example: `  # Propose a message for the staged changes and commit it
  diff2commit generate

  # Pick from three suggestions made by a specific model
  diff2commit generate -c 3 -p openrouter -m qwen/qwen3-coder:free

  # Print the message without committing
  diff2commit generate --no-review --no-commit

  # Show this month's spend against the limit
  diff2commit usage --monthly`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Setup(app.verbose)
		},
	}

	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.PersistentFlags().StringVar(&app.repo, "repo", ".", "Path inside the git repository")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newGenerateCmd(app),
		newUsageCmd(app),
		newConfigCmd(app),
		newValidateCmd(app),
		newVersionCmd(app),
	)

	return root
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) int {
	root := NewRootCmd(app)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	defer logger.Sync()

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled), ctx.Err() != nil:
		app.errPrinter().Warning("Interrupted")
		return ExitInterrupted
	case errors.Is(err, errSilent):
		return ExitError
	default:
		app.errPrinter().Fail(err)
		return ExitError
	}
}

// Execute runs the command line of the current process.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, NewApp(), os.Args[1:])
}

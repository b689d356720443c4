package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maadhav-codes/diff2commit/internal/config"
	"github.com/maadhav-codes/diff2commit/internal/ui/components"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration after merging the config file,
.env files and D2C_* environment variables. The API key is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config(config.Overrides{})
			if err != nil {
				return err
			}
			app.printer().KeyValues("Configuration", configRows(cfg))
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigPathCmd(app), newConfigCheckCmd(app))
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FilePath()
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			out := app.printer()
			out.Success("Configuration written to " + path)
			out.Info("Set your API key with: export D2C_API_KEY='your-key-here'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.printer().Println(config.FilePath())
			return nil
		},
	}
}

func newConfigCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the API key with the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config(config.Overrides{})
			if err != nil {
				return err
			}
			mgr, err := app.manager(cfg)
			if err != nil {
				return err
			}
			defer app.closeManager(mgr)

			p, err := mgr.Provider()
			if err != nil {
				return err
			}
			if err := p.ValidateCredentials(cmd.Context()); err != nil {
				return err
			}

			info := p.Info()
			app.printer().Success(fmt.Sprintf("Credentials accepted by %s (model %s)", info.Provider, info.Model))
			return nil
		},
	}
}

func configRows(cfg *config.Config) [][]string {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = "(provider default)"
	}
	limit := "none"
	if cfg.CostLimitMonthly > 0 {
		limit = components.FormatCost(cfg.CostLimitMonthly)
	}

	return [][]string{
		{"AI provider", cfg.AIProvider},
		{"AI model", cfg.AIModel},
		{"API key", cfg.MaskedAPIKey()},
		{"API endpoint", endpoint},
		{"Max tokens", strconv.Itoa(cfg.MaxTokens)},
		{"Temperature", strconv.FormatFloat(cfg.Temperature, 'f', -1, 64)},
		{"Timeout", fmt.Sprintf("%ds", cfg.Timeout)},
		{"Max retries", strconv.Itoa(cfg.MaxRetries)},
		{"Commit format", cfg.CommitFormat},
		{"Custom template", cfg.CustomTemplate},
		{"Include emoji", strconv.FormatBool(cfg.IncludeEmoji)},
		{"Max subject length", strconv.Itoa(cfg.MaxSubjectLength)},
		{"Track usage", strconv.FormatBool(cfg.TrackUsage)},
		{"Monthly cost limit", limit},
		{"Config file", cfg.Path()},
		{"Usage database", cfg.UsageDBPath},
	}
}

package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/klokku/pocketbudget/internal/app"
	"github.com/klokku/pocketbudget/internal/config"
	"github.com/klokku/pocketbudget/internal/utils"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command for the pocketbudget CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pocketbudget",
		Short: "Personal expense ledger with a monthly budget and a chat assistant",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel == "" {
				return nil
			}
			level, err := log.ParseLevel(opts.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", opts.LogLevel, err)
			}
			log.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "./config/application.yaml", "path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewChatCommand(opts))

	return cmd
}

func loadConfig(opts *RootOptions) (config.Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Application{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Application{}, err
	}
	return cfg, nil
}

// withDependencies opens storage, builds the services and releases everything after fn returns.
func withDependencies(ctx context.Context, opts *RootOptions, fn func(deps *app.Dependencies) error) (err error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	// one-shot commands never serve websockets
	cfg.Websocket.Enabled = false

	clock := &utils.SystemClock{}
	kv, closeStorage, err := app.OpenStorage(cfg.Storage, clock)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStorage(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	deps, err := app.BuildDependencies(ctx, cfg, kv, clock)
	if err != nil {
		return err
	}
	defer deps.Close()

	return fn(deps)
}

type filterFlags struct {
	text       string
	categories []string
	from       string
	to         string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "only expenses whose description contains this text")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "only expenses in these categories (repeatable)")
	cmd.Flags().StringVar(&f.from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day to include (YYYY-MM-DD)")
}

func (f *filterFlags) query() url.Values {
	query := url.Values{}
	query.Set("text", f.text)
	query["category"] = f.categories
	query.Set("from", f.from)
	query.Set("to", f.to)
	return query
}

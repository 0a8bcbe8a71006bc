package cli

import (
	"fmt"

	"github.com/klokku/pocketbudget/internal/app"
	"github.com/klokku/pocketbudget/pkg/stats"
	"github.com/spf13/cobra"
)

type ChatOptions struct {
	*RootOptions
	filter filterFlags
}

func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chat <text>",
		Short: "Run one chat turn and print the replies",
		Long: `Run one chat turn against the configured completion provider.

The filter flags narrow the ledger snapshot the assistant answers questions from.

Example:
  pocketbudget chat "spent 15 on lunch and 30 for gas"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDependencies(ctx, opts.RootOptions, func(deps *app.Dependencies) error {
				filter, err := stats.ParseFilter(opts.filter.query(), deps.Registry)
				if err != nil {
					return err
				}
				appended, err := deps.ChatPipeline.Submit(ctx, args[0], filter)
				if err != nil {
					return err
				}
				for _, m := range appended {
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", m.Role, m.Text)
				}
				return nil
			})
		},
	}

	opts.filter.register(cmd)

	return cmd
}

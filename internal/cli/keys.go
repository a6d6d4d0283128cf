package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// KeysOptions holds flags for the keys command.
type KeysOptions struct {
	*RootOptions
	Fixture string
}

// KeysResult is the JSON payload of the keys command.
type KeysResult struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeysOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the item ids in a fixture",
		Long: `List every item id stored in a fixture, in sorted order.

Example:
  itemview keys --fixture ./users.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "fixture file (default $"+FixtureEnv+")")

	return cmd
}

func runKeys(opts *KeysOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openFixture(commandContext(cmd), opts.Fixture, formatter)
	if err != nil {
		return err
	}

	keys := st.Keys()
	if opts.Format == "json" {
		return formatter.Success(KeysResult{Keys: keys, Count: len(keys)})
	}

	w := cmd.OutOrStdout()
	if len(keys) == 0 {
		fmt.Fprintln(w, "No records.")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
	return nil
}

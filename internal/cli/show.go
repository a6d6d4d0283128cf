package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/itemview/internal/fixture"
	"github.com/roach88/itemview/internal/record"
	"github.com/roach88/itemview/internal/resolver"
	"github.com/roach88/itemview/internal/store"
	"github.com/roach88/itemview/internal/view"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Fixture string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Resolve an item and display it",
		Long: `Resolve an item by id from a fixture and display it.

An id with no stored record is displayed with a "No data" placeholder and
exits successfully. An empty or malformed id is rejected.

Exit codes:
  0 - Item displayed (found or absent)
  1 - Item could not be rendered
  2 - Command error (invalid id, fixture not found, etc.)

Examples:
  itemview show u1 --fixture ./users.yaml
  ITEMVIEW_FIXTURE=./users.db itemview show u1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "fixture file (default $"+FixtureEnv+")")

	return cmd
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	st, err := openFixture(commandContext(cmd), opts.Fixture, formatter)
	if err != nil {
		return err
	}

	traceID := uuid.NewString()
	logger = logger.With("trace_id", traceID)
	r := resolver.New[record.Object](st, resolver.WithLogger(logger))

	var presenter resolver.Presenter[record.Object]
	if opts.Format == "json" {
		presenter = resolver.PresenterFunc[record.Object](func(id string, res store.Result[record.Object]) error {
			return formatter.SuccessWithTrace(view.NewItem(id, res), traceID)
		})
	} else {
		presenter = view.NewText(cmd.OutOrStdout())
	}

	if err := r.Present(id, presenter); err != nil {
		if code := errorCode(err); code == ErrCodeInvalidKey {
			return formatter.Fail(ExitCommandError, code, "invalid item id", err)
		}
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to display item", err)
	}
	return nil
}

// openFixture resolves the fixture path and loads it into a store,
// reporting failures through formatter.
func openFixture(ctx context.Context, flag string, formatter *OutputFormatter) (*store.Memory[record.Object], error) {
	path, err := fixturePath(flag)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNoFixture, "no fixture given", err)
	}

	formatter.VerboseLog("Loading fixture %s", path)
	st, err := fixture.Load(ctx, path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, errorCode(err), "failed to load fixture", err)
	}
	formatter.VerboseLog("Loaded %d record(s)", st.Len())
	return st, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

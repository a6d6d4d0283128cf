package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/itemview/internal/fixture"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult is the JSON payload of the import command.
type ImportResult struct {
	Fixture  string `json:"fixture"`
	Database string `json:"database"`
	Records  int    `json:"records"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <fixture>",
		Short: "Copy a fixture into a SQLite fixture database",
		Long: `Copy every record of a fixture into a SQLite fixture database.

The database is created if it does not exist. Records already present
under the same id are replaced; other records are kept. The import is
all-or-nothing.

Example:
  itemview import ./users.yaml --db ./users.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, src string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()
	ctx := commandContext(cmd)

	records, err := fixture.Records(ctx, src)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), "failed to load fixture", err)
	}
	logger.Debug("fixture loaded", "path", src, "records", len(records))

	db, err := fixture.OpenDB(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := db.PutAll(ctx, records); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write records", err)
	}
	logger.Debug("records imported", "db", opts.Database, "records", len(records))

	result := ImportResult{Fixture: src, Database: opts.Database, Records: len(records)}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d record(s) into %s\n", result.Records, result.Database)
	return nil
}

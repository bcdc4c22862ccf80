// Package apply provides the apply command.
package apply

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/cmd/cmdutil"
	"github.com/agentstation/driftmap/internal/cmd/output"
	"github.com/agentstation/driftmap/internal/cmd/table"
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/errors"
)

// NewCommand creates the apply command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.SearchFlags

	cmd := &cobra.Command{
		Use:     "apply <type>",
		GroupID: "management",
		Short:   "Store each entity's canonical action in the backend",
		Long: `Apply resolves every matching entity of a type over its full change
log and writes the resulting action back to the backend. Diff filters
never apply here. Each entity is one conditional write; a failed write is
reported and the batch continues.

Only SQL backends (sqlite3, postgres) accept writes.`,
		Example: `  driftmap apply class
  driftmap apply attribute --search pump -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, err := catalogs.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			eng, err := app.Engine(cmd.Context())
			if err != nil {
				return err
			}

			report, err := eng.Apply(cmd.Context(), entityType, flags.Filters())
			if err != nil {
				return err
			}
			format := output.Format(app.OutputFormat())
			if err := output.Write(cmd.OutOrStdout(), format, report, table.ReportToTableData(report)); err != nil {
				return err
			}
			if report.Failed > 0 {
				return errors.NewResourceError("apply", entityType.String(), report.BatchID,
					fmt.Errorf("%d of %d writes failed", report.Failed, report.Evaluated))
			}
			return nil
		},
	}

	flags = cmdutil.AddSearchFlags(cmd)
	return cmd
}

// Package properties provides the properties command.
package properties

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/cmd/cmdutil"
	"github.com/agentstation/driftmap/internal/cmd/output"
	"github.com/agentstation/driftmap/internal/cmd/table"
	"github.com/agentstation/driftmap/pkg/catalogs"
)

// NewCommand creates the properties command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.SearchFlags

	cmd := &cobra.Command{
		Use:     "properties <type>",
		GroupID: "core",
		Short:   "List the properties changed across matching entities",
		Example: `  driftmap properties class
  driftmap properties attribute --search pump`,
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

			props, err := eng.Properties(cmd.Context(), entityType, flags.Filters())
			if err != nil {
				return err
			}
			if props == nil {
				props = []string{}
			}
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), props, table.PropertiesToTableData(props))
		},
	}

	flags = cmdutil.AddSearchFlags(cmd)
	return cmd
}

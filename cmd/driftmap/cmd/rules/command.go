// Package rules provides the rules command.
package rules

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/cmd/output"
	"github.com/agentstation/driftmap/internal/cmd/table"
	"github.com/agentstation/driftmap/pkg/catalogs"
)

// NewCommand creates the rules command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "rules <type>",
		GroupID: "core",
		Short:   "Show the exception rules of an entity type",
		Long: `Rules loads the exception rule snapshot for a type and lists the
action recorded for each property name. Rows with an invalid action are
skipped at load time and reported in the log.`,
		Example: `  driftmap rules class
  driftmap rules attribute -o yaml`,
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

			tbl, err := eng.Rules(cmd.Context(), entityType)
			if err != nil {
				return err
			}
			actions := tbl.Actions()
			order := make([]string, 0, len(actions))
			for property := range actions {
				order = append(order, property)
			}
			sort.Strings(order)

			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), actions, table.RulesToTableData(actions, order))
		},
	}
}

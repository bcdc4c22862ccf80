// Package resolve provides the resolve command.
package resolve

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/cmd/cmdutil"
	"github.com/agentstation/driftmap/internal/cmd/output"
	"github.com/agentstation/driftmap/pkg/catalogs"
)

// NewCommand creates the resolve command.
func NewCommand(app application.Application, defaultPerPage int) *cobra.Command {
	var flags *cmdutil.ResolutionFlags

	cmd := &cobra.Command{
		Use:     "resolve <type>",
		GroupID: "core",
		Short:   "Resolve entities into ignore, update and no-action buckets",
		Long: `Resolve parses the change log of every matching entity of a type,
looks up each changed property in the exception rules, and sorts the
entities into three buckets by their overall action.

Statistics always cover every matching entity. The action filter and
the diff filters only narrow what is listed.`,
		Example: `  driftmap resolve class
  driftmap resolve attribute --search pump --page 2
  driftmap resolve group --action update -o json
  driftmap resolve class --property readOnly,informs --show-updates=false`,
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

			res, err := eng.Run(cmd.Context(), flags.Request(entityType))
			if err != nil {
				return err
			}
			if res.Dropped > 0 {
				app.Logger().Warn().
					Int("dropped", res.Dropped).
					Msg("Some change log blocks could not be read")
			}
			return output.WriteResult(cmd.OutOrStdout(), output.Format(app.OutputFormat()), res)
		},
	}

	flags = cmdutil.AddResolutionFlags(cmd, defaultPerPage)
	return cmd
}

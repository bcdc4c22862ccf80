// Package parse provides the parse command.
package parse

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/cmd/emoji"
	"github.com/agentstation/driftmap/internal/cmd/output"
	"github.com/agentstation/driftmap/internal/cmd/table"
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/changelog"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/resolver"
)

// Resolved is the output of parse --type.
type Resolved struct {
	Action  exceptions.Action       `json:"action" yaml:"action"`
	Diffs   []resolver.ResolvedDiff `json:"diffs" yaml:"diffs"`
	Dropped int                     `json:"dropped" yaml:"dropped"`
}

// NewCommand creates the parse command.
func NewCommand(app application.Application) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:     "parse [file|-]",
		GroupID: "core",
		Short:   "Parse a change log into property diffs",
		Long: `Parse reads a change log from a file, or from stdin when the argument
is "-" or omitted, and prints the (property, source, target) diffs it
contains.

With --type the diffs are also resolved against that type's exception
rules and the overall action is reported.`,
		Example: `  driftmap parse changes.log
  cat changes.log | driftmap parse -o json
  driftmap parse changes.log --type class`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			parsed := changelog.ParseWithStats(raw)
			if parsed.Dropped > 0 {
				cmd.PrintErrf("%s %d block(s) could not be read\n", emoji.Warning, parsed.Dropped)
			}

			format := output.Format(app.OutputFormat())
			if typeName == "" {
				return output.Write(cmd.OutOrStdout(), format, parsed, table.DiffsToTableData(parsed.Diffs))
			}

			entityType, err := catalogs.ParseEntityType(typeName)
			if err != nil {
				return err
			}
			eng, err := app.Engine(cmd.Context())
			if err != nil {
				return err
			}
			rules, err := eng.Rules(cmd.Context(), entityType)
			if err != nil {
				return err
			}

			diffs := resolver.ResolveDiffs(entityType, parsed.Diffs, tableLookup{rules})
			res := Resolved{Action: resolver.OverallAction(diffs), Diffs: diffs, Dropped: parsed.Dropped}
			if err := output.Write(cmd.OutOrStdout(), format, res, table.ResolvedDiffsToTableData(diffs)); err != nil {
				return err
			}
			if format.IsTable() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Overall action: %s\n", res.Action)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Resolve diffs against this entity type's rules")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.NewIOError("read", "stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", errors.NewIOError("read", args[0], err)
	}
	return string(data), nil
}

// tableLookup adapts a single-type rule table to exceptions.Lookuper.
type tableLookup struct {
	exceptions.Table
}

func (t tableLookup) Lookup(_ catalogs.EntityType, property string) exceptions.Action {
	return t.Table.Lookup(property)
}

// Package table converts resolution results to rows for CLI output.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/driftmap/pkg/changelog"
	"github.com/agentstation/driftmap/pkg/engine"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/resolver"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// maxCell truncates long source/target values in narrow output.
const maxCell = 40

// ResultToTableData converts a resolution page to one row per entity, in
// bucket order. Wide output adds the description and the diff lists.
func ResultToTableData(res *engine.Result, wide bool) Data {
	headers := []string{"Bucket", "ID", "Name", "Parent", "Action", "Diffs"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight}
	if wide {
		headers = append(headers, "Description", "Source", "Target")
		align = append(align, AlignLeft, AlignLeft, AlignLeft)
	}

	items := res.Items()
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := []string{
			item.CanonicalAction.String(),
			item.ID,
			item.Name,
			item.ParentName,
			displayAction(item),
			strconv.Itoa(item.DiffCount) + "/" + strconv.Itoa(item.TotalDiffCount),
		}
		if wide {
			row = append(row, item.Description, item.Source, item.Target)
		} else if item.ParentName == "" && item.ParentID != nil {
			row[3] = *item.ParentID
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// displayAction shows the display label, noting when it differs from the
// bucket the entity sits in.
func displayAction(item engine.Item) string {
	if item.Action == item.CanonicalAction {
		return item.Action.String()
	}
	return item.Action.String() + " (filtered)"
}

// SummaryToTableData converts the page statistics to a two-column table.
func SummaryToTableData(res *engine.Result) Data {
	stats := res.Statistics
	return Data{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Ignore", strconv.Itoa(stats.IgnoreCount)},
			{"Update", strconv.Itoa(stats.UpdateCount)},
			{"No action", strconv.Itoa(stats.NoActionCount)},
			{"Page", strconv.Itoa(res.CurrentPage) + " of " + strconv.Itoa(res.TotalPages)},
			{"Matching", strconv.Itoa(res.TotalCount)},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// DiffsToTableData converts parsed diffs to rows.
func DiffsToTableData(diffs []changelog.PropertyDiff) Data {
	rows := make([][]string, 0, len(diffs))
	for _, d := range diffs {
		rows = append(rows, []string{d.Property, truncate(d.Source), truncate(d.Target)})
	}
	return Data{Headers: []string{"Property", "Source", "Target"}, Rows: rows}
}

// ResolvedDiffsToTableData converts resolved diffs to rows.
func ResolvedDiffsToTableData(diffs []resolver.ResolvedDiff) Data {
	rows := make([][]string, 0, len(diffs))
	for _, d := range diffs {
		rows = append(rows, []string{d.Property, truncate(d.Source), truncate(d.Target), d.Action.String()})
	}
	return Data{Headers: []string{"Property", "Source", "Target", "Action"}, Rows: rows}
}

// RulesToTableData converts a rule table, keyed by property name, to rows.
func RulesToTableData(rules map[string]exceptions.Action, order []string) Data {
	rows := make([][]string, 0, len(order))
	for _, property := range order {
		a := rules[property]
		rows = append(rows, []string{property, a.String(), strconv.Itoa(a.Code())})
	}
	return Data{
		Headers:         []string{"Property", "Action", "Code"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

// PropertiesToTableData lists property names one per row.
func PropertiesToTableData(props []string) Data {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{p})
	}
	return Data{Headers: []string{"Property"}, Rows: rows}
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= maxCell {
		return s
	}
	return string([]rune(s)[:maxCell-3]) + "..."
}

// ReportToTableData converts an apply report to a two-column table.
func ReportToTableData(report *engine.ApplyReport) Data {
	stats := report.Statistics
	return Data{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Batch", report.BatchID},
			{"Evaluated", strconv.Itoa(report.Evaluated)},
			{"Changed", strconv.Itoa(report.Changed)},
			{"Unchanged", strconv.Itoa(report.Unchanged)},
			{"Failed", strconv.Itoa(report.Failed)},
			{"Ignore", strconv.Itoa(stats.IgnoreCount)},
			{"Update", strconv.Itoa(stats.UpdateCount)},
			{"No action", strconv.Itoa(stats.NoActionCount)},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

package output

import (
	"io"

	"github.com/agentstation/driftmap/internal/cmd/table"
	"github.com/agentstation/driftmap/pkg/engine"
)

// Write renders data in the given format. tableData is used for table
// formats and data for structured ones.
func Write(w io.Writer, format Format, data any, tableData table.Data) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, tableData)
	}
	return NewFormatter(format).Format(w, data)
}

// WriteResult renders a resolution page. Table formats print the entity
// rows followed by the statistics summary.
func WriteResult(w io.Writer, format Format, res *engine.Result) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, res)
	}
	f := &TableFormatter{}
	if err := f.Format(w, table.ResultToTableData(res, format == FormatWide)); err != nil {
		return err
	}
	return f.Format(w, table.SummaryToTableData(res))
}

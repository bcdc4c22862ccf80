// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols used for status markers in command output.
const (
	// Success marks a completed operation or an entity whose stored action changed.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Warning marks non-critical issues such as dropped log blocks.
	Warning = "!"

	// Unchanged marks a write that left the stored action as it was.
	Unchanged = "-"
)

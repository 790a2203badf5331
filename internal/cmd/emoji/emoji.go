// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

// Symbol constants for CLI output.
const (
	// Success represents successful completion of an operation.
	// Used for: written outputs, resolved fields.
	Success = "✓"

	// Error represents failures or missing required input.
	// Used for: unresolved fields, failed writes.
	Error = "✗"

	// Warning represents non-fatal problems.
	// Used for: corrupt manifest, unavailable store.
	Warning = "!"

	// Optional represents skipped or not applicable values.
	// Used for: dry runs, sheets without a header row.
	Optional = "-"

	// Info represents informational messages.
	Info = "i"
)

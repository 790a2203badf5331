// Package constants provides shared constants used throughout sheetsync:
// file permissions, default paths, classification limits and workflow values.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Default locations, relative to the working directory.
const (
	// DefaultSourceFile is the workbook imported when no source is given.
	DefaultSourceFile = "AVAONE_Strategic_Master_Sheet_Q1_UPDATED.xlsx"

	// DefaultStorePath is the SQLite database holding tasks and docs.
	DefaultStorePath = "data/workos.db"

	// DefaultOutputDir receives the action batch and manifest.
	DefaultOutputDir = "scripts/out"

	// DefaultPayloadFile is the action batch file name inside DefaultOutputDir.
	DefaultPayloadFile = "avaone_q1_payload.json"

	// DefaultManifestFile is the manifest file name inside DefaultOutputDir.
	DefaultManifestFile = "avaone_q1_manifest.json"
)

// Classification and extraction limits
const (
	// HeaderScanRows is how many leading rows are searched for a header row.
	HeaderScanRows = 5

	// MinHeaderCells is the number of non-empty cells a header row needs.
	MinHeaderCells = 2

	// MinTableRows and MinTableCols bound the smallest table-shaped sheet.
	MinTableRows = 2
	MinTableCols = 2

	// ReferencePreviewRows caps the rows copied into a reference document.
	ReferencePreviewRows = 50
)

// Workflow values written into task payloads
const (
	// DefaultPriority is assigned to every created task.
	DefaultPriority = 2

	// StatusPlanned marks a task that has a start date.
	StatusPlanned = "planned"

	// StatusInbox marks a task without a start date.
	StatusInbox = "inbox"

	// StatusDone marks a soft-deleted task.
	StatusDone = "done"

	// BucketMorning is the schedule bucket for planned tasks.
	BucketMorning = "morning"

	// BucketNone is the schedule bucket for inbox tasks.
	BucketNone = "none"

	// ControlDocSaveAs names the control document for executors that resolve forward references.
	ControlDocSaveAs = "control_doc"
)

// Timeouts
const (
	// StoreQueryTimeout bounds the one-shot store lookup at the start of a run.
	StoreQueryTimeout = 30 * time.Second
)

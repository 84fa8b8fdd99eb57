package training

import "errors"

// Domain errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrTierLimit      = errors.New("payment tier limit reached")
	ErrUnknownField   = errors.New("unknown field")
	ErrNoSelection    = errors.New("no record selected")
)

// Persistence and transfer errors. Storage failures are logged only;
// import, export and summary failures are shown to the operator.
var (
	ErrStorageCorrupt     = errors.New("stored collection is corrupt")
	ErrStorageWriteFailed = errors.New("failed to write collection to storage")
	ErrImportInvalid      = errors.New("import file is not a valid collection")
	ErrImportCancelled    = errors.New("import cancelled")
	ErrExportEmpty        = errors.New("nothing to export")
	ErrSummaryFailed      = errors.New("summary generation failed")
)

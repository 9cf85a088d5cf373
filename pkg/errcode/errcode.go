package errcode

import (
	"net/http"

	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError
	DBQueryError
	DBScanError
	DBWriteError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError
	SchemaIndexError

	// Not-found errors
	DatasetNotFoundError
	DataNotFoundError

	// Conflict errors
	DuplicateKeyError
	RevisionConflictError

	// User (bad request) errors
	InvalidFilterError
	InvalidRecordError
	UnsupportedStatError
	PivotNotDeclaredError
	InsufficientKeysError
	GeneticPivotError

	// Refresh errors
	RefreshCancelledError
	AllRefreshFailedError

	// Server errors
	ServerStartError
	InvalidRequestError

	// Import errors
	TermsDecodeError
)

// Status maps an error code to the HTTP status the route layer
// reports for it. Codes without a user-facing category map to 500.
func Status(code gn.ErrorCode) int {
	switch code {
	case DatasetNotFoundError, DataNotFoundError:
		return http.StatusNotFound
	case DuplicateKeyError, RevisionConflictError:
		return http.StatusConflict
	case InvalidFilterError, InvalidRecordError, InvalidRequestError,
		UnsupportedStatError, PivotNotDeclaredError, InsufficientKeysError,
		GeneticPivotError:
		return http.StatusBadRequest
	case AllRefreshFailedError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

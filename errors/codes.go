package errors

// ErrorCode identifies an application-level failure class.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS   ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1004

	// Slides and scripts
	ErrorCode_SLIDE_NOT_FOUND          ErrorCode = 2000
	ErrorCode_SCRIPT_NOT_FOUND         ErrorCode = 2001
	ErrorCode_SCRIPT_EMPTY             ErrorCode = 2002
	ErrorCode_CHAR_RANGE_OUT_OF_BOUNDS ErrorCode = 2003

	// Markers
	ErrorCode_MARKER_NOT_FOUND    ErrorCode = 3000
	ErrorCode_NO_SOURCE_POSITIONS ErrorCode = 3001

	// Speech and translation
	ErrorCode_SYNTHESIS_FAILED   ErrorCode = 4000
	ErrorCode_TRANSLATION_FAILED ErrorCode = 4001

	// Infrastructure
	ErrorCode_DB_QUERY_FAILED            ErrorCode = 5000
	ErrorCode_DB_TRANSACTION_FAILED      ErrorCode = 5001
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 5002
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 5003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_SLIDE_NOT_FOUND:            "SLIDE_NOT_FOUND",
	ErrorCode_SCRIPT_NOT_FOUND:           "SCRIPT_NOT_FOUND",
	ErrorCode_SCRIPT_EMPTY:               "SCRIPT_EMPTY",
	ErrorCode_CHAR_RANGE_OUT_OF_BOUNDS:   "CHAR_RANGE_OUT_OF_BOUNDS",
	ErrorCode_MARKER_NOT_FOUND:           "MARKER_NOT_FOUND",
	ErrorCode_NO_SOURCE_POSITIONS:        "NO_SOURCE_POSITIONS",
	ErrorCode_SYNTHESIS_FAILED:           "SYNTHESIS_FAILED",
	ErrorCode_TRANSLATION_FAILED:         "TRANSLATION_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:      "DB_TRANSACTION_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrUnknownField   ErrCode = "UNKNOWN_FIELD"
	ErrInvalidNumber  ErrCode = "INVALID_NUMBER"
	ErrSubjectIndex   ErrCode = "SUBJECT_INDEX_OUT_OF_RANGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Submission ────────────────────────────────────────────────────
	ErrSubmissionInProgress ErrCode = "SUBMISSION_IN_PROGRESS"
	ErrSubmissionFailed     ErrCode = "SUBMISSION_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check the highlighted fields."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrUnknownField:
		return "Unknown form field."
	case ErrInvalidNumber:
		return "This field only accepts numbers."
	case ErrSubjectIndex:
		return "No subject at that position."

	case ErrNotFound:
		return "Resource not found."

	case ErrSubmissionInProgress:
		return "Marksheets are already being created for this form."
	case ErrSubmissionFailed:
		return "Failed to create template"

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}

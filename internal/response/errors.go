package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidOTP    ErrCode = "INVALID_OTP"
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden            ErrCode = "FORBIDDEN"
	ErrSubscriptionRequired ErrCode = "SUBSCRIPTION_REQUIRED"
	ErrUsageLimitReached    ErrCode = "USAGE_LIMIT_REACHED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrPaperNotAvailable  ErrCode = "PAPER_NOT_AVAILABLE"
	ErrNoQuestions        ErrCode = "NO_QUESTIONS"
	ErrCompetitionNotLive ErrCode = "COMPETITION_NOT_LIVE"
	ErrAlreadySubmitted   ErrCode = "ALREADY_SUBMITTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidOTP:
		return "The OTP is incorrect or has expired."
	case ErrTokenRequired:
		return "Please log in to continue."
	case ErrTokenInvalid:
		return "Your login is no longer valid. Please log in again."
	case ErrTokenExpired:
		return "Your session has expired. Please log in again."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrSubscriptionRequired:
		return "This content is available on a paid plan. Upgrade to unlock it."
	case ErrUsageLimitReached:
		return "You have reached today's limit for this feature."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrPaperNotAvailable:
		return "This paper is not available."
	case ErrNoQuestions:
		return "This paper has no questions."
	case ErrCompetitionNotLive:
		return "This competition is not live."
	case ErrAlreadySubmitted:
		return "This attempt has already been submitted."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}

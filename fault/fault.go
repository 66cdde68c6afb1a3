// error instances
//
// Provides a single instance of errors to allow easy comparison
package fault

// error base
type GenericError string

// to allow for different classes of errors
type FundsError GenericError
type RateLimitError GenericError
type ProviderError GenericError
type StorageError GenericError
type NotFoundError GenericError
type GoneError GenericError
type InvalidError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrArtifactConsumed    = GoneError("artifact already consumed")
	ErrArtifactNotFound    = NotFoundError("artifact not found")
	ErrCommitFailed        = ProcessError("generation commit failed")
	ErrInsufficientCoins   = FundsError("insufficient coins")
	ErrInvalidAmount       = InvalidError("amount must be greater than zero")
	ErrInvalidPrompt       = InvalidError("prompt is required")
	ErrProviderAuthFailed  = ProviderError("provider authentication failed")
	ErrProviderRejected    = ProviderError("provider rejected the request")
	ErrProviderUnavailable = ProviderError("provider unavailable")
	ErrRateLimitTimeout    = RateLimitError("rate limit wait timed out")
	ErrStorageWriteFailed  = StorageError("artifact storage write failed")
	ErrUserNotFound        = NotFoundError("user not found")
	ErrWrongCredentials    = InvalidError("wrong email or password")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e FundsError) Error() string     { return string(e) }
func (e RateLimitError) Error() string { return string(e) }
func (e ProviderError) Error() string  { return string(e) }
func (e StorageError) Error() string   { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e GoneError) Error() string      { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e ProcessError) Error() string   { return string(e) }

// determine the class of an error
func IsErrFunds(e error) bool     { _, ok := e.(FundsError); return ok }
func IsErrRateLimit(e error) bool { _, ok := e.(RateLimitError); return ok }
func IsErrProvider(e error) bool  { _, ok := e.(ProviderError); return ok }
func IsErrStorage(e error) bool   { _, ok := e.(StorageError); return ok }
func IsErrNotFound(e error) bool  { _, ok := e.(NotFoundError); return ok }
func IsErrGone(e error) bool      { _, ok := e.(GoneError); return ok }
func IsErrInvalid(e error) bool   { _, ok := e.(InvalidError); return ok }
func IsErrProcess(e error) bool   { _, ok := e.(ProcessError); return ok }

// Kind maps an error to its stable machine-readable kind for API
// responses. Retryable kinds are the ones a client may resubmit.
func Kind(e error) string {
	switch e.(type) {
	case FundsError:
		return "insufficient_funds"
	case RateLimitError:
		return "rate_limit_timeout"
	case ProviderError:
		switch e {
		case ErrProviderAuthFailed:
			return "provider_auth_failed"
		case ErrProviderRejected:
			return "provider_rejected"
		}
		return "provider_unavailable"
	case StorageError:
		return "storage_failure"
	case NotFoundError:
		return "not_found"
	case GoneError:
		return "gone"
	case InvalidError:
		return "invalid_request"
	default:
		return "internal_error"
	}
}

// Retryable reports whether a client may usefully resubmit the same
// request later.
func Retryable(e error) bool {
	switch e.(type) {
	case RateLimitError:
		return true
	case ProviderError:
		return e == ErrProviderUnavailable
	default:
		return false
	}
}

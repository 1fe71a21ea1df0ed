package types

import "fmt"

// LocalValidationError reports a precondition failure caught before any
// network call is made: a malformed address, an outcome that does not match
// the market kind, a negative stake, or a bad creation form field.
type LocalValidationError struct {
	Field  string // dotted path of the offending field, e.g. "metadata.firstSide.name"
	Reason string
}

func (e *LocalValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}

	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// UpstreamRejectionError reports that the ledger API rejected a request,
// either with a non-2xx status or with a success=false envelope on a 2xx
// response. Body carries the raw response text for diagnosis.
type UpstreamRejectionError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamRejectionError) Error() string {
	return fmt.Sprintf("upstream rejected request (status %d): %s", e.StatusCode, e.Body)
}

// DecodeError reports a response body that could not be decoded or validated
// into its typed form: a malformed transport envelope, a missing required
// field, or a value that fails a structural predicate. Raw carries the
// offending payload text.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SigningError reports that the external signing collaborator refused or
// failed to submit a transaction. User cancellation and signer unavailability
// are not distinguished.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

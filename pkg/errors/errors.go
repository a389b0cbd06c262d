package errors

import "errors"

// Failure kinds surfaced by the sync and mutation layers. Callers classify
// with errors.Is; the core never formats user-facing messages itself.
var (
	// ErrNotFound - object absent from the ledger
	ErrNotFound = errors.New("object not found on ledger")
	// ErrInvalidShape - object present but its content doesn't match the expected schema
	ErrInvalidShape = errors.New("object content has unexpected shape")
	// ErrFetchFailure - transport or timeout failure on a read
	ErrFetchFailure = errors.New("fetching from ledger failed")
	// ErrAuthorizationFailure - missing or ambiguous capability object
	ErrAuthorizationFailure = errors.New("capability for requested action is missing or ambiguous")
	// ErrNotAuthorizedLocally - cached membership view already proves the caller lacks standing
	ErrNotAuthorizedLocally = errors.New("caller has no standing for requested action")
	// ErrSubmissionFailure - write rejected by the ledger or transport failure on submit
	ErrSubmissionFailure = errors.New("submitting request to ledger failed")
)

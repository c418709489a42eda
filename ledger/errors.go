package ledger

import "errors"

// Errors returned by the ledger. They are always wrapped with context, so
// compare with errors.Is.
var (
	// ErrInvalidTransaction covers malformed addresses, failed signature
	// verification and tampered hashes.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrUnauthorizedSigner is returned when a transfer is signed with a key
	// that does not match its From address.
	ErrUnauthorizedSigner = errors.New("signer does not own the sending address")

	// ErrChainIntegrity is the diagnostic produced by Validate. The ledger
	// never raises it on its own; it is only reported when asked.
	ErrChainIntegrity = errors.New("chain integrity failure")

	// ErrMiningInProgress is returned when a second mine is started on the
	// same ledger while one is still running.
	ErrMiningInProgress = errors.New("mining already in progress")

	// ErrMiningAborted is returned when proof-of-work stopped before a valid
	// nonce was found (context cancelled or nonce bound exhausted).
	ErrMiningAborted = errors.New("mining aborted")
)

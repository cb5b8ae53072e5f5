package signing

import "errors"

// Error taxonomy from spec §7. Party handlers return these (directly or
// wrapped with fmt.Errorf("...: %w", ...)) for the conditions described
// on each. Errors for nil input fields, and errors from the mta and
// paillier layers other than decryption failures (e.g. Paillier key
// generation errors, mta.ErrNotFinalized), are returned without one of
// these sentinels. There are no internal retries at this layer (the
// enclosing coordinator may retry a whole session with fresh nonces,
// never this party in place).
var (
	// ErrState is returned when an operation is invoked in the wrong phase.
	ErrState = errors.New("signing: operation invalid in current state")

	// ErrSlotAlreadyFilled is returned on a duplicate peer message for an
	// already-seen slot. The existing value is never overwritten.
	ErrSlotAlreadyFilled = errors.New("signing: slot already filled")

	// ErrDecryption is returned by MtARound3 when a peer's MtA ciphertext
	// is malformed; it wraps paillier.ErrDecryptionFailure.
	ErrDecryption = errors.New("signing: peer ciphertext failed to decrypt")

	// ErrVerification is returned by coordinate.Sign when the final
	// signature does not check out under the verifier (C7).
	ErrVerification = errors.New("signing: signature verification failed")

	// ErrEntropy names an unavailable OS RNG. No function in this module
	// returns it: NewParty returns no error, and curve.SampleScalar (used
	// by Begin) panics when its entropy source fails.
	ErrEntropy = errors.New("signing: entropy source unavailable")

	// ErrUnknownPeer is returned when a peer index is out of range or is
	// the party's own index (self-position is a placeholder, never
	// exchanged).
	ErrUnknownPeer = errors.New("signing: unknown or self peer index")
)

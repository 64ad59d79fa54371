package domain

// GenericDecryptionError is the only message ever shown for a cryptographic decryption
// failure. It deliberately does not say whether the password or the data was wrong.
const GenericDecryptionError = "invalid password or corrupted data"

// FailureReason categorizes a failed decryption.
type FailureReason string

const (
	// ReasonNone is used for successful results.
	ReasonNone FailureReason = ""

	// ReasonMissingField means a required envelope field was empty.
	ReasonMissingField FailureReason = "missing_field"

	// ReasonInvalidEncoding means a base64 field was malformed or decoded to the wrong size.
	ReasonInvalidEncoding FailureReason = "invalid_encoding"

	// ReasonUnsupportedAlgorithm means an algorithm tag was not recognized.
	ReasonUnsupportedAlgorithm FailureReason = "unsupported_algorithm"

	// ReasonInvalidEnvelope means the envelope failed validation for another reason.
	ReasonInvalidEnvelope FailureReason = "invalid_envelope"

	// ReasonInvalidPassword means the password was empty.
	ReasonInvalidPassword FailureReason = "invalid_password"

	// ReasonKeyDerivationFailed means no key could be derived.
	ReasonKeyDerivationFailed FailureReason = "key_derivation_failed"

	// ReasonDecryptionFailed covers wrong password and tampered data alike.
	ReasonDecryptionFailed FailureReason = "decryption_failed"
)

// DecryptionState is a step of the per-call decryption state machine:
// Validating -> DerivingKey -> Decrypting -> {Success | Failed}. State holds the
// terminal step of a result and FailedAt the step a failure stopped in.
type DecryptionState string

const (
	StateValidating  DecryptionState = "validating"
	StateDerivingKey DecryptionState = "deriving_key"
	StateDecrypting  DecryptionState = "decrypting"
	StateSuccess     DecryptionState = "success"
	StateFailed      DecryptionState = "failed"
)

// DecryptionResult is the outcome of a single decryption.
//
// Decryption never returns an error for expected failure modes: a wrong password is a
// normal, recoverable condition and is reported here with Success set to false.
type DecryptionResult struct {
	Success  bool            `json:"success"`
	Data     string          `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
	Reason   FailureReason   `json:"reason,omitempty"`
	State    DecryptionState `json:"-"`
	FailedAt DecryptionState `json:"-"`
}

// SucceededWith builds a successful result.
func SucceededWith(data string) DecryptionResult {
	return DecryptionResult{Success: true, Data: data, State: StateSuccess}
}

// FailedWith builds a failed result. Cryptographic reasons always carry the generic message.
func FailedWith(reason FailureReason, message string) DecryptionResult {
	if reason == ReasonDecryptionFailed || message == "" {
		message = GenericDecryptionError
	}
	return DecryptionResult{Success: false, Error: message, Reason: reason, State: StateFailed}
}

// At records the step a failed result stopped in. Successful results are returned as is.
func (r DecryptionResult) At(step DecryptionState) DecryptionResult {
	if !r.Success {
		r.FailedAt = step
	}
	return r
}

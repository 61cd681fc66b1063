package models

// Reason codes reported for rejected submissions.
const (
	ReasonSellerBlocked           = "SELLER_BLOCKED"
	ReasonSellerNotRegistered     = "SELLER_NOT_REGISTERED"
	ReasonSerialInvalid           = "SERIAL_INVALID"
	ReasonInternalValidationError = "INTERNAL_VALIDATION_ERROR"
)

// VerdictKind tags a Verdict.
type VerdictKind int

const (
	VerdictValid VerdictKind = iota
	VerdictRejected
	VerdictInternalError
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictValid:
		return "valid"
	case VerdictRejected:
		return "rejected"
	case VerdictInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of validating a submission.
// Reason is set for VerdictRejected; Err is set for VerdictInternalError.
type Verdict struct {
	Kind   VerdictKind
	Reason string
	Err    error
}

// Valid returns a passing verdict.
func Valid() Verdict { return Verdict{Kind: VerdictValid} }

// Rejected returns a verdict rejecting the submission for reason.
func Rejected(reason string) Verdict { return Verdict{Kind: VerdictRejected, Reason: reason} }

// InternalError returns a verdict for a lookup that could not be completed.
func InternalError(err error) Verdict {
	return Verdict{Kind: VerdictInternalError, Reason: ReasonInternalValidationError, Err: err}
}

// IsValid reports whether v lets the submission proceed.
func (v Verdict) IsValid() bool { return v.Kind == VerdictValid }

// Blocked reports whether v rejects a salesperson who is already blocked.
func (v Verdict) Blocked() bool {
	return v.Kind == VerdictRejected && v.Reason == ReasonSellerBlocked
}

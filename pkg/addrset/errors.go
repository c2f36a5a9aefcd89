package addrset

import "fmt"

// Kind classifies an Error without relying on string matching, the way
// callers in the teacher codebase use errors.Is against sentinel values
// (see pkg/goDB/conditions/node/node.go's errEmptyConditional).
type Kind int

// Error kinds produced by parsing and compiling an address expression.
const (
	// SyntaxError covers malformed expressions at any level: unbalanced
	// brackets, stray punctuation, an empty atom, or "!any".
	SyntaxError Kind = iota + 1
	// InvalidMask covers a CIDR prefix out of range, a non-contiguous
	// dotted-quad mask, or a malformed address body.
	InvalidMask
	// ReversedRange covers lo > hi in a literal range.
	ReversedRange
	// UnknownVariable covers a $name with no entry in the variable table.
	UnknownVariable
	// FullNegation covers a shadow head that covers the entire address
	// space for some family.
	FullNegation
	// EmptyAfterNegation covers all positive coverage being removed by
	// negation.
	EmptyAfterNegation
	// FamilyMismatch covers an internal invariant violation: a comparison
	// attempted across V4/V6. It should never surface if the parser is
	// correct.
	FamilyMismatch
	// OutOfMemory covers an allocation failure from the underlying arena.
	OutOfMemory
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case InvalidMask:
		return "InvalidMask"
	case ReversedRange:
		return "ReversedRange"
	case UnknownVariable:
		return "UnknownVariable"
	case FullNegation:
		return "FullNegation"
	case EmptyAfterNegation:
		return "EmptyAfterNegation"
	case FamilyMismatch:
		return "FamilyMismatch"
	case OutOfMemory:
		return "OutOfMemory"
	default:
		return "UnknownError"
	}
}

// Error is the error type returned by every parse and insertion call in
// this package. It carries a Kind so that callers can use errors.Is /
// errors.As instead of matching message text.
type Error struct {
	Kind Kind
	msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Is allows errors.Is(err, addrset.SyntaxError) style checks against a bare
// Kind by way of a wrapping sentinel; see KindError below for the idiomatic
// form.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// KindError returns a sentinel *Error for the given kind, suitable for use
// with errors.Is(err, addrset.KindError(addrset.ReversedRange)).
func KindError(k Kind) error {
	return &Error{Kind: k}
}

func newError(k Kind, format string, args ...any) error {
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...)}
}

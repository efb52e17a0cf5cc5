package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a bridge failure. Every error leaving this package that
// originated in the guest or in bridge bookkeeping carries exactly one kind;
// unrelated host-side errors propagate unmodified.
type Kind uint8

const (
	// InvalidArgument marks bad input types. Local, always recoverable.
	InvalidArgument Kind = iota
	// UnsupportedPlatform means the host cannot create isolated execution
	// contexts at all. Fatal at construction.
	UnsupportedPlatform
	// MissingLanguageSupport means the JavaScript runtime is unavailable.
	// Fatal at construction.
	MissingLanguageSupport
	// PlatformAlreadyInitialized marks a configuration-ordering violation:
	// platform flags were set after the first context was created.
	PlatformAlreadyInitialized
	// ContextStopped marks a permanently terminated context. Recoverable
	// only by creating a new context.
	ContextStopped
	// ParseError marks a guest syntax error.
	ParseError
	// ScriptTerminated means execution was cut off by Stop or a timeout.
	ScriptTerminated
	// RuntimeError is the catch-all for guest-thrown failures and host
	// stack exhaustion during conversion.
	RuntimeError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case UnsupportedPlatform:
		return "UnsupportedPlatform"
	case MissingLanguageSupport:
		return "MissingLanguageSupport"
	case PlatformAlreadyInitialized:
		return "PlatformAlreadyInitialized"
	case ContextStopped:
		return "ContextStopped"
	case ParseError:
		return "ParseError"
	case ScriptTerminated:
		return "ScriptTerminated"
	default:
		return "RuntimeError"
	}
}

// Error is a typed bridge failure: a kind, a human-readable message, and,
// for guest-thrown failures, a backtrace with frame labels rewritten to
// reference the evaluated script.
type Error struct {
	Kind      Kind
	Message   string
	Backtrace []string
}

func (e *Error) Error() string {
	if len(e.Backtrace) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s\n\t%s", e.Kind, e.Message, strings.Join(e.Backtrace, "\n\t"))
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the bridge kind of an error. The second return is false
// when the error did not originate in this package.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a bridge error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

package codec

import "errors"

// maxConversionDepth bounds recursion in both conversion directions so a
// cyclic or pathologically deep value exhausts this budget, not the
// goroutine stack.
const maxConversionDepth = 128

// ErrDepthExceeded is returned when a value nests beyond
// maxConversionDepth. It surfaces to callers as a recoverable runtime
// error.
var ErrDepthExceeded = errors.New("stack depth exceeded during value conversion")

// Function marks a slot that held a callable in the guest. Callables are
// not transferable across the bridge; the marker records that one was there.
type Function struct{}

func (Function) String() string { return "[JavaScript function]" }

// MarshalJSON renders the marker as its display string so API responses
// stay serializable.
func (Function) MarshalJSON() ([]byte, error) {
	return []byte(`"[JavaScript function]"`), nil
}

// Symbol is the host representation of a guest Symbol: its description as
// an interned-string type. Symbol identity does not survive the bridge.
type Symbol string

// FailedConversion is the sentinel the encoder substitutes for host values
// with no guest equivalent. Degradation is silent on the guest side; the
// encoder counts occurrences so callers can surface them.
const FailedConversion = "[failed host conversion]"

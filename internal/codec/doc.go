/*
Package codec converts values between the host (Go) and guest (JavaScript)
type systems.

Every guest value crossing the boundary is first classified into a closed
variant set (Null, Bool, Number, String, Array, Date, Symbol, Callable,
Object); all decoding dispatches on that classification rather than probing
capabilities.

The two directions are deliberately asymmetric and not round-trip safe:

  - a guest callable decodes to an opaque Function marker, never the callable;
  - a callable inside a guest array decodes to nil;
  - a callable member of a guest object is dropped (key omitted);
  - a guest Symbol decodes to the Symbol string type, losing identity;
  - a host value with no guest equivalent encodes to a sentinel string
    (FailedConversion) instead of raising.

Booleans, integers, floats, strings, nil, and nested arrays/maps of those
round-trip unchanged.
*/
package codec

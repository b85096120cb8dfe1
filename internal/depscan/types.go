package depscan

import "fmt"

// Confidence classifies how certain the scanner is that a reference is a
// real dependency. Downstream consumers choose their own strictness.
type Confidence string

const (
	// Certain references come from declaration idioms (import, require);
	// failing to localize one leaves the plugin broken
	Certain Confidence = "certain"

	// Heuristic references come from free-text pattern matching; failing to
	// localize one is advisory
	Heuristic Confidence = "heuristic"
)

// RefKind tags where in the body a reference was found
type RefKind string

const (
	// RefImport is a module import or require target
	RefImport RefKind = "import"

	// RefURL is an absolute or protocol-relative URL literal
	RefURL RefKind = "url"

	// RefProxy is a companion local-proxy address (loopback + fixed port
	// convention); it is reported but never fetched
	RefProxy RefKind = "proxy"
)

// Ref is one candidate dependency reference extracted from a plugin body
type Ref struct {
	Target     string
	Kind       RefKind
	Confidence Confidence
}

// DecodeError reports a packed plugin body whose encoding header was
// recognized but whose payload could not be decoded.
type DecodeError struct {
	Encoding string
	Err      error
}

// Error returns the error message
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s packed body: %v", e.Encoding, e.Err)
}

// Unwrap returns the underlying cause
func (e *DecodeError) Unwrap() error {
	return e.Err
}

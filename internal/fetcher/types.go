package fetcher

import "fmt"

// UnreachableError reports a reference that could not be retrieved, either
// because the network failed or because the server returned a permanent
// error status.
type UnreachableError struct {
	Ref        string
	StatusCode int
	Err        error
}

// Error returns the error message
func (e *UnreachableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unreachable: HTTP %d for %s", e.StatusCode, e.Ref)
	}
	return fmt.Sprintf("unreachable: %s: %v", e.Ref, e.Err)
}

// Unwrap returns the underlying cause, if any
func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// NewUnreachableError creates a new UnreachableError
func NewUnreachableError(ref string, statusCode int, err error) error {
	return &UnreachableError{
		Ref:        ref,
		StatusCode: statusCode,
		Err:        err,
	}
}

package txadapter

import "fmt"

// AdapterError is returned by BuildValues when a transaction's Type is
// not one of the five supported variants, or when a receipt's logs bloom
// is neither empty nor 256 bytes long.
type AdapterError struct {
	Reason string
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("transaction adapter: %s", e.Reason)
}

func newAdapterError(format string, args ...any) error {
	return &AdapterError{Reason: fmt.Sprintf(format, args...)}
}

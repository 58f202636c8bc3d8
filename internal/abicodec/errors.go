package abicodec

import "fmt"

// EncodeError is returned by EncodeSequence when a value does not fit its
// declared type or an unsupported variant (Function) is encountered.
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("abi encode failed: %s", e.Reason)
}

func newEncodeError(format string, args ...any) error {
	return &EncodeError{Reason: fmt.Sprintf(format, args...)}
}

// DecodeErrorKind enumerates the decoder's failure modes from spec.md §4.4.
type DecodeErrorKind int

const (
	DecodeUnexpectedEnd DecodeErrorKind = iota
	DecodeInvalidLength
	DecodeUnsupportedType
)

func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeUnexpectedEnd:
		return "UnexpectedEnd"
	case DecodeInvalidLength:
		return "InvalidLength"
	case DecodeUnsupportedType:
		return "UnsupportedType"
	default:
		return "UnknownDecodeError"
	}
}

// DecodeError is returned by ComputeOffsets on cursor overflow, an
// over-long length word, or an attempt to decode a Function type.
type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("abi decode failed: %s", e.Kind)
	}
	return fmt.Sprintf("abi decode failed: %s: %s", e.Kind, e.Detail)
}

func newDecodeError(kind DecodeErrorKind, format string, args ...any) error {
	return &DecodeError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

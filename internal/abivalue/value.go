// Package abivalue defines the closed value/type model that the ABI
// encoder and offset decoder both operate over.
package abivalue

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Kind tags the variant of a Value or Type. The set is closed: every
// switch over Kind in this module and in internal/abicodec is expected
// to be exhaustive.
type Kind int

const (
	KindBool Kind = iota
	KindUint
	KindInt
	KindAddress
	KindFixedBytes
	KindBytes
	KindString
	KindArray
	KindFixedArray
	KindTuple
	// KindFunction is never constructed by the encoder or adapter; it
	// exists only so the encoder/decoder can reject it by name, per
	// spec: the encoder never produces a Function value and the
	// decoder fails loudly if asked to decode one.
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindAddress:
		return "address"
	case KindFixedBytes:
		return "fixedBytes"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindFixedArray:
		return "fixedArray"
	case KindTuple:
		return "tuple"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is a pure type descriptor: the decoder only ever sees Types, never
// Values, since it re-derives offsets from the byte string alone.
type Type struct {
	Kind Kind

	// Bits is the bit width for Uint/Int (e.g. 256, 64, 8).
	Bits int

	// Width is the byte width for FixedBytes (1..32) and the arity for
	// FixedArray.
	Width int

	// Elem is the element type for Array and FixedArray.
	Elem *Type

	// Fields is the component list for Tuple.
	Fields []Type
}

// Value is a tagged variant carrying both a Type (embedded via Kind/Bits/
// etc.) and, for leaves, the actual value to encode.
type Value struct {
	Kind Kind

	Bits  int
	Width int
	Elem  *Type

	Bool       bool
	Int        *big.Int
	Address    common.Address
	FixedBytes []byte
	Bytes      []byte
	String     string
	Array      []Value
	Tuple      []Value
}

// Type projects a Value down to its Type descriptor.
func (v Value) Type() Type {
	t := Type{Kind: v.Kind, Bits: v.Bits, Width: v.Width, Elem: v.Elem}
	if v.Kind == KindArray || v.Kind == KindFixedArray {
		if v.Elem == nil && len(v.Array) > 0 {
			elemType := v.Array[0].Type()
			t.Elem = &elemType
		}
		if v.Kind == KindFixedArray {
			t.Width = len(v.Array)
		}
	}
	if v.Kind == KindTuple {
		t.Fields = make([]Type, len(v.Tuple))
		for i, f := range v.Tuple {
			t.Fields[i] = f.Type()
		}
	}
	return t
}

// Constructors. Each mirrors one ABI primitive from spec.md §3/§4.1.

func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func NewUint(bits int, v *big.Int) Value { return Value{Kind: KindUint, Bits: bits, Int: v} }

func NewUint64(bits int, v uint64) Value {
	return Value{Kind: KindUint, Bits: bits, Int: new(big.Int).SetUint64(v)}
}

func NewInt(bits int, v *big.Int) Value { return Value{Kind: KindInt, Bits: bits, Int: v} }

func NewAddress(a common.Address) Value { return Value{Kind: KindAddress, Address: a} }

func NewFixedBytes(width int, b []byte) Value {
	return Value{Kind: KindFixedBytes, Width: width, FixedBytes: b}
}

func NewBytes(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

func NewString(s string) Value { return Value{Kind: KindString, String: s} }

func NewArray(elem Type, items []Value) Value {
	e := elem
	return Value{Kind: KindArray, Elem: &e, Array: items}
}

func NewFixedArray(elem Type, items []Value) Value {
	e := elem
	return Value{Kind: KindFixedArray, Elem: &e, Width: len(items), Array: items}
}

func NewTuple(items []Value) Value { return Value{Kind: KindTuple, Tuple: items} }

// IsDynamic implements spec.md §4.1's dynamic-type classification
// predicate: true for Bytes, String, any Array, a FixedArray whose
// element is dynamic, and a Tuple with any dynamic field.
func IsDynamic(t Type) bool {
	switch t.Kind {
	case KindBytes, KindString, KindArray:
		return true
	case KindFixedArray:
		if t.Elem == nil {
			return false
		}
		return IsDynamic(*t.Elem)
	case KindTuple:
		for _, f := range t.Fields {
			if IsDynamic(f) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// SolString renders the Solidity textual form of a type: uint<N>,
// int<N>, address, bool, bytes, string, bytes<N>, T[], T[N], (T1,T2,...).
func SolString(t Type) string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindUint:
		return fmt.Sprintf("uint%d", t.Bits)
	case KindInt:
		return fmt.Sprintf("int%d", t.Bits)
	case KindAddress:
		return "address"
	case KindFixedBytes:
		return fmt.Sprintf("bytes%d", t.Width)
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindArray:
		elem := ""
		if t.Elem != nil {
			elem = SolString(*t.Elem)
		}
		return elem + "[]"
	case KindFixedArray:
		elem := ""
		if t.Elem != nil {
			elem = SolString(*t.Elem)
		}
		return fmt.Sprintf("%s[%d]", elem, t.Width)
	case KindTuple:
		out := "("
		for i, f := range t.Fields {
			if i > 0 {
				out += ","
			}
			out += SolString(f)
		}
		return out + ")"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

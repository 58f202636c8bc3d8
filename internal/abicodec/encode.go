package abicodec

import (
	"math/big"

	"github.com/gluwa/ethtxquery/internal/abivalue"
)

const wordSize = 32

// EncodeSequence implements spec.md §4.2's head/tail encoder: every value
// in the sequence contributes one head slot (a 32-byte static word, or a
// 32-byte offset placeholder for dynamic values), and dynamic values
// additionally contribute a tail region appended after every head slot,
// in the same order as the sequence itself. A top-level sequence is
// encoded exactly like the body of an implicit outer tuple, so this is
// also the function tuple-field recursion uses internally.
func EncodeSequence(values []abivalue.Value) ([]byte, error) {
	return encodeTuple(values)
}

func encodeTuple(values []abivalue.Value) ([]byte, error) {
	heads := make([][]byte, len(values))
	tails := make([][]byte, len(values))
	dynamic := make([]bool, len(values))

	for i, v := range values {
		t := v.Type()
		if abivalue.IsDynamic(t) {
			tail, err := encodeDynamicBody(v)
			if err != nil {
				return nil, err
			}
			tails[i] = tail
			dynamic[i] = true
			continue
		}
		head, err := encodeStatic(v)
		if err != nil {
			return nil, err
		}
		heads[i] = head
	}

	headSize := 0
	for _, h := range heads {
		headSize += len(h)
	}
	for i := range values {
		if dynamic[i] {
			headSize += wordSize
		}
	}

	out := make([]byte, 0, headSize+sumLen(tails))
	tailOffset := headSize
	for i := range values {
		if dynamic[i] {
			out = append(out, encodeUint(big.NewInt(int64(tailOffset)))...)
			tailOffset += len(tails[i])
			continue
		}
		out = append(out, heads[i]...)
	}
	for i := range values {
		if dynamic[i] {
			out = append(out, tails[i]...)
		}
	}
	return out, nil
}

func sumLen(parts [][]byte) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}

// encodeStatic encodes a value whose type is not dynamic: scalars as a
// single word, static tuples/fixed arrays as their inline concatenation.
func encodeStatic(v abivalue.Value) ([]byte, error) {
	switch v.Kind {
	case abivalue.KindBool:
		w := make([]byte, wordSize)
		if v.Bool {
			w[wordSize-1] = 1
		}
		return w, nil
	case abivalue.KindUint:
		if v.Int == nil || v.Int.Sign() < 0 {
			return nil, newEncodeError("uint%d value missing or negative", v.Bits)
		}
		if v.Int.BitLen() > v.Bits {
			return nil, newEncodeError("uint%d value overflows declared width", v.Bits)
		}
		return encodeUint(v.Int), nil
	case abivalue.KindInt:
		if v.Int == nil {
			return nil, newEncodeError("int%d value missing", v.Bits)
		}
		if !fitsSignedBits(v.Int, v.Bits) {
			return nil, newEncodeError("int%d value overflows declared width", v.Bits)
		}
		return encodeInt(v.Int), nil
	case abivalue.KindAddress:
		w := make([]byte, wordSize)
		copy(w[wordSize-20:], v.Address[:])
		return w, nil
	case abivalue.KindFixedBytes:
		if len(v.FixedBytes) != v.Width {
			return nil, newEncodeError("bytes%d value has length %d", v.Width, len(v.FixedBytes))
		}
		w := make([]byte, wordSize)
		copy(w, v.FixedBytes)
		return w, nil
	case abivalue.KindFixedArray:
		return encodeTuple(v.Array)
	case abivalue.KindTuple:
		return encodeTuple(v.Tuple)
	case abivalue.KindFunction:
		return nil, newEncodeError("function values are not encodable")
	default:
		return nil, newEncodeError("unexpected static kind %s", v.Kind)
	}
}

// encodeDynamicBody encodes the tail contribution of a dynamic value:
// a length-prefixed byte string for Bytes/String, or a length-prefixed
// (Array) or bare (FixedArray/Tuple) nested head/tail region.
func encodeDynamicBody(v abivalue.Value) ([]byte, error) {
	switch v.Kind {
	case abivalue.KindBytes:
		return encodeLengthPrefixed(v.Bytes), nil
	case abivalue.KindString:
		return encodeLengthPrefixed([]byte(v.String)), nil
	case abivalue.KindArray:
		body, err := encodeTuple(v.Array)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, wordSize+len(body))
		out = append(out, encodeUint(big.NewInt(int64(len(v.Array))))...)
		out = append(out, body...)
		return out, nil
	case abivalue.KindFixedArray:
		return encodeTuple(v.Array)
	case abivalue.KindTuple:
		return encodeTuple(v.Tuple)
	case abivalue.KindFunction:
		return nil, newEncodeError("function values are not encodable")
	default:
		return nil, newEncodeError("unexpected dynamic kind %s", v.Kind)
	}
}

func encodeLengthPrefixed(data []byte) []byte {
	padded := len(data)
	if rem := padded % wordSize; rem != 0 {
		padded += wordSize - rem
	}
	out := make([]byte, 0, wordSize+padded)
	out = append(out, encodeUint(big.NewInt(int64(len(data))))...)
	body := make([]byte, padded)
	copy(body, data)
	out = append(out, body...)
	return out
}

func encodeUint(v *big.Int) []byte {
	w := make([]byte, wordSize)
	b := v.Bytes()
	copy(w[wordSize-len(b):], b)
	return w
}

func encodeInt(v *big.Int) []byte {
	w := make([]byte, wordSize)
	if v.Sign() >= 0 {
		b := v.Bytes()
		copy(w[wordSize-len(b):], b)
		return w
	}
	// Two's complement: (1<<256) + v, v negative.
	mod := new(big.Int).Lsh(big.NewInt(1), wordSize*8)
	twos := new(big.Int).Add(mod, v)
	b := twos.Bytes()
	copy(w[wordSize-len(b):], b)
	return w
}

func fitsSignedBits(v *big.Int, bits int) bool {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(max)
	return v.Cmp(min) >= 0 && v.Cmp(max) < 0
}

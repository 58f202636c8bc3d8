package abicodec

import "github.com/gluwa/ethtxquery/internal/abivalue"

// ComputeOffsets implements spec.md §4.4: it rebuilds a FieldMetadata
// tree from a type list and an already-encoded byte string alone, with
// no access to the original values. It is the inverse of the offset
// bookkeeping EncodeSequence performs, not a re-encode-and-compare.
func ComputeOffsets(types []abivalue.Type, data []byte) ([]FieldMetadata, error) {
	w := newWindow(data)
	return decodeRecursive(w, types)
}

// decodeRecursive consumes one head slot per type from w's current
// cursor, in order. It is used both for a top-level sequence and for a
// tuple's own fields, since both are encoded identically.
func decodeRecursive(w *window, types []abivalue.Type) ([]FieldMetadata, error) {
	out := make([]FieldMetadata, 0, len(types))
	for _, t := range types {
		meta, err := decodeHeadSlot(w, t)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, nil
}

// decodeHeadSlot decodes one value occupying a single head slot: a
// static word (or inline static composite) for a static type, or an
// offset word followed by the pointed-to dynamic body.
func decodeHeadSlot(w *window, t abivalue.Type) (FieldMetadata, error) {
	switch t.Kind {
	case abivalue.KindBool, abivalue.KindUint, abivalue.KindInt, abivalue.KindAddress, abivalue.KindFixedBytes:
		offset := w.position()
		word, err := w.takeWord()
		if err != nil {
			return FieldMetadata{}, err
		}
		return FieldMetadata{SolType: abivalue.SolString(t), Offset: offset, Size: sizeOf(wordSize), Value: append([]byte(nil), word...)}, nil

	case abivalue.KindBytes, abivalue.KindString:
		offset, err := w.takeOffset()
		if err != nil {
			return FieldMetadata{}, err
		}
		sub, err := w.child(offset)
		if err != nil {
			return FieldMetadata{}, err
		}
		return decodeDynamicBody(sub, t)

	case abivalue.KindArray:
		offset, err := w.takeOffset()
		if err != nil {
			return FieldMetadata{}, err
		}
		sub, err := w.child(offset)
		if err != nil {
			return FieldMetadata{}, err
		}
		return decodeDynamicBody(sub, t)

	case abivalue.KindFixedArray:
		if abivalue.IsDynamic(t) {
			offset, err := w.takeOffset()
			if err != nil {
				return FieldMetadata{}, err
			}
			sub, err := w.child(offset)
			if err != nil {
				return FieldMetadata{}, err
			}
			return decodeDynamicBody(sub, t)
		}
		start := w.position()
		children, err := decodeArrayElements(w, *t.Elem, t.Width)
		if err != nil {
			return FieldMetadata{}, err
		}
		return FieldMetadata{SolType: abivalue.SolString(t), Offset: start, IsDynamic: false, Children: children}, nil

	case abivalue.KindTuple:
		if abivalue.IsDynamic(t) {
			offset, err := w.takeOffset()
			if err != nil {
				return FieldMetadata{}, err
			}
			sub, err := w.child(offset)
			if err != nil {
				return FieldMetadata{}, err
			}
			return decodeDynamicBody(sub, t)
		}
		start := w.position()
		children, err := decodeRecursive(w, t.Fields)
		if err != nil {
			return FieldMetadata{}, err
		}
		return FieldMetadata{SolType: abivalue.SolString(t), Offset: start, IsDynamic: false, Children: children}, nil

	case abivalue.KindFunction:
		return FieldMetadata{}, newDecodeError(DecodeUnsupportedType, "function types are not decodable")

	default:
		return FieldMetadata{}, newDecodeError(DecodeUnsupportedType, "unrecognized kind %s", t.Kind)
	}
}

// decodeDynamicBody decodes the body a dynamic type's head-slot offset
// already points at directly: no further offset indirection, since the
// pointer that got us here was the one level of indirection the ABI
// layout affords.
func decodeDynamicBody(w *window, t abivalue.Type) (FieldMetadata, error) {
	switch t.Kind {
	case abivalue.KindBytes, abivalue.KindString:
		length, err := w.takeOffset()
		if err != nil {
			return FieldMetadata{}, err
		}
		data, err := w.takeSlice(length)
		if err != nil {
			return FieldMetadata{}, err
		}
		return FieldMetadata{
			SolType:   abivalue.SolString(t),
			Offset:    w.base + wordSize,
			Size:      sizeOf(length),
			IsDynamic: true,
			Value:     append([]byte(nil), data...),
		}, nil

	case abivalue.KindArray:
		n, err := w.takeOffset()
		if err != nil {
			return FieldMetadata{}, err
		}
		children, err := decodeArrayElements(w, *t.Elem, n)
		if err != nil {
			return FieldMetadata{}, err
		}
		return FieldMetadata{SolType: abivalue.SolString(t), Offset: w.base, IsDynamic: true, Children: children}, nil

	case abivalue.KindFixedArray:
		children, err := decodeArrayElements(w, *t.Elem, t.Width)
		if err != nil {
			return FieldMetadata{}, err
		}
		return FieldMetadata{SolType: abivalue.SolString(t), Offset: w.base, IsDynamic: true, Children: children}, nil

	case abivalue.KindTuple:
		children, err := decodeRecursive(w, t.Fields)
		if err != nil {
			return FieldMetadata{}, err
		}
		return FieldMetadata{SolType: abivalue.SolString(t), Offset: w.base, IsDynamic: true, Children: children}, nil

	default:
		return FieldMetadata{}, newDecodeError(DecodeUnsupportedType, "type %s has no dynamic body", abivalue.SolString(t))
	}
}

// decodeArrayElements decodes n consecutive elements of elemType from
// w's current cursor, special-casing the shape of each element kind:
//
//   - dynamic elements (Bytes/String/Array/FixedArray/Tuple): n relative
//     offset words, each resolved against the position of the first of
//     those offset words (the start of the element head region), then
//     each element's body decoded directly.
//   - static tuples: n inline tuple-field recursions, each wrapped as
//     one child node so children.len() == n regardless of field count.
//   - static scalars/fixed arrays: n inline decodes, already producing
//     exactly one node per element.
//
// In every branch len(children) == n, matching the invariant that an
// array or fixed array's Children always has one entry per element.
func decodeArrayElements(w *window, elemType abivalue.Type, n int) ([]FieldMetadata, error) {
	if abivalue.IsDynamic(elemType) {
		anchor := w.position()
		offsets := make([]int, n)
		for i := 0; i < n; i++ {
			o, err := w.takeOffset()
			if err != nil {
				return nil, err
			}
			offsets[i] = o
		}
		children := make([]FieldMetadata, n)
		for i, off := range offsets {
			elemWindow := &window{full: w.full, base: anchor + off}
			meta, err := decodeDynamicBody(elemWindow, elemType)
			if err != nil {
				return nil, err
			}
			children[i] = meta
		}
		return children, nil
	}

	if elemType.Kind == abivalue.KindTuple {
		children := make([]FieldMetadata, n)
		for i := 0; i < n; i++ {
			start := w.position()
			fields, err := decodeRecursive(w, elemType.Fields)
			if err != nil {
				return nil, err
			}
			children[i] = FieldMetadata{SolType: abivalue.SolString(elemType), Offset: start, IsDynamic: false, Children: fields}
		}
		return children, nil
	}

	types := make([]abivalue.Type, n)
	for i := range types {
		types[i] = elemType
	}
	return decodeRecursive(w, types)
}

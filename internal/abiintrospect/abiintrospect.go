// Package abiintrospect wraps go-ethereum's JSON ABI parser with the
// name/selector/topic0 lookups and ambiguity detection the query
// builder needs, and translates go-ethereum's abi.Type into this
// module's own abivalue.Type so the offset decoder can be driven off a
// parsed contract ABI the same way it is driven off the field map.
package abiintrospect

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/gluwa/ethtxquery/internal/abivalue"
)

// ABI wraps a parsed contract interface.
type ABI struct {
	raw abi.ABI
}

// Parse parses a JSON ABI document, the same format go-ethereum's
// abigen and every block explorer emit.
func Parse(jsonABI string) (*ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(jsonABI))
	if err != nil {
		return nil, fmt.Errorf("abiintrospect: unparseable ABI: %w", err)
	}
	return &ABI{raw: parsed}, nil
}

// NotFoundError and AmbiguousError are the lookup errors the callers in
// pkg/txquery translate into QueryError kinds.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("abiintrospect: %q not found", e.Name) }

type AmbiguousError struct {
	Name    string
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("abiintrospect: %q matches %d entries", e.Name, e.Matches)
}

// FunctionByName resolves a function by its Solidity name, the name
// before go-ethereum's overload-disambiguating suffix. More than one
// overload sharing that name is reported as ambiguous, matching the
// reference builder's behavior of refusing to pick one arbitrarily.
func (a *ABI) FunctionByName(name string) (*abi.Method, error) {
	var matches []*abi.Method
	for i := range a.raw.Methods {
		m := a.raw.Methods[i]
		if rawName(m.RawName, m.Name) == name {
			mc := m
			matches = append(matches, &mc)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return nil, &AmbiguousError{Name: name, Matches: len(matches)}
	}
}

// FunctionBySelector resolves a function by its 4-byte selector,
// which is unambiguous by construction.
func (a *ABI) FunctionBySelector(selector [4]byte) (*abi.Method, error) {
	for _, m := range a.raw.Methods {
		var id [4]byte
		copy(id[:], m.ID)
		if id == selector {
			mc := m
			return &mc, nil
		}
	}
	return nil, &NotFoundError{Name: fmt.Sprintf("0x%x", selector)}
}

// EventByName resolves an event by its Solidity name, with the same
// overload-ambiguity handling as FunctionByName.
func (a *ABI) EventByName(name string) (*abi.Event, error) {
	var matches []*abi.Event
	for i := range a.raw.Events {
		e := a.raw.Events[i]
		if rawName(e.RawName, e.Name) == name {
			ec := e
			matches = append(matches, &ec)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return nil, &AmbiguousError{Name: name, Matches: len(matches)}
	}
}

// EventByTopic0 resolves an event by its topic0 (keccak256 of its
// canonical signature), unambiguous by construction.
func (a *ABI) EventByTopic0(topic common.Hash) (*abi.Event, error) {
	for _, e := range a.raw.Events {
		if e.ID == topic {
			ec := e
			return &ec, nil
		}
	}
	return nil, &NotFoundError{Name: topic.Hex()}
}

func rawName(raw, name string) string {
	if raw != "" {
		return raw
	}
	return name
}

// ToValueType converts a go-ethereum abi.Type into this module's own
// abivalue.Type so the offset decoder can walk calldata or log data
// described by a parsed contract ABI the same way it walks the
// transaction/receipt field map.
func ToValueType(t abi.Type) (abivalue.Type, error) {
	switch t.T {
	case abi.BoolTy:
		return abivalue.Type{Kind: abivalue.KindBool}, nil
	case abi.UintTy:
		return abivalue.Type{Kind: abivalue.KindUint, Bits: t.Size}, nil
	case abi.IntTy:
		return abivalue.Type{Kind: abivalue.KindInt, Bits: t.Size}, nil
	case abi.AddressTy:
		return abivalue.Type{Kind: abivalue.KindAddress}, nil
	case abi.FixedBytesTy:
		return abivalue.Type{Kind: abivalue.KindFixedBytes, Width: t.Size}, nil
	case abi.BytesTy:
		return abivalue.Type{Kind: abivalue.KindBytes}, nil
	case abi.StringTy:
		return abivalue.Type{Kind: abivalue.KindString}, nil
	case abi.FunctionTy:
		return abivalue.Type{Kind: abivalue.KindFunction}, nil
	case abi.SliceTy:
		elem, err := ToValueType(*t.Elem)
		if err != nil {
			return abivalue.Type{}, err
		}
		return abivalue.Type{Kind: abivalue.KindArray, Elem: &elem}, nil
	case abi.ArrayTy:
		elem, err := ToValueType(*t.Elem)
		if err != nil {
			return abivalue.Type{}, err
		}
		return abivalue.Type{Kind: abivalue.KindFixedArray, Elem: &elem, Width: t.Size}, nil
	case abi.TupleTy:
		fields := make([]abivalue.Type, len(t.TupleElems))
		for i, el := range t.TupleElems {
			ft, err := ToValueType(*el)
			if err != nil {
				return abivalue.Type{}, err
			}
			fields[i] = ft
		}
		return abivalue.Type{Kind: abivalue.KindTuple, Fields: fields}, nil
	default:
		return abivalue.Type{}, fmt.Errorf("abiintrospect: unsupported abi type %s", t.String())
	}
}

// ArgumentTypes converts every non-indexed-filtered argument's type,
// preserving order, for building a calldata/log-data type list.
func ArgumentTypes(args abi.Arguments, includeIndexed bool) ([]abivalue.Type, []string, error) {
	var types []abivalue.Type
	var names []string
	for _, arg := range args {
		if arg.Indexed && !includeIndexed {
			continue
		}
		vt, err := ToValueType(arg.Type)
		if err != nil {
			return nil, nil, err
		}
		types = append(types, vt)
		names = append(names, arg.Name)
	}
	return types, names, nil
}

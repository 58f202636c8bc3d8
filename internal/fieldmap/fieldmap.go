// Package fieldmap supplies, for a given encoding version and
// transaction variant, the ordered list of semantic field identifiers
// that labels each top-level node the offset decoder produces. The
// order here must match internal/txadapter.BuildValues exactly: the
// query builder reports a difference in the number of entries as a
// LengthMismatch; a same-length divergence in order or types is not
// reported as one.
package fieldmap

import (
	"fmt"

	"github.com/gluwa/ethtxquery/internal/abicodec"
	"github.com/gluwa/ethtxquery/internal/abivalue"
	"github.com/gluwa/ethtxquery/internal/txadapter"
)

// SemanticFieldID is the closed set of query-time field identifiers
// from spec.md §3/§4.5.
type SemanticFieldID int

const (
	Type SemanticFieldID = iota
	TxChainID
	TxNonce
	TxGasPrice
	TxMaxPriorityFeePerGas
	TxMaxFeePerGas
	TxMaxFeePerBlobGas
	TxGasLimit
	TxFrom
	TxToIsNull
	TxTo
	TxValue
	TxData
	TxAccessList
	TxBlobVersionedHashes
	TxSignedAuthorizations
	TxYParity
	TxV
	TxR
	TxS
	RxStatus
	RxGasUsed
	RxLogs
	RxLogBlooms
)

func (id SemanticFieldID) String() string {
	switch id {
	case Type:
		return "Type"
	case TxChainID:
		return "TxChainId"
	case TxNonce:
		return "TxNonce"
	case TxGasPrice:
		return "TxGasPrice"
	case TxMaxPriorityFeePerGas:
		return "TxMaxPriorityFeePerGas"
	case TxMaxFeePerGas:
		return "TxMaxFeePerGas"
	case TxMaxFeePerBlobGas:
		return "TxMaxFeePerBlobGas"
	case TxGasLimit:
		return "TxGasLimit"
	case TxFrom:
		return "TxFrom"
	case TxToIsNull:
		return "TxToIsNull"
	case TxTo:
		return "TxTo"
	case TxValue:
		return "TxValue"
	case TxData:
		return "TxData"
	case TxAccessList:
		return "TxAccessList"
	case TxBlobVersionedHashes:
		return "TxBlobVersionedHashes"
	case TxSignedAuthorizations:
		return "TxSignedAuthorizations"
	case TxYParity:
		return "TxYParity"
	case TxV:
		return "TxV"
	case TxR:
		return "TxR"
	case TxS:
		return "TxS"
	case RxStatus:
		return "RxStatus"
	case RxGasUsed:
		return "RxGasUsed"
	case RxLogs:
		return "RxLogs"
	case RxLogBlooms:
		return "RxLogBlooms"
	default:
		return fmt.Sprintf("SemanticFieldId(%d)", int(id))
	}
}

// Entry pairs one top-level value position with its semantic identity
// and the Solidity type the encoder gave it.
type Entry struct {
	ID   SemanticFieldID
	Type abivalue.Type
}

var (
	uint8Type   = abivalue.Type{Kind: abivalue.KindUint, Bits: 8}
	uint64Type  = abivalue.Type{Kind: abivalue.KindUint, Bits: 64}
	uint128Type = abivalue.Type{Kind: abivalue.KindUint, Bits: 128}
	uint256Type = abivalue.Type{Kind: abivalue.KindUint, Bits: 256}
	addressType = abivalue.Type{Kind: abivalue.KindAddress}
	boolType    = abivalue.Type{Kind: abivalue.KindBool}
	bytesType   = abivalue.Type{Kind: abivalue.KindBytes}
	bytes32Type = abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}
)

func fixedBytesArray() abivalue.Type {
	elem := bytes32Type
	return abivalue.Type{Kind: abivalue.KindArray, Elem: &elem}
}

func accessListType() abivalue.Type {
	keys := fixedBytesArray()
	tuple := abivalue.Type{Kind: abivalue.KindTuple, Fields: []abivalue.Type{addressType, keys}}
	return abivalue.Type{Kind: abivalue.KindArray, Elem: &tuple}
}

func authorizationListType() abivalue.Type {
	tuple := abivalue.Type{Kind: abivalue.KindTuple, Fields: []abivalue.Type{
		uint256Type, addressType, uint64Type, uint8Type, uint256Type, uint256Type,
	}}
	return abivalue.Type{Kind: abivalue.KindArray, Elem: &tuple}
}

func logArrayType() abivalue.Type {
	topics := fixedBytesArray()
	tuple := abivalue.Type{Kind: abivalue.KindTuple, Fields: []abivalue.Type{addressType, topics, bytesType}}
	return abivalue.Type{Kind: abivalue.KindArray, Elem: &tuple}
}

var receiptTail = []Entry{
	{RxStatus, uint8Type},
	{RxGasUsed, uint64Type},
	{RxLogs, logArrayType()},
	{RxLogBlooms, bytesType},
}

func type0() []Entry {
	out := []Entry{{Type, uint8Type}, {TxNonce, uint64Type}, {TxGasPrice, uint128Type}, {TxGasLimit, uint64Type},
		{TxFrom, addressType}, {TxToIsNull, boolType}, {TxTo, addressType}, {TxValue, uint256Type}, {TxData, bytesType},
		{TxV, uint256Type}, {TxR, bytes32Type}, {TxS, bytes32Type}}
	return append(out, receiptTail...)
}

func type1() []Entry {
	out := []Entry{{Type, uint8Type}, {TxChainID, uint64Type}, {TxNonce, uint64Type}, {TxGasPrice, uint128Type},
		{TxGasLimit, uint64Type}, {TxFrom, addressType}, {TxToIsNull, boolType}, {TxTo, addressType},
		{TxValue, uint256Type}, {TxData, bytesType}}
	out = append(out, Entry{TxAccessList, accessListType()}, Entry{TxYParity, uint8Type}, Entry{TxR, bytes32Type}, Entry{TxS, bytes32Type})
	return append(out, receiptTail...)
}

func type2() []Entry {
	out := []Entry{{Type, uint8Type}, {TxChainID, uint64Type}, {TxNonce, uint64Type},
		{TxMaxPriorityFeePerGas, uint128Type}, {TxMaxFeePerGas, uint128Type}, {TxGasLimit, uint64Type},
		{TxFrom, addressType}, {TxToIsNull, boolType}, {TxTo, addressType}, {TxValue, uint256Type}, {TxData, bytesType}}
	out = append(out, Entry{TxAccessList, accessListType()}, Entry{TxYParity, uint8Type}, Entry{TxR, bytes32Type}, Entry{TxS, bytes32Type})
	return append(out, receiptTail...)
}

func type3() []Entry {
	out := []Entry{{Type, uint8Type}, {TxChainID, uint64Type}, {TxNonce, uint64Type},
		{TxMaxPriorityFeePerGas, uint128Type}, {TxMaxFeePerGas, uint128Type}, {TxGasLimit, uint64Type},
		{TxFrom, addressType}, {TxToIsNull, boolType}, {TxTo, addressType}, {TxValue, uint256Type}, {TxData, bytesType}}
	out = append(out, Entry{TxAccessList, accessListType()})
	out = append(out, Entry{TxMaxFeePerBlobGas, uint128Type}, Entry{TxBlobVersionedHashes, fixedBytesArray()},
		Entry{TxYParity, uint8Type}, Entry{TxR, bytes32Type}, Entry{TxS, bytes32Type})
	return append(out, receiptTail...)
}

func type4() []Entry {
	out := []Entry{{Type, uint8Type}, {TxChainID, uint64Type}, {TxNonce, uint64Type},
		{TxMaxPriorityFeePerGas, uint128Type}, {TxMaxFeePerGas, uint128Type}, {TxGasLimit, uint64Type},
		{TxFrom, addressType}, {TxToIsNull, boolType}, {TxTo, addressType}, {TxValue, uint256Type}, {TxData, bytesType}}
	out = append(out, Entry{TxAccessList, accessListType()}, Entry{TxSignedAuthorizations, authorizationListType()},
		Entry{TxYParity, uint8Type}, Entry{TxR, bytes32Type}, Entry{TxS, bytes32Type})
	return append(out, receiptTail...)
}

// ForVariant returns the ordered field list for one (version, txType)
// pair. Only EncodingVersion V1 exists today.
func ForVariant(version abicodec.EncodingVersion, txType txadapter.TxType) ([]Entry, error) {
	if version != abicodec.V1 {
		return nil, fmt.Errorf("fieldmap: unsupported encoding version %d", version)
	}
	switch txType {
	case txadapter.TxLegacy:
		return type0(), nil
	case txadapter.TxEip2930:
		return type1(), nil
	case txadapter.TxEip1559:
		return type2(), nil
	case txadapter.TxEip4844:
		return type3(), nil
	case txadapter.TxEip7702:
		return type4(), nil
	default:
		return nil, fmt.Errorf("fieldmap: unsupported transaction type %d", txType)
	}
}

// ParseID resolves a SemanticFieldID from its String() spelling, the
// form a CLI or config file would carry it in.
func ParseID(name string) (SemanticFieldID, bool) {
	for id := Type; id <= RxLogBlooms; id++ {
		if id.String() == name {
			return id, true
		}
	}
	return 0, false
}

// Types extracts just the Type column, in order — the shape ComputeOffsets wants.
func Types(entries []Entry) []abivalue.Type {
	out := make([]abivalue.Type, len(entries))
	for i, e := range entries {
		out[i] = e.Type
	}
	return out
}

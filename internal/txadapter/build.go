package txadapter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gluwa/ethtxquery/internal/abivalue"
)

// ComputeV implements spec.md's legacy signature-v rule: EIP-155 replay
// protected transactions encode v = 35 + 2*chain_id + y_parity; plain
// legacy transactions encode v = 27 + y_parity.
func ComputeV(sig Signature, chainID *big.Int) *big.Int {
	parity := big.NewInt(0)
	if sig.YParity {
		parity = big.NewInt(1)
	}
	if chainID == nil {
		return new(big.Int).Add(big.NewInt(27), parity)
	}
	v := new(big.Int).Mul(big.NewInt(2), chainID)
	v.Add(v, big.NewInt(35))
	v.Add(v, parity)
	return v
}

// ComputeYParity implements spec.md's non-legacy y_parity rule: the
// boolean signature parity taken directly as 0 or 1.
func ComputeYParity(sig Signature) uint8 {
	if sig.YParity {
		return 1
	}
	return 0
}

func mapTxKind(to *common.Address) (bool, common.Address) {
	if to == nil {
		return true, common.Address{}
	}
	return false, *to
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

func accessListType() abivalue.Type {
	return abivalue.Type{
		Kind: abivalue.KindArray,
		Elem: &abivalue.Type{
			Kind: abivalue.KindTuple,
			Fields: []abivalue.Type{
				{Kind: abivalue.KindAddress},
				{Kind: abivalue.KindArray, Elem: &abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}},
			},
		},
	}
}

func buildAccessList(entries []AccessListEntry) abivalue.Value {
	elemType := *accessListType().Elem
	items := make([]abivalue.Value, len(entries))
	for i, e := range entries {
		keys := make([]abivalue.Value, len(e.StorageKeys))
		for j, k := range e.StorageKeys {
			keys[j] = abivalue.NewFixedBytes(32, k.Bytes())
		}
		items[i] = abivalue.NewTuple([]abivalue.Value{
			abivalue.NewAddress(e.Address),
			abivalue.NewArray(abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}, keys),
		})
	}
	return abivalue.NewArray(elemType, items)
}

func authorizationListType() abivalue.Type {
	return abivalue.Type{
		Kind: abivalue.KindArray,
		Elem: &abivalue.Type{
			Kind: abivalue.KindTuple,
			Fields: []abivalue.Type{
				{Kind: abivalue.KindUint, Bits: 256},
				{Kind: abivalue.KindAddress},
				{Kind: abivalue.KindUint, Bits: 64},
				{Kind: abivalue.KindUint, Bits: 8},
				{Kind: abivalue.KindUint, Bits: 256},
				{Kind: abivalue.KindUint, Bits: 256},
			},
		},
	}
}

func buildAuthorizationList(entries []Authorization) abivalue.Value {
	elemType := *authorizationListType().Elem
	items := make([]abivalue.Value, len(entries))
	for i, a := range entries {
		items[i] = abivalue.NewTuple([]abivalue.Value{
			abivalue.NewUint(256, orZero(a.ChainID)),
			abivalue.NewAddress(a.Address),
			abivalue.NewUint64(64, a.Nonce),
			abivalue.NewUint64(8, uint64(a.YParity)),
			abivalue.NewUint(256, orZero(a.R)),
			abivalue.NewUint(256, orZero(a.S)),
		})
	}
	return abivalue.NewArray(elemType, items)
}

func buildBlobHashes(hashes []common.Hash) abivalue.Value {
	items := make([]abivalue.Value, len(hashes))
	for i, h := range hashes {
		items[i] = abivalue.NewFixedBytes(32, h.Bytes())
	}
	return abivalue.NewArray(abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}, items)
}

func logArrayType() abivalue.Type {
	return abivalue.Type{
		Kind: abivalue.KindArray,
		Elem: &abivalue.Type{
			Kind: abivalue.KindTuple,
			Fields: []abivalue.Type{
				{Kind: abivalue.KindAddress},
				{Kind: abivalue.KindArray, Elem: &abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}},
				{Kind: abivalue.KindBytes},
			},
		},
	}
}

func buildLogArray(logs []Log) abivalue.Value {
	elemType := *logArrayType().Elem
	items := make([]abivalue.Value, len(logs))
	for i, l := range logs {
		topics := make([]abivalue.Value, len(l.Topics))
		for j, t := range l.Topics {
			topics[j] = abivalue.NewFixedBytes(32, t.Bytes())
		}
		items[i] = abivalue.NewTuple([]abivalue.Value{
			abivalue.NewAddress(l.Address),
			abivalue.NewArray(abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}, topics),
			abivalue.NewBytes(l.Data),
		})
	}
	return abivalue.NewArray(elemType, items)
}

// BuildValues implements spec.md §4.3: it produces the flat value
// sequence for a transaction followed by its receipt, dispatching on
// tx.Type for the variant-specific fields. The seven common transaction
// fields (nonce, gas_limit, from, to_is_null, to, value, input) appear in
// every variant, interleaved with the variant-specific ones in the order
// internal/fieldmap lists, and the receipt suffix (status, gas_used,
// logs, logs_bloom) is shared across every variant.
func BuildValues(tx Transaction, rx Receipt) ([]abivalue.Value, error) {
	txValues, err := buildTransaction(tx)
	if err != nil {
		return nil, err
	}
	rxValues, err := buildReceipt(rx)
	if err != nil {
		return nil, err
	}
	out := make([]abivalue.Value, 0, len(txValues)+len(rxValues))
	out = append(out, txValues...)
	out = append(out, rxValues...)
	return out, nil
}

func buildTransaction(tx Transaction) ([]abivalue.Value, error) {
	switch tx.Type {
	case TxLegacy:
		return buildType0(tx), nil
	case TxEip2930:
		return buildType1(tx), nil
	case TxEip1559:
		return buildType2(tx), nil
	case TxEip4844:
		return buildType3(tx), nil
	case TxEip7702:
		return buildType4(tx), nil
	default:
		return nil, newAdapterError("unsupported transaction type %d", tx.Type)
	}
}

func buildType0(tx Transaction) []abivalue.Value {
	isNull, to := mapTxKind(tx.To)
	v := ComputeV(tx.Signature, tx.ChainID)
	return []abivalue.Value{
		abivalue.NewUint64(8, 0),
		abivalue.NewUint64(64, tx.Nonce),
		abivalue.NewUint(128, orZero(tx.GasPrice)),
		abivalue.NewUint64(64, tx.GasLimit),
		abivalue.NewAddress(tx.From),
		abivalue.NewBool(isNull),
		abivalue.NewAddress(to),
		abivalue.NewUint(256, orZero(tx.Value)),
		abivalue.NewBytes(tx.Input),
		abivalue.NewUint(256, v),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.R))),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.S))),
	}
}

func buildType1(tx Transaction) []abivalue.Value {
	isNull, to := mapTxKind(tx.To)
	yParity := ComputeYParity(tx.Signature)
	return []abivalue.Value{
		abivalue.NewUint64(8, 1),
		abivalue.NewUint(64, orZero(tx.ChainID)),
		abivalue.NewUint64(64, tx.Nonce),
		abivalue.NewUint(128, orZero(tx.GasPrice)),
		abivalue.NewUint64(64, tx.GasLimit),
		abivalue.NewAddress(tx.From),
		abivalue.NewBool(isNull),
		abivalue.NewAddress(to),
		abivalue.NewUint(256, orZero(tx.Value)),
		abivalue.NewBytes(tx.Input),
		buildAccessList(tx.AccessList),
		abivalue.NewUint64(8, uint64(yParity)),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.R))),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.S))),
	}
}

func buildType2(tx Transaction) []abivalue.Value {
	isNull, to := mapTxKind(tx.To)
	yParity := ComputeYParity(tx.Signature)
	return []abivalue.Value{
		abivalue.NewUint64(8, 2),
		abivalue.NewUint(64, orZero(tx.ChainID)),
		abivalue.NewUint64(64, tx.Nonce),
		abivalue.NewUint(128, orZero(tx.MaxPriorityFeePerGas)),
		abivalue.NewUint(128, orZero(tx.MaxFeePerGas)),
		abivalue.NewUint64(64, tx.GasLimit),
		abivalue.NewAddress(tx.From),
		abivalue.NewBool(isNull),
		abivalue.NewAddress(to),
		abivalue.NewUint(256, orZero(tx.Value)),
		abivalue.NewBytes(tx.Input),
		buildAccessList(tx.AccessList),
		abivalue.NewUint64(8, uint64(yParity)),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.R))),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.S))),
	}
}

func buildType3(tx Transaction) []abivalue.Value {
	// EIP-4844 transactions cannot be contract creation: to_is_null is
	// always false, and the adapter reports the zero address if To is
	// somehow nil rather than rejecting the transaction.
	_, to := mapTxKind(tx.To)
	yParity := ComputeYParity(tx.Signature)
	return []abivalue.Value{
		abivalue.NewUint64(8, 3),
		abivalue.NewUint(64, orZero(tx.ChainID)),
		abivalue.NewUint64(64, tx.Nonce),
		abivalue.NewUint(128, orZero(tx.MaxPriorityFeePerGas)),
		abivalue.NewUint(128, orZero(tx.MaxFeePerGas)),
		abivalue.NewUint64(64, tx.GasLimit),
		abivalue.NewAddress(tx.From),
		abivalue.NewBool(false),
		abivalue.NewAddress(to),
		abivalue.NewUint(256, orZero(tx.Value)),
		abivalue.NewBytes(tx.Input),
		buildAccessList(tx.AccessList),
		abivalue.NewUint(128, orZero(tx.MaxFeePerBlobGas)),
		buildBlobHashes(tx.BlobVersionedHashes),
		abivalue.NewUint64(8, uint64(yParity)),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.R))),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.S))),
	}
}

func buildType4(tx Transaction) []abivalue.Value {
	// EIP-7702 transactions cannot be contract creation either:
	// to_is_null is always false, and To is encoded directly rather than
	// through mapTxKind (the zero address if To is nil).
	var to common.Address
	if tx.To != nil {
		to = *tx.To
	}
	yParity := ComputeYParity(tx.Signature)
	return []abivalue.Value{
		abivalue.NewUint64(8, 4),
		abivalue.NewUint(64, orZero(tx.ChainID)),
		abivalue.NewUint64(64, tx.Nonce),
		abivalue.NewUint(128, orZero(tx.MaxPriorityFeePerGas)),
		abivalue.NewUint(128, orZero(tx.MaxFeePerGas)),
		abivalue.NewUint64(64, tx.GasLimit),
		abivalue.NewAddress(tx.From),
		abivalue.NewBool(false),
		abivalue.NewAddress(to),
		abivalue.NewUint(256, orZero(tx.Value)),
		abivalue.NewBytes(tx.Input),
		buildAccessList(tx.AccessList),
		buildAuthorizationList(tx.AuthorizationList),
		abivalue.NewUint64(8, uint64(yParity)),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.R))),
		abivalue.NewFixedBytes(32, leftPad32(orZero(tx.Signature.S))),
	}
}

func buildReceipt(rx Receipt) ([]abivalue.Value, error) {
	if len(rx.LogsBloom) != 0 && len(rx.LogsBloom) != 256 {
		return nil, newAdapterError("logs bloom must be 256 bytes, got %d", len(rx.LogsBloom))
	}
	bloom := rx.LogsBloom
	if bloom == nil {
		bloom = make([]byte, 256)
	}
	return []abivalue.Value{
		abivalue.NewUint64(8, rx.Status),
		abivalue.NewUint64(64, rx.GasUsed),
		buildLogArray(rx.Logs),
		abivalue.NewBytes(bloom),
	}, nil
}

func leftPad32(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// Package txadapter maps a transaction and its receipt onto the ordered
// abivalue.Value sequence the ABI encoder consumes, one builder per
// transaction variant (spec.md §4.3).
package txadapter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxType identifies which of the five supported transaction envelopes a
// Transaction carries.
type TxType uint8

const (
	TxLegacy TxType = 0
	TxEip2930 TxType = 1
	TxEip1559 TxType = 2
	TxEip4844 TxType = 3
	TxEip7702 TxType = 4
)

// AccessListEntry is one (address, storage keys) pair of an EIP-2930
// access list.
type AccessListEntry struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// Authorization is one EIP-7702 signed authorization tuple.
type Authorization struct {
	ChainID *big.Int
	Address common.Address
	Nonce   uint64
	YParity uint8
	R       *big.Int
	S       *big.Int
}

// Signature carries the three ECDSA components every variant needs to
// compute either a legacy v or a plain y_parity.
type Signature struct {
	YParity bool
	R       *big.Int
	S       *big.Int
}

// Transaction is the adapter's input model: a superset of every field
// any of the five variants requires, with unused fields left zero for
// variants that do not carry them.
type Transaction struct {
	Type TxType

	ChainID  *big.Int // absent (nil) for legacy transactions without EIP-155
	Nonce    uint64
	GasLimit uint64
	From     common.Address
	To       *common.Address // nil means contract creation
	Value    *big.Int
	Input    []byte

	GasPrice *big.Int // types 0, 1

	AccessList []AccessListEntry // types 1, 2, 3, 4

	MaxPriorityFeePerGas *big.Int // types 2, 3, 4
	MaxFeePerGas         *big.Int // types 2, 3, 4

	MaxFeePerBlobGas    *big.Int      // type 3
	BlobVersionedHashes []common.Hash // type 3

	AuthorizationList []Authorization // type 4

	Signature Signature
}

// Log is one receipt log entry.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt is the adapter's receipt input model.
type Receipt struct {
	Status    uint64
	GasUsed   uint64
	Logs      []Log
	LogsBloom []byte // 256 bytes
}

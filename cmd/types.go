package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gluwa/ethtxquery/internal/txadapter"
)

// jsonAccessListEntry, jsonAuthorization, jsonLog and jsonTransaction
// mirror the wire shape go-ethereum's own RPC types use: hex strings
// for big integers and byte strings, decoded via common/hexutil so a
// caller can hand this tool the same JSON a node would return.
type jsonAccessListEntry struct {
	Address     common.Address `json:"address"`
	StorageKeys []common.Hash  `json:"storageKeys"`
}

type jsonAuthorization struct {
	ChainID *hexutil.Big   `json:"chainId"`
	Address common.Address `json:"address"`
	Nonce   hexutil.Uint64 `json:"nonce"`
	YParity hexutil.Uint64 `json:"yParity"`
	R       *hexutil.Big   `json:"r"`
	S       *hexutil.Big   `json:"s"`
}

type jsonLog struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

type jsonTransaction struct {
	Type     hexutil.Uint64  `json:"type"`
	ChainID  *hexutil.Big    `json:"chainId,omitempty"`
	Nonce    hexutil.Uint64  `json:"nonce"`
	GasLimit hexutil.Uint64  `json:"gasLimit"`
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Value    *hexutil.Big    `json:"value"`
	Input    hexutil.Bytes   `json:"input"`

	GasPrice             *hexutil.Big `json:"gasPrice,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *hexutil.Big `json:"maxFeePerGas,omitempty"`
	MaxFeePerBlobGas     *hexutil.Big `json:"maxFeePerBlobGas,omitempty"`

	AccessList          []jsonAccessListEntry `json:"accessList,omitempty"`
	BlobVersionedHashes  []common.Hash         `json:"blobVersionedHashes,omitempty"`
	AuthorizationList    []jsonAuthorization   `json:"authorizationList,omitempty"`

	YParity bool         `json:"yParity"`
	R       *hexutil.Big `json:"r"`
	S       *hexutil.Big `json:"s"`
}

type jsonReceipt struct {
	Status    hexutil.Uint64 `json:"status"`
	GasUsed   hexutil.Uint64 `json:"gasUsed"`
	Logs      []jsonLog      `json:"logs"`
	LogsBloom hexutil.Bytes  `json:"logsBloom"`
}

type jsonInput struct {
	Transaction jsonTransaction `json:"transaction"`
	Receipt     jsonReceipt     `json:"receipt"`
}

func bigOrNil(v *hexutil.Big) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

func (j jsonTransaction) toAdapter() txadapter.Transaction {
	tx := txadapter.Transaction{
		Type:                 txadapter.TxType(j.Type),
		ChainID:              bigOrNil(j.ChainID),
		Nonce:                uint64(j.Nonce),
		GasLimit:             uint64(j.GasLimit),
		From:                 j.From,
		To:                   j.To,
		Value:                bigOrNil(j.Value),
		Input:                []byte(j.Input),
		GasPrice:             bigOrNil(j.GasPrice),
		MaxPriorityFeePerGas: bigOrNil(j.MaxPriorityFeePerGas),
		MaxFeePerGas:         bigOrNil(j.MaxFeePerGas),
		MaxFeePerBlobGas:     bigOrNil(j.MaxFeePerBlobGas),
		BlobVersionedHashes:  j.BlobVersionedHashes,
		Signature: txadapter.Signature{
			YParity: j.YParity,
			R:       bigOrNil(j.R),
			S:       bigOrNil(j.S),
		},
	}
	for _, e := range j.AccessList {
		tx.AccessList = append(tx.AccessList, txadapter.AccessListEntry{
			Address: e.Address, StorageKeys: e.StorageKeys,
		})
	}
	for _, a := range j.AuthorizationList {
		tx.AuthorizationList = append(tx.AuthorizationList, txadapter.Authorization{
			ChainID: bigOrNil(a.ChainID),
			Address: a.Address,
			Nonce:   uint64(a.Nonce),
			YParity: uint8(a.YParity),
			R:       bigOrNil(a.R),
			S:       bigOrNil(a.S),
		})
	}
	return tx
}

func (j jsonReceipt) toAdapter() txadapter.Receipt {
	rx := txadapter.Receipt{
		Status:    uint64(j.Status),
		GasUsed:   uint64(j.GasUsed),
		LogsBloom: []byte(j.LogsBloom),
	}
	for _, l := range j.Logs {
		rx.Logs = append(rx.Logs, txadapter.Log{Address: l.Address, Topics: l.Topics, Data: []byte(l.Data)})
	}
	return rx
}

func readInput(path string) (jsonInput, error) {
	var in jsonInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("failed to read input file: %w", err)
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse input JSON: %w", err)
	}
	return in, nil
}

package fieldmap

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/gluwa/ethtxquery/internal/abicodec"
	"github.com/gluwa/ethtxquery/internal/txadapter"
)

func sampleTx(txType txadapter.TxType) txadapter.Transaction {
	to := common.HexToAddress("0x01")
	tx := txadapter.Transaction{
		Type:     txType,
		ChainID:  big.NewInt(1),
		Nonce:    1,
		GasLimit: 21000,
		From:     common.HexToAddress("0x02"),
		To:       &to,
		Value:    big.NewInt(0),
		GasPrice: big.NewInt(1),
		MaxPriorityFeePerGas: big.NewInt(1),
		MaxFeePerGas:         big.NewInt(2),
		MaxFeePerBlobGas:     big.NewInt(3),
		Signature:            txadapter.Signature{R: big.NewInt(1), S: big.NewInt(2)},
	}
	if txType == txadapter.TxEip4844 {
		tx.BlobVersionedHashes = []common.Hash{common.HexToHash("0x01")}
	}
	if txType == txadapter.TxEip7702 {
		tx.AuthorizationList = []txadapter.Authorization{
			{ChainID: big.NewInt(1), Address: common.HexToAddress("0x03"), R: big.NewInt(1), S: big.NewInt(2)},
		}
	}
	return tx
}

func TestFieldMapMatchesAdapterLengthForEveryVariant(t *testing.T) {
	variants := []txadapter.TxType{
		txadapter.TxLegacy, txadapter.TxEip2930, txadapter.TxEip1559, txadapter.TxEip4844, txadapter.TxEip7702,
	}
	rx := txadapter.Receipt{Status: 1, GasUsed: 1, LogsBloom: make([]byte, 256)}

	for _, variant := range variants {
		values, err := txadapter.BuildValues(sampleTx(variant), rx)
		require.NoError(t, err)

		entries, err := ForVariant(abicodec.V1, variant)
		require.NoError(t, err)
		require.Lenf(t, entries, len(values), "variant %d", variant)

		for i, v := range values {
			require.Equalf(t, v.Type().Kind, entries[i].Type.Kind, "variant %d position %d", variant, i)
		}
	}
}

func TestForVariantRejectsUnknownVersion(t *testing.T) {
	_, err := ForVariant(abicodec.EncodingVersion(99), txadapter.TxLegacy)
	require.Error(t, err)
}

package txquery

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/gluwa/ethtxquery/internal/abicodec"
	"github.com/gluwa/ethtxquery/internal/abiintrospect"
	"github.com/gluwa/ethtxquery/internal/abivalue"
	"github.com/gluwa/ethtxquery/internal/fieldmap"
	"github.com/gluwa/ethtxquery/internal/txadapter"
	"github.com/gluwa/ethtxquery/pkg/txquery/testutil"
)

const sampleContractABI = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"event","name":"Transfer","anonymous":false,
   "inputs":[
     {"name":"from","type":"address","indexed":true},
     {"name":"to","type":"address","indexed":true},
     {"name":"value","type":"uint256","indexed":false}
   ]}
]`

func sampleType2Tx(to common.Address, input []byte) txadapter.Transaction {
	return txadapter.Transaction{
		Type:                 txadapter.TxEip1559,
		ChainID:              big.NewInt(1),
		Nonce:                7,
		GasLimit:             100000,
		From:                 common.HexToAddress("0xaaaa"),
		To:                   &to,
		Value:                big.NewInt(0),
		Input:                input,
		MaxPriorityFeePerGas: big.NewInt(1),
		MaxFeePerGas:         big.NewInt(2),
		Signature:            txadapter.Signature{YParity: true, R: big.NewInt(1), S: big.NewInt(2)},
	}
}

func TestAddStaticFieldSelectsNonce(t *testing.T) {
	to := common.HexToAddress("0x01")
	tx := sampleType2Tx(to, nil)
	rx := txadapter.Receipt{Status: 1, GasUsed: 21000, LogsBloom: make([]byte, 256)}

	b, err := FromTransaction(tx, rx, nil)
	require.NoError(t, err)

	b, err = b.AddStaticField(fieldmap.TxNonce)
	require.NoError(t, err)
	require.Len(t, b.SelectedOffsets(), 1)

	r := b.SelectedOffsets()[0]
	got := new(big.Int).SetBytes(b.EncodeResult().Bytes[r.Offset : r.Offset+r.Size])
	require.Equal(t, uint64(7), got.Uint64())
}

func TestAddStaticFieldRejectsCompositeField(t *testing.T) {
	to := common.HexToAddress("0x01")
	tx := sampleType2Tx(to, nil)
	tx.AccessList = []txadapter.AccessListEntry{{Address: common.HexToAddress("0x02")}}
	rx := txadapter.Receipt{Status: 1, GasUsed: 21000, LogsBloom: make([]byte, 256)}

	b, err := FromTransaction(tx, rx, nil)
	require.NoError(t, err)

	_, err = b.AddStaticField(fieldmap.TxAccessList)
	require.Error(t, err)
	qerr, ok := err.(*QueryError)
	require.True(t, ok)
	require.Equal(t, FieldIsNotStatic, qerr.Kind)
}

func TestFunctionBuilderSelectsSignatureAndArguments(t *testing.T) {
	to := common.HexToAddress("0xc0ffee")
	parsed, err := abiintrospect.Parse(sampleContractABI)
	require.NoError(t, err)
	method, err := parsed.FunctionByName("transfer")
	require.NoError(t, err)

	recipient := common.HexToAddress("0xbeef")
	amount := big.NewInt(123456)
	args, err := abicodec.EncodeSequence([]abivalue.Value{
		abivalue.NewAddress(recipient),
		abivalue.NewUint(256, amount),
	})
	require.NoError(t, err)
	input := append(append([]byte{}, method.ID...), args...)

	tx := sampleType2Tx(to, input)
	rx := txadapter.Receipt{Status: 1, GasUsed: 50000, LogsBloom: make([]byte, 256)}

	provider := testutil.NewMapAbiProvider(map[common.Address]string{to: sampleContractABI})
	b, err := FromTransaction(tx, rx, provider)
	require.NoError(t, err)

	b, err = b.FunctionBuilder(context.Background(), "transfer", func(f *QueryBuilderForFunction) error {
		f.AddSignature()
		if err := f.AddArgument("to"); err != nil {
			return err
		}
		return f.AddArgument("amount")
	})
	require.NoError(t, err)
	require.Len(t, b.SelectedOffsets(), 3)

	bytes := b.EncodeResult().Bytes
	sel := b.SelectedOffsets()[0]
	require.Equal(t, method.ID, bytes[sel.Offset:sel.Offset+sel.Size])

	toSel := b.SelectedOffsets()[1]
	require.Equal(t, recipient, common.BytesToAddress(bytes[toSel.Offset:toSel.Offset+toSel.Size]))

	amountSel := b.SelectedOffsets()[2]
	require.Equal(t, amount, new(big.Int).SetBytes(bytes[amountSel.Offset:amountSel.Offset+amountSel.Size]))
}

func TestFunctionBuilderFailsWithoutToAddress(t *testing.T) {
	tx := sampleType2Tx(common.Address{}, []byte{0x01, 0x02, 0x03, 0x04})
	tx.To = nil
	rx := txadapter.Receipt{Status: 1, GasUsed: 50000, LogsBloom: make([]byte, 256)}

	b, err := FromTransaction(tx, rx, nil)
	require.NoError(t, err)

	_, err = b.FunctionBuilder(context.Background(), "transfer", func(f *QueryBuilderForFunction) error { return nil })
	require.Error(t, err)
	qerr, ok := err.(*QueryError)
	require.True(t, ok)
	require.Equal(t, NoToAddress, qerr.Kind)
}

func TestFunctionBuilderFailsOnEmptyCallData(t *testing.T) {
	to := common.HexToAddress("0x01")
	tx := sampleType2Tx(to, nil)
	rx := txadapter.Receipt{Status: 1, GasUsed: 50000, LogsBloom: make([]byte, 256)}

	b, err := FromTransaction(tx, rx, nil)
	require.NoError(t, err)

	_, err = b.FunctionBuilder(context.Background(), "transfer", func(f *QueryBuilderForFunction) error { return nil })
	require.Error(t, err)
	qerr, ok := err.(*QueryError)
	require.True(t, ok)
	require.Equal(t, EmptyCallData, qerr.Kind)
}

func TestEventBuilderSelectsIndexedAndDataArguments(t *testing.T) {
	to := common.HexToAddress("0xc0ffee")
	parsed, err := abiintrospect.Parse(sampleContractABI)
	require.NoError(t, err)
	ev, err := parsed.EventByName("Transfer")
	require.NoError(t, err)

	from := common.HexToAddress("0x1111")
	recipient := common.HexToAddress("0x2222")
	value := big.NewInt(42)
	data, err := abicodec.EncodeSequence([]abivalue.Value{abivalue.NewUint(256, value)})
	require.NoError(t, err)

	log := txadapter.Log{
		Address: to,
		Topics: []common.Hash{
			ev.ID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(recipient.Bytes()),
		},
		Data: data,
	}

	tx := sampleType2Tx(to, nil)
	rx := txadapter.Receipt{Status: 1, GasUsed: 50000, Logs: []txadapter.Log{log}, LogsBloom: make([]byte, 256)}

	provider := testutil.NewMapAbiProvider(map[common.Address]string{to: sampleContractABI})
	b, err := FromTransaction(tx, rx, provider)
	require.NoError(t, err)

	b, err = b.EventBuilder(context.Background(), "Transfer", func(e *QueryBuilderForEvent) error {
		e.AddAddress().AddSignature()
		if err := e.AddArgument("from"); err != nil {
			return err
		}
		if err := e.AddArgument("to"); err != nil {
			return err
		}
		return e.AddArgument("value")
	})
	require.NoError(t, err)
	require.Len(t, b.SelectedOffsets(), 5)

	bytes := b.EncodeResult().Bytes
	valueSel := b.SelectedOffsets()[4]
	require.Equal(t, value, new(big.Int).SetBytes(bytes[valueSel.Offset:valueSel.Offset+valueSel.Size]))

	fromSel := b.SelectedOffsets()[2]
	require.Equal(t, from, common.BytesToAddress(bytes[fromSel.Offset:fromSel.Offset+fromSel.Size]))
}

func TestMultiEventBuilderOrdersByLogIndex(t *testing.T) {
	to := common.HexToAddress("0xc0ffee")
	parsed, err := abiintrospect.Parse(sampleContractABI)
	require.NoError(t, err)
	ev, err := parsed.EventByName("Transfer")
	require.NoError(t, err)

	makeLog := func(value int64) txadapter.Log {
		data, err := abicodec.EncodeSequence([]abivalue.Value{abivalue.NewUint(256, big.NewInt(value))})
		require.NoError(t, err)
		return txadapter.Log{
			Address: to,
			Topics:  []common.Hash{ev.ID, common.BytesToHash(common.HexToAddress("0x1").Bytes()), common.BytesToHash(common.HexToAddress("0x2").Bytes())},
			Data:    data,
		}
	}

	tx := sampleType2Tx(to, nil)
	rx := txadapter.Receipt{
		Status:    1,
		GasUsed:   50000,
		Logs:      []txadapter.Log{makeLog(1), makeLog(2)},
		LogsBloom: make([]byte, 256),
	}

	provider := testutil.NewMapAbiProvider(map[common.Address]string{to: sampleContractABI})
	b, err := FromTransaction(tx, rx, provider)
	require.NoError(t, err)

	var seenIndices []int
	b, err = b.MultiEventBuilder(context.Background(), "Transfer", func(logIndex int, e *QueryBuilderForEvent) error {
		seenIndices = append(seenIndices, logIndex)
		return e.AddArgument("value")
	})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, seenIndices)
	require.Len(t, b.SelectedOffsets(), 2)
}

func TestAbiProviderNotSetSurfacesDedicatedKind(t *testing.T) {
	to := common.HexToAddress("0x01")
	tx := sampleType2Tx(to, []byte{0x01, 0x02, 0x03, 0x04})
	rx := txadapter.Receipt{Status: 1, GasUsed: 50000, LogsBloom: make([]byte, 256)}

	b, err := FromTransaction(tx, rx, nil)
	require.NoError(t, err)

	_, err = b.FunctionBuilder(context.Background(), "transfer", func(f *QueryBuilderForFunction) error { return nil })
	require.Error(t, err)
	qerr, ok := err.(*QueryError)
	require.True(t, ok)
	require.Equal(t, AbiProviderNotSet, qerr.Kind)
}

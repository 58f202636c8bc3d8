package abicodec

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/gluwa/ethtxquery/internal/abivalue"
)

func uintType(bits int) abivalue.Type { return abivalue.Type{Kind: abivalue.KindUint, Bits: bits} }

func TestEncodeSequenceStaticOnly(t *testing.T) {
	values := []abivalue.Value{
		abivalue.NewUint64(256, 42),
		abivalue.NewBool(true),
		abivalue.NewAddress(common.HexToAddress("0x000000000000000000000000000000000000aa")),
	}
	out, err := EncodeSequence(values)
	require.NoError(t, err)
	require.Len(t, out, 3*32)
	require.Equal(t, byte(42), out[31])
	require.Equal(t, byte(1), out[63])
	require.Equal(t, common.HexToAddress("0x000000000000000000000000000000000000aa").Bytes(), out[64+12:96])
}

func TestEncodeDecodeRoundTripDynamicBytes(t *testing.T) {
	values := []abivalue.Value{
		abivalue.NewUint64(64, 7),
		abivalue.NewBytes([]byte{0xde, 0xad, 0xbe, 0xef}),
	}
	out, err := EncodeSequence(values)
	require.NoError(t, err)

	fields, err := ComputeOffsets([]abivalue.Type{uintType(64), {Kind: abivalue.KindBytes}}, out)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	require.Equal(t, "uint64", fields[0].SolType)
	require.NotNil(t, fields[0].Size)
	require.Equal(t, 32, *fields[0].Size)
	require.Equal(t, big.NewInt(7), new(big.Int).SetBytes(fields[0].Value))

	require.Equal(t, "bytes", fields[1].SolType)
	require.True(t, fields[1].IsDynamic)
	require.NotNil(t, fields[1].Size)
	require.Equal(t, 4, *fields[1].Size)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, fields[1].Value)
}

func TestEncodeDecodeRoundTripArrayOfDynamicTuple(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000001")
	tupleType := abivalue.Type{
		Kind: abivalue.KindTuple,
		Fields: []abivalue.Type{
			{Kind: abivalue.KindAddress},
			{Kind: abivalue.KindArray, Elem: &abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}},
		},
	}
	elem := abivalue.NewTuple([]abivalue.Value{
		abivalue.NewAddress(addr),
		abivalue.NewArray(abivalue.Type{Kind: abivalue.KindFixedBytes, Width: 32}, []abivalue.Value{
			abivalue.NewFixedBytes(32, make([]byte, 32)),
		}),
	})
	arrayValue := abivalue.NewArray(tupleType, []abivalue.Value{elem})

	out, err := EncodeSequence([]abivalue.Value{arrayValue})
	require.NoError(t, err)

	arrType := abivalue.Type{Kind: abivalue.KindArray, Elem: &tupleType}
	fields, err := ComputeOffsets([]abivalue.Type{arrType}, out)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.True(t, fields[0].IsDynamic)
	require.Nil(t, fields[0].Size)
	require.Len(t, fields[0].Children, 1)

	elemMeta := fields[0].Children[0]
	require.Len(t, elemMeta.Children, 2)
	require.Equal(t, "address", elemMeta.Children[0].SolType)
	require.Equal(t, addr.Bytes(), elemMeta.Children[0].Value[12:])
	require.True(t, elemMeta.Children[1].IsDynamic)
	require.Len(t, elemMeta.Children[1].Children, 1)
}

func TestEncodeDecodeRoundTripStaticTupleArray(t *testing.T) {
	tupleType := abivalue.Type{
		Kind: abivalue.KindTuple,
		Fields: []abivalue.Type{
			uintType(256),
			{Kind: abivalue.KindAddress},
		},
	}
	mk := func(n int64, a common.Address) abivalue.Value {
		return abivalue.NewTuple([]abivalue.Value{abivalue.NewUint(256, big.NewInt(n)), abivalue.NewAddress(a)})
	}
	arrayValue := abivalue.NewArray(tupleType, []abivalue.Value{
		mk(1, common.HexToAddress("0x01")),
		mk(2, common.HexToAddress("0x02")),
	})

	out, err := EncodeSequence([]abivalue.Value{arrayValue})
	require.NoError(t, err)

	arrType := abivalue.Type{Kind: abivalue.KindArray, Elem: &tupleType}
	fields, err := ComputeOffsets([]abivalue.Type{arrType}, out)
	require.NoError(t, err)
	require.Len(t, fields[0].Children, 2)
	require.False(t, fields[0].Children[0].IsDynamic)
	require.Len(t, fields[0].Children[0].Children, 2)
	require.Equal(t, big.NewInt(1), new(big.Int).SetBytes(fields[0].Children[0].Children[0].Value))
	require.Equal(t, big.NewInt(2), new(big.Int).SetBytes(fields[0].Children[1].Children[0].Value))
}

func TestEncodeRejectsOverflowingUint(t *testing.T) {
	_, err := EncodeSequence([]abivalue.Value{abivalue.NewUint(8, big.NewInt(256))})
	require.Error(t, err)
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
}

func TestEncodeRejectsFunctionValue(t *testing.T) {
	_, err := EncodeSequence([]abivalue.Value{{Kind: abivalue.KindFunction}})
	require.Error(t, err)
}

func TestDecodeRejectsFunctionType(t *testing.T) {
	_, err := ComputeOffsets([]abivalue.Type{{Kind: abivalue.KindFunction}}, make([]byte, 32))
	require.Error(t, err)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, DecodeUnsupportedType, decErr.Kind)
}

func TestEncodeNegativeInt(t *testing.T) {
	out, err := EncodeSequence([]abivalue.Value{abivalue.NewInt(256, big.NewInt(-1))})
	require.NoError(t, err)
	for _, b := range out {
		require.Equal(t, byte(0xff), b)
	}
}

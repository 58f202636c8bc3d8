package abiintrospect

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/require"

	"github.com/gluwa/ethtxquery/internal/abivalue"
)

const sampleABI = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"},{"name":"data","type":"bytes"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"event","name":"Transfer","anonymous":false,
   "inputs":[
     {"name":"from","type":"address","indexed":true},
     {"name":"to","type":"address","indexed":true},
     {"name":"value","type":"uint256","indexed":false}
   ]}
]`

func TestFunctionByNameUnambiguous(t *testing.T) {
	parsed, err := Parse(sampleABI)
	require.NoError(t, err)

	m, err := parsed.FunctionByName("balanceOf")
	require.NoError(t, err)
	require.Equal(t, "balanceOf", m.RawName)
}

func TestFunctionByNameAmbiguousOverload(t *testing.T) {
	parsed, err := Parse(sampleABI)
	require.NoError(t, err)

	_, err = parsed.FunctionByName("transfer")
	require.Error(t, err)
	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, 2, ambiguous.Matches)
}

func TestFunctionByNameNotFound(t *testing.T) {
	parsed, err := Parse(sampleABI)
	require.NoError(t, err)

	_, err = parsed.FunctionByName("doesNotExist")
	require.Error(t, err)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFunctionBySelector(t *testing.T) {
	parsed, err := Parse(sampleABI)
	require.NoError(t, err)

	m, err := parsed.FunctionByName("balanceOf")
	require.NoError(t, err)

	var sel [4]byte
	copy(sel[:], m.ID)

	found, err := parsed.FunctionBySelector(sel)
	require.NoError(t, err)
	require.Equal(t, "balanceOf", found.RawName)
}

func TestEventByNameAndTopic0(t *testing.T) {
	parsed, err := Parse(sampleABI)
	require.NoError(t, err)

	ev, err := parsed.EventByName("Transfer")
	require.NoError(t, err)
	require.Equal(t, "Transfer", ev.RawName)

	byTopic, err := parsed.EventByTopic0(ev.ID)
	require.NoError(t, err)
	require.Equal(t, ev.Sig, byTopic.Sig)
}

func TestToValueTypeScalarsAndComposites(t *testing.T) {
	uintT, err := abi.NewType("uint256", "", nil)
	require.NoError(t, err)
	vt, err := ToValueType(uintT)
	require.NoError(t, err)
	require.Equal(t, abivalue.KindUint, vt.Kind)
	require.Equal(t, 256, vt.Bits)

	arrT, err := abi.NewType("address[]", "", nil)
	require.NoError(t, err)
	vt, err = ToValueType(arrT)
	require.NoError(t, err)
	require.Equal(t, abivalue.KindArray, vt.Kind)
	require.Equal(t, abivalue.KindAddress, vt.Elem.Kind)

	tupleT, err := abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "a", Type: "uint256"},
		{Name: "b", Type: "bytes"},
	})
	require.NoError(t, err)
	vt, err = ToValueType(tupleT)
	require.NoError(t, err)
	require.Equal(t, abivalue.KindTuple, vt.Kind)
	require.Len(t, vt.Fields, 2)
}

func TestArgumentTypesFiltersIndexed(t *testing.T) {
	parsed, err := Parse(sampleABI)
	require.NoError(t, err)
	ev, err := parsed.EventByName("Transfer")
	require.NoError(t, err)

	types, names, err := ArgumentTypes(ev.Inputs, false)
	require.NoError(t, err)
	require.Equal(t, []string{"value"}, names)
	require.Len(t, types, 1)

	allTypes, allNames, err := ArgumentTypes(ev.Inputs, true)
	require.NoError(t, err)
	require.Equal(t, []string{"from", "to", "value"}, allNames)
	require.Len(t, allTypes, 3)
}

package txquery

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/gluwa/ethtxquery/internal/abicodec"
	"github.com/gluwa/ethtxquery/internal/abiintrospect"
)

// functionSignatureSize is the byte width of a Solidity function
// selector: the first 4 bytes of calldata.
const functionSignatureSize = 4

// QueryBuilderForFunction selects the function selector and individual
// arguments out of the transaction's already-resolved calldata field.
// It accumulates selections locally; they are only merged into the
// parent QueryBuilder once the configure callback passed to
// FunctionBuilder returns successfully.
type QueryBuilderForFunction struct {
	dataField abicodec.FieldMetadata
	method    *abi.Method

	argFields []abicodec.FieldMetadata
	argNames  []string

	selected []OffsetRange
}

// AddSignature selects the 4-byte function selector at the start of
// calldata.
func (f *QueryBuilderForFunction) AddSignature() *QueryBuilderForFunction {
	f.selected = append(f.selected, OffsetRange{Offset: uint32(f.dataField.Offset), Size: functionSignatureSize})
	return f
}

// AddArgument selects one named input argument of the matched
// function. The argument must be a static type (have a single
// offset/size of its own); dynamic arguments (bytes, string, arrays,
// dynamic tuples) fail with DynamicFieldHasNoSize, since there is no
// single offset/size pair to select for a field whose Size() is itself
// variable.
func (f *QueryBuilderForFunction) AddArgument(name string) error {
	if f.argFields == nil {
		types, names, err := abiintrospect.ArgumentTypes(f.method.Inputs, true)
		if err != nil {
			return newQueryError(AbiUnparseable, "%s: %v", f.method.Sig, err)
		}
		body := f.dataField.Value[functionSignatureSize:]
		fields, err := abicodec.ComputeOffsets(types, body)
		if err != nil {
			return newQueryError(DecodeFailed, "arguments of %s: %v", f.method.Sig, err)
		}
		f.argFields = fields
		f.argNames = names
	}

	idx := indexOf(f.argNames, name)
	if idx < 0 {
		return newQueryError(FieldNotPresentInTx, "argument %q of %s", name, f.method.Sig)
	}
	field := f.argFields[idx]
	if field.Size == nil || field.IsDynamic {
		return newQueryError(DynamicFieldHasNoSize, "argument %q of %s", name, f.method.Sig)
	}

	offset := f.dataField.Offset + functionSignatureSize + field.Offset
	f.selected = append(f.selected, OffsetRange{Offset: uint32(offset), Size: uint32(*field.Size)})
	return nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

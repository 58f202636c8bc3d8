package txquery

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/gluwa/ethtxquery/internal/abicodec"
	"github.com/gluwa/ethtxquery/internal/abiintrospect"
)

// QueryBuilderForEvent selects the emitting address, the topic0
// signature, and individual indexed/non-indexed arguments of one
// matched log. Indexed arguments are read straight out of the log's
// decoded topics; non-indexed arguments are decoded from the log's
// data bytes on first use.
type QueryBuilderForEvent struct {
	logField abicodec.FieldMetadata // Children: [address, topics, data]
	event    *abi.Event

	dataFields []abicodec.FieldMetadata
	dataNames  []string
	dataOffset int

	selected []OffsetRange
}

// AddAddress selects the log's own emitting contract address.
func (e *QueryBuilderForEvent) AddAddress() *QueryBuilderForEvent {
	f := e.logField.Children[0]
	e.selected = append(e.selected, OffsetRange{Offset: uint32(f.Offset), Size: uint32(*f.Size)})
	return e
}

// AddSignature selects topic0, the event's canonical signature hash.
func (e *QueryBuilderForEvent) AddSignature() *QueryBuilderForEvent {
	f := e.logField.Children[1].Children[0]
	e.selected = append(e.selected, OffsetRange{Offset: uint32(f.Offset), Size: uint32(*f.Size)})
	return e
}

// AddArgument selects one named event input, indexed or not. Indexed
// parameters come straight from the log's topics (topic0 is the
// signature, so the first indexed parameter is topics[1]); non-indexed
// parameters are decoded from the log's ABI-encoded data on first use.
// A dynamic non-indexed argument fails with DynamicFieldHasNoSize.
func (e *QueryBuilderForEvent) AddArgument(name string) error {
	topics := e.logField.Children[1].Children
	topicIdx := 1

	for _, input := range e.event.Inputs {
		if input.Name != name {
			if input.Indexed {
				topicIdx++
			}
			continue
		}

		if input.Indexed {
			if topicIdx >= len(topics) {
				return newQueryError(EventLogUndecodable, "indexed argument %q missing its topic", name)
			}
			f := topics[topicIdx]
			e.selected = append(e.selected, OffsetRange{Offset: uint32(f.Offset), Size: uint32(*f.Size)})
			return nil
		}

		if e.dataFields == nil {
			dataField := e.logField.Children[2]
			types, names, err := abiintrospect.ArgumentTypes(e.event.Inputs, false)
			if err != nil {
				return newQueryError(AbiUnparseable, "%s: %v", e.event.Sig, err)
			}
			fields, err := abicodec.ComputeOffsets(types, dataField.Value)
			if err != nil {
				return newQueryError(EventLogUndecodable, "data of %s: %v", e.event.Sig, err)
			}
			e.dataFields = fields
			e.dataNames = names
			e.dataOffset = dataField.Offset
		}

		idx := indexOf(e.dataNames, name)
		if idx < 0 {
			return newQueryError(FieldNotPresentInTx, "argument %q of %s", name, e.event.Sig)
		}
		field := e.dataFields[idx]
		if field.Size == nil || field.IsDynamic {
			return newQueryError(DynamicFieldHasNoSize, "argument %q of %s", name, e.event.Sig)
		}
		e.selected = append(e.selected, OffsetRange{Offset: uint32(e.dataOffset + field.Offset), Size: uint32(*field.Size)})
		return nil
	}

	return newQueryError(FieldNotPresentInTx, "argument %q of %s", name, e.event.Sig)
}

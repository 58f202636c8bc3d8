// Package txquery is the public surface of the system: it turns a
// (transaction, receipt) pair into a canonical ABI encoding and lets a
// caller select byte-exact slices of it by semantic field, by
// contract-function argument, or by emitted-log-event argument.
//
// Grounded on ccnext-query-builder/src/abi/query_builder.rs,
// query_builder_for_function.rs and
// ccnext-alloy/src/query_builder/abi/query_builder_for_event.rs.
package txquery

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/gluwa/ethtxquery/internal/abicodec"
	"github.com/gluwa/ethtxquery/internal/abiintrospect"
	"github.com/gluwa/ethtxquery/internal/abivalue"
	"github.com/gluwa/ethtxquery/internal/fieldmap"
	"github.com/gluwa/ethtxquery/internal/txadapter"
)

// AbiProvider is the capability a QueryBuilder uses to resolve a
// contract address to its JSON ABI. Implementations may block on I/O
// (an RPC call, a block explorer lookup, a local file); the builder
// never retries a failed fetch itself.
type AbiProvider interface {
	GetABI(ctx context.Context, address common.Address) (string, error)
}

// OffsetRange is one selected (offset, size) pair into EncodeResult().Bytes.
type OffsetRange struct {
	Offset uint32
	Size   uint32
}

// QueryBuilder is built once from a transaction/receipt pair and then
// accumulates field selections. It is not safe for concurrent use by
// more than one goroutine; run independent queries on independent
// builders.
type QueryBuilder struct {
	version       abicodec.EncodingVersion
	txType        txadapter.TxType
	typeNames     []string
	encoded       []byte
	mappedOffsets map[fieldmap.SemanticFieldID]abicodec.FieldMetadata

	provider AbiProvider
	abiCache map[common.Address]*abiintrospect.ABI

	selected []OffsetRange
}

// FromTransaction runs the adapter, the encoder, and the offset
// decoder, then zips the decoder's top-level nodes against the field
// map for this transaction's variant. A length mismatch between the
// decoder output and the field map indicates adapter/field-map drift
// and is reported as LengthMismatch rather than silently misaligning
// field identities.
func FromTransaction(tx txadapter.Transaction, rx txadapter.Receipt, provider AbiProvider) (*QueryBuilder, error) {
	values, err := txadapter.BuildValues(tx, rx)
	if err != nil {
		return nil, newQueryError(EncodeFailed, "%v", err)
	}

	encoded, err := abicodec.EncodeSequence(values)
	if err != nil {
		return nil, newQueryError(EncodeFailed, "%v", err)
	}

	entries, err := fieldmap.ForVariant(abicodec.V1, tx.Type)
	if err != nil {
		return nil, newQueryError(LengthMismatch, "%v", err)
	}
	if len(values) != len(entries) {
		return nil, newQueryError(LengthMismatch, "adapter produced %d values, field map has %d entries", len(values), len(entries))
	}

	fields, err := abicodec.ComputeOffsets(fieldmap.Types(entries), encoded)
	if err != nil {
		return nil, newQueryError(DecodeFailed, "%v", err)
	}
	if len(fields) != len(entries) {
		return nil, newQueryError(LengthMismatch, "decoder produced %d top-level nodes, field map has %d entries", len(fields), len(entries))
	}

	mapped := make(map[fieldmap.SemanticFieldID]abicodec.FieldMetadata, len(fields))
	typeNames := make([]string, len(entries))
	for i, e := range entries {
		mapped[e.ID] = fields[i]
		typeNames[i] = abivalue.SolString(e.Type)
	}

	return &QueryBuilder{
		version:       abicodec.V1,
		txType:        tx.Type,
		typeNames:     typeNames,
		encoded:       encoded,
		mappedOffsets: mapped,
		provider:      provider,
		abiCache:      make(map[common.Address]*abiintrospect.ABI),
	}, nil
}

// SetAbiProvider replaces the contract-ABI provider after construction,
// e.g. to attach one lazily once a transaction's "to" address is known
// to the caller by other means.
func (b *QueryBuilder) SetAbiProvider(p AbiProvider) { b.provider = p }

// EncodeResult returns the canonical AbiEncodeResult for this builder's
// transaction/receipt pair.
func (b *QueryBuilder) EncodeResult() abicodec.AbiEncodeResult {
	return abicodec.AbiEncodeResult{Version: b.version, TypeNames: b.typeNames, Bytes: b.encoded}
}

// AddStaticField selects a top-level field by semantic identity. It
// fails with FieldIsNotStatic for composite fields (access lists,
// authorization lists, blob hashes, logs) that have no single
// offset/size of their own; parts of individual logs are reached
// through EventBuilder/MultiEventBuilder instead.
func (b *QueryBuilder) AddStaticField(id fieldmap.SemanticFieldID) (*QueryBuilder, error) {
	field, ok := b.mappedOffsets[id]
	if !ok {
		return nil, newQueryError(FieldNotPresentInTx, "%s", id)
	}
	if field.Size == nil {
		return nil, newQueryError(FieldIsNotStatic, "%s", id)
	}
	b.selected = append(b.selected, OffsetRange{Offset: uint32(field.Offset), Size: uint32(*field.Size)})
	return b, nil
}

// SelectedOffsets returns every selection made so far, in the order
// the caller issued Add* calls.
func (b *QueryBuilder) SelectedOffsets() []OffsetRange {
	out := make([]OffsetRange, len(b.selected))
	copy(out, b.selected)
	return out
}

// FunctionBuilder resolves the invoked contract's ABI (by the
// transaction's "to" address) and the function matching nameOrSelector
// (a bare name, or a "0x"-prefixed 4-byte selector), then hands a
// QueryBuilderForFunction to configure to the caller. The sub-builder's
// selections are appended atomically: a failure inside configure
// leaves the parent's prior selections untouched.
func (b *QueryBuilder) FunctionBuilder(ctx context.Context, nameOrSelector string, configure func(*QueryBuilderForFunction) error) (*QueryBuilder, error) {
	dataField, ok := b.mappedOffsets[fieldmap.TxData]
	if !ok {
		return nil, newQueryError(FieldNotPresentInTx, "%s", fieldmap.TxData)
	}
	if dataField.Size == nil || *dataField.Size < functionSignatureSize {
		return nil, newQueryError(EmptyCallData, "")
	}

	toIsNull, ok := b.mappedOffsets[fieldmap.TxToIsNull]
	if !ok {
		return nil, newQueryError(FieldNotPresentInTx, "%s", fieldmap.TxToIsNull)
	}
	if wordIsTrue(toIsNull.Value) {
		return nil, newQueryError(NoToAddress, "")
	}
	toField, ok := b.mappedOffsets[fieldmap.TxTo]
	if !ok {
		return nil, newQueryError(FieldNotPresentInTx, "%s", fieldmap.TxTo)
	}
	to := addressFromWord(toField.Value)

	parsed, err := b.getABICached(ctx, to)
	if err != nil {
		return nil, err
	}

	method, err := resolveFunction(parsed, nameOrSelector)
	if err != nil {
		return nil, err
	}

	sub := &QueryBuilderForFunction{dataField: dataField, method: method}
	if err := configure(sub); err != nil {
		return nil, err
	}
	b.selected = append(b.selected, sub.selected...)
	return b, nil
}

// EventBuilder finds the single log whose topic0 matches nameOrTopic0
// against that log's own contract ABI, then hands a QueryBuilderForEvent
// to configure. More than one matching log fails with
// AmbiguousEventMatch.
func (b *QueryBuilder) EventBuilder(ctx context.Context, nameOrTopic0 string, configure func(*QueryBuilderForEvent) error) (*QueryBuilder, error) {
	matches, err := b.findEvents(ctx, nameOrTopic0, false)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		return nil, newQueryError(AmbiguousEventMatch, "%s matches %d logs", nameOrTopic0, len(matches))
	}
	sub := &QueryBuilderForEvent{logField: matches[0].logField, event: matches[0].event}
	if err := configure(sub); err != nil {
		return nil, err
	}
	b.selected = append(b.selected, sub.selected...)
	return b, nil
}

// MultiEventBuilder finds every log matching nameOrTopic0, in
// ascending log-index order, and invokes configure once per match with
// its log index.
func (b *QueryBuilder) MultiEventBuilder(ctx context.Context, nameOrTopic0 string, configure func(logIndex int, sub *QueryBuilderForEvent) error) (*QueryBuilder, error) {
	matches, err := b.findEvents(ctx, nameOrTopic0, false)
	if err != nil {
		return nil, err
	}
	var appended []OffsetRange
	for _, m := range matches {
		sub := &QueryBuilderForEvent{logField: m.logField, event: m.event}
		if err := configure(m.logIndex, sub); err != nil {
			return nil, err
		}
		appended = append(appended, sub.selected...)
	}
	b.selected = append(b.selected, appended...)
	return b, nil
}

type eventMatch struct {
	logIndex int
	logField abicodec.FieldMetadata
	event    *abi.Event
}

func (b *QueryBuilder) findEvents(ctx context.Context, nameOrTopic0 string, firstOnly bool) ([]eventMatch, error) {
	logsField, ok := b.mappedOffsets[fieldmap.RxLogs]
	if !ok {
		return nil, newQueryError(FieldNotPresentInTx, "%s", fieldmap.RxLogs)
	}

	byTopic := strings.HasPrefix(nameOrTopic0, "0x")
	var wantTopic common.Hash
	if byTopic {
		wantTopic = common.HexToHash(nameOrTopic0)
	}

	var out []eventMatch

	for i, logChild := range logsField.Children {
		if len(logChild.Children) != 3 {
			return nil, newQueryError(EventLogUndecodable, "log %d", i)
		}
		addrField := logChild.Children[0]
		topicsField := logChild.Children[1]
		if len(topicsField.Children) == 0 {
			continue // anonymous log with no topic0 can never match a named/selector lookup
		}
		topic0 := common.BytesToHash(topicsField.Children[0].Value)
		if byTopic && topic0 != wantTopic {
			continue
		}

		addr := addressFromWord(addrField.Value)
		parsed, err := b.getABICached(ctx, addr)
		if err != nil {
			return nil, err
		}

		var ev *abi.Event
		if byTopic {
			raw, err := parsed.EventByTopic0(topic0)
			if err != nil {
				continue
			}
			ev = raw
		} else {
			raw, err := parsed.EventByName(nameOrTopic0)
			if err != nil {
				if isAmbiguous(err) {
					return nil, newQueryError(AmbiguousEventMatch, "%s", nameOrTopic0)
				}
				continue
			}
			if raw.ID != topic0 {
				continue // this log's actual topic0 doesn't match the resolved event
			}
			ev = raw
		}

		out = append(out, eventMatch{logIndex: i, logField: logChild, event: ev})
		if firstOnly {
			break
		}
	}

	if len(out) == 0 {
		return nil, newQueryError(EventNotFound, "%s", nameOrTopic0)
	}
	return out, nil
}

func (b *QueryBuilder) getABICached(ctx context.Context, addr common.Address) (*abiintrospect.ABI, error) {
	if cached, ok := b.abiCache[addr]; ok {
		return cached, nil
	}
	if b.provider == nil {
		return nil, newQueryError(AbiProviderNotSet, "")
	}
	raw, err := b.provider.GetABI(ctx, addr)
	if err != nil {
		return nil, newQueryError(AbiProviderFailed, "%s: %v", addr, err)
	}
	parsed, err := abiintrospect.Parse(raw)
	if err != nil {
		return nil, newQueryError(AbiUnparseable, "%s: %v", addr, err)
	}
	b.abiCache[addr] = parsed
	return parsed, nil
}

func resolveFunction(parsed *abiintrospect.ABI, nameOrSelector string) (*abi.Method, error) {
	if strings.HasPrefix(nameOrSelector, "0x") {
		raw, err := hexSelector(nameOrSelector)
		if err != nil {
			return nil, newQueryError(FunctionNotFound, "%s", nameOrSelector)
		}
		m, err := parsed.FunctionBySelector(raw)
		if err != nil {
			return nil, newQueryError(FunctionNotFound, "%s", nameOrSelector)
		}
		return m, nil
	}
	m, err := parsed.FunctionByName(nameOrSelector)
	if err != nil {
		if isAmbiguous(err) {
			return nil, newQueryError(AmbiguousFunctionMatch, "%s", nameOrSelector)
		}
		return nil, newQueryError(FunctionNotFound, "%s", nameOrSelector)
	}
	return m, nil
}

func hexSelector(s string) ([4]byte, error) {
	var sel [4]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(raw) != 4 {
		return sel, fmt.Errorf("txquery: %q is not a 4-byte selector", s)
	}
	copy(sel[:], raw)
	return sel, nil
}

func isAmbiguous(err error) bool {
	_, ok := err.(*abiintrospect.AmbiguousError)
	return ok
}

func wordIsTrue(word []byte) bool {
	for _, b := range word {
		if b != 0 {
			return true
		}
	}
	return false
}

func addressFromWord(word []byte) common.Address {
	var a common.Address
	if len(word) >= 32 {
		copy(a[:], word[12:32])
	} else if len(word) >= 20 {
		copy(a[:], word[len(word)-20:])
	}
	return a
}

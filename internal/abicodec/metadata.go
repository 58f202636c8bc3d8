package abicodec

// EncodingVersion tags the wire layout used by a particular encode/decode
// pass. Only V1 exists today; the field carries forward so a future
// layout change does not require renaming the package.
type EncodingVersion int

const (
	V1 EncodingVersion = 1
)

// AbiEncodeResult is the output of an encode pass: the version that
// produced it, the Solidity type strings of the top-level sequence in
// order, and the encoded bytes themselves.
type AbiEncodeResult struct {
	Version   EncodingVersion
	TypeNames []string
	Bytes     []byte
}

// FieldMetadata is one node of the tree ComputeOffsets rebuilds from a
// type list and an already-encoded byte string, with no access to the
// original values. Size is nil for composite nodes (Array, FixedArray,
// Tuple) whose extent is only meaningful as the sum of their children;
// it is set for every leaf and for Bytes/String (the length of Value).
type FieldMetadata struct {
	SolType   string
	Offset    int
	Size      *int
	IsDynamic bool
	Value     []byte
	Children  []FieldMetadata
}

func sizeOf(n int) *int {
	return &n
}

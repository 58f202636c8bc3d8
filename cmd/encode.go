package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/gluwa/ethtxquery/internal/abicodec"
	"github.com/gluwa/ethtxquery/internal/abivalue"
	"github.com/gluwa/ethtxquery/internal/txadapter"
)

var encodeFilePath string

// encodeOutput is the JSON rendering of an AbiEncodeResult.
type encodeOutput struct {
	Version   abicodec.EncodingVersion `json:"version"`
	TypeNames []string                 `json:"typeNames"`
	Bytes     hexutil.Bytes            `json:"bytes"`
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a transaction+receipt pair into the canonical ABI byte string",
	Long: `Encode a transaction+receipt pair into the canonical ABI byte string.

Reads a JSON file with "transaction" and "receipt" objects (the same
field shapes go-ethereum's own RPC types use) and prints the resulting
AbiEncodeResult as JSON.

Example:
  ethtxquery encode --file-path input.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if encodeFilePath == "" {
			return fmt.Errorf("file path is required")
		}
		in, err := readInput(encodeFilePath)
		if err != nil {
			return err
		}

		values, err := txadapter.BuildValues(in.Transaction.toAdapter(), in.Receipt.toAdapter())
		if err != nil {
			return fmt.Errorf("failed to build transaction values: %w", err)
		}
		encoded, err := abicodec.EncodeSequence(values)
		if err != nil {
			return fmt.Errorf("failed to encode abi sequence: %w", err)
		}

		types := make([]string, len(values))
		for i, v := range values {
			types[i] = abivalue.SolString(v.Type())
		}

		out := encodeOutput{Version: abicodec.V1, TypeNames: types, Bytes: encoded}
		outJSON, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(outJSON))
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeFilePath, "file-path", "f", "", "Path to the JSON file containing the transaction and receipt")
	encodeCmd.MarkFlagRequired("file-path")
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/gluwa/ethtxquery/internal/fieldmap"
	"github.com/gluwa/ethtxquery/pkg/txquery"
	"github.com/gluwa/ethtxquery/pkg/txquery/testutil"
)

var (
	queryFilePath     string
	queryFields       []string
	queryFunctionName string
	queryFunctionArgs []string
	querySignature    bool
	queryAbiFile      string
	queryEventName    string
	queryEventArgs    []string
	queryEventAddress bool
)

// offsetOutput mirrors one (offset, size) pair in SelectedOffsets' output.
type offsetOutput struct {
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Select byte-exact field slices out of an encoded transaction+receipt",
	Long: `Select byte-exact field slices out of an encoded transaction+receipt.

Selects one or more top-level semantic fields (--field TxNonce --field
TxValue ...) and, optionally, arguments of the invoked contract
function (--function name-or-0xselector --arg foo --abi-file abi.json).

Also selects arguments out of a decoded log (--event name-or-0xtopic0
--event-arg foo --abi-file abi.json).

Example:
  ethtxquery query --file-path input.json --field TxNonce --field TxValue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryFilePath == "" {
			return fmt.Errorf("file path is required")
		}
		in, err := readInput(queryFilePath)
		if err != nil {
			return err
		}

		var provider txquery.AbiProvider
		if queryAbiFile != "" && in.Transaction.To != nil {
			raw, err := os.ReadFile(queryAbiFile)
			if err != nil {
				return fmt.Errorf("failed to read abi file: %w", err)
			}
			provider = testutil.NewMapAbiProvider(map[common.Address]string{
				*in.Transaction.To: string(raw),
			})
		}

		builder, err := txquery.FromTransaction(in.Transaction.toAdapter(), in.Receipt.toAdapter(), provider)
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}

		for _, name := range queryFields {
			id, ok := fieldmap.ParseID(name)
			if !ok {
				return fmt.Errorf("unknown field %q", name)
			}
			if builder, err = builder.AddStaticField(id); err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
		}

		if queryFunctionName != "" {
			builder, err = builder.FunctionBuilder(context.Background(), queryFunctionName, func(f *txquery.QueryBuilderForFunction) error {
				if querySignature {
					f.AddSignature()
				}
				for _, arg := range queryFunctionArgs {
					if err := f.AddArgument(arg); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("function %q: %w", queryFunctionName, err)
			}
		}

		if queryEventName != "" {
			builder, err = builder.EventBuilder(context.Background(), queryEventName, func(e *txquery.QueryBuilderForEvent) error {
				if queryEventAddress {
					e.AddAddress()
				}
				if querySignature {
					e.AddSignature()
				}
				for _, arg := range queryEventArgs {
					if err := e.AddArgument(arg); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("event %q: %w", queryEventName, err)
			}
		}

		out := make([]offsetOutput, 0, len(builder.SelectedOffsets()))
		for _, r := range builder.SelectedOffsets() {
			out = append(out, offsetOutput{Offset: r.Offset, Size: r.Size})
		}
		outJSON, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(outJSON))
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryFilePath, "file-path", "f", "", "Path to the JSON file containing the transaction and receipt")
	queryCmd.MarkFlagRequired("file-path")

	queryCmd.Flags().StringArrayVar(&queryFields, "field", nil, "Semantic field name to select (repeatable), e.g. TxNonce, TxValue, RxStatus")
	queryCmd.Flags().StringVar(&queryFunctionName, "function", "", "Function name or 0x-prefixed selector to resolve against the ABI file")
	queryCmd.Flags().StringArrayVar(&queryFunctionArgs, "arg", nil, "Function argument name to select (repeatable)")
	queryCmd.Flags().BoolVar(&querySignature, "signature", false, "Select the function's 4-byte selector and, with --event, the log's topic0")
	queryCmd.Flags().StringVar(&queryAbiFile, "abi-file", "", "Path to the JSON ABI of the transaction's 'to' contract")

	queryCmd.Flags().StringVar(&queryEventName, "event", "", "Event name or 0x-prefixed topic0 to resolve against the ABI file")
	queryCmd.Flags().StringArrayVar(&queryEventArgs, "event-arg", nil, "Event argument name to select (repeatable)")
	queryCmd.Flags().BoolVar(&queryEventAddress, "event-address", false, "Select the log's emitting contract address")
}

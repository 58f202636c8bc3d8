// Package cmd wires the encode/query operations of this module into a
// small cobra CLI, in the same shape the teacher's own command tree
// used: a root command plus one cobra.Command per operation, each with
// its own flag set registered from init().
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ethtxquery",
	Short: "Canonical ABI encoder and field query tool for Ethereum transactions + receipts",
	Long: `ethtxquery

Encodes an Ethereum transaction and its receipt into a single canonical
ABI byte string, and lets a caller select byte-exact slices of that
string by semantic field, by invoked-function argument, or by emitted
log-event argument.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to run
// once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(queryCmd)
}

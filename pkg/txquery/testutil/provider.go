// Package testutil provides a minimal, in-memory AbiProvider for tests
// that exercise FunctionBuilder/EventBuilder without a real RPC
// endpoint, grounded on the reference builder's own TestAbiProvider
// test double.
package testutil

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MapAbiProvider serves JSON ABI documents from an in-memory map keyed
// by contract address. GetABI returns an error for any address not in
// the map, which the query builder surfaces as AbiProviderFailed.
type MapAbiProvider struct {
	abis map[common.Address]string
}

// NewMapAbiProvider builds a provider from an address-to-JSON-ABI map.
func NewMapAbiProvider(abis map[common.Address]string) *MapAbiProvider {
	return &MapAbiProvider{abis: abis}
}

// GetABI implements txquery.AbiProvider.
func (p *MapAbiProvider) GetABI(_ context.Context, address common.Address) (string, error) {
	raw, ok := p.abis[address]
	if !ok {
		return "", fmt.Errorf("testutil: no ABI registered for %s", address)
	}
	return raw, nil
}

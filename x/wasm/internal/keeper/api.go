package keeper

import (
	"fmt"

	wasmvm "github.com/CosmWasm/wasmvm"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// bech32 conversion costs in wasm gas units
const (
	humanizeCost     = 5 * GasMultiplier
	canonicalizeCost = 4 * GasMultiplier
)

func humanAddress(canon []byte) (string, uint64, error) {
	if len(canon) != sdk.AddrLen {
		return "", humanizeCost, fmt.Errorf("expected %d byte address", sdk.AddrLen)
	}
	return sdk.AccAddress(canon).String(), humanizeCost, nil
}

func canonicalAddress(human string) ([]byte, uint64, error) {
	bz, err := sdk.AccAddressFromBech32(human)
	return bz, canonicalizeCost, err
}

var cosmwasmAPI = wasmvm.GoAPI{
	HumanAddress:     humanAddress,
	CanonicalAddress: canonicalAddress,
}

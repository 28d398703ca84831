package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/x/bank"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

// BankKeeperAdapter exposes the sdk bank keeper blacklist under the name the
// contract keeper expects.
type BankKeeperAdapter struct {
	bank.Keeper
}

var _ types.BankKeeper = BankKeeperAdapter{}

// NewBankKeeperAdapter constructor
func NewBankKeeperAdapter(k bank.Keeper) BankKeeperAdapter {
	return BankKeeperAdapter{Keeper: k}
}

// BlockedAddr returns true when the address can not receive funds
func (a BankKeeperAdapter) BlockedAddr(addr sdk.AccAddress) bool {
	return a.BlacklistedAddr(addr)
}

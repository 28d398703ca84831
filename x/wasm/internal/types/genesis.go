package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// GenesisState is the struct representation of the export genesis
type GenesisState struct {
	Params    Params     `json:"params"`
	Codes     []Code     `json:"codes,omitempty"`
	Contracts []Contract `json:"contracts,omitempty"`
	Sequences []Sequence `json:"sequences,omitempty"`
}

// ValidateBasic performs basic validation of the genesis content
func (s GenesisState) ValidateBasic() error {
	if err := s.Params.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(err, "params")
	}
	for i := range s.Codes {
		if err := s.Codes[i].ValidateBasic(); err != nil {
			return sdkerrors.Wrapf(err, "code: %d", i)
		}
	}
	for i := range s.Contracts {
		if err := s.Contracts[i].ValidateBasic(); err != nil {
			return sdkerrors.Wrapf(err, "contract: %d", i)
		}
	}
	for i := range s.Sequences {
		if err := s.Sequences[i].ValidateBasic(); err != nil {
			return sdkerrors.Wrapf(err, "sequence: %d", i)
		}
	}
	return nil
}

// Code struct encompasses CodeInfo and CodeBytes
type Code struct {
	CodeID    uint64   `json:"code_id"`
	CodeInfo  CodeInfo `json:"code_info"`
	CodeBytes []byte   `json:"code_bytes"`
	// Pinned to wasmvm cache
	Pinned bool `json:"pinned,omitempty"`
}

// ValidateBasic syntax checks
func (c Code) ValidateBasic() error {
	if c.CodeID == 0 {
		return sdkerrors.Wrap(ErrEmpty, "code id")
	}
	if err := c.CodeInfo.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(err, "code info")
	}
	if err := validateWasmCode(c.CodeBytes); err != nil {
		return sdkerrors.Wrap(err, "code bytes")
	}
	return nil
}

// Contract struct encompasses ContractAddress, ContractInfo, contract state and code history
type Contract struct {
	ContractAddress sdk.AccAddress             `json:"contract_address"`
	ContractInfo    ContractInfo               `json:"contract_info"`
	ContractState   []Model                    `json:"contract_state,omitempty"`
	ContractHistory []ContractCodeHistoryEntry `json:"contract_history,omitempty"`
}

// ValidateBasic syntax checks
func (c Contract) ValidateBasic() error {
	if err := sdk.VerifyAddressFormat(c.ContractAddress); err != nil {
		return sdkerrors.Wrap(err, "contract address")
	}
	if err := c.ContractInfo.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(err, "contract info")
	}
	for i := range c.ContractState {
		if err := c.ContractState[i].ValidateBasic(); err != nil {
			return sdkerrors.Wrapf(err, "contract state model: %d", i)
		}
	}
	for i := range c.ContractHistory {
		if err := c.ContractHistory[i].ValidateBasic(); err != nil {
			return sdkerrors.Wrapf(err, "contract history entry: %d", i)
		}
	}
	return nil
}

// ValidateGenesis performs syntax checks on the genesis state
func ValidateGenesis(data GenesisState) error {
	return data.ValidateBasic()
}

// Sequence id and value of a counter
type Sequence struct {
	IDKey []byte `json:"id_key"`
	Value uint64 `json:"value"`
}

// ValidateBasic syntax checks
func (s Sequence) ValidateBasic() error {
	if len(s.IDKey) == 0 {
		return sdkerrors.Wrap(ErrEmpty, "id key")
	}
	return nil
}

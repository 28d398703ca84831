package types

import (
	"bytes"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGenesisFixture(mutators ...func(*GenesisState)) GenesisState {
	anyAddr := sdk.AccAddress(bytes.Repeat([]byte{0x1}, sdk.AddrLen))
	contractAddr := sdk.AccAddress(bytes.Repeat([]byte{0x2}, ContractAddrLen))
	state := GenesisState{
		Params: DefaultParams(),
		Codes: []Code{{
			CodeID:    1,
			CodeInfo:  NewCodeInfo(bytes.Repeat([]byte{0x3}, 32), anyAddr, "https://example.com/code.wasm", AllowEverybody),
			CodeBytes: []byte("\x00asm-valid"),
		}},
		Contracts: []Contract{{
			ContractAddress: contractAddr,
			ContractInfo:    NewContractInfo(1, anyAddr, nil, "my contract", 10),
			ContractState:   []Model{{Key: []byte("foo"), Value: []byte(`"bar"`)}},
			ContractHistory: []ContractCodeHistoryEntry{{
				Operation: ContractCodeHistoryTypeInit,
				ToCodeID:  1,
				Height:    10,
			}},
		}},
		Sequences: []Sequence{
			{IDKey: KeyLastCodeID, Value: 2},
			{IDKey: KeyLastInstanceID, Value: 2},
		},
	}
	for _, m := range mutators {
		m(&state)
	}
	return state
}

func TestGenesisStateValidateBasic(t *testing.T) {
	specs := map[string]struct {
		srcMutator func(*GenesisState)
		expError   bool
	}{
		"all good": {
			srcMutator: func(*GenesisState) {},
		},
		"params invalid": {
			srcMutator: func(s *GenesisState) { s.Params = Params{} },
			expError:   true,
		},
		"code id empty": {
			srcMutator: func(s *GenesisState) { s.Codes[0].CodeID = 0 },
			expError:   true,
		},
		"code hash empty": {
			srcMutator: func(s *GenesisState) { s.Codes[0].CodeInfo.CodeHash = nil },
			expError:   true,
		},
		"code bytes empty": {
			srcMutator: func(s *GenesisState) { s.Codes[0].CodeBytes = nil },
			expError:   true,
		},
		"contract address malformed": {
			srcMutator: func(s *GenesisState) { s.Contracts[0].ContractAddress = []byte{0x1} },
			expError:   true,
		},
		"contract label empty": {
			srcMutator: func(s *GenesisState) { s.Contracts[0].ContractInfo.Label = "" },
			expError:   true,
		},
		"contract state model without key": {
			srcMutator: func(s *GenesisState) { s.Contracts[0].ContractState[0].Key = nil },
			expError:   true,
		},
		"history operation unknown": {
			srcMutator: func(s *GenesisState) { s.Contracts[0].ContractHistory[0].Operation = "unknown" },
			expError:   true,
		},
		"sequence key empty": {
			srcMutator: func(s *GenesisState) { s.Sequences[0].IDKey = nil },
			expError:   true,
		},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			state := validGenesisFixture(spec.srcMutator)
			got := state.ValidateBasic()
			if spec.expError {
				require.Error(t, got)
				return
			}
			require.NoError(t, got)
		})
	}
}

func TestGenesisJSONRoundtrip(t *testing.T) {
	src := validGenesisFixture()
	bz, err := ModuleCdc.MarshalJSON(src)
	require.NoError(t, err)

	var dest GenesisState
	require.NoError(t, ModuleCdc.UnmarshalJSON(bz, &dest))
	assert.Equal(t, src, dest)
}

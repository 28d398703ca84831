package wasm

import (
	"testing"

	wasmvm "github.com/CosmWasm/wasmvm"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/mccallofthewild/gears/x/wasm/internal/keeper"
	"github.com/mccallofthewild/gears/x/wasm/internal/keeper/wasmtesting"
)

var testContractCode = []byte("\x00asm\x01\x00\x00\x00-handler-test-payload")

func TestHandleStoreCode(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := keeper.CreateTestInput(t, false, wasmer, nil, nil)
	creator := newFundedAccount(t, ctx, keepers, nil)

	h := NewHandler(keepers.WasmKeeper)
	res, err := h(ctx, MsgStoreCode{Sender: creator, WASMByteCode: testContractCode})
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), res.Data)

	require.NotEmpty(t, res.Events)
	assert.Equal(t, sdk.EventTypeMessage, res.Events[0].Type)

	gotCode, err := keepers.WasmKeeper.GetByteCode(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, testContractCode, gotCode)
}

func TestHandleInstantiate(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := keeper.CreateTestInput(t, false, wasmer, nil, nil)

	deposit := sdk.NewCoins(sdk.NewInt64Coin("denom", 100))
	creator := newFundedAccount(t, ctx, keepers, deposit)

	h := NewHandler(keepers.WasmKeeper)
	_, err := h(ctx, MsgStoreCode{Sender: creator, WASMByteCode: testContractCode})
	require.NoError(t, err)

	res, err := h(ctx, MsgInstantiateContract{
		Sender:    creator,
		CodeID:    1,
		Label:     "my contract",
		InitMsg:   []byte(`{}`),
		InitFunds: deposit,
	})
	require.NoError(t, err)

	contractAddr := sdk.AccAddress(res.Data)
	assert.Equal(t, BuildContractAddressClassic(1), contractAddr)

	info := keepers.WasmKeeper.GetContractInfo(ctx, contractAddr)
	require.NotNil(t, info)
	assert.Equal(t, "my contract", info.Label)
	assert.Equal(t, deposit, keepers.BankKeeper.GetCoins(ctx, contractAddr))
}

func TestHandleExecute(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	wasmer.ExecuteFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, executeMsg []byte, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.Response, uint64, error) {
		return &wasmvmtypes.Response{Data: []byte("execute-result")}, 0, nil
	}
	ctx, keepers := keeper.CreateTestInput(t, false, wasmer, nil, nil)
	creator := newFundedAccount(t, ctx, keepers, nil)

	h := NewHandler(keepers.WasmKeeper)
	_, err := h(ctx, MsgStoreCode{Sender: creator, WASMByteCode: testContractCode})
	require.NoError(t, err)
	instRes, err := h(ctx, MsgInstantiateContract{Sender: creator, CodeID: 1, Label: "my contract", InitMsg: []byte(`{}`)})
	require.NoError(t, err)
	contractAddr := sdk.AccAddress(instRes.Data)

	res, err := h(ctx, MsgExecuteContract{Sender: creator, Contract: contractAddr, Msg: []byte(`{"do":{}}`)})
	require.NoError(t, err)
	assert.Equal(t, []byte("execute-result"), res.Data)
}

func TestHandleUnknownMessage(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := keeper.CreateTestInput(t, false, wasmer, nil, nil)

	h := NewHandler(keepers.WasmKeeper)
	_, err := h(ctx, sdk.NewTestMsg())
	require.Error(t, err)
	assert.True(t, sdkerrors.ErrUnknownRequest.Is(err))
}

func newFundedAccount(t *testing.T, ctx sdk.Context, keepers keeper.TestKeepers, coins sdk.Coins) sdk.AccAddress {
	t.Helper()
	addr := sdk.AccAddress(ed25519.GenPrivKey().PubKey().Address())
	acc := keepers.AccountKeeper.NewAccountWithAddress(ctx, addr)
	require.NoError(t, acc.SetCoins(coins))
	keepers.AccountKeeper.SetAccount(ctx, acc)
	return addr
}

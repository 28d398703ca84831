package keeper

import (
	"errors"
	"testing"

	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	"github.com/cosmos/cosmos-sdk/store"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

type mockReplyer struct {
	replyFn func(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error)
}

func (m *mockReplyer) reply(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error) {
	if m.replyFn == nil {
		panic("not expected to be called")
	}
	return m.replyFn(ctx, contractAddress, reply)
}

type capturingMessenger struct {
	dispatchFn func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error)
}

func (m capturingMessenger) DispatchMsg(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
	return m.dispatchFn(ctx, contractAddr, contractIBCPortID, msg)
}

func newDispatcherTestCtx(t *testing.T) sdk.Context {
	t.Helper()
	db := dbm.NewMemDB()
	ms := store.NewCommitMultiStore(db)
	require.NoError(t, ms.LoadLatestVersion())
	return sdk.NewContext(ms, abci.Header{}, false, log.NewNopLogger())
}

func TestDispatchSubmessages(t *testing.T) {
	contractAddr := BuildContractAddressClassic(1)
	anyBankMsg := wasmvmtypes.CosmosMsg{Bank: &wasmvmtypes.BankMsg{Send: &wasmvmtypes.SendMsg{
		ToAddress: contractAddr.String(),
		Amount:    wasmvmtypes.Coins{wasmvmtypes.NewCoin(1, "denom")},
	}}}
	var anyGasLimit uint64 = 1_000_000

	specs := map[string]struct {
		msgs       []wasmvmtypes.SubMsg
		replyFn    func(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error)
		dispatchFn func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error)
		expErr     bool
		expData    []byte
		expEvents  sdk.Events
	}{
		"no reply on success": {
			msgs: []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyNever}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, [][]byte{{1}}, nil
			},
		},
		"no reply on error": {
			msgs: []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyNever}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, nil, errors.New("test, ignore")
			},
			expErr: true,
		},
		"success reply returns data": {
			msgs: []wasmvmtypes.SubMsg{{ID: 1, Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplySuccess}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, [][]byte{{4}}, nil
			},
			replyFn: func(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error) {
				require.NotNil(t, reply.Result.Ok)
				assert.Equal(t, []byte{4}, reply.Result.Ok.Data)
				return []byte("reply-data"), nil
			},
			expData: []byte("reply-data"),
		},
		"error reply gets redacted error": {
			msgs: []wasmvmtypes.SubMsg{{ID: 2, Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyError}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, nil, sdkerrors.Wrap(types.ErrInvalidMsg, "test, ignore")
			},
			replyFn: func(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error) {
				require.NotEmpty(t, reply.Result.Err)
				// the raw error message must not leak into consensus state
				assert.NotContains(t, reply.Result.Err, "test, ignore")
				assert.Contains(t, reply.Result.Err, "codespace: wasm")
				return nil, nil
			},
		},
		"error reply skipped on success": {
			msgs: []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyError}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, [][]byte{{1}}, nil
			},
		},
		"success reply aborts on error": {
			msgs: []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplySuccess}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, nil, errors.New("test, ignore")
			},
			expErr: true,
		},
		"unknown replyOn rejected": {
			msgs:   []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.UnsetReplyOn}},
			expErr: true,
		},
		"events filtered and emitted": {
			msgs: []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyNever}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				ctx.EventManager().EmitEvent(sdk.NewEvent("wasm-custom", sdk.NewAttribute("foo", "bar")))
				return []sdk.Event{
					sdk.NewEvent(sdk.EventTypeMessage, sdk.NewAttribute("key", "value")),
					sdk.NewEvent("transfer", sdk.NewAttribute("amount", "1denom")),
				}, nil, nil
			},
			expEvents: sdk.Events{
				sdk.NewEvent("wasm-custom", sdk.NewAttribute("foo", "bar")),
				sdk.NewEvent("transfer", sdk.NewAttribute("amount", "1denom")),
			},
		},
		"last reply data wins with multiple messages": {
			msgs: []wasmvmtypes.SubMsg{
				{ID: 1, Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyAlways},
				{ID: 2, Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyAlways},
			},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, nil, nil
			},
			replyFn: func(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error) {
				if reply.ID == 1 {
					return []byte("first"), nil
				}
				return []byte("second"), nil
			},
			expData: []byte("second"),
		},
		"reply error aborts dispatch": {
			msgs: []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyAlways}},
			dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
				return nil, nil, nil
			},
			replyFn: func(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error) {
				return nil, errors.New("reply failed")
			},
			expErr: true,
		},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			ctx := newDispatcherTestCtx(t)
			em := sdk.NewEventManager()
			ctx = ctx.WithEventManager(em).WithGasMeter(sdk.NewGasMeter(anyGasLimit * 10))

			d := NewMessageDispatcher(
				capturingMessenger{dispatchFn: spec.dispatchFn},
				&mockReplyer{replyFn: spec.replyFn},
			)
			gotData, gotErr := d.DispatchSubmessages(ctx, contractAddr, "", spec.msgs)
			if spec.expErr {
				require.Error(t, gotErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, spec.expData, gotData)
			if spec.expEvents != nil {
				assert.Equal(t, spec.expEvents, em.Events())
			}
		})
	}
}

func TestDispatchSubmessageGasLimit(t *testing.T) {
	contractAddr := BuildContractAddressClassic(1)
	anyBankMsg := wasmvmtypes.CosmosMsg{Bank: &wasmvmtypes.BankMsg{Send: &wasmvmtypes.SendMsg{}}}
	var gasLimit uint64 = 10

	ctx := newDispatcherTestCtx(t)
	ctx = ctx.WithGasMeter(sdk.NewGasMeter(1_000_000))

	var replyed bool
	d := NewMessageDispatcher(
		capturingMessenger{dispatchFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
			// burn more than the submessage budget allows
			ctx.GasMeter().ConsumeGas(gasLimit+1, "test")
			return nil, nil, nil
		}},
		&mockReplyer{replyFn: func(ctx sdk.Context, contractAddress sdk.AccAddress, reply wasmvmtypes.Reply) ([]byte, error) {
			replyed = true
			require.NotEmpty(t, reply.Result.Err)
			return nil, nil
		}},
	)
	msgs := []wasmvmtypes.SubMsg{{Msg: anyBankMsg, ReplyOn: wasmvmtypes.ReplyError, GasLimit: &gasLimit}}
	_, err := d.DispatchSubmessages(ctx, contractAddr, "", msgs)
	require.NoError(t, err)
	assert.True(t, replyed)
	// the failed submessage still charges its full gas budget to the caller
	assert.GreaterOrEqual(t, ctx.GasMeter().GasConsumed(), gasLimit)
}

func TestRedactError(t *testing.T) {
	specs := map[string]struct {
		src    error
		expMsg string
	}{
		"sdk error redacted to codespace and code": {
			src:    sdkerrors.Wrap(sdkerrors.ErrInsufficientFunds, "sensitive details"),
			expMsg: "codespace: sdk, code: 5",
		},
		"wasm error redacted": {
			src:    sdkerrors.Wrap(types.ErrInvalidMsg, "sensitive details"),
			expMsg: "codespace: wasm, code: 10",
		},
		"system error passed through": {
			src:    wasmvmtypes.NoSuchContract{Addr: "contract-addr"},
			expMsg: wasmvmtypes.NoSuchContract{Addr: "contract-addr"}.Error(),
		},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, spec.expMsg, redactError(spec.src).Error())
		})
	}
}

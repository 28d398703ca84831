package keeper

import (
	"errors"
	"testing"

	wasmvm "github.com/CosmWasm/wasmvm"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mccallofthewild/gears/x/wasm/internal/keeper/wasmtesting"
	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

func TestContractPortID(t *testing.T) {
	addr := BuildContractAddressClassic(1)

	portID := PortIDForContract(addr)
	assert.Equal(t, "wasm."+addr.String(), portID)

	gotAddr, err := ContractFromPortID(portID)
	require.NoError(t, err)
	assert.Equal(t, addr, gotAddr)

	_, err = ContractFromPortID("transfer")
	require.Error(t, err)
	assert.True(t, types.ErrInvalid.Is(err))

	_, err = ContractFromPortID("wasm.not-an-address")
	require.Error(t, err)
}

func TestOnOpenChannel(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := CreateTestInput(t, false, wasmer, nil, nil)
	keeper := keepers.WasmKeeper
	contractAddr := instantiateMockContract(t, ctx, keepers)

	specs := map[string]struct {
		contractRsp *wasmvmtypes.IBC3ChannelOpenResponse
		contractErr error
		expVersion  string
	}{
		"consensus version from contract": {
			contractRsp: &wasmvmtypes.IBC3ChannelOpenResponse{Version: "contract-v2"},
			expVersion:  "contract-v2",
		},
		"nil response accepts proposed version": {
			contractRsp: nil,
			expVersion:  "",
		},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			wasmer.IBCChannelOpenFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, channel wasmvmtypes.IBCChannelOpenMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBC3ChannelOpenResponse, uint64, error) {
				return spec.contractRsp, 1, spec.contractErr
			}
			gotVersion, gotErr := keeper.OnOpenChannel(ctx, contractAddr, wasmvmtypes.IBCChannelOpenMsg{})
			require.NoError(t, gotErr)
			assert.Equal(t, spec.expVersion, gotVersion)
		})
	}

	t.Run("contract aborts handshake", func(t *testing.T) {
		wasmer.IBCChannelOpenFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, channel wasmvmtypes.IBCChannelOpenMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBC3ChannelOpenResponse, uint64, error) {
			return nil, 1, errors.New("not my counterparty")
		}
		_, gotErr := keeper.OnOpenChannel(ctx, contractAddr, wasmvmtypes.IBCChannelOpenMsg{})
		require.Error(t, gotErr)
		assert.True(t, types.ErrExecuteFailed.Is(gotErr))
	})
}

func TestOnRecvPacket(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := CreateTestInput(t, false, wasmer, nil, nil)
	keeper := keepers.WasmKeeper
	contractAddr := instantiateMockContract(t, ctx, keepers)

	t.Run("contract ack returned", func(t *testing.T) {
		wasmer.IBCPacketReceiveFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, packet wasmvmtypes.IBCPacketReceiveMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBCReceiveResult, uint64, error) {
			return &wasmvmtypes.IBCReceiveResult{Ok: &wasmvmtypes.IBCReceiveResponse{
				Acknowledgement: []byte(`{"ok":true}`),
				Attributes:      []wasmvmtypes.EventAttribute{{Key: "action", Value: "receive"}},
			}}, 1, nil
		}
		em := sdk.NewEventManager()
		gotAck, gotErr := keeper.OnRecvPacket(ctx.WithEventManager(em), contractAddr, wasmvmtypes.IBCPacketReceiveMsg{})
		require.NoError(t, gotErr)
		assert.Equal(t, []byte(`{"ok":true}`), gotAck)
		require.Len(t, em.Events(), 1)
		assert.Equal(t, types.WasmModuleEventType, em.Events()[0].Type)
	})

	t.Run("contract rejects packet", func(t *testing.T) {
		wasmer.IBCPacketReceiveFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, packet wasmvmtypes.IBCPacketReceiveMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBCReceiveResult, uint64, error) {
			return &wasmvmtypes.IBCReceiveResult{Err: "unsupported packet"}, 1, nil
		}
		_, gotErr := keeper.OnRecvPacket(ctx, contractAddr, wasmvmtypes.IBCPacketReceiveMsg{})
		require.Error(t, gotErr)
		assert.True(t, types.ErrExecuteFailed.Is(gotErr))
		assert.Contains(t, gotErr.Error(), "unsupported packet")
	})

	t.Run("engine error", func(t *testing.T) {
		wasmer.IBCPacketReceiveFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, packet wasmvmtypes.IBCPacketReceiveMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBCReceiveResult, uint64, error) {
			return nil, 1, errors.New("boom")
		}
		_, gotErr := keeper.OnRecvPacket(ctx, contractAddr, wasmvmtypes.IBCPacketReceiveMsg{})
		require.Error(t, gotErr)
		assert.True(t, types.ErrExecuteFailed.Is(gotErr))
	})

	t.Run("unknown contract", func(t *testing.T) {
		_, _, unknownAddr := keyPubAddr()
		_, gotErr := keeper.OnRecvPacket(ctx, unknownAddr, wasmvmtypes.IBCPacketReceiveMsg{})
		require.Error(t, gotErr)
		assert.True(t, types.ErrNotFound.Is(gotErr))
	})
}

func TestOnAckPacket(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := CreateTestInput(t, false, wasmer, nil, nil)
	keeper := keepers.WasmKeeper
	contractAddr := instantiateMockContract(t, ctx, keepers)

	wasmer.IBCPacketAckFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, ack wasmvmtypes.IBCPacketAckMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBCBasicResponse, uint64, error) {
		return &wasmvmtypes.IBCBasicResponse{}, 1, nil
	}
	require.NoError(t, keeper.OnAckPacket(ctx, contractAddr, wasmvmtypes.IBCPacketAckMsg{}))

	wasmer.IBCPacketAckFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, ack wasmvmtypes.IBCPacketAckMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBCBasicResponse, uint64, error) {
		return nil, 1, errors.New("boom")
	}
	gotErr := keeper.OnAckPacket(ctx, contractAddr, wasmvmtypes.IBCPacketAckMsg{})
	require.Error(t, gotErr)
	assert.True(t, types.ErrExecuteFailed.Is(gotErr))
}

func TestOnTimeoutPacket(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := CreateTestInput(t, false, wasmer, nil, nil)
	keeper := keepers.WasmKeeper
	contractAddr := instantiateMockContract(t, ctx, keepers)

	wasmer.IBCPacketTimeoutFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, packet wasmvmtypes.IBCPacketTimeoutMsg, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) (*wasmvmtypes.IBCBasicResponse, uint64, error) {
		return &wasmvmtypes.IBCBasicResponse{}, 1, nil
	}
	require.NoError(t, keeper.OnTimeoutPacket(ctx, contractAddr, wasmvmtypes.IBCPacketTimeoutMsg{}))
}

func instantiateMockContract(t *testing.T, ctx sdk.Context, keepers TestKeepers) sdk.AccAddress {
	t.Helper()
	creator := createFakeFundedAccount(t, ctx, keepers.AccountKeeper, nil)
	codeID, err := keepers.WasmKeeper.Create(ctx, creator, exampleWasmCode, "", nil)
	require.NoError(t, err)
	addr, _, err := keepers.WasmKeeper.Instantiate(ctx, codeID, creator, nil, []byte(`{}`), "ibc contract", nil, nil)
	require.NoError(t, err)
	return addr
}

package keeper

import (
	"strings"

	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

const portIDPrefix = "wasm."

// PortIDForContract returns the IBC port bound to the given contract
func PortIDForContract(addr sdk.AccAddress) string {
	return portIDPrefix + addr.String()
}

// ContractFromPortID resolves the contract address from an IBC port id
func ContractFromPortID(portID string) (sdk.AccAddress, error) {
	if !strings.HasPrefix(portID, portIDPrefix) {
		return nil, sdkerrors.Wrapf(types.ErrInvalid, "without prefix")
	}
	return sdk.AccAddressFromBech32(portID[len(portIDPrefix):])
}

// OnOpenChannel calls the contract to participate in the IBC channel handshake step.
// In the IBC protocol this is either the `Channel Open Init` event on the initiating chain or
// `Channel Open Try` on the counterparty chain.
// The contract can return a custom version to use for the channel or abort the handshake
// by returning an error.
func (k Keeper) OnOpenChannel(ctx sdk.Context, contractAddr sdk.AccAddress, msg wasmvmtypes.IBCChannelOpenMsg) (string, error) {
	ctx.GasMeter().ConsumeGas(InstanceCost, "Loading CosmWasm module: ibc-channel-open")

	_, codeInfo, prefixStore, err := k.contractInstance(ctx, contractAddr)
	if err != nil {
		return "", err
	}

	env := types.NewEnv(ctx, contractAddr)
	querier := k.newQueryHandler(ctx, contractAddr)

	gas := gasForContract(ctx)
	res, gasUsed, execErr := k.wasmer.IBCChannelOpen(codeInfo.CodeHash, env, msg, wasmStore{prefixStore}, cosmwasmAPI, querier, gasMeter(ctx), gas, costJSONDeserialization)
	consumeGas(ctx, gasUsed)
	if execErr != nil {
		return "", sdkerrors.Wrap(types.ErrExecuteFailed, execErr.Error())
	}
	if res == nil {
		return "", nil
	}
	return res.Version, nil
}

// OnConnectChannel calls the contract to let it know the IBC channel was established.
// In the IBC protocol this is either the `Channel Open Ack` event on the initiating chain or
// `Channel Open Confirm` on the counterparty chain.
func (k Keeper) OnConnectChannel(ctx sdk.Context, contractAddr sdk.AccAddress, msg wasmvmtypes.IBCChannelConnectMsg) error {
	ctx.GasMeter().ConsumeGas(InstanceCost, "Loading CosmWasm module: ibc-channel-connect")

	contractInfo, codeInfo, prefixStore, err := k.contractInstance(ctx, contractAddr)
	if err != nil {
		return err
	}

	env := types.NewEnv(ctx, contractAddr)
	querier := k.newQueryHandler(ctx, contractAddr)

	gas := gasForContract(ctx)
	res, gasUsed, execErr := k.wasmer.IBCChannelConnect(codeInfo.CodeHash, env, msg, wasmStore{prefixStore}, cosmwasmAPI, querier, gasMeter(ctx), gas, costJSONDeserialization)
	consumeGas(ctx, gasUsed)
	if execErr != nil {
		return sdkerrors.Wrap(types.ErrExecuteFailed, execErr.Error())
	}
	return k.handleIBCBasicContractResponse(ctx, contractAddr, contractInfo.IBCPortID, res)
}

// OnCloseChannel calls the contract to let it know the IBC channel is closed.
//
// Once closed, a channel cannot be reopened and identifiers cannot be reused.
func (k Keeper) OnCloseChannel(ctx sdk.Context, contractAddr sdk.AccAddress, msg wasmvmtypes.IBCChannelCloseMsg) error {
	ctx.GasMeter().ConsumeGas(InstanceCost, "Loading CosmWasm module: ibc-channel-close")

	contractInfo, codeInfo, prefixStore, err := k.contractInstance(ctx, contractAddr)
	if err != nil {
		return err
	}

	env := types.NewEnv(ctx, contractAddr)
	querier := k.newQueryHandler(ctx, contractAddr)

	gas := gasForContract(ctx)
	res, gasUsed, execErr := k.wasmer.IBCChannelClose(codeInfo.CodeHash, env, msg, wasmStore{prefixStore}, cosmwasmAPI, querier, gasMeter(ctx), gas, costJSONDeserialization)
	consumeGas(ctx, gasUsed)
	if execErr != nil {
		return sdkerrors.Wrap(types.ErrExecuteFailed, execErr.Error())
	}
	return k.handleIBCBasicContractResponse(ctx, contractAddr, contractInfo.IBCPortID, res)
}

// OnRecvPacket calls the contract to process the incoming IBC packet. The contract fully owns
// the data processing and returns the acknowledgement data for the chain level. This
// acknowledgement will be written on the chain and can be requested by the counterparty chain.
// A nil acknowledgement signals an async reply via a later channel write.
func (k Keeper) OnRecvPacket(ctx sdk.Context, contractAddr sdk.AccAddress, msg wasmvmtypes.IBCPacketReceiveMsg) ([]byte, error) {
	ctx.GasMeter().ConsumeGas(InstanceCost, "Loading CosmWasm module: ibc-recv-packet")

	contractInfo, codeInfo, prefixStore, err := k.contractInstance(ctx, contractAddr)
	if err != nil {
		return nil, err
	}

	env := types.NewEnv(ctx, contractAddr)
	querier := k.newQueryHandler(ctx, contractAddr)

	gas := gasForContract(ctx)
	res, gasUsed, execErr := k.wasmer.IBCPacketReceive(codeInfo.CodeHash, env, msg, wasmStore{prefixStore}, cosmwasmAPI, querier, gasMeter(ctx), gas, costJSONDeserialization)
	consumeGas(ctx, gasUsed)
	if execErr != nil {
		return nil, sdkerrors.Wrap(types.ErrExecuteFailed, execErr.Error())
	}
	if res.Err != "" {
		// the contract acknowledged the receive as failed, no state change
		return nil, sdkerrors.Wrap(types.ErrExecuteFailed, res.Err)
	}

	// emit all events from the contract in the reply
	ctx.EventManager().EmitEvents(newWasmModuleEvent(res.Ok.Attributes, contractAddr))
	ctx.EventManager().EmitEvents(newCustomEvents(res.Ok.Events, contractAddr))

	if _, err := k.dispatcher.DispatchSubmessages(ctx, contractAddr, contractInfo.IBCPortID, res.Ok.Messages); err != nil {
		return nil, err
	}
	return res.Ok.Acknowledgement, nil
}

// OnAckPacket calls the contract to handle the "acknowledgement" data which can contain success
// or failure of a packet acknowledgement written on the counterparty chain. On success, the
// contract commits its state, on failure it can rollback by custom logic.
func (k Keeper) OnAckPacket(ctx sdk.Context, contractAddr sdk.AccAddress, msg wasmvmtypes.IBCPacketAckMsg) error {
	ctx.GasMeter().ConsumeGas(InstanceCost, "Loading CosmWasm module: ibc-ack-packet")

	contractInfo, codeInfo, prefixStore, err := k.contractInstance(ctx, contractAddr)
	if err != nil {
		return err
	}

	env := types.NewEnv(ctx, contractAddr)
	querier := k.newQueryHandler(ctx, contractAddr)

	gas := gasForContract(ctx)
	res, gasUsed, execErr := k.wasmer.IBCPacketAck(codeInfo.CodeHash, env, msg, wasmStore{prefixStore}, cosmwasmAPI, querier, gasMeter(ctx), gas, costJSONDeserialization)
	consumeGas(ctx, gasUsed)
	if execErr != nil {
		return sdkerrors.Wrap(types.ErrExecuteFailed, execErr.Error())
	}
	return k.handleIBCBasicContractResponse(ctx, contractAddr, contractInfo.IBCPortID, res)
}

// OnTimeoutPacket calls the contract to let it know the packet was never received on the
// counterparty chain within the timeout boundaries.
func (k Keeper) OnTimeoutPacket(ctx sdk.Context, contractAddr sdk.AccAddress, msg wasmvmtypes.IBCPacketTimeoutMsg) error {
	ctx.GasMeter().ConsumeGas(InstanceCost, "Loading CosmWasm module: ibc-timeout-packet")

	contractInfo, codeInfo, prefixStore, err := k.contractInstance(ctx, contractAddr)
	if err != nil {
		return err
	}

	env := types.NewEnv(ctx, contractAddr)
	querier := k.newQueryHandler(ctx, contractAddr)

	gas := gasForContract(ctx)
	res, gasUsed, execErr := k.wasmer.IBCPacketTimeout(codeInfo.CodeHash, env, msg, wasmStore{prefixStore}, cosmwasmAPI, querier, gasMeter(ctx), gas, costJSONDeserialization)
	consumeGas(ctx, gasUsed)
	if execErr != nil {
		return sdkerrors.Wrap(types.ErrExecuteFailed, execErr.Error())
	}
	return k.handleIBCBasicContractResponse(ctx, contractAddr, contractInfo.IBCPortID, res)
}

func (k Keeper) handleIBCBasicContractResponse(ctx sdk.Context, addr sdk.AccAddress, ibcPort string, res *wasmvmtypes.IBCBasicResponse) error {
	ctx.EventManager().EmitEvents(newWasmModuleEvent(res.Attributes, addr))
	ctx.EventManager().EmitEvents(newCustomEvents(res.Events, addr))
	_, err := k.dispatcher.DispatchSubmessages(ctx, addr, ibcPort, res.Messages)
	return err
}

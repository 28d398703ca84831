package keeper

import (
	"encoding/json"

	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/cosmos/cosmos-sdk/x/bank"
	"github.com/cosmos/cosmos-sdk/x/distribution"
	"github.com/cosmos/cosmos-sdk/x/gov"
	"github.com/cosmos/cosmos-sdk/x/staking"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

// MessageHandler converts contract messages into sdk messages and dispatches them via the router
type MessageHandler struct {
	router   sdk.Router
	encoders MessageEncoders
}

var _ Messenger = MessageHandler{}

// NewMessageHandler constructor. If customEncoders is non-nil its non-empty fields
// override the defaults.
func NewMessageHandler(router sdk.Router, customEncoders *MessageEncoders) MessageHandler {
	encoders := DefaultEncoders().Merge(customEncoders)
	return MessageHandler{
		router:   router,
		encoders: encoders,
	}
}

type (
	BankEncoder         func(sender sdk.AccAddress, msg *wasmvmtypes.BankMsg) ([]sdk.Msg, error)
	CustomEncoder       func(sender sdk.AccAddress, msg json.RawMessage) ([]sdk.Msg, error)
	DistributionEncoder func(sender sdk.AccAddress, msg *wasmvmtypes.DistributionMsg) ([]sdk.Msg, error)
	GovEncoder          func(sender sdk.AccAddress, msg *wasmvmtypes.GovMsg) ([]sdk.Msg, error)
	IBCEncoder          func(ctx sdk.Context, sender sdk.AccAddress, contractIBCPortID string, msg *wasmvmtypes.IBCMsg) ([]sdk.Msg, error)
	StakingEncoder      func(sender sdk.AccAddress, msg *wasmvmtypes.StakingMsg) ([]sdk.Msg, error)
	StargateEncoder     func(sender sdk.AccAddress, msg *wasmvmtypes.StargateMsg) ([]sdk.Msg, error)
	WasmEncoder         func(sender sdk.AccAddress, msg *wasmvmtypes.WasmMsg) ([]sdk.Msg, error)
)

type MessageEncoders struct {
	Bank         BankEncoder
	Custom       CustomEncoder
	Distribution DistributionEncoder
	Gov          GovEncoder
	IBC          IBCEncoder
	Staking      StakingEncoder
	Stargate     StargateEncoder
	Wasm         WasmEncoder
}

func DefaultEncoders() MessageEncoders {
	return MessageEncoders{
		Bank:         EncodeBankMsg,
		Custom:       NoCustomMsg,
		Distribution: EncodeDistributionMsg,
		Gov:          EncodeGovMsg,
		IBC:          NoIBCMsg,
		Staking:      EncodeStakingMsg,
		Stargate:     NoStargateMsg,
		Wasm:         EncodeWasmMsg,
	}
}

func (e MessageEncoders) Merge(o *MessageEncoders) MessageEncoders {
	if o == nil {
		return e
	}
	if o.Bank != nil {
		e.Bank = o.Bank
	}
	if o.Custom != nil {
		e.Custom = o.Custom
	}
	if o.Distribution != nil {
		e.Distribution = o.Distribution
	}
	if o.Gov != nil {
		e.Gov = o.Gov
	}
	if o.IBC != nil {
		e.IBC = o.IBC
	}
	if o.Staking != nil {
		e.Staking = o.Staking
	}
	if o.Stargate != nil {
		e.Stargate = o.Stargate
	}
	if o.Wasm != nil {
		e.Wasm = o.Wasm
	}
	return e
}

func (e MessageEncoders) Encode(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Msg, error) {
	switch {
	case msg.Bank != nil:
		return e.Bank(contractAddr, msg.Bank)
	case msg.Custom != nil:
		return e.Custom(contractAddr, msg.Custom)
	case msg.Distribution != nil:
		return e.Distribution(contractAddr, msg.Distribution)
	case msg.Gov != nil:
		return e.Gov(contractAddr, msg.Gov)
	case msg.IBC != nil:
		return e.IBC(ctx, contractAddr, contractIBCPortID, msg.IBC)
	case msg.Staking != nil:
		return e.Staking(contractAddr, msg.Staking)
	case msg.Stargate != nil:
		return e.Stargate(contractAddr, msg.Stargate)
	case msg.Wasm != nil:
		return e.Wasm(contractAddr, msg.Wasm)
	}
	return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "Unknown variant of Wasm")
}

func EncodeBankMsg(sender sdk.AccAddress, msg *wasmvmtypes.BankMsg) ([]sdk.Msg, error) {
	if msg.Send == nil {
		return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "Unknown variant of Bank")
	}
	if len(msg.Send.Amount) == 0 {
		return nil, nil
	}
	toSend, err := convertWasmCoinsToSdkCoins(msg.Send.Amount)
	if err != nil {
		return nil, err
	}
	toAddr, err := sdk.AccAddressFromBech32(msg.Send.ToAddress)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "to address")
	}
	sdkMsg := bank.MsgSend{
		FromAddress: sender,
		ToAddress:   toAddr,
		Amount:      toSend,
	}
	return []sdk.Msg{sdkMsg}, nil
}

func NoCustomMsg(sender sdk.AccAddress, msg json.RawMessage) ([]sdk.Msg, error) {
	return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "custom variant not supported")
}

func NoIBCMsg(ctx sdk.Context, sender sdk.AccAddress, contractIBCPortID string, msg *wasmvmtypes.IBCMsg) ([]sdk.Msg, error) {
	return nil, sdkerrors.Wrap(types.ErrUnsupportedForContract, "IBC variant")
}

func NoStargateMsg(sender sdk.AccAddress, msg *wasmvmtypes.StargateMsg) ([]sdk.Msg, error) {
	return nil, sdkerrors.Wrap(types.ErrUnsupportedForContract, "Stargate variant")
}

func EncodeDistributionMsg(sender sdk.AccAddress, msg *wasmvmtypes.DistributionMsg) ([]sdk.Msg, error) {
	switch {
	case msg.SetWithdrawAddress != nil:
		withdrawAddr, err := sdk.AccAddressFromBech32(msg.SetWithdrawAddress.Address)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "withdraw address")
		}
		sdkMsg := distribution.MsgSetWithdrawAddress{
			DelegatorAddress: sender,
			WithdrawAddress:  withdrawAddr,
		}
		return []sdk.Msg{sdkMsg}, nil
	case msg.WithdrawDelegatorReward != nil:
		valAddr, err := sdk.ValAddressFromBech32(msg.WithdrawDelegatorReward.Validator)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "validator")
		}
		sdkMsg := distribution.MsgWithdrawDelegatorReward{
			DelegatorAddress: sender,
			ValidatorAddress: valAddr,
		}
		return []sdk.Msg{sdkMsg}, nil
	default:
		return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "Unknown variant of Distribution")
	}
}

func EncodeGovMsg(sender sdk.AccAddress, msg *wasmvmtypes.GovMsg) ([]sdk.Msg, error) {
	if msg.Vote == nil {
		return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "Unknown variant of Gov")
	}
	var option gov.VoteOption
	switch msg.Vote.Vote {
	case wasmvmtypes.Yes:
		option = gov.OptionYes
	case wasmvmtypes.No:
		option = gov.OptionNo
	case wasmvmtypes.NoWithVeto:
		option = gov.OptionNoWithVeto
	case wasmvmtypes.Abstain:
		option = gov.OptionAbstain
	default:
		return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "unknown vote option")
	}
	sdkMsg := gov.NewMsgVote(sender, msg.Vote.ProposalId, option)
	return []sdk.Msg{sdkMsg}, nil
}

func EncodeStakingMsg(sender sdk.AccAddress, msg *wasmvmtypes.StakingMsg) ([]sdk.Msg, error) {
	switch {
	case msg.Delegate != nil:
		coin, err := convertWasmCoinToSdkCoin(msg.Delegate.Amount)
		if err != nil {
			return nil, err
		}
		valAddr, err := sdk.ValAddressFromBech32(msg.Delegate.Validator)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "validator")
		}
		sdkMsg := staking.MsgDelegate{
			DelegatorAddress: sender,
			ValidatorAddress: valAddr,
			Amount:           coin,
		}
		return []sdk.Msg{sdkMsg}, nil
	case msg.Redelegate != nil:
		coin, err := convertWasmCoinToSdkCoin(msg.Redelegate.Amount)
		if err != nil {
			return nil, err
		}
		srcValAddr, err := sdk.ValAddressFromBech32(msg.Redelegate.SrcValidator)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "src validator")
		}
		dstValAddr, err := sdk.ValAddressFromBech32(msg.Redelegate.DstValidator)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "dst validator")
		}
		sdkMsg := staking.MsgBeginRedelegate{
			DelegatorAddress:    sender,
			ValidatorSrcAddress: srcValAddr,
			ValidatorDstAddress: dstValAddr,
			Amount:              coin,
		}
		return []sdk.Msg{sdkMsg}, nil
	case msg.Undelegate != nil:
		coin, err := convertWasmCoinToSdkCoin(msg.Undelegate.Amount)
		if err != nil {
			return nil, err
		}
		valAddr, err := sdk.ValAddressFromBech32(msg.Undelegate.Validator)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "validator")
		}
		sdkMsg := staking.MsgUndelegate{
			DelegatorAddress: sender,
			ValidatorAddress: valAddr,
			Amount:           coin,
		}
		return []sdk.Msg{sdkMsg}, nil
	default:
		return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "Unknown variant of Staking")
	}
}

func EncodeWasmMsg(sender sdk.AccAddress, msg *wasmvmtypes.WasmMsg) ([]sdk.Msg, error) {
	switch {
	case msg.Execute != nil:
		contractAddr, err := sdk.AccAddressFromBech32(msg.Execute.ContractAddr)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "contract addr")
		}
		coins, err := convertWasmCoinsToSdkCoins(msg.Execute.Funds)
		if err != nil {
			return nil, err
		}
		sdkMsg := types.MsgExecuteContract{
			Sender:    sender,
			Contract:  contractAddr,
			Msg:       msg.Execute.Msg,
			SentFunds: coins,
		}
		return []sdk.Msg{sdkMsg}, nil
	case msg.Instantiate != nil:
		coins, err := convertWasmCoinsToSdkCoins(msg.Instantiate.Funds)
		if err != nil {
			return nil, err
		}
		var adminAddr sdk.AccAddress
		if msg.Instantiate.Admin != "" {
			if adminAddr, err = sdk.AccAddressFromBech32(msg.Instantiate.Admin); err != nil {
				return nil, sdkerrors.Wrap(err, "admin")
			}
		}
		sdkMsg := types.MsgInstantiateContract{
			Sender:    sender,
			Admin:     adminAddr,
			CodeID:    msg.Instantiate.CodeID,
			Label:     msg.Instantiate.Label,
			InitMsg:   msg.Instantiate.Msg,
			InitFunds: coins,
		}
		return []sdk.Msg{sdkMsg}, nil
	case msg.Migrate != nil:
		contractAddr, err := sdk.AccAddressFromBech32(msg.Migrate.ContractAddr)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "contract addr")
		}
		sdkMsg := types.MsgMigrateContract{
			Sender:     sender,
			Contract:   contractAddr,
			CodeID:     msg.Migrate.NewCodeID,
			MigrateMsg: msg.Migrate.Msg,
		}
		return []sdk.Msg{sdkMsg}, nil
	case msg.UpdateAdmin != nil:
		contractAddr, err := sdk.AccAddressFromBech32(msg.UpdateAdmin.ContractAddr)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "contract addr")
		}
		newAdminAddr, err := sdk.AccAddressFromBech32(msg.UpdateAdmin.Admin)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "admin")
		}
		sdkMsg := types.MsgUpdateAdmin{
			Sender:   sender,
			NewAdmin: newAdminAddr,
			Contract: contractAddr,
		}
		return []sdk.Msg{sdkMsg}, nil
	case msg.ClearAdmin != nil:
		contractAddr, err := sdk.AccAddressFromBech32(msg.ClearAdmin.ContractAddr)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "contract addr")
		}
		sdkMsg := types.MsgClearAdmin{
			Sender:   sender,
			Contract: contractAddr,
		}
		return []sdk.Msg{sdkMsg}, nil
	default:
		return nil, sdkerrors.Wrap(types.ErrInvalidMsg, "Unknown variant of Wasm")
	}
}

// DispatchMsg encodes the contract message and dispatches it through the sdk router.
// Events and response data are returned to the caller, nothing is emitted here.
func (h MessageHandler) DispatchMsg(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
	sdkMsgs, err := h.encoders.Encode(ctx, contractAddr, contractIBCPortID, msg)
	if err != nil {
		return nil, nil, err
	}
	var (
		events sdk.Events
		data   [][]byte
	)
	for _, sdkMsg := range sdkMsgs {
		res, err := h.handleSdkMessage(ctx, contractAddr, sdkMsg)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, res.Events...)
		data = append(data, res.Data)
	}
	return events, data, nil
}

func (h MessageHandler) handleSdkMessage(ctx sdk.Context, contractAddr sdk.Address, msg sdk.Msg) (*sdk.Result, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	// make sure this account can send it
	for _, acct := range msg.GetSigners() {
		if !acct.Equals(contractAddr) {
			return nil, sdkerrors.Wrap(sdkerrors.ErrUnauthorized, "contract doesn't have permission")
		}
	}

	// find the handler and execute it
	handler := h.router.Route(ctx, msg.Route())
	if handler == nil {
		return nil, sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, msg.Route())
	}
	return handler(ctx, msg)
}

func convertWasmCoinsToSdkCoins(coins []wasmvmtypes.Coin) (sdk.Coins, error) {
	var toSend sdk.Coins
	for _, coin := range coins {
		c, err := convertWasmCoinToSdkCoin(coin)
		if err != nil {
			return nil, err
		}
		toSend = append(toSend, c)
	}
	return toSend.Sort(), nil
}

func convertWasmCoinToSdkCoin(coin wasmvmtypes.Coin) (sdk.Coin, error) {
	amount, ok := sdk.NewIntFromString(coin.Amount)
	if !ok {
		return sdk.Coin{}, sdkerrors.Wrap(sdkerrors.ErrInvalidCoins, coin.Amount+coin.Denom)
	}
	return sdk.Coin{
		Denom:  coin.Denom,
		Amount: amount,
	}, nil
}

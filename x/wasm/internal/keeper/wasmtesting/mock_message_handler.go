package wasmtesting

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MockMessageHandler implements the keeper Messenger extension point for tests
type MockMessageHandler struct {
	DispatchMsgFn func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) (events []sdk.Event, data [][]byte, err error)
}

func (m *MockMessageHandler) DispatchMsg(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) (events []sdk.Event, data [][]byte, err error) {
	if m.DispatchMsgFn == nil {
		panic("not supposed to be called!")
	}
	return m.DispatchMsgFn(ctx, contractAddr, contractIBCPortID, msg)
}

// NewCapturingMessageHandler records all dispatched messages and returns empty results
func NewCapturingMessageHandler() (*MockMessageHandler, *[]wasmvmtypes.CosmosMsg) {
	var messages []wasmvmtypes.CosmosMsg
	return &MockMessageHandler{
		DispatchMsgFn: func(ctx sdk.Context, contractAddr sdk.AccAddress, contractIBCPortID string, msg wasmvmtypes.CosmosMsg) ([]sdk.Event, [][]byte, error) {
			messages = append(messages, msg)
			// return one data item per message so the dispatcher has something to forward
			return nil, [][]byte{{1}}, nil
		},
	}, &messages
}

package types

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmBytes "github.com/tendermint/tendermint/libs/bytes"
)

const (
	// node-local cache default for WasmConfig, in MiB. The governed
	// Params.MemoryCacheSize default lives in params.go.
	defaultConfigMemoryCacheSize uint32 = 100
	defaultSmartQueryGasLimit    uint64 = 3_000_000
	defaultContractDebugMode            = false

	// ContractAddrLen defines a valid address length for contracts
	ContractAddrLen = 20
)

// NewCodeInfo fills a new CodeInfo struct
func NewCodeInfo(codeHash []byte, creator sdk.AccAddress, source string, instantiatePermission AccessConfig) CodeInfo {
	return CodeInfo{
		CodeHash:          codeHash,
		Creator:           creator,
		Source:            source,
		InstantiateConfig: instantiatePermission,
	}
}

// CodeInfo is data for the uploaded contract WASM code
type CodeInfo struct {
	CodeHash          []byte         `json:"code_hash"`
	Creator           sdk.AccAddress `json:"creator"`
	Source            string         `json:"source,omitempty"`
	InstantiateConfig AccessConfig   `json:"instantiate_config"`
}

// ValidateBasic syntax checks
func (c CodeInfo) ValidateBasic() error {
	if len(c.CodeHash) == 0 {
		return sdkerrors.Wrap(ErrEmpty, "code hash")
	}
	if err := sdk.VerifyAddressFormat(c.Creator); err != nil {
		return sdkerrors.Wrap(err, "creator")
	}
	if err := validateSourceURL(c.Source); err != nil {
		return sdkerrors.Wrap(err, "source")
	}
	if err := c.InstantiateConfig.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(err, "instantiate config")
	}
	return nil
}

// ContractCodeHistoryOperationType type of operation that caused a code change for a contract
type ContractCodeHistoryOperationType string

// nolint
const (
	ContractCodeHistoryTypeGenesis ContractCodeHistoryOperationType = "Genesis"
	ContractCodeHistoryTypeInit    ContractCodeHistoryOperationType = "Init"
	ContractCodeHistoryTypeMigrate ContractCodeHistoryOperationType = "Migrate"
)

// ContractCodeHistoryEntry stores the code change of a single contract over time. An entry is
// written for genesis import, instantiation and every migration.
type ContractCodeHistoryEntry struct {
	Operation  ContractCodeHistoryOperationType `json:"operation"`
	FromCodeID uint64                           `json:"from_code_id,omitempty"`
	ToCodeID   uint64                           `json:"to_code_id"`
	Height     uint64                           `json:"height"`
	MsgHash    []byte                           `json:"msg_hash,omitempty"`
}

// ValidateBasic syntax checks
func (e ContractCodeHistoryEntry) ValidateBasic() error {
	switch e.Operation {
	case ContractCodeHistoryTypeGenesis, ContractCodeHistoryTypeInit, ContractCodeHistoryTypeMigrate:
	default:
		return sdkerrors.Wrap(ErrInvalid, "operation")
	}
	if e.ToCodeID == 0 {
		return sdkerrors.Wrap(ErrEmpty, "to code id")
	}
	return nil
}

// NewContractInfo creates a new instance of a given WASM contract info
func NewContractInfo(codeID uint64, creator, admin sdk.AccAddress, label string, createdAt uint64) ContractInfo {
	return ContractInfo{
		CodeID:  codeID,
		Creator: creator,
		Admin:   admin,
		Label:   label,
		Created: createdAt,
	}
}

// ContractInfo stores a WASM contract instance
type ContractInfo struct {
	CodeID    uint64         `json:"code_id"`
	Creator   sdk.AccAddress `json:"creator"`
	Admin     sdk.AccAddress `json:"admin,omitempty"`
	Label     string         `json:"label"`
	Created   uint64         `json:"created"` // block height at instantiation
	IBCPortID string         `json:"ibc_port_id,omitempty"`
}

// ValidateBasic syntax checks
func (c *ContractInfo) ValidateBasic() error {
	if c.CodeID == 0 {
		return sdkerrors.Wrap(ErrEmpty, "code id")
	}
	if err := sdk.VerifyAddressFormat(c.Creator); err != nil {
		return sdkerrors.Wrap(err, "creator")
	}
	if len(c.Admin) != 0 {
		if err := sdk.VerifyAddressFormat(c.Admin); err != nil {
			return sdkerrors.Wrap(err, "admin")
		}
	}
	if err := validateLabel(c.Label); err != nil {
		return sdkerrors.Wrap(err, "label")
	}
	return nil
}

// InitialHistory is the history entry written when a contract is instantiated
func (c *ContractInfo) InitialHistory(msgHash []byte) ContractCodeHistoryEntry {
	return ContractCodeHistoryEntry{
		Operation: ContractCodeHistoryTypeInit,
		ToCodeID:  c.CodeID,
		Height:    c.Created,
		MsgHash:   msgHash,
	}
}

// AddMigration sets the new code id on the contract info and returns the history entry to persist
func (c *ContractInfo) AddMigration(ctx sdk.Context, codeID uint64, msgHash []byte) ContractCodeHistoryEntry {
	h := ContractCodeHistoryEntry{
		Operation:  ContractCodeHistoryTypeMigrate,
		FromCodeID: c.CodeID,
		ToCodeID:   codeID,
		Height:     uint64(ctx.BlockHeight()),
		MsgHash:    msgHash,
	}
	c.CodeID = codeID
	return h
}

// AdminAddr convenience accessor, may be nil
func (c *ContractInfo) AdminAddr() sdk.AccAddress {
	return c.Admin
}

// ContractInfoWithAddress adds the address to the contract info for queries
type ContractInfoWithAddress struct {
	Address sdk.AccAddress `json:"address"`
	*ContractInfo
}

// NewEnv initializes the environment for a contract instance
func NewEnv(ctx sdk.Context, contractAddr sdk.AccAddress) wasmvmtypes.Env {
	// safety checks before casting below
	if ctx.BlockHeight() < 0 {
		panic("block height must never be negative")
	}
	nanoTime := ctx.BlockTime().UnixNano()
	if nanoTime < 0 {
		panic("block (unix) time must never be negative ")
	}
	env := wasmvmtypes.Env{
		Block: wasmvmtypes.BlockInfo{
			Height:  uint64(ctx.BlockHeight()),
			Time:    uint64(nanoTime),
			ChainID: ctx.ChainID(),
		},
		Contract: wasmvmtypes.ContractInfo{
			Address: contractAddr.String(),
		},
	}
	if txCounter, ok := TXCounter(ctx); ok {
		env.Transaction = &wasmvmtypes.TransactionInfo{Index: txCounter}
	}
	return env
}

// NewInfo initializes the MessageInfo for a contract instance
func NewInfo(creator sdk.AccAddress, deposit sdk.Coins) wasmvmtypes.MessageInfo {
	return wasmvmtypes.MessageInfo{
		Sender: creator.String(),
		Funds:  NewWasmCoins(deposit),
	}
}

// NewWasmCoins translates between Cosmos SDK coins and Wasm coins
func NewWasmCoins(cosmosCoins sdk.Coins) (wasmCoins wasmvmtypes.Coins) {
	for _, coin := range cosmosCoins {
		wasmCoin := wasmvmtypes.Coin{
			Denom:  coin.Denom,
			Amount: coin.Amount.String(),
		}
		wasmCoins = append(wasmCoins, wasmCoin)
	}
	return wasmCoins
}

// WasmConfig is the extra config required for wasm
type WasmConfig struct {
	// SmartQueryGasLimit is the max gas to be used in a smart query contract call
	SmartQueryGasLimit uint64 `mapstructure:"query_gas_limit"`
	// MemoryCacheSize in MiB not bytes
	MemoryCacheSize uint32 `mapstructure:"memory_cache_size"`
	// ContractDebugMode log what contract print
	ContractDebugMode bool `mapstructure:"contract_debug_mode"`
}

// DefaultWasmConfig returns the default settings for WasmConfig
func DefaultWasmConfig() WasmConfig {
	return WasmConfig{
		SmartQueryGasLimit: defaultSmartQueryGasLimit,
		MemoryCacheSize:    defaultConfigMemoryCacheSize,
		ContractDebugMode:  defaultContractDebugMode,
	}
}

// Model is a struct that holds a KV pair
type Model struct {
	// hex-encode key to read it better (this is often ascii)
	Key tmBytes.HexBytes `json:"key"`
	// base64-encode raw value
	Value []byte `json:"val"`
}

// ValidateBasic syntax checks
func (m Model) ValidateBasic() error {
	if len(m.Key) == 0 {
		return sdkerrors.Wrap(ErrEmpty, "key")
	}
	return nil
}

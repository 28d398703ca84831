// nolint
// aliases generated for the following subdirectories:
// ALIASGEN: github.com/mccallofthewild/gears/x/wasm/internal/types
// ALIASGEN: github.com/mccallofthewild/gears/x/wasm/internal/keeper
package wasm

import (
	"github.com/mccallofthewild/gears/x/wasm/internal/keeper"
	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

const (
	ModuleName                    = types.ModuleName
	StoreKey                      = types.StoreKey
	QuerierRoute                  = types.QuerierRoute
	RouterKey                     = types.RouterKey
	DefaultParamspace             = types.DefaultParamspace
	WasmModuleEventType           = types.WasmModuleEventType
	MaxWasmSize                   = types.MaxWasmSize
	MaxLabelSize                  = types.MaxLabelSize
	MaxSaltSize                   = types.MaxSaltSize
	GasMultiplier                 = keeper.GasMultiplier
	MaxGas                        = keeper.MaxGas
	InstanceCost                  = keeper.InstanceCost
	CompileCost                   = keeper.CompileCost
	QueryListContractByCode       = keeper.QueryListContractByCode
	QueryGetContract              = keeper.QueryGetContract
	QueryGetContractState         = keeper.QueryGetContractState
	QueryGetCode                  = keeper.QueryGetCode
	QueryListCode                 = keeper.QueryListCode
	QueryContractHistory          = keeper.QueryContractHistory
	QueryMethodContractStateSmart = keeper.QueryMethodContractStateSmart
	QueryMethodContractStateAll   = keeper.QueryMethodContractStateAll
	QueryMethodContractStateRaw   = keeper.QueryMethodContractStateRaw
)

var (
	// functions aliases
	RegisterCodec                   = types.RegisterCodec
	ValidateGenesis                 = types.ValidateGenesis
	DefaultWasmConfig               = types.DefaultWasmConfig
	DefaultParams                   = types.DefaultParams
	ParamKeyTable                   = types.ParamKeyTable
	NewCodeInfo                     = types.NewCodeInfo
	NewContractInfo                 = types.NewContractInfo
	NewEnv                          = types.NewEnv
	NewWasmCoins                    = types.NewWasmCoins
	NewKeeper                       = keeper.NewKeeper
	NewQuerier                      = keeper.NewQuerier
	NewQueryHandler                 = keeper.NewQueryHandler
	DefaultQueryPlugins             = keeper.DefaultQueryPlugins
	DefaultEncoders                 = keeper.DefaultEncoders
	NewMessageHandler               = keeper.NewMessageHandler
	NewWasmVMEngine                 = keeper.NewWasmVMEngine
	NewCountTXDecorator             = keeper.NewCountTXDecorator
	NewBankKeeperAdapter            = keeper.NewBankKeeperAdapter
	PortIDForContract               = keeper.PortIDForContract
	ContractFromPortID              = keeper.ContractFromPortID
	BuildContractAddressClassic     = keeper.BuildContractAddressClassic
	BuildContractAddressPredictable = keeper.BuildContractAddressPredictable

	// variable aliases
	ModuleCdc            = types.ModuleCdc
	ErrCreateFailed      = types.ErrCreateFailed
	ErrAccountExists     = types.ErrAccountExists
	ErrInstantiateFailed = types.ErrInstantiateFailed
	ErrExecuteFailed     = types.ErrExecuteFailed
	ErrGasLimit          = types.ErrGasLimit
	ErrInvalidGenesis    = types.ErrInvalidGenesis
	ErrNotFound          = types.ErrNotFound
	ErrQueryFailed       = types.ErrQueryFailed
	ErrInvalidMsg        = types.ErrInvalidMsg
	ErrMigrationFailed   = types.ErrMigrationFailed
	ErrDuplicate         = types.ErrDuplicate
)

type (
	Keeper                   = keeper.Keeper
	MessageEncoders          = keeper.MessageEncoders
	MessageHandler           = keeper.MessageHandler
	MessageDispatcher        = keeper.MessageDispatcher
	Messenger                = keeper.Messenger
	BankEncoder              = keeper.BankEncoder
	CustomEncoder            = keeper.CustomEncoder
	StakingEncoder           = keeper.StakingEncoder
	WasmEncoder              = keeper.WasmEncoder
	QueryHandler             = keeper.QueryHandler
	QueryPlugins             = keeper.QueryPlugins
	CustomQuerier            = keeper.CustomQuerier
	AddressGenerator         = keeper.AddressGenerator
	WasmVMEngine             = keeper.WasmVMEngine
	AuthorizationPolicy      = keeper.AuthorizationPolicy
	CountTXDecorator         = keeper.CountTXDecorator
	BankKeeperAdapter        = keeper.BankKeeperAdapter
	GenesisState             = types.GenesisState
	Code                     = types.Code
	Contract                 = types.Contract
	Sequence                 = types.Sequence
	Params                   = types.Params
	AccessType               = types.AccessType
	AccessConfig             = types.AccessConfig
	CodeInfo                 = types.CodeInfo
	ContractInfo             = types.ContractInfo
	ContractCodeHistoryEntry = types.ContractCodeHistoryEntry
	WasmConfig               = types.WasmConfig
	WasmerEngine             = types.WasmerEngine
	Model                    = types.Model
	MsgStoreCode             = types.MsgStoreCode
	MsgInstantiateContract   = types.MsgInstantiateContract
	MsgExecuteContract       = types.MsgExecuteContract
	MsgMigrateContract       = types.MsgMigrateContract
	MsgUpdateAdmin           = types.MsgUpdateAdmin
	MsgClearAdmin            = types.MsgClearAdmin
)

package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	params "github.com/cosmos/cosmos-sdk/x/params"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultParamspace for params keeper
	DefaultParamspace = ModuleName

	// DefaultMaxWasmCodeSize limit max bytes read to prevent gzip bombs
	DefaultMaxWasmCodeSize = 1_000_000

	// DefaultMemoryCacheSize number of compiled modules kept in the engine cache,
	// governed on chain. Distinct from the node-local WasmConfig cache size.
	DefaultMemoryCacheSize uint32 = 40
)

// nolint
var (
	ParamStoreKeyUploadAccess      = []byte("uploadAccess")
	ParamStoreKeyInstantiateAccess = []byte("instantiateAccess")
	ParamStoreKeyMaxWasmCodeSize   = []byte("maxWasmCodeSize")
	ParamStoreKeyQueryGasLimit     = []byte("queryGasLimit")
	ParamStoreKeyMemoryCacheSize   = []byte("memoryCacheSize")
)

// AccessType permission types for code upload and instantiation
type AccessType string

// nolint
const (
	AccessTypeUndefined      AccessType = "Undefined"
	AccessTypeNobody         AccessType = "Nobody"
	AccessTypeOnlyAddress    AccessType = "OnlyAddress"
	AccessTypeAnyOfAddresses AccessType = "AnyOfAddresses"
	AccessTypeEverybody      AccessType = "Everybody"
)

// AllAccessTypes all valid access types
var AllAccessTypes = []AccessType{
	AccessTypeNobody,
	AccessTypeOnlyAddress,
	AccessTypeAnyOfAddresses,
	AccessTypeEverybody,
}

// With returns a new AccessConfig for the given type and addresses
func (a AccessType) With(addrs ...sdk.AccAddress) AccessConfig {
	switch a {
	case AccessTypeNobody:
		return AllowNobody
	case AccessTypeOnlyAddress:
		if len(addrs) != 1 {
			panic("expected exactly one address")
		}
		if err := sdk.VerifyAddressFormat(addrs[0]); err != nil {
			panic(err)
		}
		return AccessConfig{Permission: AccessTypeOnlyAddress, Address: addrs[0]}
	case AccessTypeAnyOfAddresses:
		for _, addr := range addrs {
			if err := sdk.VerifyAddressFormat(addr); err != nil {
				panic(err)
			}
		}
		return AccessConfig{Permission: AccessTypeAnyOfAddresses, Addresses: addrs}
	case AccessTypeEverybody:
		return AllowEverybody
	}
	panic("unsupported access type")
}

func (a AccessType) String() string {
	for _, v := range AllAccessTypes {
		if v == a {
			return string(v)
		}
	}
	return string(AccessTypeUndefined)
}

func (a *AccessType) UnmarshalText(text []byte) error {
	for _, v := range AllAccessTypes {
		if string(v) == string(text) {
			*a = v
			return nil
		}
	}
	*a = AccessTypeUndefined
	return nil
}

func (a AccessType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// AccessConfig defines who is allowed to perform an action
type AccessConfig struct {
	Permission AccessType       `json:"permission" yaml:"permission"`
	Address    sdk.AccAddress   `json:"address,omitempty" yaml:"address"`
	Addresses  []sdk.AccAddress `json:"addresses,omitempty" yaml:"addresses"`
}

// Equals checks configs for equality
func (a AccessConfig) Equals(o AccessConfig) bool {
	if a.Permission != o.Permission || !a.Address.Equals(o.Address) || len(a.Addresses) != len(o.Addresses) {
		return false
	}
	for i := range a.Addresses {
		if !a.Addresses[i].Equals(o.Addresses[i]) {
			return false
		}
	}
	return true
}

// nolint
var (
	DefaultUploadAccess = AllowEverybody
	AllowEverybody      = AccessConfig{Permission: AccessTypeEverybody}
	AllowNobody         = AccessConfig{Permission: AccessTypeNobody}
)

// Params defines the set of wasm parameters.
type Params struct {
	CodeUploadAccess             AccessConfig `json:"code_upload_access" yaml:"code_upload_access"`
	InstantiateDefaultPermission AccessType   `json:"instantiate_default_permission" yaml:"instantiate_default_permission"`
	MaxWasmCodeSize              uint64       `json:"max_wasm_code_size" yaml:"max_wasm_code_size"`
	SmartQueryGasLimit           uint64       `json:"smart_query_gas_limit" yaml:"smart_query_gas_limit"`
	MemoryCacheSize              uint32       `json:"memory_cache_size" yaml:"memory_cache_size"`
}

// ParamKeyTable returns the parameter key table.
func ParamKeyTable() params.KeyTable {
	return params.NewKeyTable().RegisterParamSet(&Params{})
}

// DefaultParams returns default wasm parameters
func DefaultParams() Params {
	return Params{
		CodeUploadAccess:             AllowEverybody,
		InstantiateDefaultPermission: AccessTypeEverybody,
		MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
		SmartQueryGasLimit:           defaultSmartQueryGasLimit,
		MemoryCacheSize:              DefaultMemoryCacheSize,
	}
}

func (p Params) String() string {
	out, _ := yaml.Marshal(p)
	return string(out)
}

// ParamSetPairs returns the parameter set pairs.
func (p *Params) ParamSetPairs() params.ParamSetPairs {
	return params.ParamSetPairs{
		params.NewParamSetPair(ParamStoreKeyUploadAccess, &p.CodeUploadAccess, validateAccessConfig),
		params.NewParamSetPair(ParamStoreKeyInstantiateAccess, &p.InstantiateDefaultPermission, validateAccessType),
		params.NewParamSetPair(ParamStoreKeyMaxWasmCodeSize, &p.MaxWasmCodeSize, validateMaxWasmCodeSize),
		params.NewParamSetPair(ParamStoreKeyQueryGasLimit, &p.SmartQueryGasLimit, validateQueryGasLimit),
		params.NewParamSetPair(ParamStoreKeyMemoryCacheSize, &p.MemoryCacheSize, validateMemoryCacheSize),
	}
}

// ValidateBasic performs basic validation on wasm parameters
func (p Params) ValidateBasic() error {
	if err := validateAccessType(p.InstantiateDefaultPermission); err != nil {
		return errors.Wrap(err, "instantiate default permission")
	}
	if err := validateAccessConfig(p.CodeUploadAccess); err != nil {
		return errors.Wrap(err, "upload access")
	}
	if err := validateMaxWasmCodeSize(p.MaxWasmCodeSize); err != nil {
		return errors.Wrap(err, "max wasm code size")
	}
	if err := validateQueryGasLimit(p.SmartQueryGasLimit); err != nil {
		return errors.Wrap(err, "query gas limit")
	}
	if err := validateMemoryCacheSize(p.MemoryCacheSize); err != nil {
		return errors.Wrap(err, "memory cache size")
	}
	return nil
}

func validateAccessConfig(i interface{}) error {
	v, ok := i.(AccessConfig)
	if !ok {
		return fmt.Errorf("invalid parameter type: %T", i)
	}
	return v.ValidateBasic()
}

func validateAccessType(i interface{}) error {
	a, ok := i.(AccessType)
	if !ok {
		return fmt.Errorf("invalid parameter type: %T", i)
	}
	if a == AccessTypeUndefined {
		return sdkerrors.Wrap(ErrEmpty, "type")
	}
	for _, v := range AllAccessTypes {
		if v == a {
			return nil
		}
	}
	return sdkerrors.Wrapf(ErrInvalid, "unknown type: %q", a)
}

func validateMaxWasmCodeSize(i interface{}) error {
	a, ok := i.(uint64)
	if !ok {
		return fmt.Errorf("invalid parameter type: %T", i)
	}
	if a == 0 {
		return sdkerrors.Wrap(ErrInvalid, "must be greater 0")
	}
	return nil
}

func validateQueryGasLimit(i interface{}) error {
	a, ok := i.(uint64)
	if !ok {
		return fmt.Errorf("invalid parameter type: %T", i)
	}
	if a == 0 {
		return sdkerrors.Wrap(ErrInvalid, "must be greater 0")
	}
	return nil
}

func validateMemoryCacheSize(i interface{}) error {
	_, ok := i.(uint32)
	if !ok {
		return fmt.Errorf("invalid parameter type: %T", i)
	}
	return nil
}

// ValidateBasic syntax checks
func (v AccessConfig) ValidateBasic() error {
	switch v.Permission {
	case AccessTypeUndefined:
		return sdkerrors.Wrap(ErrEmpty, "type")
	case AccessTypeNobody, AccessTypeEverybody:
		if len(v.Address) != 0 || len(v.Addresses) != 0 {
			return sdkerrors.Wrap(ErrInvalid, "addresses not allowed for this type")
		}
		return nil
	case AccessTypeOnlyAddress:
		if len(v.Addresses) != 0 {
			return sdkerrors.Wrap(ErrInvalid, "only singular address allowed for this type")
		}
		return sdk.VerifyAddressFormat(v.Address)
	case AccessTypeAnyOfAddresses:
		if len(v.Address) != 0 {
			return sdkerrors.Wrap(ErrInvalid, "only address list allowed for this type")
		}
		if len(v.Addresses) == 0 {
			return sdkerrors.Wrap(ErrEmpty, "addresses")
		}
		index := map[string]struct{}{}
		for _, addr := range v.Addresses {
			if err := sdk.VerifyAddressFormat(addr); err != nil {
				return sdkerrors.Wrap(err, "address")
			}
			if _, exists := index[addr.String()]; exists {
				return sdkerrors.Wrap(ErrDuplicate, "address")
			}
			index[addr.String()] = struct{}{}
		}
		return nil
	}
	return sdkerrors.Wrapf(ErrInvalid, "unknown type: %q", v.Permission)
}

// Allowed returns if the actor has the permission to perform the action
func (v AccessConfig) Allowed(actor sdk.AccAddress) bool {
	switch v.Permission {
	case AccessTypeNobody:
		return false
	case AccessTypeEverybody:
		return true
	case AccessTypeOnlyAddress:
		return v.Address.Equals(actor)
	case AccessTypeAnyOfAddresses:
		for _, addr := range v.Addresses {
			if addr.Equals(actor) {
				return true
			}
		}
		return false
	default:
		panic("unknown type")
	}
}

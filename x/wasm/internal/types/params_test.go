package types

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, AllowEverybody, p.CodeUploadAccess)
	assert.Equal(t, AccessTypeEverybody, p.InstantiateDefaultPermission)
	assert.Equal(t, uint64(1_000_000), p.MaxWasmCodeSize)
	assert.Equal(t, uint64(3_000_000), p.SmartQueryGasLimit)
	assert.Equal(t, uint32(40), p.MemoryCacheSize)

	// the node-local engine cache default is a separate knob
	assert.Equal(t, uint32(100), DefaultWasmConfig().MemoryCacheSize)
}

func TestValidateParams(t *testing.T) {
	var (
		anyAddress     = make(sdk.AccAddress, sdk.AddrLen)
		otherAddress   = bytesAddr(sdk.AddrLen)
		invalidAddress = sdk.AccAddress("invalid address")
	)

	specs := map[string]struct {
		src    Params
		expErr bool
	}{
		"all good with defaults": {
			src: DefaultParams(),
		},
		"all good with nobody": {
			src: Params{
				CodeUploadAccess:             AllowNobody,
				InstantiateDefaultPermission: AccessTypeNobody,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
				MemoryCacheSize:              DefaultMemoryCacheSize,
			},
		},
		"all good with only address": {
			src: Params{
				CodeUploadAccess:             AccessTypeOnlyAddress.With(anyAddress),
				InstantiateDefaultPermission: AccessTypeOnlyAddress,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
				MemoryCacheSize:              DefaultMemoryCacheSize,
			},
		},
		"all good with any of addresses": {
			src: Params{
				CodeUploadAccess:             AccessTypeAnyOfAddresses.With(anyAddress, otherAddress),
				InstantiateDefaultPermission: AccessTypeEverybody,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
				MemoryCacheSize:              DefaultMemoryCacheSize,
			},
		},
		"reject empty type in access config": {
			src: Params{
				CodeUploadAccess:             AccessConfig{Permission: AccessTypeUndefined},
				InstantiateDefaultPermission: AccessTypeOnlyAddress,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
			},
			expErr: true,
		},
		"reject undefined permission in access config": {
			src: Params{
				CodeUploadAccess:             AccessConfig{Permission: "Undefined"},
				InstantiateDefaultPermission: AccessTypeOnlyAddress,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
			},
			expErr: true,
		},
		"reject invalid address in only address": {
			src: Params{
				CodeUploadAccess:             AccessConfig{Permission: AccessTypeOnlyAddress, Address: invalidAddress},
				InstantiateDefaultPermission: AccessTypeOnlyAddress,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
			},
			expErr: true,
		},
		"reject duplicate address in any of addresses": {
			src: Params{
				CodeUploadAccess:             AccessConfig{Permission: AccessTypeAnyOfAddresses, Addresses: []sdk.AccAddress{anyAddress, anyAddress}},
				InstantiateDefaultPermission: AccessTypeEverybody,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
				MemoryCacheSize:              DefaultMemoryCacheSize,
			},
			expErr: true,
		},
		"reject address for everybody": {
			src: Params{
				CodeUploadAccess:             AccessConfig{Permission: AccessTypeEverybody, Address: anyAddress},
				InstantiateDefaultPermission: AccessTypeEverybody,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
			},
			expErr: true,
		},
		"reject zero max wasm code size": {
			src: Params{
				CodeUploadAccess:             AllowEverybody,
				InstantiateDefaultPermission: AccessTypeEverybody,
				MaxWasmCodeSize:              0,
				SmartQueryGasLimit:           defaultSmartQueryGasLimit,
				MemoryCacheSize:              DefaultMemoryCacheSize,
			},
			expErr: true,
		},
		"reject zero query gas limit": {
			src: Params{
				CodeUploadAccess:             AllowEverybody,
				InstantiateDefaultPermission: AccessTypeEverybody,
				MaxWasmCodeSize:              DefaultMaxWasmCodeSize,
				SmartQueryGasLimit:           0,
				MemoryCacheSize:              DefaultMemoryCacheSize,
			},
			expErr: true,
		},
		"reject empty": {
			src:    Params{},
			expErr: true,
		},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			err := spec.src.ValidateBasic()
			if spec.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAccessTypeMarshalText(t *testing.T) {
	specs := map[string]struct {
		src AccessType
		exp string
	}{
		"nobody":           {src: AccessTypeNobody, exp: "Nobody"},
		"only address":     {src: AccessTypeOnlyAddress, exp: "OnlyAddress"},
		"any of addresses": {src: AccessTypeAnyOfAddresses, exp: "AnyOfAddresses"},
		"everybody":        {src: AccessTypeEverybody, exp: "Everybody"},
		"unknown":          {src: "", exp: "Undefined"},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			got, err := spec.src.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, []byte(spec.exp), got)
		})
	}
}

func TestAccessConfigAllowed(t *testing.T) {
	myActor := bytesAddr(sdk.AddrLen)
	otherActor := make(sdk.AccAddress, sdk.AddrLen)

	specs := map[string]struct {
		src   AccessConfig
		actor sdk.AccAddress
		exp   bool
	}{
		"nobody":                               {src: AllowNobody, actor: myActor, exp: false},
		"everybody":                            {src: AllowEverybody, actor: myActor, exp: true},
		"only address - same":                  {src: AccessTypeOnlyAddress.With(myActor), actor: myActor, exp: true},
		"only address - different":             {src: AccessTypeOnlyAddress.With(otherActor), actor: myActor, exp: false},
		"any of addresses - included":          {src: AccessTypeAnyOfAddresses.With(otherActor, myActor), actor: myActor, exp: true},
		"any of addresses - not included":      {src: AccessTypeAnyOfAddresses.With(otherActor), actor: myActor, exp: false},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			assert.Equal(t, spec.exp, spec.src.Allowed(spec.actor))
		})
	}
}

package types

import (
	"strings"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCodeValidation(t *testing.T) {
	badAddress := sdk.AccAddress(make([]byte, 5))
	goodAddress := sdk.AccAddress(make([]byte, sdk.AddrLen))

	cases := map[string]struct {
		msg   MsgStoreCode
		valid bool
	}{
		"empty": {
			msg:   MsgStoreCode{},
			valid: false,
		},
		"correct minimal": {
			msg: MsgStoreCode{
				Sender:       goodAddress,
				WASMByteCode: []byte("foo"),
			},
			valid: true,
		},
		"missing code": {
			msg: MsgStoreCode{
				Sender: goodAddress,
			},
			valid: false,
		},
		"bad sender minimal": {
			msg: MsgStoreCode{
				Sender:       badAddress,
				WASMByteCode: []byte("foo"),
			},
			valid: false,
		},
		"correct maximal": {
			msg: MsgStoreCode{
				Sender:       goodAddress,
				WASMByteCode: []byte("foo"),
				Source:       "https://crates.io/api/v1/crates/cw-erc20/0.1.0/download",
			},
			valid: true,
		},
		"invalid source scheme": {
			msg: MsgStoreCode{
				Sender:       goodAddress,
				WASMByteCode: []byte("foo"),
				Source:       "crates.io/api/v1/crates/cw-erc20/0.1.0/download",
			},
			valid: false,
		},
		"invalid instantiate permission": {
			msg: MsgStoreCode{
				Sender:                goodAddress,
				WASMByteCode:          []byte("foo"),
				InstantiatePermission: &AccessConfig{Permission: AccessTypeOnlyAddress, Address: badAddress},
			},
			valid: false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.ValidateBasic()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInstantiateContractValidation(t *testing.T) {
	badAddress := sdk.AccAddress(make([]byte, 5))
	goodAddress := sdk.AccAddress(make([]byte, sdk.AddrLen))

	cases := map[string]struct {
		msg   MsgInstantiateContract
		valid bool
	}{
		"empty": {
			msg:   MsgInstantiateContract{},
			valid: false,
		},
		"correct minimal": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				CodeID:  1,
				Label:   "foo",
				InitMsg: []byte("{}"),
			},
			valid: true,
		},
		"missing code": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				Label:   "foo",
				InitMsg: []byte("{}"),
			},
			valid: false,
		},
		"missing label": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				CodeID:  1,
				InitMsg: []byte("{}"),
			},
			valid: false,
		},
		"label too long": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				CodeID:  1,
				Label:   strings.Repeat("a", MaxLabelSize+1),
				InitMsg: []byte("{}"),
			},
			valid: false,
		},
		"non json init msg": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				CodeID:  1,
				Label:   "foo",
				InitMsg: []byte("invalid-json"),
			},
			valid: false,
		},
		"correct maximal": {
			msg: MsgInstantiateContract{
				Sender:    goodAddress,
				Admin:     goodAddress,
				CodeID:    1,
				Label:     "foo",
				InitMsg:   []byte(`{"some": "data"}`),
				InitFunds: sdk.Coins{sdk.Coin{Denom: "foobar", Amount: sdk.NewInt(200)}},
				Salt:      []byte("mysalt"),
			},
			valid: true,
		},
		"negative funds": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				CodeID:  1,
				Label:   "foo",
				InitMsg: []byte(`{"some": "data"}`),
				// we cannot use sdk.NewCoin() constructors as they panic on creating invalid data (before we can test)
				InitFunds: sdk.Coins{sdk.Coin{Denom: "foobar", Amount: sdk.NewInt(-200)}},
			},
			valid: false,
		},
		"bad admin": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				Admin:   badAddress,
				CodeID:  1,
				Label:   "foo",
				InitMsg: []byte("{}"),
			},
			valid: false,
		},
		"salt too long": {
			msg: MsgInstantiateContract{
				Sender:  goodAddress,
				CodeID:  1,
				Label:   "foo",
				InitMsg: []byte("{}"),
				Salt:    []byte(strings.Repeat("s", MaxSaltSize+1)),
			},
			valid: false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.ValidateBasic()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExecuteContractValidation(t *testing.T) {
	badAddress := sdk.AccAddress(make([]byte, 5))
	goodAddress := sdk.AccAddress(make([]byte, sdk.AddrLen))

	cases := map[string]struct {
		msg   MsgExecuteContract
		valid bool
	}{
		"empty": {
			msg:   MsgExecuteContract{},
			valid: false,
		},
		"correct minimal": {
			msg: MsgExecuteContract{
				Sender:   goodAddress,
				Contract: goodAddress,
				Msg:      []byte("{}"),
			},
			valid: true,
		},
		"bad contract": {
			msg: MsgExecuteContract{
				Sender:   goodAddress,
				Contract: badAddress,
				Msg:      []byte("{}"),
			},
			valid: false,
		},
		"non json msg": {
			msg: MsgExecuteContract{
				Sender:   goodAddress,
				Contract: goodAddress,
				Msg:      []byte("not-json"),
			},
			valid: false,
		},
		"negative funds": {
			msg: MsgExecuteContract{
				Sender:    goodAddress,
				Contract:  goodAddress,
				Msg:       []byte("{}"),
				SentFunds: sdk.Coins{sdk.Coin{Denom: "foobar", Amount: sdk.NewInt(-1)}},
			},
			valid: false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.ValidateBasic()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMsgUpdateAdminValidation(t *testing.T) {
	badAddress := sdk.AccAddress(make([]byte, 5))
	goodAddress := sdk.AccAddress(make([]byte, sdk.AddrLen))
	otherGoodAddress := sdk.AccAddress(bytesAddr(sdk.AddrLen))

	specs := map[string]struct {
		src    MsgUpdateAdmin
		expErr bool
	}{
		"all good": {
			src: MsgUpdateAdmin{
				Sender:   goodAddress,
				NewAdmin: otherGoodAddress,
				Contract: goodAddress,
			},
		},
		"new admin same as old admin": {
			src: MsgUpdateAdmin{
				Sender:   goodAddress,
				NewAdmin: goodAddress,
				Contract: goodAddress,
			},
			expErr: true,
		},
		"bad sender": {
			src: MsgUpdateAdmin{
				Sender:   badAddress,
				NewAdmin: otherGoodAddress,
				Contract: goodAddress,
			},
			expErr: true,
		},
		"empty new admin": {
			src: MsgUpdateAdmin{
				Sender:   goodAddress,
				Contract: goodAddress,
			},
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

func TestMsgSignBytesDeterministic(t *testing.T) {
	goodAddress := sdk.AccAddress(make([]byte, sdk.AddrLen))
	msg := MsgExecuteContract{
		Sender:   goodAddress,
		Contract: goodAddress,
		Msg:      []byte(`{"b": 1, "a": 2}`),
	}
	require.Equal(t, msg.GetSignBytes(), msg.GetSignBytes())
	require.True(t, strings.HasPrefix(string(msg.GetSignBytes()), `{"type":"wasm/execute"`))
}

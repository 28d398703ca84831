package keeper

import (
	"context"
	"encoding/json"
	"testing"

	wasmvm "github.com/CosmWasm/wasmvm"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/x/staking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/mccallofthewild/gears/x/wasm/internal/keeper/wasmtesting"
	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

func TestBankQuerier(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := CreateTestInput(t, false, wasmer, nil, nil)

	funds := sdk.NewCoins(sdk.NewInt64Coin("denom", 10000), sdk.NewInt64Coin("stake", 55))
	richAddr := createFakeFundedAccount(t, ctx, keepers.AccountKeeper, funds)
	_, _, emptyAddr := keyPubAddr()

	querier := BankQuerier(keepers.BankKeeper)

	specs := map[string]struct {
		srcQuery wasmvmtypes.BankQuery
		expRes   interface{}
		expErr   bool
	}{
		"balance": {
			srcQuery: wasmvmtypes.BankQuery{Balance: &wasmvmtypes.BalanceQuery{Address: richAddr.String(), Denom: "denom"}},
			expRes:   wasmvmtypes.BalanceResponse{Amount: wasmvmtypes.Coin{Denom: "denom", Amount: "10000"}},
		},
		"balance of unknown denom is zero": {
			srcQuery: wasmvmtypes.BankQuery{Balance: &wasmvmtypes.BalanceQuery{Address: richAddr.String(), Denom: "unknown"}},
			expRes:   wasmvmtypes.BalanceResponse{Amount: wasmvmtypes.Coin{Denom: "unknown", Amount: "0"}},
		},
		"all balances": {
			srcQuery: wasmvmtypes.BankQuery{AllBalances: &wasmvmtypes.AllBalancesQuery{Address: richAddr.String()}},
			expRes: wasmvmtypes.AllBalancesResponse{Amount: wasmvmtypes.Coins{
				{Denom: "denom", Amount: "10000"},
				{Denom: "stake", Amount: "55"},
			}},
		},
		"all balances of empty account": {
			srcQuery: wasmvmtypes.BankQuery{AllBalances: &wasmvmtypes.AllBalancesQuery{Address: emptyAddr.String()}},
			expRes:   wasmvmtypes.AllBalancesResponse{Amount: wasmvmtypes.Coins{}},
		},
		"invalid address rejected": {
			srcQuery: wasmvmtypes.BankQuery{Balance: &wasmvmtypes.BalanceQuery{Address: "not-an-address", Denom: "denom"}},
			expErr:   true,
		},
		"empty query unsupported": {
			srcQuery: wasmvmtypes.BankQuery{},
			expErr:   true,
		},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			gotBz, gotErr := querier(ctx, &spec.srcQuery)
			if spec.expErr {
				require.Error(t, gotErr)
				return
			}
			require.NoError(t, gotErr)
			expBz, err := json.Marshal(spec.expRes)
			require.NoError(t, err)
			assert.JSONEq(t, string(expBz), string(gotBz))
		})
	}
}

func TestNoCustomQuerier(t *testing.T) {
	_, gotErr := NoCustomQuerier(sdk.Context{}, []byte(`{"ping":{}}`))
	require.Error(t, gotErr)
	assert.Equal(t, wasmvmtypes.UnsupportedRequest{Kind: "custom"}, gotErr)
}

func TestStakingQuerier(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	ctx, keepers := CreateTestInput(t, false, wasmer, nil, nil)

	selfBond := sdk.NewInt64Coin("stake", 1000000)
	valAddr := addValidator(t, ctx, keepers, selfBond)
	// process the bonding queue so the validator enters the bonded set
	staking.EndBlocker(ctx, keepers.StakingKeeper)
	delegatorAddr := sdk.AccAddress(valAddr)

	querier := StakingQuerier(keepers.StakingKeeper)

	t.Run("bonded denom", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{BondedDenom: &struct{}{}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.BondedDenomResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		assert.Equal(t, "stake", res.Denom)
	})
	t.Run("all validators", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{AllValidators: &wasmvmtypes.AllValidatorsQuery{}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.AllValidatorsResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		require.Len(t, res.Validators, 1)
		assert.Equal(t, valAddr.String(), res.Validators[0].Address)
	})
	t.Run("validator", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{Validator: &wasmvmtypes.ValidatorQuery{Address: valAddr.String()}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.ValidatorResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		require.NotNil(t, res.Validator)
		assert.Equal(t, valAddr.String(), res.Validator.Address)
	})
	t.Run("unknown validator", func(t *testing.T) {
		otherVal := sdk.ValAddress(make([]byte, sdk.AddrLen))
		gotBz, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{Validator: &wasmvmtypes.ValidatorQuery{Address: otherVal.String()}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.ValidatorResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		assert.Nil(t, res.Validator)
	})
	t.Run("all delegations", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{AllDelegations: &wasmvmtypes.AllDelegationsQuery{Delegator: delegatorAddr.String()}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.AllDelegationsResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		require.Len(t, res.Delegations, 1)
		assert.Equal(t, delegatorAddr.String(), res.Delegations[0].Delegator)
		assert.Equal(t, valAddr.String(), res.Delegations[0].Validator)
		assert.Equal(t, wasmvmtypes.Coin{Denom: "stake", Amount: "1000000"}, res.Delegations[0].Amount)
	})
	t.Run("full delegation", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{Delegation: &wasmvmtypes.DelegationQuery{Delegator: delegatorAddr.String(), Validator: valAddr.String()}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.DelegationResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		require.NotNil(t, res.Delegation)
		assert.Equal(t, wasmvmtypes.Coin{Denom: "stake", Amount: "1000000"}, res.Delegation.Amount)
		// nothing redelegating into the pair, so the full amount can move
		assert.Equal(t, wasmvmtypes.Coin{Denom: "stake", Amount: "1000000"}, res.Delegation.CanRedelegate)
	})
	t.Run("no delegation", func(t *testing.T) {
		_, _, otherAddr := keyPubAddr()
		gotBz, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{Delegation: &wasmvmtypes.DelegationQuery{Delegator: otherAddr.String(), Validator: valAddr.String()}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.DelegationResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		assert.Nil(t, res.Delegation)
	})
	t.Run("empty query unsupported", func(t *testing.T) {
		_, gotErr := querier(ctx, &wasmvmtypes.StakingQuery{})
		require.Error(t, gotErr)
	})
}

func addValidator(t *testing.T, ctx sdk.Context, keepers TestKeepers, value sdk.Coin) sdk.ValAddress {
	t.Helper()
	privKey := ed25519.GenPrivKey()
	pubKey := privKey.PubKey()
	accAddr := sdk.AccAddress(pubKey.Address())
	valAddr := sdk.ValAddress(pubKey.Address())

	acc := keepers.AccountKeeper.NewAccountWithAddress(ctx, accAddr)
	require.NoError(t, acc.SetCoins(sdk.NewCoins(value)))
	keepers.AccountKeeper.SetAccount(ctx, acc)

	msg := staking.NewMsgCreateValidator(
		valAddr, pubKey, value,
		staking.NewDescription("testing", "", "", "", ""),
		staking.NewCommissionRates(sdk.MustNewDecFromStr("0.1"), sdk.MustNewDecFromStr("0.2"), sdk.MustNewDecFromStr("0.01")),
		sdk.OneInt(),
	)
	h := staking.NewHandler(keepers.StakingKeeper)
	_, err := h(ctx, msg)
	require.NoError(t, err)
	return valAddr
}

func TestWasmQuerier(t *testing.T) {
	wasmer := &wasmtesting.MockWasmEngine{}
	wasmtesting.MakeInstantiable(wasmer)
	wasmer.QueryFn = func(checksum wasmvm.Checksum, env wasmvmtypes.Env, queryMsg []byte, store wasmvm.KVStore, goapi wasmvm.GoAPI, querier wasmvm.Querier, gasMeter wasmvm.GasMeter, gasLimit uint64, deserCost wasmvmtypes.UFraction) ([]byte, uint64, error) {
		return []byte(`{"pong":{}}`), 0, nil
	}
	ctx, keepers := CreateTestInput(t, false, wasmer, nil, nil)
	keeper := keepers.WasmKeeper

	creator := createFakeFundedAccount(t, ctx, keepers.AccountKeeper, nil)
	codeID, err := keeper.Create(ctx, creator, exampleWasmCode, "", nil)
	require.NoError(t, err)
	contractAddr, _, err := keeper.Instantiate(ctx, codeID, creator, nil, []byte(`{}`), "demo contract", nil, nil)
	require.NoError(t, err)

	prefixStoreKey := types.GetContractStorePrefix(contractAddr)
	ctx.KVStore(keeper.storeKey).Set(append(prefixStoreKey, []byte("config")...), []byte(`"stored"`))

	querier := WasmQuerier(&keeper)

	t.Run("smart", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.WasmQuery{Smart: &wasmvmtypes.SmartQuery{ContractAddr: contractAddr.String(), Msg: []byte(`{"ping":{}}`)}})
		require.NoError(t, gotErr)
		assert.JSONEq(t, `{"pong":{}}`, string(gotBz))
	})
	t.Run("raw", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.WasmQuery{Raw: &wasmvmtypes.RawQuery{ContractAddr: contractAddr.String(), Key: []byte("config")}})
		require.NoError(t, gotErr)
		assert.Equal(t, []byte(`"stored"`), gotBz)
	})
	t.Run("contract info", func(t *testing.T) {
		gotBz, gotErr := querier(ctx, &wasmvmtypes.WasmQuery{ContractInfo: &wasmvmtypes.ContractInfoQuery{ContractAddr: contractAddr.String()}})
		require.NoError(t, gotErr)
		var res wasmvmtypes.ContractInfoResponse
		require.NoError(t, json.Unmarshal(gotBz, &res))
		assert.Equal(t, codeID, res.CodeID)
		assert.Equal(t, creator.String(), res.Creator)
		assert.Empty(t, res.Admin)
		assert.False(t, res.Pinned)
	})
	t.Run("contract info of unknown contract", func(t *testing.T) {
		_, _, unknownAddr := keyPubAddr()
		_, gotErr := querier(ctx, &wasmvmtypes.WasmQuery{ContractInfo: &wasmvmtypes.ContractInfoQuery{ContractAddr: unknownAddr.String()}})
		require.Error(t, gotErr)
		assert.True(t, types.ErrNotFound.Is(gotErr))
	})
	t.Run("empty query unsupported", func(t *testing.T) {
		_, gotErr := querier(ctx, &wasmvmtypes.WasmQuery{})
		require.Error(t, gotErr)
	})
}

func TestQueryHandlerGasAccounting(t *testing.T) {
	ctx := newDispatcherTestCtx(t).WithGasMeter(sdk.NewGasMeter(1_000_000))

	const customGasCost = 500
	plugins := QueryPlugins{
		Custom: func(ctx sdk.Context, _ json.RawMessage) ([]byte, error) {
			ctx.GasMeter().ConsumeGas(customGasCost, "testing")
			return []byte(`{}`), nil
		},
	}
	q := NewQueryHandler(ctx, plugins, nil)

	gotBz, gotErr := q.Query(wasmvmtypes.QueryRequest{Custom: []byte(`{"ping":{}}`)}, 100*GasMultiplier)
	require.NoError(t, gotErr)
	assert.Equal(t, []byte(`{}`), gotBz)
	// the parent meter is charged what the sub-query consumed
	assert.Equal(t, uint64(customGasCost), ctx.GasMeter().GasConsumed())
	assert.Equal(t, uint64(customGasCost)*GasMultiplier, q.GasConsumed())
}

func TestQueryHandlerUnknownRequest(t *testing.T) {
	ctx := newDispatcherTestCtx(t).WithGasMeter(sdk.NewGasMeter(1_000_000))
	q := NewQueryHandler(ctx, QueryPlugins{}, nil)
	_, gotErr := q.Query(wasmvmtypes.QueryRequest{}, 100*GasMultiplier)
	require.Error(t, gotErr)
	assert.Equal(t, wasmvmtypes.Unknown{}, gotErr)
}

func TestCheckAndIncreaseQueryStackSize(t *testing.T) {
	specs := map[string]struct {
		startSize uint32
		max       uint32
		expErr    bool
		expSize   uint32
	}{
		"first query":    {startSize: 0, max: 10, expSize: 1},
		"below limit":    {startSize: 8, max: 10, expSize: 9},
		"at limit":       {startSize: 9, max: 10, expSize: 10},
		"exceeds limit":  {startSize: 10, max: 10, expErr: true},
		"zero max fails": {startSize: 0, max: 0, expErr: true},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			parent := types.WithQueryStackSize(sdk.Context{}.WithContext(context.Background()), spec.startSize)
			gotCtx, gotErr := checkAndIncreaseQueryStackSize(parent, spec.max)
			if spec.expErr {
				require.Error(t, gotErr)
				assert.True(t, types.ErrExceedMaxQueryStackSize.Is(gotErr))
				return
			}
			require.NoError(t, gotErr)
			gotSize, ok := types.QueryStackSize(gotCtx)
			require.True(t, ok)
			assert.Equal(t, spec.expSize, gotSize)
		})
	}
}

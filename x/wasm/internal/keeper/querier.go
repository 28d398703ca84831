package keeper

import (
	"encoding/json"
	"sort"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

const (
	QueryListContractByCode = "contracts-by-code"
	QueryGetContract        = "contract-info"
	QueryGetContractState   = "contract-state"
	QueryGetCode            = "code"
	QueryListCode           = "list-code"
	QueryContractHistory    = "contract-history"
)

const (
	QueryMethodContractStateSmart = "smart"
	QueryMethodContractStateAll   = "all"
	QueryMethodContractStateRaw   = "raw"
)

// NewQuerier creates a new querier
func NewQuerier(keeper Keeper) sdk.Querier {
	return func(ctx sdk.Context, path []string, req abci.RequestQuery) ([]byte, error) {
		if len(path) == 0 {
			return nil, sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, "unknown data query endpoint")
		}
		// every route except list-code takes at least one argument
		if path[0] != QueryListCode && len(path) < 2 {
			return nil, sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, "unknown data query endpoint")
		}
		var (
			rsp interface{}
			err error
		)
		switch path[0] {
		case QueryGetContract:
			addr, e := sdk.AccAddressFromBech32(path[1])
			if e != nil {
				return nil, sdkerrors.Wrap(sdkerrors.ErrInvalidAddress, e.Error())
			}
			rsp, err = queryContractInfo(ctx, addr, keeper)
		case QueryListContractByCode:
			codeID, e := strconv.ParseUint(path[1], 10, 64)
			if e != nil {
				return nil, sdkerrors.Wrapf(types.ErrInvalid, "code id: %s", e.Error())
			}
			var page types.PageRequest
			if len(req.Data) != 0 {
				if e := json.Unmarshal(req.Data, &page); e != nil {
					return nil, sdkerrors.Wrap(types.ErrInvalid, e.Error())
				}
			}
			rsp = queryContractListByCode(ctx, codeID, page, keeper)
		case QueryGetContractState:
			if len(path) < 3 {
				return nil, sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, "unknown data query endpoint")
			}
			return queryContractState(ctx, path[1], path[2], req.Data, keeper)
		case QueryGetCode:
			codeID, e := strconv.ParseUint(path[1], 10, 64)
			if e != nil {
				return nil, sdkerrors.Wrapf(types.ErrInvalid, "code id: %s", e.Error())
			}
			rsp, err = queryCode(ctx, codeID, keeper)
		case QueryListCode:
			rsp, err = queryCodeList(ctx, keeper)
		case QueryContractHistory:
			addr, e := sdk.AccAddressFromBech32(path[1])
			if e != nil {
				return nil, sdkerrors.Wrap(sdkerrors.ErrInvalidAddress, e.Error())
			}
			rsp, err = queryContractHistory(ctx, addr, keeper)
		default:
			return nil, sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, "unknown data query endpoint")
		}
		if err != nil {
			return nil, err
		}
		if rsp == nil || reflectInterfaceIsNil(rsp) {
			return nil, nil
		}
		bz, err := json.MarshalIndent(rsp, "", "  ")
		if err != nil {
			return nil, sdkerrors.Wrap(sdkerrors.ErrJSONMarshal, err.Error())
		}
		return bz, nil
	}
}

func queryContractInfo(ctx sdk.Context, addr sdk.AccAddress, keeper Keeper) (*types.ContractInfoWithAddress, error) {
	info := keeper.GetContractInfo(ctx, addr)
	if info == nil {
		return nil, nil
	}
	return &types.ContractInfoWithAddress{
		Address:      addr,
		ContractInfo: info,
	}, nil
}

// queryContractListByCode pages through the code id secondary index in store key order.
// StartAfter is the last address of the previous page, exclusive.
func queryContractListByCode(ctx sdk.Context, codeID uint64, page types.PageRequest, keeper Keeper) types.ContractsByCodeResponse {
	limit := page.Limit
	if limit == 0 || limit > types.DefaultQueryLimit {
		limit = types.DefaultQueryLimit
	}
	var (
		addresses []string
		nextKey   []byte
		lastAddr  sdk.AccAddress
	)
	keeper.IterateContractsByCode(ctx, codeID, func(addr sdk.AccAddress) bool {
		if len(page.StartAfter) != 0 && string(addr) <= string(page.StartAfter) {
			return false
		}
		if uint64(len(addresses)) == limit {
			// one more entry exists, hand the client a cursor
			nextKey = lastAddr
			return true
		}
		addresses = append(addresses, addr.String())
		lastAddr = addr
		return false
	})
	return types.ContractsByCodeResponse{Addresses: addresses, NextKey: nextKey}
}

func queryContractState(ctx sdk.Context, bech, queryMethod string, data []byte, keeper Keeper) (json.RawMessage, error) {
	contractAddr, err := sdk.AccAddressFromBech32(bech)
	if err != nil {
		return nil, sdkerrors.Wrap(sdkerrors.ErrInvalidAddress, bech)
	}

	switch queryMethod {
	case QueryMethodContractStateAll:
		var resultData []types.Model
		iter := keeper.GetContractState(ctx, contractAddr)
		for ; iter.Valid(); iter.Next() {
			resultData = append(resultData, types.Model{
				Key:   iter.Key(),
				Value: iter.Value(),
			})
		}
		bz, err := json.Marshal(resultData)
		if err != nil {
			return nil, sdkerrors.Wrap(sdkerrors.ErrJSONMarshal, err.Error())
		}
		return bz, nil
	case QueryMethodContractStateRaw:
		return keeper.QueryRaw(ctx, contractAddr, data), nil
	case QueryMethodContractStateSmart:
		// we enforce a subjective gas limit on all queries to avoid infinite loops
		ctx = ctx.WithGasMeter(sdk.NewGasMeter(keeper.QueryGasLimit(ctx)))
		if !json.Valid(data) {
			return nil, sdkerrors.Wrap(types.ErrInvalid, "json msg")
		}
		return keeper.QuerySmart(ctx, contractAddr, data)
	default:
		return nil, sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, queryMethod)
	}
}

func queryCode(ctx sdk.Context, codeID uint64, keeper Keeper) (*types.CodeResponse, error) {
	if codeID == 0 {
		return nil, nil
	}
	res := keeper.GetCodeInfo(ctx, codeID)
	if res == nil {
		// nil, nil leads to 404 in rest handler
		return nil, nil
	}
	code, err := keeper.GetByteCode(ctx, codeID)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "loading wasm code")
	}

	return &types.CodeResponse{
		CodeID:   codeID,
		Creator:  res.Creator,
		Checksum: res.CodeHash,
		Source:   res.Source,
		Data:     code,
	}, nil
}

func queryCodeList(ctx sdk.Context, keeper Keeper) ([]types.CodeInfoResponse, error) {
	var info []types.CodeInfoResponse
	keeper.IterateCodeInfos(ctx, func(i uint64, res types.CodeInfo) bool {
		info = append(info, types.CodeInfoResponse{
			CodeID:   i,
			Creator:  res.Creator,
			Checksum: res.CodeHash,
			Source:   res.Source,
		})
		return false
	})
	// ascending order guaranteed by the store prefix iteration but keep it explicit
	sort.Slice(info, func(i, j int) bool { return info[i].CodeID < info[j].CodeID })
	return info, nil
}

func queryContractHistory(ctx sdk.Context, contractAddr sdk.AccAddress, keeper Keeper) ([]types.ContractCodeHistoryEntry, error) {
	history := keeper.GetContractHistory(ctx, contractAddr)
	if len(history) == 0 {
		// nil, nil leads to 404 in rest handler
		return nil, nil
	}
	return history, nil
}

func reflectInterfaceIsNil(v interface{}) bool {
	switch x := v.(type) {
	case *types.ContractInfoWithAddress:
		return x == nil
	case *types.CodeResponse:
		return x == nil
	case []types.CodeInfoResponse:
		return x == nil
	case []types.ContractCodeHistoryEntry:
		return x == nil
	default:
		return false
	}
}

package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	tmBytes "github.com/tendermint/tendermint/libs/bytes"
)

// DefaultQueryLimit number of contract entries returned per page when no limit was given
const DefaultQueryLimit = 100

// PageRequest is the key-set pagination request used by the list queries
type PageRequest struct {
	// StartAfter is the raw store key of the last entry of the previous page, exclusive
	StartAfter []byte `json:"start_after,omitempty"`
	// Limit caps the number of results, defaults to DefaultQueryLimit
	Limit uint64 `json:"limit,omitempty"`
}

// CodeResponse is the payload of the `code` query
type CodeResponse struct {
	CodeID   uint64           `json:"code_id"`
	Creator  sdk.AccAddress   `json:"creator"`
	Checksum tmBytes.HexBytes `json:"checksum"`
	Source   string           `json:"source,omitempty"`
	Data     []byte           `json:"data,omitempty"`
}

// CodeInfoResponse is the per-entry payload of the `list-code` query. It carries
// the code metadata but not the wasm bytes.
type CodeInfoResponse struct {
	CodeID   uint64           `json:"code_id"`
	Creator  sdk.AccAddress   `json:"creator"`
	Checksum tmBytes.HexBytes `json:"checksum"`
	Source   string           `json:"source,omitempty"`
}

// ContractsByCodeResponse is the paginated payload of the `contracts-by-code` query
type ContractsByCodeResponse struct {
	Addresses []string `json:"addresses"`
	// NextKey to pass as PageRequest.StartAfter for the next page, empty when exhausted
	NextKey []byte `json:"next_key,omitempty"`
}

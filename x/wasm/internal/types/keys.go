package types

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName is the name of the contract module
	ModuleName = "wasm"

	// StoreKey is the string store representation
	StoreKey = ModuleName

	// QuerierRoute is the querier route for the wasm module
	QuerierRoute = ModuleName

	// RouterKey is the msg router key for the wasm module
	RouterKey = ModuleName
)

// nolint
var (
	CodeKeyPrefix              = []byte{0x01}
	CodeBytesKeyPrefix         = []byte{0x02}
	ContractKeyPrefix          = []byte{0x03}
	ContractStorePrefix        = []byte{0x04}
	ContractCodeIndexPrefix    = []byte{0x05}
	ContractHistoryStorePrefix = []byte{0x06}
	SequenceKeyPrefix          = []byte{0x07}
	PinnedCodeIndexPrefix      = []byte{0x08}
	TXCounterPrefix            = []byte{0x09}

	KeyLastCodeID     = append(SequenceKeyPrefix, []byte("next_code_id")...)
	KeyLastInstanceID = append(SequenceKeyPrefix, []byte("next_instance")...)
)

// GetCodeKey constructs the key for the code metadata of the given id
func GetCodeKey(codeID uint64) []byte {
	return append(CodeKeyPrefix, sdk.Uint64ToBigEndian(codeID)...)
}

// GetCodeBytesKey constructs the key for the raw wasm bytes of the given code id
func GetCodeBytesKey(codeID uint64) []byte {
	return append(CodeBytesKeyPrefix, sdk.Uint64ToBigEndian(codeID)...)
}

// GetContractAddressKey returns the key for the contract metadata
func GetContractAddressKey(addr sdk.AccAddress) []byte {
	return append(ContractKeyPrefix, addr...)
}

// GetContractStorePrefix returns the store prefix for the wasm contract instance
func GetContractStorePrefix(addr sdk.AccAddress) []byte {
	return append(ContractStorePrefix, addr...)
}

// GetContractByCodeIDSecondaryIndexKey returns the key for the secondary index:
// `<prefix><codeID><contractAddr>`
func GetContractByCodeIDSecondaryIndexKey(codeID uint64, contractAddr sdk.AccAddress) []byte {
	prefix := GetContractByCodeIDSecondaryIndexPrefix(codeID)
	return append(prefix, contractAddr...)
}

// GetContractByCodeIDSecondaryIndexPrefix returns the prefix for the second index: `<prefix><codeID>`
func GetContractByCodeIDSecondaryIndexPrefix(codeID uint64) []byte {
	return append(ContractCodeIndexPrefix, sdk.Uint64ToBigEndian(codeID)...)
}

// GetContractCodeHistoryElementKey returns the key for a contract code history entry: `<prefix><contractAddr><position>`
func GetContractCodeHistoryElementKey(contractAddr sdk.AccAddress, pos uint64) []byte {
	prefix := GetContractCodeHistoryElementPrefix(contractAddr)
	return append(prefix, sdk.Uint64ToBigEndian(pos)...)
}

// GetContractCodeHistoryElementPrefix returns the key prefix for a contract code history entry: `<prefix><contractAddr>`
func GetContractCodeHistoryElementPrefix(contractAddr sdk.AccAddress) []byte {
	return append(ContractHistoryStorePrefix, contractAddr...)
}

// GetPinnedCodeIndexKey returns the key for the pinned code index: `<prefix><codeID>`
func GetPinnedCodeIndexKey(codeID uint64) []byte {
	return append(PinnedCodeIndexPrefix, sdk.Uint64ToBigEndian(codeID)...)
}

// ParsePinnedCodeIndex converts the serialized code id back
func ParsePinnedCodeIndex(rawKey []byte) uint64 {
	return binary.BigEndian.Uint64(rawKey)
}

package keeper

import (
	"crypto/sha256"
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

// derivation domain tags, part of consensus
var (
	sequentialDomain  = []byte("wasm-seq")
	predictableDomain = []byte("wasm")
)

// AddressGenerator abstract address generator to be used for a single contract address
type AddressGenerator func(ctx sdk.Context, codeID uint64, checksum []byte) sdk.AccAddress

// ClassicAddressGenerator generates a contract address from the instance id sequence.
// The sequence is consumed even when instantiation fails later so addresses never repeat.
func (k Keeper) ClassicAddressGenerator() AddressGenerator {
	return func(ctx sdk.Context, codeID uint64, _ []byte) sdk.AccAddress {
		instanceID := k.autoIncrementID(ctx, types.KeyLastInstanceID)
		return BuildContractAddressClassic(instanceID)
	}
}

// PredictableAddressGenerator generates a predictable contract address
func PredictableAddressGenerator(creator sdk.AccAddress, salt, initMsg []byte) AddressGenerator {
	return func(ctx sdk.Context, _ uint64, checksum []byte) sdk.AccAddress {
		return BuildContractAddressPredictable(checksum, creator, salt, initMsg)
	}
}

// BuildContractAddressClassic builds an sdk account address for a contract from the
// global instance id sequence: `sha256("wasm-seq" | u64_be(instance_id))[:20]`
func BuildContractAddressClassic(instanceID uint64) sdk.AccAddress {
	instanceIDBz := make([]byte, 8)
	binary.BigEndian.PutUint64(instanceIDBz, instanceID)
	preimage := make([]byte, 0, len(sequentialDomain)+8)
	preimage = append(preimage, sequentialDomain...)
	preimage = append(preimage, instanceIDBz...)
	hash := sha256.Sum256(preimage)
	return sdk.AccAddress(hash[:types.ContractAddrLen])
}

// BuildContractAddressPredictable generates a contract address independent of the
// instantiation order: `sha256("wasm" | checksum | creator | salt | sha256(initMsg))[:20]`.
// The init msg is folded in through its hash so the preimage has a fixed layout.
func BuildContractAddressPredictable(checksum []byte, creator sdk.AccAddress, salt, initMsg []byte) sdk.AccAddress {
	initMsgHash := sha256.Sum256(initMsg)
	preimage := make([]byte, 0, len(predictableDomain)+len(checksum)+len(creator)+len(salt)+len(initMsgHash))
	preimage = append(preimage, predictableDomain...)
	preimage = append(preimage, checksum...)
	preimage = append(preimage, creator...)
	preimage = append(preimage, salt...)
	preimage = append(preimage, initMsgHash[:]...)
	hash := sha256.Sum256(preimage)
	return sdk.AccAddress(hash[:types.ContractAddrLen])
}

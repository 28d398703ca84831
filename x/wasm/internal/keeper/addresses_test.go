package keeper

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContractAddressClassic(t *testing.T) {
	specs := map[string]struct {
		srcInstanceID uint64
	}{
		"first instance":  {srcInstanceID: 1},
		"second instance": {srcInstanceID: 2},
		"max uint64":      {srcInstanceID: 1<<64 - 1},
	}
	seen := make(map[string]struct{}, len(specs))
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			gotAddr := BuildContractAddressClassic(spec.srcInstanceID)
			require.Len(t, gotAddr, 20)
			require.NoError(t, sdk.VerifyAddressFormat(gotAddr))

			instanceIDBz := make([]byte, 8)
			binary.BigEndian.PutUint64(instanceIDBz, spec.srcInstanceID)
			expHash := sha256.Sum256(append([]byte("wasm-seq"), instanceIDBz...))
			assert.Equal(t, sdk.AccAddress(expHash[:20]), gotAddr)

			// deterministic and unique per instance id
			assert.Equal(t, gotAddr, BuildContractAddressClassic(spec.srcInstanceID))
			_, exists := seen[gotAddr.String()]
			assert.False(t, exists)
			seen[gotAddr.String()] = struct{}{}
		})
	}
}

func TestBuildContractAddressPredictable(t *testing.T) {
	checksum := sha256.Sum256([]byte("any wasm blob"))
	creator := bytes20(1)
	salt := []byte("my-salt")
	initMsg := []byte(`{"verifier":"foo"}`)

	base := BuildContractAddressPredictable(checksum[:], creator, salt, initMsg)
	require.Len(t, base, 20)
	require.NoError(t, sdk.VerifyAddressFormat(base))

	specs := map[string]struct {
		checksum []byte
		creator  sdk.AccAddress
		salt     []byte
		initMsg  []byte
	}{
		"different checksum": {sha256sum("other blob"), creator, salt, initMsg},
		"different creator":  {checksum[:], bytes20(2), salt, initMsg},
		"different salt":     {checksum[:], creator, []byte("other-salt"), initMsg},
		"different init msg": {checksum[:], creator, salt, []byte(`{"verifier":"bar"}`)},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			gotAddr := BuildContractAddressPredictable(spec.checksum, spec.creator, spec.salt, spec.initMsg)
			require.Len(t, gotAddr, 20)
			assert.NotEqual(t, base, gotAddr)
		})
	}

	// same inputs give the same address, regardless of when it is computed
	assert.Equal(t, base, BuildContractAddressPredictable(checksum[:], creator, salt, initMsg))
}

func TestPredictableAddressGeneratorIgnoresSequence(t *testing.T) {
	checksum := sha256sum("any wasm blob")
	creator := bytes20(3)
	gen := PredictableAddressGenerator(creator, []byte("salt"), []byte(`{}`))

	addr1 := gen(sdk.Context{}, 1, checksum)
	addr2 := gen(sdk.Context{}, 99, checksum)
	assert.Equal(t, addr1, addr2)
}

func sha256sum(s string) []byte {
	h := sha256.Sum256([]byte(s))
	return h[:]
}

func bytes20(b byte) sdk.AccAddress {
	addr := make(sdk.AccAddress, 20)
	for i := range addr {
		addr[i] = b
	}
	return addr
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCodeKeys(t *testing.T) {
	specs := map[string]struct {
		srcKey func(uint64) []byte
		exp    []byte
	}{
		"code info": {
			srcKey: GetCodeKey,
			exp:    []byte{0x01, 0, 0, 0, 0, 0, 0, 0x27, 0x10},
		},
		"code bytes": {
			srcKey: GetCodeBytesKey,
			exp:    []byte{0x02, 0, 0, 0, 0, 0, 0, 0x27, 0x10},
		},
		"pinned index": {
			srcKey: GetPinnedCodeIndexKey,
			exp:    []byte{0x08, 0, 0, 0, 0, 0, 0, 0x27, 0x10},
		},
	}
	for msg, spec := range specs {
		t.Run(msg, func(t *testing.T) {
			assert.Equal(t, spec.exp, spec.srcKey(10000))
		})
	}
}

func TestGetContractStorePrefixKey(t *testing.T) {
	addr := bytesAddr(20)
	got := GetContractStorePrefix(addr)
	require.Equal(t, append([]byte{0x04}, addr...), got)
}

func TestGetContractByCodeIDSecondaryIndexKey(t *testing.T) {
	addr := bytesAddr(20)
	got := GetContractByCodeIDSecondaryIndexKey(1, addr)
	exp := append([]byte{0x05, 0, 0, 0, 0, 0, 0, 0, 1}, addr...)
	require.Equal(t, exp, got)
	// and the key must sort under the per-code prefix
	require.Equal(t, exp[:9], GetContractByCodeIDSecondaryIndexPrefix(1))
}

func TestGetContractCodeHistoryElementKey(t *testing.T) {
	addr := bytesAddr(20)
	got := GetContractCodeHistoryElementKey(addr, 10000)
	exp := append(append([]byte{0x06}, addr...), 0, 0, 0, 0, 0, 0, 0x27, 0x10)
	require.Equal(t, exp, got)
}

func TestSequenceKeysDistinct(t *testing.T) {
	require.Equal(t, []byte{0x07}, KeyLastCodeID[:1])
	require.Equal(t, []byte{0x07}, KeyLastInstanceID[:1])
	require.NotEqual(t, KeyLastCodeID, KeyLastInstanceID)
}

func TestParsePinnedCodeIndex(t *testing.T) {
	key := GetPinnedCodeIndexKey(10000)
	require.Equal(t, uint64(10000), ParsePinnedCodeIndex(key[1:]))
}

func bytesAddr(n int) []byte {
	r := make([]byte, n)
	for i := range r {
		r[i] = byte(i)
	}
	return r
}

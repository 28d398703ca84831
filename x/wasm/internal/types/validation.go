package types

import (
	"net/url"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// MaxLabelSize is the longest label that we will accept
const MaxLabelSize = 128

// MaxWasmSize is the largest (compressed) wasm blob accepted in a store code message.
// The uncompressed size is bounded by the MaxWasmCodeSize param instead.
const MaxWasmSize = 500 * 1024

func validateSourceURL(source string) error {
	if source != "" {
		u, err := url.Parse(source)
		if err != nil {
			return sdkerrors.Wrap(ErrInvalid, "not an url")
		}
		if !u.IsAbs() {
			return sdkerrors.Wrap(ErrInvalid, "not an absolute url")
		}
	}
	return nil
}

func validateWasmCode(s []byte) error {
	if len(s) == 0 {
		return sdkerrors.Wrap(ErrEmpty, "is required")
	}
	if len(s) > MaxWasmSize {
		return sdkerrors.Wrapf(ErrLimit, "cannot be longer than %d bytes", MaxWasmSize)
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return sdkerrors.Wrap(ErrEmpty, "is required")
	}
	if len(label) > MaxLabelSize {
		return sdkerrors.Wrap(ErrLimit, "cannot be longer than 128 characters")
	}
	return nil
}

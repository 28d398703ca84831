package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

type contextKey int

const (
	// private type creates an interface key for Context that cannot be accessed by any other package
	contextKeyTXCount contextKey = iota
	contextKeyQueryStackSize
)

// WithTXCounter stores the current transaction position within the block in the context
func WithTXCounter(ctx sdk.Context, counter uint32) sdk.Context {
	return ctx.WithValue(contextKeyTXCount, counter)
}

// TXCounter returns the tx counter value and a bool for found
func TXCounter(ctx sdk.Context) (uint32, bool) {
	val, ok := ctx.Value(contextKeyTXCount).(uint32)
	return val, ok
}

// WithQueryStackSize stores the current smart query recursion depth in the context
func WithQueryStackSize(ctx sdk.Context, counter uint32) sdk.Context {
	return ctx.WithValue(contextKeyQueryStackSize, counter)
}

// QueryStackSize reads the current smart query recursion depth from the context
func QueryStackSize(ctx sdk.Context) (uint32, bool) {
	val, ok := ctx.Value(contextKeyQueryStackSize).(uint32)
	return val, ok
}

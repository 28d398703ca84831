package types

const (
	// WasmModuleEventType is stored with any contract TX that returns non empty EventAttributes
	WasmModuleEventType = "wasm"
	// CustomContractEventPrefix contracts can create custom events. To not mix them with other system events they got the `wasm-` prefix.
	CustomContractEventPrefix = "wasm-"
)

// event attribute keys
const (
	AttributeKeyContractAddr = "contract_address"
	AttributeKeyCodeID       = "code_id"
	AttributeKeySigner       = "signer"
	AttributeKeyAdmin        = "admin"
)

package keeper

import (
	"sync"

	wasmvm "github.com/CosmWasm/wasmvm"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

// contractMemoryLimit is the memory limit of each contract execution (in MiB)
// constant value so all nodes run with the same limit.
const contractMemoryLimit = 32

// WasmVMEngine wraps the libwasmvm backed VM and adds the params change hook.
type WasmVMEngine struct {
	*wasmvm.VM

	mu sync.Mutex
	// nextMemoryCacheSize is picked up on the next engine start. The running cache
	// cannot be resized.
	nextMemoryCacheSize uint32
}

var _ types.WasmerEngine = (*WasmVMEngine)(nil)

// NewWasmVMEngine creates an engine with file system storage under dataDir.
func NewWasmVMEngine(dataDir, supportedFeatures string, memoryCacheSize uint32, printDebug bool) (*WasmVMEngine, error) {
	vm, err := wasmvm.NewVM(dataDir, supportedFeatures, contractMemoryLimit, printDebug, memoryCacheSize)
	if err != nil {
		return nil, err
	}
	return &WasmVMEngine{VM: vm, nextMemoryCacheSize: memoryCacheSize}, nil
}

// OnParamsChange records the new memory cache size. It takes effect on restart.
func (e *WasmVMEngine) OnParamsChange(params types.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextMemoryCacheSize = params.MemoryCacheSize
	return nil
}

// NextMemoryCacheSize returns the cache size to use when the engine is restarted
func (e *WasmVMEngine) NextMemoryCacheSize() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextMemoryCacheSize
}

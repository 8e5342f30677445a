//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// runtimes holds one *Runtime per goroutine id.
var runtimes sync.Map

// GetRuntime returns the runtime of the calling goroutine. Rendering and
// the update lane scope are goroutine-local, so a component can only reach
// the dispatcher installed by the work loop running it.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r, _ := runtimes.LoadOrStore(gid, NewRuntime())
	return r.(*Runtime)
}

// releaseRuntime drops the runtime of the calling goroutine, along with any
// render state a panic left in it.
func releaseRuntime() {
	runtimes.Delete(goid.Get())
}

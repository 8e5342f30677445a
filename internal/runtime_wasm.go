//go:build wasm

package internal

import "sync"

// wasm runs every callback on the one event loop goroutine.
var sharedRuntime = sync.OnceValue(NewRuntime)

func GetRuntime() *Runtime {
	return sharedRuntime()
}

// releaseRuntime resets the shared runtime's render state in place.
func releaseRuntime() {
	*sharedRuntime() = Runtime{}
}

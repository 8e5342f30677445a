//go:build !wasm

package internal

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRuntime(t *testing.T) {
	t.Run("one runtime per goroutine", func(t *testing.T) {
		mine := GetRuntime()
		assert.Same(t, mine, GetRuntime())

		var other *Runtime
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			other = GetRuntime()
		}()
		wg.Wait()

		assert.NotSame(t, mine, other)
	})

	t.Run("a stopped loop hands back its runtime", func(t *testing.T) {
		before := GetRuntime()
		before.updateLane = TransitionLane1

		loop := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		loop.Post(cancel)
		assert.ErrorIs(t, loop.Run(ctx), context.Canceled)

		after := GetRuntime()
		assert.NotSame(t, before, after)
		assert.Equal(t, NoLane, after.UpdateLane())
	})
}

package intr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisableRestoreRoundTrip(t *testing.T) {
	var g Gate

	prev := g.Disable()
	require.False(t, prev)
	g.Restore(prev)

	prev = g.Disable()
	require.False(t, prev)
	g.Restore(true)

	prev = g.Disable()
	require.True(t, prev)
	g.Restore(prev)
}

func TestRestoreFromAnotherGoroutine(t *testing.T) {
	var g Gate
	prev := g.Disable()

	done := make(chan struct{})
	go func() {
		g.Restore(prev)
		close(done)
	}()
	<-done

	// Gate is usable again now that it has been restored/unlocked elsewhere.
	p2 := g.Disable()
	require.False(t, p2)
	g.Restore(p2)
}

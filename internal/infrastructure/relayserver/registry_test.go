package relayserver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAgentRegistryLastWriterWins(t *testing.T) {
	reg := NewAgentRegistry()
	first := newAgentChannel(nil)
	second := newAgentChannel(nil)

	reg.Register("app1", first)
	reg.Register("app1", second)

	got, ok := reg.Get("app1")
	require.True(t, ok)
	require.Same(t, second, got)
}

func TestAgentRegistryRemoveIfCurrentIgnoresStaleChannel(t *testing.T) {
	reg := NewAgentRegistry()
	first := newAgentChannel(nil)
	second := newAgentChannel(nil)

	reg.Register("app1", first)
	reg.Register("app1", second)

	// A stale cleanup for the displaced first channel must not erase
	// the newer registration.
	reg.RemoveIfCurrent("app1", first)
	got, ok := reg.Get("app1")
	require.True(t, ok)
	require.Same(t, second, got)

	reg.RemoveIfCurrent("app1", second)
	_, ok = reg.Get("app1")
	require.False(t, ok)
}

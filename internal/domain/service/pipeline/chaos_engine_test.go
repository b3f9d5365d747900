package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/protocol"
	"github.com/relaywarp/relaywarp/internal/rules"
)

func TestChaosEngineAppliesLatency(t *testing.T) {
	store := rules.NewChaosStore()
	store.Add(model.ChaosRule{Name: "slow", PathPattern: "/slow", Enabled: true, LatencyMs: 20})

	engine := NewChaosEngine(store)
	tc := newTestContext("GET", "/slow")

	start := time.Now()
	called := false
	err := engine.Handle(tc, func() error { called = true; return nil })
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.True(t, called)
	require.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	require.Equal(t, "slow", tc.AppliedChaosRule)
}

func TestChaosEngineInjectsErrorAtFullRate(t *testing.T) {
	store := rules.NewChaosStore()
	store.Add(model.ChaosRule{Name: "always-fail", PathPattern: "/flaky", Enabled: true, ErrorRate: 1, ErrorStatus: 503, ErrorBody: "nope"})

	engine := NewChaosEngine(store)
	tc := newTestContext("GET", "/flaky")

	called := false
	err := engine.Handle(tc, func() error { called = true; return nil })

	require.NoError(t, err)
	require.False(t, called)
	require.True(t, tc.IsHandled())
	require.Equal(t, 503, tc.StatusCode)
}

func TestChaosEngineSkipsDisabledRules(t *testing.T) {
	store := rules.NewChaosStore()
	store.Add(model.ChaosRule{Name: "disabled", PathPattern: "/flaky", Enabled: false, ErrorRate: 1})

	engine := NewChaosEngine(store)
	tc := newTestContext("GET", "/flaky")

	called := false
	require.NoError(t, engine.Handle(tc, func() error { called = true; return nil }))
	require.True(t, called)
	require.False(t, tc.IsHandled())
}

func TestChaosEngineLatencyHonorsCancellation(t *testing.T) {
	store := rules.NewChaosStore()
	store.Add(model.ChaosRule{Name: "slow", PathPattern: "/slow", Enabled: true, LatencyMs: 5000})

	engine := NewChaosEngine(store)
	ctx, cancel := context.WithCancel(context.Background())
	tc := model.NewTunnelContext(ctx, protocol.NewRequestId(), "GET", "/slow", nil, nil, false)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := engine.Handle(tc, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

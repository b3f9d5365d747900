package pipeline

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/rules"
)

func TestPipelineMockPrecedesChaos(t *testing.T) {
	mocks := rules.NewMockStore()
	mocks.Add(model.MockRule{Name: "mocked", PathPattern: "/api/users", Enabled: true, StatusCode: 200, Body: "mocked"})

	chaos := rules.NewChaosStore()
	chaos.Add(model.ChaosRule{Name: "always-fail", PathPattern: "/api/users", Enabled: true, ErrorRate: 1, ErrorStatus: 503})

	routing := rules.NewRoutingStore()

	p := New(
		NewMockEngine(mocks),
		NewChaosEngine(chaos),
		NewRequestRouter(routing, 3000),
		NewLocalForwarder(),
	)

	tc := newTestContext("GET", "/api/users")
	require.NoError(t, p.Run(tc))

	require.Equal(t, 200, tc.StatusCode)
	require.Equal(t, "mocked", tc.AppliedMockRule)
	require.Empty(t, tc.AppliedChaosRule)
}

func TestPipelineRunsAllFourStagesWhenNothingShortCircuits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	mocks := rules.NewMockStore()
	chaosStore := rules.NewChaosStore()
	routing := rules.NewRoutingStore()
	routing.Add(model.RoutingRule{Name: "to-server", PathPattern: "/*", TargetBaseURL: server.URL, Priority: 0, Enabled: true})

	p := New(
		NewMockEngine(mocks),
		NewChaosEngine(chaosStore),
		NewRequestRouter(routing, 3000),
		NewLocalForwarder(),
	)

	tc := newTestContext("GET", "/anything")
	require.NoError(t, p.Run(tc))
	require.Equal(t, http.StatusTeapot, tc.StatusCode)
}

func TestPipelineChaosShortCircuitBypassesRouterAndForwarder(t *testing.T) {
	mocks := rules.NewMockStore()
	chaosStore := rules.NewChaosStore()
	chaosStore.Add(model.ChaosRule{Name: "fail", PathPattern: "/*", Enabled: true, ErrorRate: 1, ErrorStatus: 503, ErrorBody: "down"})
	routing := rules.NewRoutingStore()

	p := New(
		NewMockEngine(mocks),
		NewChaosEngine(chaosStore),
		NewRequestRouter(routing, 3000),
		NewLocalForwarder(),
	)

	tc := newTestContext("GET", "/anything")
	require.NoError(t, p.Run(tc))
	require.Equal(t, 503, tc.StatusCode)
	require.Empty(t, tc.TargetURL)
}

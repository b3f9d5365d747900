// Package integration wires a real Relay server and a real Agent
// transport client together over an in-process httptest server and a
// genuine websocket connection, exercising the duplex channel and the
// request pipeline end to end the way spec.md's §8 scenarios describe.
package integration

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/service/pipeline"
	"github.com/relaywarp/relaywarp/internal/infrastructure/agentclient"
	"github.com/relaywarp/relaywarp/internal/infrastructure/logger"
	"github.com/relaywarp/relaywarp/internal/infrastructure/relayserver"
	"github.com/relaywarp/relaywarp/internal/rules"
)

func newLogger() *logger.Logger {
	return logger.New(bytes.NewBuffer(nil), "error", logger.FormatText)
}

// startRelay returns an httptest server exposing both the tunnel intake
// endpoint and the public front on the same mux (the relay's two real
// addresses collapse onto one in this test, which is transparent to
// both handlers).
func startRelay(t *testing.T) (*httptest.Server, *relayserver.Server) {
	t.Helper()
	server := relayserver.New(newLogger(), time.Second)
	mux := http.NewServeMux()
	mux.Handle("/tunnel", server.TunnelHandler())
	mux.Handle("/", server.PublicHandler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, server
}

// connectAgent dials the relay's tunnel endpoint under agentId and
// pumps frames in the background until the test ends.
func connectAgent(t *testing.T, relayHTTPURL, agentId string, p *pipeline.Pipeline, reqLog *rules.RequestLog) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(relayHTTPURL, "http")
	client := agentclient.New(wsURL, agentId, p, reqLog, newLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go client.Run(ctx)

	// Give the dial a moment to land before the test issues requests.
	time.Sleep(100 * time.Millisecond)
}

func TestMockShortCircuitEndToEnd(t *testing.T) {
	relaySrv, _ := startRelay(t)

	mockStore := rules.NewMockStore()
	mockStore.Add(model.MockRule{
		Name:        "users",
		PathPattern: "/api/users",
		Enabled:     true,
		StatusCode:  200,
		ContentType: "application/json",
		Body:        "[]",
	})
	chaosStore := rules.NewChaosStore()
	routingStore := rules.NewRoutingStore()
	reqLog := rules.NewRequestLog(model.RequestLogCapacity)

	p := pipeline.New(
		pipeline.NewMockEngine(mockStore),
		pipeline.NewChaosEngine(chaosStore),
		pipeline.NewRequestRouter(routingStore, 1), // no local service listens on :1
		pipeline.NewLocalForwarder(),
	)

	connectAgent(t, relaySrv.URL, "app1", p, reqLog)

	req, err := http.NewRequest(http.MethodGet, relaySrv.URL+"/api/users", nil)
	require.NoError(t, err)
	req.Host = "app1.tunnels.example"

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, "[]", string(body))

	require.Eventually(t, func() bool { return reqLog.Len() == 1 }, time.Second, 10*time.Millisecond)
	entries := reqLog.List(1)
	require.Equal(t, "users", entries[0].AppliedMockRule)
}

func TestUnknownAgentEndToEnd(t *testing.T) {
	relaySrv, _ := startRelay(t)

	req, err := http.NewRequest(http.MethodGet, relaySrv.URL+"/anything", nil)
	require.NoError(t, err)
	req.Host = "ghost.tunnels.example"

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLandingPageForUnaddressedHost(t *testing.T) {
	relaySrv, _ := startRelay(t)

	req, err := http.NewRequest(http.MethodGet, relaySrv.URL+"/", nil)
	require.NoError(t, err)
	req.Host = "localhost"

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}

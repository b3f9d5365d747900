package pipeline

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalForwarderForwardsRequestAndResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users", r.URL.Path)
		require.Equal(t, "bar", r.Header.Get("X-Foo"))
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, "payload", string(body))

		w.Header().Set("X-Upstream", "yes")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created":true}`))
	}))
	defer server.Close()

	tc := newTestContext("POST", "/api/users")
	tc.RequestHeaders.Set("X-Foo", "bar")
	tc.RequestHeaders.Set("Connection", "keep-alive")
	tc.RequestBody = []byte("payload")
	tc.HasBody = true
	tc.TargetURL = server.URL + "/api/users"

	forwarder := NewLocalForwarder()
	require.NoError(t, forwarder.Handle(tc, func() error { return nil }))

	require.Equal(t, http.StatusCreated, tc.StatusCode)
	require.Equal(t, "application/json", tc.ContentType)
	require.Equal(t, "yes", tc.ResponseHeaders.Get("X-Upstream"))
	require.Empty(t, tc.ResponseHeaders.Get("Content-Type"))

	body, _ := io.ReadAll(tc.ResponseBody)
	require.Equal(t, `{"created":true}`, string(body))
}

func TestLocalForwarderReturnsBadGatewayOnConnectFailure(t *testing.T) {
	tc := newTestContext("GET", "/api/users")
	tc.TargetURL = "http://127.0.0.1:1" // nothing listens here

	forwarder := NewLocalForwarder()
	require.NoError(t, forwarder.Handle(tc, func() error { return nil }))

	require.Equal(t, http.StatusBadGateway, tc.StatusCode)
	require.Equal(t, "text/plain", tc.ContentType)
	require.Empty(t, tc.ResponseHeaders)

	body, _ := io.ReadAll(tc.ResponseBody)
	require.Contains(t, string(body), "Bad Gateway")
}

func TestLocalForwarderDropsHopByHopHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Proxy-Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tc := newTestContext("GET", "/x")
	tc.RequestHeaders.Set("Proxy-Authorization", "secret")
	tc.TargetURL = server.URL + "/x"

	forwarder := NewLocalForwarder()
	require.NoError(t, forwarder.Handle(tc, func() error { return nil }))
	require.Equal(t, http.StatusOK, tc.StatusCode)
}

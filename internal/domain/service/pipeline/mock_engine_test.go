package pipeline

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/protocol"
	"github.com/relaywarp/relaywarp/internal/rules"
)

func newTestContext(method, path string) *model.TunnelContext {
	return model.NewTunnelContext(context.Background(), protocol.NewRequestId(), method, path, http.Header{}, nil, false)
}

func TestMockEngineShortCircuitsOnMatch(t *testing.T) {
	store := rules.NewMockStore()
	store.Add(model.MockRule{Name: "users", PathPattern: "/api/users", Enabled: true, StatusCode: 201, ContentType: "application/json", Body: `{"ok":true}`})

	engine := NewMockEngine(store)
	tc := newTestContext("GET", "/api/users")

	called := false
	err := engine.Handle(tc, func() error { called = true; return nil })

	require.NoError(t, err)
	require.False(t, called)
	require.True(t, tc.IsHandled())
	require.Equal(t, 201, tc.StatusCode)
	require.Equal(t, "users", tc.AppliedMockRule)

	body, _ := io.ReadAll(tc.ResponseBody)
	require.Equal(t, `{"ok":true}`, string(body))
}

func TestMockEngineFallsThroughWhenDisabledOrNoMatch(t *testing.T) {
	store := rules.NewMockStore()
	store.Add(model.MockRule{Name: "disabled", PathPattern: "/api/users", Enabled: false})
	store.Add(model.MockRule{Name: "other-path", PathPattern: "/other", Enabled: true})

	engine := NewMockEngine(store)
	tc := newTestContext("GET", "/api/users")

	called := false
	err := engine.Handle(tc, func() error { called = true; return nil })

	require.NoError(t, err)
	require.True(t, called)
	require.False(t, tc.IsHandled())
}

func TestMockEngineRespectsMethodFilter(t *testing.T) {
	store := rules.NewMockStore()
	post := "POST"
	store.Add(model.MockRule{Name: "post-only", PathPattern: "/api/users", Enabled: true, Method: &post})

	engine := NewMockEngine(store)
	tc := newTestContext("GET", "/api/users")

	called := false
	require.NoError(t, engine.Handle(tc, func() error { called = true; return nil }))
	require.True(t, called)
	require.False(t, tc.IsHandled())
}

// Package relayserver implements the Relay side of the tunnel: the
// agent duplex-channel intake loop and the public HTTP front that
// dispatches requests into it and streams the responses back.
package relayserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relaywarp/relaywarp/internal/domain/port"
)

// defaultRequestDeadline is used when New is called with a
// non-positive deadline.
const defaultRequestDeadline = 30 * time.Second

// Server owns the Agent Registry and the two HTTP surfaces (agent
// intake and public front) that share it.
type Server struct {
	logger          port.Logger
	registry        *AgentRegistry
	pending         *pendingRequestMap
	active          *activeChannelMap
	upgrader        websocket.Upgrader
	requestDeadline time.Duration
}

// New builds a Server whose pending public requests wait up to
// requestDeadline for a response before failing with 504.
func New(logger port.Logger, requestDeadline time.Duration) *Server {
	if requestDeadline <= 0 {
		requestDeadline = defaultRequestDeadline
	}
	return &Server{
		logger:          logger,
		registry:        NewAgentRegistry(),
		pending:         newPendingRequestMap(),
		active:          newActiveChannelMap(),
		requestDeadline: requestDeadline,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// TunnelHandler returns the http.Handler for the agent duplex-channel
// upgrade endpoint (mounted at /tunnel).
func (s *Server) TunnelHandler() http.Handler {
	return http.HandlerFunc(s.handleTunnel)
}

// PublicHandler returns the http.Handler for the public HTTP front.
func (s *Server) PublicHandler() http.Handler {
	return http.HandlerFunc(s.handlePublic)
}

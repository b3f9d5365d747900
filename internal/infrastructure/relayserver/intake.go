package relayserver

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/relaywarp/relaywarp/internal/protocol"
)

// handleTunnel upgrades one Agent's duplex channel and pumps its frames
// until the connection closes or errors.
func (s *Server) handleTunnel(w http.ResponseWriter, r *http.Request) {
	agentId := r.URL.Query().Get("clientId")
	if agentId == "" {
		http.Error(w, "missing clientId", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("relayserver: upgrade failed for %q: %v", agentId, err)
		return
	}

	channel := newAgentChannel(conn)
	s.registry.Register(agentId, channel)
	s.logger.Info("agent %q connected", agentId)
	defer func() {
		s.registry.RemoveIfCurrent(agentId, channel)
		conn.Close()
		s.logger.Info("agent %q disconnected", agentId)
	}()

	s.readAgentLoop(agentId, conn)
}

func (s *Server) readAgentLoop(agentId string, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("relayserver: agent %q read loop ended: %v", agentId, err)
			return
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			s.logger.Warn("relayserver: malformed frame from agent %q dropped: %v", agentId, err)
			continue
		}

		switch f := frame.(type) {
		case *protocol.HeartbeatFrame:
			// Presence alone is enough; nothing to act on.

		case *protocol.RespHeaderFrame:
			active := newActiveResponseChannel()
			s.active.store(f.ID, active)
			if pending, ok := s.pending.get(f.ID); ok {
				pending.headerCh <- headerDelivery{header: f, active: active}
			} else {
				// The public handler already gave up on this id
				// (e.g. it hit its deadline); nobody will ever
				// drain this queue through streamResponse.
				go active.drain()
			}

		case *protocol.RespBodyChunkFrame:
			if active, ok := s.active.get(f.ID); ok {
				active.enqueue(f.Chunk)
			}

		case *protocol.RespEOFFrame:
			if active, ok := s.active.get(f.ID); ok {
				s.active.delete(f.ID)
				active.closeWriter()
			}
		}
	}
}

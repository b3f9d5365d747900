package relayserver

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// agentChannel is one connected Agent's duplex channel: the underlying
// websocket connection plus the mutex that serializes all writes to it,
// since the transport does not permit concurrent sends from multiple
// producers.
type agentChannel struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newAgentChannel(conn *websocket.Conn) *agentChannel {
	return &agentChannel{conn: conn}
}

// send writes one logical message to the channel, serialized through
// writeMu.
func (a *agentChannel) send(data []byte) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if err := a.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("relayserver: send to agent: %w", err)
	}
	return nil
}

// AgentRegistry maps agent-id to its open duplex channel. Registration
// is last-writer-wins: a second Agent connecting under an id already in
// use displaces the first, whose entry becomes orphaned until its read
// loop notices the closed connection.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string]*agentChannel
}

// NewAgentRegistry builds an empty AgentRegistry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]*agentChannel)}
}

// Register installs channel under agentId, overwriting any prior entry.
func (r *AgentRegistry) Register(agentId string, channel *agentChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agentId] = channel
}

// Get returns the channel registered for agentId, if any.
func (r *AgentRegistry) Get(agentId string) (*agentChannel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.agents[agentId]
	return ch, ok
}

// RemoveIfCurrent removes agentId's registration, but only if it is
// still the exact channel passed in — otherwise a newer registration
// would be erased by a stale cleanup from a displaced connection.
func (r *AgentRegistry) RemoveIfCurrent(agentId string, channel *agentChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.agents[agentId]; ok && current == channel {
		delete(r.agents, agentId)
	}
}

package relayserver

import (
	"sync"

	"github.com/relaywarp/relaywarp/internal/protocol"
)

const activeChannelCapacity = 256

// headerDelivery carries a response-header frame together with the
// activeResponseChannel the read loop already created for it, so the
// consumer never has to look the channel back up by id — a lookup that
// can race the same read loop deleting it on response-EOF.
type headerDelivery struct {
	header *protocol.RespHeaderFrame
	active *activeResponseChannel
}

// pendingRequest is the Relay-side record awaiting one response-header
// frame for a RequestId it dispatched to an Agent. headerCh is buffered
// to 1 since at most one response-header frame is ever delivered per id.
type pendingRequest struct {
	headerCh chan headerDelivery
}

func newPendingRequest() *pendingRequest {
	return &pendingRequest{headerCh: make(chan headerDelivery, 1)}
}

// activeResponseChannel is the ordered queue of response body chunks for
// one RequestId, open between its response-header and response-EOF
// frames. The channel is bounded; Enqueue blocks when full, applying
// back-pressure rather than dropping bytes.
type activeResponseChannel struct {
	chunks chan []byte
}

func newActiveResponseChannel() *activeResponseChannel {
	return &activeResponseChannel{chunks: make(chan []byte, activeChannelCapacity)}
}

func (a *activeResponseChannel) enqueue(chunk []byte) {
	a.chunks <- chunk
}

func (a *activeResponseChannel) closeWriter() {
	close(a.chunks)
}

// drain discards remaining chunks until the channel closes. Used when
// nobody will ever call streamResponse for this id (the public handler
// already gave up), so the agent read loop's enqueue doesn't block
// forever on a full, unread queue.
func (a *activeResponseChannel) drain() {
	for range a.chunks {
	}
}

// pendingRequestMap and activeChannelMap are the Relay's two per-request
// bookkeeping tables, guarded independently since they are read and
// written from different goroutines (the public HTTP handler and each
// agent's read loop).
type pendingRequestMap struct {
	mu    sync.Mutex
	items map[protocol.RequestId]*pendingRequest
}

func newPendingRequestMap() *pendingRequestMap {
	return &pendingRequestMap{items: make(map[protocol.RequestId]*pendingRequest)}
}

func (m *pendingRequestMap) store(id protocol.RequestId, p *pendingRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = p
}

func (m *pendingRequestMap) get(id protocol.RequestId) (*pendingRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	return p, ok
}

func (m *pendingRequestMap) delete(id protocol.RequestId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
}

type activeChannelMap struct {
	mu    sync.Mutex
	items map[protocol.RequestId]*activeResponseChannel
}

func newActiveChannelMap() *activeChannelMap {
	return &activeChannelMap{items: make(map[protocol.RequestId]*activeResponseChannel)}
}

func (m *activeChannelMap) store(id protocol.RequestId, a *activeResponseChannel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = a
}

func (m *activeChannelMap) get(id protocol.RequestId) (*activeResponseChannel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	return a, ok
}

func (m *activeChannelMap) delete(id protocol.RequestId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
}

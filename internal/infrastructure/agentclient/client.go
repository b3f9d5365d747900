// Package agentclient implements the Agent side of the duplex channel:
// connect/reconnect supervision, heartbeats, frame assembly of incoming
// requests, and per-request pipeline dispatch with response re-framing.
package agentclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/port"
	"github.com/relaywarp/relaywarp/internal/domain/service/pipeline"
	"github.com/relaywarp/relaywarp/internal/protocol"
	"github.com/relaywarp/relaywarp/internal/rules"
)

const (
	reconnectDelay   = 3 * time.Second
	heartbeatPeriod  = 5 * time.Second
	keepAlivePeriod  = 15 * time.Second
	responseChunkLen = 16 * 1024
)

// Client is the Agent's transport supervisor: it owns the single duplex
// channel to the Relay and dispatches assembled requests into the
// Pipeline.
type Client struct {
	relayURL string
	agentId  string
	logger   port.Logger
	pipeline *pipeline.Pipeline
	reqLog   *rules.RequestLog

	writeMu sync.Mutex
	conn    *websocket.Conn

	incomingMu sync.Mutex
	incoming   map[protocol.RequestId]*incomingRequest
}

// New builds a Client that will dial relayURL (a ws:// or wss:// base
// URL for the Relay's tunnel endpoint) under agentId, dispatch assembled
// requests into p, and log each completed request to reqLog.
func New(relayURL, agentId string, p *pipeline.Pipeline, reqLog *rules.RequestLog, logger port.Logger) *Client {
	return &Client{
		relayURL: relayURL,
		agentId:  agentId,
		pipeline: p,
		reqLog:   reqLog,
		logger:   logger,
		incoming: make(map[protocol.RequestId]*incomingRequest),
	}
}

// Run is the supervisor loop: connect, pump until the channel closes or
// ctx is cancelled, sleep, retry. It returns only when ctx is done.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.connectAndPump(ctx); err != nil {
			c.logger.Warn("agent transport: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) connectAndPump(ctx context.Context) error {
	dialURL, err := c.dialURL()
	if err != nil {
		return fmt.Errorf("agentclient: build dial URL: %w", err)
	}

	c.logger.Info("connecting to relay at %s", dialURL)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, dialURL, nil)
	if err != nil {
		return fmt.Errorf("agentclient: dial: %w", err)
	}
	defer conn.Close()

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	c.logger.Info("connected to relay as %q", c.agentId)

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.heartbeatLoop(pumpCtx)
	}()

	err = c.readLoop(pumpCtx, conn)
	cancel()
	wg.Wait()

	c.writeMu.Lock()
	c.conn = nil
	c.writeMu.Unlock()
	return err
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.relayURL)
	if err != nil {
		return "", err
	}
	u.Path = "/tunnel"
	q := u.Query()
	q.Set("clientId", c.agentId)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The ws ping is what actually keeps readLoop's deadline
			// alive: the relay auto-pongs it, which fires our
			// PongHandler. The heartbeat frame is presence at the
			// application level and elicits no pong on its own.
			if err := c.sendPing(); err != nil {
				c.logger.Warn("agentclient: keep-alive ping failed: %v", err)
				return
			}
			if err := c.send(protocol.EncodeHeartbeat()); err != nil {
				c.logger.Warn("agentclient: heartbeat send failed: %v", err)
				return
			}
		}
	}
}

// sendPing writes a websocket ping control frame, serialized through the
// same write mutex as ordinary messages so the two never race on conn.
func (c *Client) sendPing() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("agentclient: not connected")
	}
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(keepAlivePeriod * 2))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(keepAlivePeriod * 2))
	})

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("agentclient: read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(keepAlivePeriod * 2))

		frame, err := protocol.Decode(data)
		if err != nil {
			c.logger.Warn("agentclient: malformed frame dropped: %v", err)
			continue
		}
		c.handleFrame(ctx, frame)
	}
}

func (c *Client) handleFrame(ctx context.Context, frame protocol.Frame) {
	switch f := frame.(type) {
	case *protocol.HeartbeatFrame:
		// Peer heartbeat; presence alone keeps the read deadline alive.
	case *protocol.ReqHeaderFrame:
		c.incomingMu.Lock()
		entry := &incomingRequest{Method: f.Meta.Method, Path: f.Meta.Path, Headers: f.Meta.Headers, HasBody: f.Meta.HasBody}
		if entry.HasBody {
			entry.Body = &bytes.Buffer{}
		}
		c.incoming[f.ID] = entry
		c.incomingMu.Unlock()
	case *protocol.ReqBodyChunkFrame:
		c.incomingMu.Lock()
		entry := c.incoming[f.ID]
		c.incomingMu.Unlock()
		if entry == nil || entry.Body == nil {
			return
		}
		entry.Body.Write(f.Chunk)
	case *protocol.ReqEOFFrame:
		c.incomingMu.Lock()
		entry := c.incoming[f.ID]
		delete(c.incoming, f.ID)
		c.incomingMu.Unlock()
		if entry == nil {
			return
		}
		go c.dispatch(ctx, f.ID, entry)
	}
}

// dispatch runs one assembled incoming request through the Pipeline and
// re-frames whatever the pipeline produced back to the Relay. It runs on
// its own goroutine so the read loop keeps accepting frames for other
// request-ids while this one is still being served.
func (c *Client) dispatch(ctx context.Context, id protocol.RequestId, entry *incomingRequest) {
	headers := http.Header{}
	for k, v := range entry.Headers {
		headers.Set(k, v)
	}

	var body []byte
	if entry.Body != nil {
		body = entry.Body.Bytes()
	}

	tc := model.NewTunnelContext(ctx, id, entry.Method, entry.Path, headers, body, entry.HasBody)
	if err := c.pipeline.Run(tc); err != nil {
		c.logger.Warn("agentclient: pipeline error for %s %s: %v", entry.Method, entry.Path, err)
		return
	}

	c.recordLogEntry(tc, entry)

	if err := c.writeResponse(id, tc); err != nil {
		c.logger.Warn("agentclient: failed writing response for %s: %v", id, err)
	}
}

func (c *Client) recordLogEntry(tc *model.TunnelContext, entry *incomingRequest) {
	if c.reqLog == nil {
		return
	}

	preview := ""
	bodyLen := 0
	if entry.Body != nil {
		bodyLen = entry.Body.Len()
		n := bodyLen
		if n > model.BodyPreviewLimit {
			n = model.BodyPreviewLimit
		}
		preview = string(entry.Body.Bytes()[:n])
	}

	flatHeaders := make(map[string]string, len(entry.Headers))
	for k, v := range entry.Headers {
		flatHeaders[k] = v
	}

	c.reqLog.Append(model.RequestLogEntry{
		RequestId:          tc.RequestId.String(),
		Timestamp:          time.Now(),
		Method:             tc.Method,
		Path:               tc.Path,
		StatusCode:         tc.StatusCode,
		DurationMs:         tc.Elapsed().Milliseconds(),
		AppliedChaosRule:   tc.AppliedChaosRule,
		AppliedMockRule:    tc.AppliedMockRule,
		TargetURL:          tc.TargetURL,
		RequestHeaders:     flatHeaders,
		RequestBodyPreview: preview,
		RequestBodyLength:  bodyLen,
		ResponseHeaders:    map[string][]string(tc.ResponseHeaders),
	})
}

// writeResponse re-frames a completed TunnelContext's response into a
// response-header frame, zero or more 16 KiB response-body-chunk frames,
// and a response-EOF frame, serialized through the single send mutex.
func (c *Client) writeResponse(id protocol.RequestId, tc *model.TunnelContext) error {
	headerFrame, err := protocol.EncodeRespHeader(id, tc.StatusCode, tc.ContentType, map[string][]string(tc.ResponseHeaders))
	if err != nil {
		return fmt.Errorf("agentclient: encode response header: %w", err)
	}
	if err := c.send(headerFrame); err != nil {
		return err
	}

	body := tc.ResponseBody
	if body == nil {
		body = bytes.NewReader(nil)
	}
	if closer, ok := body.(io.Closer); ok {
		defer closer.Close()
	}

	buf := make([]byte, responseChunkLen)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if err := c.send(protocol.EncodeRespBodyChunk(id, buf[:n])); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			c.logger.Warn("agentclient: error reading response body for %s: %v", id, readErr)
			break
		}
	}

	return c.send(protocol.EncodeRespEOF(id))
}

// send writes one logical message to the duplex channel, serialized
// through the per-channel write mutex.
func (c *Client) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("agentclient: not connected")
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

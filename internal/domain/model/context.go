package model

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/relaywarp/relaywarp/internal/protocol"
)

// DefaultContentType is the response content-type a TunnelContext starts
// with before any pipeline stage sets one explicitly.
const DefaultContentType = "application/octet-stream"

// DefaultStatusCode is the response status a TunnelContext starts with.
const DefaultStatusCode = 200

// TunnelContext is the per-request mutable record threaded through the
// Agent's four-stage pipeline. It is constructed once per incoming
// request and discarded after the pipeline completes.
type TunnelContext struct {
	ctx context.Context

	RequestId protocol.RequestId
	Method    string
	Path      string

	// RequestHeaders is case-insensitive via http.Header's canonicalization.
	RequestHeaders http.Header
	RequestBody    []byte
	HasBody        bool

	TargetURL string

	StatusCode      int
	ContentType     string
	ResponseBody    io.Reader
	ResponseHeaders http.Header

	isHandled bool

	AppliedChaosRule string
	AppliedMockRule  string

	startedAt time.Time
}

// NewTunnelContext builds a TunnelContext for one incoming request,
// starting its elapsed-time clock.
func NewTunnelContext(ctx context.Context, id protocol.RequestId, method, path string, headers http.Header, body []byte, hasBody bool) *TunnelContext {
	if headers == nil {
		headers = http.Header{}
	}
	return &TunnelContext{
		ctx:             ctx,
		RequestId:       id,
		Method:          method,
		Path:            path,
		RequestHeaders:  headers,
		RequestBody:     body,
		HasBody:         hasBody,
		StatusCode:      DefaultStatusCode,
		ContentType:     DefaultContentType,
		ResponseHeaders: http.Header{},
		startedAt:       time.Now(),
	}
}

// Context returns the cancellation context for this request's pipeline
// invocation.
func (c *TunnelContext) Context() context.Context { return c.ctx }

// IsHandled reports whether a stage has already short-circuited the pipeline.
func (c *TunnelContext) IsHandled() bool { return c.isHandled }

// MarkHandled short-circuits the remaining pipeline stages.
func (c *TunnelContext) MarkHandled() { c.isHandled = true }

// Elapsed returns the time since the context was constructed.
func (c *TunnelContext) Elapsed() time.Duration { return time.Since(c.startedAt) }

package agentclient

import "bytes"

// incomingRequest accumulates one Relay->Agent request as its frames
// arrive, keyed by RequestId in the Client's incoming map. It is created
// by a request-header frame, appended to by body-chunk frames, and
// consumed on the request-EOF frame.
type incomingRequest struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    *bytes.Buffer
	HasBody bool
}

package relayserver

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/relaywarp/relaywarp/internal/protocol"
)

const requestChunkLen = 16 * 1024

var requestHopByHopHeaders = map[string]bool{
	"Host":              true,
	"Transfer-Encoding": true,
}

var responseHopByHopHeaders = map[string]bool{
	"Content-Type":      true,
	"Transfer-Encoding": true,
}

// handlePublic is the public HTTP entry point: it selects an agent by
// host, frames the request over that agent's duplex channel, and
// streams back whatever the Agent answers.
func (s *Server) handlePublic(w http.ResponseWriter, r *http.Request) {
	label := firstLabel(r.Host)
	if isUnaddressed(label) {
		serveLanding(w)
		return
	}

	channel, ok := s.registry.Get(label)
	if !ok {
		http.Error(w, "tunnel offline", http.StatusNotFound)
		return
	}

	id := protocol.NewRequestId()
	pending := newPendingRequest()
	s.pending.store(id, pending)

	if err := s.dispatchRequest(channel, id, r); err != nil {
		s.pending.delete(id)
		s.logger.Warn("relayserver: dispatch to agent %q failed: %v", label, err)
		http.Error(w, "tunnel offline", http.StatusBadGateway)
		return
	}

	select {
	case delivery := <-pending.headerCh:
		s.pending.delete(id)
		s.streamResponse(w, delivery.active, delivery.header)

	case <-time.After(s.requestDeadline):
		s.pending.delete(id)
		if active, ok := s.active.get(id); ok {
			s.active.delete(id)
			// A response may still land after we've given up; drain
			// it so the agent's read loop never blocks on enqueue.
			go active.drain()
		}
		http.Error(w, "Gateway Timeout", http.StatusGatewayTimeout)
	}
}

func (s *Server) dispatchRequest(channel *agentChannel, id protocol.RequestId, r *http.Request) error {
	headers := map[string]string{}
	for name, values := range r.Header {
		if requestHopByHopHeaders[name] {
			continue
		}
		headers[name] = strings.Join(values, ", ")
	}
	hasBody := r.ContentLength > 0 || r.Header.Get("Transfer-Encoding") != ""

	meta := protocol.ReqHeaderMeta{Method: r.Method, Path: r.URL.RequestURI(), Headers: headers, HasBody: hasBody}
	headerFrame, err := protocol.EncodeReqHeader(id, meta)
	if err != nil {
		return err
	}
	if err := channel.send(headerFrame); err != nil {
		return err
	}

	if hasBody && r.Body != nil {
		buf := make([]byte, requestChunkLen)
		for {
			n, readErr := r.Body.Read(buf)
			if n > 0 {
				if err := channel.send(protocol.EncodeReqBodyChunk(id, buf[:n])); err != nil {
					return err
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return readErr
			}
		}
	}

	return channel.send(protocol.EncodeReqEOF(id))
}

func (s *Server) streamResponse(w http.ResponseWriter, active *activeResponseChannel, header *protocol.RespHeaderFrame) {
	for name, values := range header.Headers {
		if responseHopByHopHeaders[name] {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("Content-Type", header.ContentType)
	w.WriteHeader(header.Status)

	flusher, _ := w.(http.Flusher)

	for chunk := range active.chunks {
		_, _ = w.Write(chunk)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

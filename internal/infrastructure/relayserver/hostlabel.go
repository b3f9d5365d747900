package relayserver

import (
	"net"
	"strings"
)

// firstLabel extracts the agent-id from an HTTP Host header: the first
// dot-separated segment, with any port suffix stripped first.
func firstLabel(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}

// isUnaddressed reports whether label selects no agent: a numeric-leading
// label or the literal "localhost".
func isUnaddressed(label string) bool {
	if label == "" || label == "localhost" {
		return true
	}
	return label[0] >= '0' && label[0] <= '9'
}

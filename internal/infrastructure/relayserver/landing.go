package relayserver

import (
	"fmt"
	"net/http"
)

// serveLanding answers requests that did not address a specific agent
// (numeric-leading host label or literal "localhost") with a minimal
// explanatory page.
func serveLanding(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>relaywarp</title></head>
<body>
<h1>relaywarp</h1>
<p>This is a relaywarp relay. To reach a tunnel, use the subdomain assigned
to your agent, e.g. <code>https://&lt;agent-id&gt;.%s</code>.</p>
</body>
</html>
`, "your-relay-host")
}

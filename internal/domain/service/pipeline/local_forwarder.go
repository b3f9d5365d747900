package pipeline

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/relaywarp/relaywarp/internal/domain/model"
)

// localForwarderTimeout bounds one outbound attempt to the local target.
const localForwarderTimeout = 30 * time.Second

// hopByHopHeaders are dropped before forwarding, per RFC 7230 §6.1 and
// the spec's explicit list.
var hopByHopHeaders = []string{
	"Connection", "Keep-Alive", "Transfer-Encoding", "Upgrade", "TE",
}

// LocalForwarder performs the outbound HTTP call to TargetURL and
// populates the context's response fields from whatever comes back. It
// is the last pipeline stage and never calls next.
type LocalForwarder struct {
	client *http.Client
}

// NewLocalForwarder builds a LocalForwarder with the spec's 30-second
// per-attempt timeout.
func NewLocalForwarder() *LocalForwarder {
	return &LocalForwarder{client: &http.Client{Timeout: localForwarderTimeout}}
}

func (*LocalForwarder) Name() string { return "LocalForwarder" }

func (f *LocalForwarder) Handle(tc *model.TunnelContext, _ Next) error {
	var body *bytes.Reader
	if tc.HasBody {
		body = bytes.NewReader(tc.RequestBody)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(tc.Context(), tc.Method, tc.TargetURL, body)
	if err != nil {
		f.badGateway(tc, err)
		return nil
	}

	for name, values := range tc.RequestHeaders {
		if isHopByHop(name) {
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.badGateway(tc, err)
		return nil
	}

	tc.StatusCode = resp.StatusCode
	tc.ContentType = resp.Header.Get("Content-Type")
	if tc.ContentType == "" {
		tc.ContentType = model.DefaultContentType
	}
	tc.ResponseBody = resp.Body

	headers := resp.Header.Clone()
	headers.Del("Content-Type")
	tc.ResponseHeaders = headers

	return nil
}

func (f *LocalForwarder) badGateway(tc *model.TunnelContext, err error) {
	tc.StatusCode = http.StatusBadGateway
	tc.ContentType = "text/plain"
	tc.ResponseBody = bytes.NewReader([]byte(fmt.Sprintf("Bad Gateway: %s", err)))
	tc.ResponseHeaders = http.Header{}
}

func isHopByHop(name string) bool {
	if strings.HasPrefix(strings.ToLower(name), "proxy-") {
		return true
	}
	for _, h := range hopByHopHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

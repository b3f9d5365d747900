package pipeline

import (
	"fmt"
	"strings"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/port"
	"github.com/relaywarp/relaywarp/internal/domain/service/pathmatch"
)

// RequestRouter resolves TargetUrl from the first enabled routing rule
// (sorted by ascending priority) whose path pattern matches, falling
// back to the configured local port. It never short-circuits.
type RequestRouter struct {
	rules           port.RoutingRuleReader
	defaultLocalURL string
}

// NewRequestRouter builds a RequestRouter. defaultLocalPort backs
// requests with no matching routing rule.
func NewRequestRouter(rules port.RoutingRuleReader, defaultLocalPort int) *RequestRouter {
	return &RequestRouter{
		rules:           rules,
		defaultLocalURL: fmt.Sprintf("http://localhost:%d", defaultLocalPort),
	}
}

func (*RequestRouter) Name() string { return "RequestRouter" }

func (r *RequestRouter) Handle(tc *model.TunnelContext, next Next) error {
	for _, rule := range r.rules.ListByPriority() {
		if !rule.Enabled {
			continue
		}
		if !pathmatch.Match(rule.PathPattern, tc.Path) {
			continue
		}
		base := strings.TrimSuffix(rule.TargetBaseURL, "/")
		tc.TargetURL = base + tc.Path
		return next()
	}
	tc.TargetURL = r.defaultLocalURL + tc.Path
	return next()
}

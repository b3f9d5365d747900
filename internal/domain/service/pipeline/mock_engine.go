package pipeline

import (
	"bytes"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/port"
	"github.com/relaywarp/relaywarp/internal/domain/service/pathmatch"
)

// MockEngine scans mock rules in insertion order and, on the first
// enabled match, answers with the rule's canned response and
// short-circuits the pipeline.
type MockEngine struct {
	rules port.MockRuleReader
}

// NewMockEngine builds a MockEngine reading from rules.
func NewMockEngine(rules port.MockRuleReader) *MockEngine {
	return &MockEngine{rules: rules}
}

func (*MockEngine) Name() string { return "MockEngine" }

func (e *MockEngine) Handle(tc *model.TunnelContext, next Next) error {
	for _, rule := range e.rules.List() {
		if !rule.Enabled {
			continue
		}
		if !rule.MatchesMethod(tc.Method) {
			continue
		}
		if !pathmatch.Match(rule.PathPattern, tc.Path) {
			continue
		}

		tc.StatusCode = rule.StatusCode
		tc.ContentType = rule.ContentType
		tc.ResponseBody = bytes.NewReader([]byte(rule.Body))
		tc.AppliedMockRule = rule.Name
		tc.MarkHandled()
		return nil
	}
	return next()
}

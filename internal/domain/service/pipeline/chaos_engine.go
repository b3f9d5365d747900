package pipeline

import (
	"bytes"
	"math/rand/v2"
	"time"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/port"
	"github.com/relaywarp/relaywarp/internal/domain/service/pathmatch"
)

// ChaosEngine scans chaos rules in insertion order and, on the first
// enabled match, injects latency and/or a probabilistic synthetic
// error before continuing (or short-circuiting) the pipeline.
//
// The latency draw uses a uniform jitter window, not the Gaussian
// helper some reference tunnels carry for other code paths: a uniform
// draw over [latency-jitter, latency+jitter] clamped to zero is what
// this pipeline stage uses.
type ChaosEngine struct {
	rules port.ChaosRuleReader
}

// NewChaosEngine builds a ChaosEngine reading from rules.
func NewChaosEngine(rules port.ChaosRuleReader) *ChaosEngine {
	return &ChaosEngine{rules: rules}
}

func (*ChaosEngine) Name() string { return "ChaosEngine" }

func (e *ChaosEngine) Handle(tc *model.TunnelContext, next Next) error {
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

		tc.AppliedChaosRule = rule.Name

		if rule.LatencyMs > 0 {
			if err := sleepCancellable(tc.Context(), jitteredDelay(rule.LatencyMs, rule.JitterMs)); err != nil {
				return err
			}
		}

		if rule.ErrorRate > 0 && rand.Float64() < rule.ErrorRate {
			tc.StatusCode = rule.ErrorStatus
			tc.ContentType = "text/plain"
			tc.ResponseBody = bytes.NewReader([]byte(rule.ErrorBody))
			tc.MarkHandled()
			return nil
		}

		return next()
	}
	return next()
}

func jitteredDelay(latencyMs, jitterMs int) time.Duration {
	delay := latencyMs
	if jitterMs > 0 {
		// Uniform draw over [-jitterMs, +jitterMs].
		delay += rand.IntN(2*jitterMs+1) - jitterMs
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay) * time.Millisecond
}

func sleepCancellable(ctx interface {
	Done() <-chan struct{}
	Err() error
}, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package pipeline implements the Agent's four-stage request pipeline:
// MockEngine -> ChaosEngine -> RequestRouter -> LocalForwarder, with
// short-circuit semantics driven by TunnelContext.IsHandled.
package pipeline

import (
	"github.com/relaywarp/relaywarp/internal/domain/model"
)

// Next invokes the remainder of the pipeline.
type Next func() error

// Stage is one element of the ordered chain. A stage may call next to
// continue, or return without calling it (after marking the context
// handled) to short-circuit.
type Stage interface {
	Name() string
	Handle(tc *model.TunnelContext, next Next) error
}

// Pipeline runs its stages in fixed order, skipping any stage once the
// context has been marked handled.
type Pipeline struct {
	stages []Stage
}

// New builds a Pipeline from stages, run in the given order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes the pipeline against tc.
func (p *Pipeline) Run(tc *model.TunnelContext) error {
	return p.runFrom(0, tc)
}

func (p *Pipeline) runFrom(i int, tc *model.TunnelContext) error {
	if tc.IsHandled() || i >= len(p.stages) {
		return nil
	}
	stage := p.stages[i]
	return stage.Handle(tc, func() error {
		return p.runFrom(i+1, tc)
	})
}

package port

import "github.com/relaywarp/relaywarp/internal/domain/model"

// MockRuleReader is the read-only view of the mock rule collection that
// MockEngine needs. Each pipeline invocation snapshots it at stage
// entry by calling List once.
type MockRuleReader interface {
	List() []model.MockRule
}

// ChaosRuleReader is the read-only view of the chaos rule collection
// that ChaosEngine needs.
type ChaosRuleReader interface {
	List() []model.ChaosRule
}

// RoutingRuleReader is the read-only view of the routing rule
// collection that RequestRouter needs, already ordered by ascending
// priority.
type RoutingRuleReader interface {
	ListByPriority() []model.RoutingRule
}

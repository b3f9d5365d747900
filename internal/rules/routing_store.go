package rules

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/relaywarp/relaywarp/internal/domain/model"
)

// RoutingStore is the concurrent-safe collection of routing rules.
type RoutingStore struct {
	mutex sync.RWMutex
	rules map[string]model.RoutingRule
}

// NewRoutingStore returns an empty RoutingStore.
func NewRoutingStore() *RoutingStore {
	return &RoutingStore{rules: make(map[string]model.RoutingRule)}
}

// Add inserts a new rule, assigning it a fresh id, and returns the
// stored copy.
func (s *RoutingStore) Add(rule model.RoutingRule) model.RoutingRule {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	rule.ID = uuid.NewString()
	s.rules[rule.ID] = rule
	return rule
}

// Update replaces the rule stored under rule.ID in full. It is a no-op
// returning ok=false when no rule with that id exists.
func (s *RoutingStore) Update(rule model.RoutingRule) (updated model.RoutingRule, ok bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.rules[rule.ID]; !exists {
		return model.RoutingRule{}, false
	}
	s.rules[rule.ID] = rule
	return rule, true
}

// Delete removes the rule with the given id, reporting whether it existed.
func (s *RoutingStore) Delete(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.rules[id]; !exists {
		return false
	}
	delete(s.rules, id)
	return true
}

// ListByPriority returns all routing rules sorted by ascending
// priority, the order RequestRouter scans them in. A routing rule with
// priority 0 outranks one with priority 1 regardless of insertion
// order, so ties fall back to id for a stable result.
func (s *RoutingStore) ListByPriority() []model.RoutingRule {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]model.RoutingRule, 0, len(s.rules))
	for _, rule := range s.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Package rules holds the Agent's in-memory chaos, mock, and routing
// rule collections plus the bounded request log, all safe for
// concurrent mutation from the Rule REST surface and concurrent read
// from the pipeline.
package rules

import (
	"sync"

	"github.com/google/uuid"

	"github.com/relaywarp/relaywarp/internal/domain/model"
)

// MockStore is the concurrent-safe collection of mock rules.
type MockStore struct {
	mutex sync.RWMutex
	rules map[string]model.MockRule
	order []string
}

// NewMockStore returns an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{rules: make(map[string]model.MockRule)}
}

// Add inserts a new rule, assigning it a fresh id, and returns the
// stored copy.
func (s *MockStore) Add(rule model.MockRule) model.MockRule {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	rule.ID = uuid.NewString()
	s.rules[rule.ID] = rule
	s.order = append(s.order, rule.ID)
	return rule
}

// Update replaces the rule stored under rule.ID in full. It is a no-op
// returning ok=false when no rule with that id exists.
func (s *MockStore) Update(rule model.MockRule) (updated model.MockRule, ok bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.rules[rule.ID]; !exists {
		return model.MockRule{}, false
	}
	s.rules[rule.ID] = rule
	return rule, true
}

// Delete removes the rule with the given id, reporting whether it existed.
func (s *MockStore) Delete(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.rules[id]; !exists {
		return false
	}
	delete(s.rules, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all mock rules in insertion order, the order MockEngine
// scans them in.
func (s *MockStore) List() []model.MockRule {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]model.MockRule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rules[id])
	}
	return out
}

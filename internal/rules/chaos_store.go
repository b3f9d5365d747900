package rules

import (
	"sync"

	"github.com/google/uuid"

	"github.com/relaywarp/relaywarp/internal/domain/model"
)

// ChaosStore is the concurrent-safe collection of chaos rules.
type ChaosStore struct {
	mutex sync.RWMutex
	rules map[string]model.ChaosRule
	order []string
}

// NewChaosStore returns an empty ChaosStore.
func NewChaosStore() *ChaosStore {
	return &ChaosStore{rules: make(map[string]model.ChaosRule)}
}

// Add inserts a new rule, assigning it a fresh id, and returns the
// stored copy.
func (s *ChaosStore) Add(rule model.ChaosRule) model.ChaosRule {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	rule.ID = uuid.NewString()
	s.rules[rule.ID] = rule
	s.order = append(s.order, rule.ID)
	return rule
}

// Update replaces the rule stored under rule.ID in full. It is a no-op
// returning ok=false when no rule with that id exists.
func (s *ChaosStore) Update(rule model.ChaosRule) (updated model.ChaosRule, ok bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.rules[rule.ID]; !exists {
		return model.ChaosRule{}, false
	}
	s.rules[rule.ID] = rule
	return rule, true
}

// Delete removes the rule with the given id, reporting whether it existed.
func (s *ChaosStore) Delete(id string) bool {
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

// Toggle flips the enabled flag of the rule with the given id and
// returns the updated rule. Applying Toggle twice yields the original
// rule.
func (s *ChaosStore) Toggle(id string) (model.ChaosRule, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	rule, exists := s.rules[id]
	if !exists {
		return model.ChaosRule{}, false
	}
	rule.Enabled = !rule.Enabled
	s.rules[id] = rule
	return rule, true
}

// List returns all chaos rules in insertion order, the order
// ChaosEngine scans them in.
func (s *ChaosStore) List() []model.ChaosRule {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]model.ChaosRule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rules[id])
	}
	return out
}

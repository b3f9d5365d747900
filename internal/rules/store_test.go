package rules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaywarp/relaywarp/internal/domain/model"
)

func TestMockStoreAddUpdateDelete(t *testing.T) {
	s := NewMockStore()
	added := s.Add(model.MockRule{Name: "users", PathPattern: "/api/users", Enabled: true})
	require.NotEmpty(t, added.ID)
	require.Len(t, s.List(), 1)

	added.StatusCode = 201
	updated, ok := s.Update(added)
	require.True(t, ok)
	require.Equal(t, 201, updated.StatusCode)

	_, ok = s.Update(model.MockRule{ID: "does-not-exist"})
	require.False(t, ok)

	require.True(t, s.Delete(added.ID))
	require.Empty(t, s.List())
}

func TestMockStoreAddThenDeleteLeavesStoreUnchanged(t *testing.T) {
	s := NewMockStore()
	before := s.List()
	added := s.Add(model.MockRule{Name: "temp", PathPattern: "/x"})
	require.True(t, s.Delete(added.ID))
	require.Equal(t, before, s.List())
}

func TestChaosStoreTogglingTwiceYieldsOriginal(t *testing.T) {
	s := NewChaosStore()
	original := s.Add(model.ChaosRule{Name: "slow", PathPattern: "/slow", Enabled: true})

	once, ok := s.Toggle(original.ID)
	require.True(t, ok)
	require.NotEqual(t, original.Enabled, once.Enabled)

	twice, ok := s.Toggle(original.ID)
	require.True(t, ok)
	require.Equal(t, original.Enabled, twice.Enabled)
}

func TestRoutingStorePriorityOrderingIgnoresInsertionOrder(t *testing.T) {
	s := NewRoutingStore()
	s.Add(model.RoutingRule{Name: "low-priority", PathPattern: "/api/*", Priority: 1, Enabled: true})
	s.Add(model.RoutingRule{Name: "high-priority", PathPattern: "/api/*", Priority: 0, Enabled: true})

	ordered := s.ListByPriority()
	require.Len(t, ordered, 2)
	require.Equal(t, "high-priority", ordered[0].Name)
	require.Equal(t, "low-priority", ordered[1].Name)
}

func TestRequestLogBoundedFIFO(t *testing.T) {
	log := NewRequestLog(3)
	for i := 0; i < 5; i++ {
		log.Append(model.RequestLogEntry{Path: string(rune('a' + i))})
	}
	require.Equal(t, 3, log.Len())

	newestFirst := log.List(0)
	require.Equal(t, []string{"e", "d", "c"}, []string{
		newestFirst[0].Path, newestFirst[1].Path, newestFirst[2].Path,
	})
}

func TestRequestLogClear(t *testing.T) {
	log := NewRequestLog(10)
	log.Append(model.RequestLogEntry{Path: "/a"})
	log.Clear()
	require.Equal(t, 0, log.Len())
}

func TestStoresAreConcurrencySafe(t *testing.T) {
	chaos := NewChaosStore()
	mock := NewMockStore()
	log := NewRequestLog(200)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := chaos.Add(model.ChaosRule{Name: "c"})
			chaos.Toggle(c.ID)
			mock.Add(model.MockRule{Name: "m"})
			log.Append(model.RequestLogEntry{Path: "/x"})
			_ = chaos.List()
			_ = mock.List()
			_ = log.List(10)
		}(i)
	}
	wg.Wait()

	require.Len(t, chaos.List(), 50)
	require.Len(t, mock.List(), 50)
	require.Equal(t, 50, log.Len())
}

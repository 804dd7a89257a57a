package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryCountsRequests(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < 3; i++ {
		r.RequestStarted()
		r.RequestFinished(EndpointListDecks, 200, 10*time.Millisecond)
	}
	r.RequestStarted()
	r.RequestFinished(EndpointGetDeck, 404, 5*time.Millisecond)
	r.RequestStarted()
	r.RequestFinished(EndpointGetDeck, 503, time.Millisecond)
	r.RequestStarted() // still in flight

	s := r.Snapshot()

	assert.Equal(t, int64(6), s.Requests)
	assert.Equal(t, int64(1), s.InFlight)
	assert.Equal(t, int64(1), s.Errors)

	list := s.Endpoints[EndpointListDecks]
	assert.Equal(t, int64(3), list.ByStatusClass["2xx"])
	assert.Equal(t, int64(3), list.Requests())
	assert.Equal(t, LatencySnapshot{Count: 3, Sum: 30 * time.Millisecond}, list.Latency)

	get := s.Endpoints[EndpointGetDeck]
	assert.Equal(t, int64(1), get.ByStatusClass["4xx"])
	assert.Equal(t, int64(1), get.ByStatusClass["5xx"])
	assert.Equal(t, int64(2), get.Requests())
}

func TestRegistryUnknownEndpointCountsAsOther(t *testing.T) {
	r := NewRegistry()

	r.RequestStarted()
	r.RequestFinished(Endpoint("admin"), 404, 0)
	r.RequestStarted()
	r.RequestFinished(EndpointStatic, 999, 0)

	s := r.Snapshot()
	assert.Equal(t, int64(1), s.Endpoints[EndpointOther].ByStatusClass["4xx"])
	assert.Equal(t, int64(1), s.Endpoints[EndpointStatic].ByStatusClass["other"])
	assert.Equal(t, int64(1), s.Errors, "a status above 599 is still >= 500")
}

func TestRegistryObservesOperations(t *testing.T) {
	r := NewRegistry()

	r.ObserveOperation(OpGetDeck, OutcomeOK, 2*time.Millisecond)
	r.ObserveOperation(OpGetDeck, OutcomeNotFound, time.Millisecond)
	r.ObserveOperation(OpListDecks, OutcomePoolExhausted, 5*time.Second)
	r.ObserveOperation(OpListDecks, Outcome("weird"), 0)
	r.ObserveOperation(Operation("unknown"), OutcomeOK, 0)

	s := r.Snapshot()

	get := s.Operations[OpGetDeck]
	assert.Equal(t, int64(1), get.ByOutcome[OutcomeOK])
	assert.Equal(t, int64(1), get.ByOutcome[OutcomeNotFound])
	assert.Equal(t, LatencySnapshot{Count: 2, Sum: 3 * time.Millisecond}, get.Latency)

	list := s.Operations[OpListDecks]
	assert.Equal(t, int64(1), list.ByOutcome[OutcomePoolExhausted])
	assert.Equal(t, int64(1), list.ByOutcome[OutcomeError])
	assert.Equal(t, int64(1), s.PoolExhausted)

	_, ok := s.Operations[Operation("unknown")]
	assert.False(t, ok)
}

func TestRegistryPoolSource(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Snapshot().HasPool)

	gauges := PoolGauges{Acquired: 2, Idle: 1, Total: 3, Max: 10}
	r.SetPoolSource(PoolStatterFunc(func() (PoolGauges, error) { return gauges, nil }))

	s := r.Snapshot()
	assert.True(t, s.HasPool)
	assert.NoError(t, s.PoolErr)
	assert.Equal(t, gauges, s.Pool)

	r.SetPoolSource(PoolStatterFunc(func() (PoolGauges, error) {
		return PoolGauges{Total: 99}, errors.New("pool closed")
	}))
	s = r.Snapshot()
	assert.Error(t, s.PoolErr)
	assert.Equal(t, PoolGauges{}, s.Pool)

	r.SetPoolSource(PoolStatterFunc(func() (PoolGauges, error) { panic("nil pool") }))
	s = r.Snapshot()
	assert.ErrorContains(t, s.PoolErr, "panicked")

	r.SetPoolSource(nil)
	assert.False(t, r.Snapshot().HasPool)
}

func TestRegistryConcurrentRecording(t *testing.T) {
	const (
		workers    = 16
		perWorker  = 500
		totalCalls = workers * perWorker
	)

	r := NewRegistry()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				r.RequestStarted()
				r.ObserveOperation(OpListDecks, OutcomeOK, time.Microsecond)
				r.RequestFinished(EndpointListDecks, 200, time.Microsecond)
			}
		}()
	}

	// Snapshots taken mid-flight must be internally sane.
	for i := 0; i < 50; i++ {
		s := r.Snapshot()
		assert.GreaterOrEqual(t, s.Requests, s.Endpoints[EndpointListDecks].Requests())
	}
	wg.Wait()

	s := r.Snapshot()
	assert.Equal(t, int64(totalCalls), s.Requests)
	assert.Equal(t, int64(0), s.InFlight)
	assert.Equal(t, int64(totalCalls), s.Endpoints[EndpointListDecks].ByStatusClass["2xx"])
	assert.Equal(t, int64(totalCalls), s.Operations[OpListDecks].ByOutcome[OutcomeOK])
	assert.Equal(t, int64(totalCalls), s.Operations[OpListDecks].Latency.Count)
}

package metrics

import (
	"fmt"
	"time"
)

// PoolGauges is the occupancy of a connection pool.
type PoolGauges struct {
	Acquired int32
	Idle     int32
	Total    int32
	Max      int32
}

// PoolStatter reports pool occupancy at render time.
type PoolStatter interface {
	PoolGauges() (PoolGauges, error)
}

// PoolStatterFunc adapts a function to PoolStatter.
type PoolStatterFunc func() (PoolGauges, error)

// PoolGauges calls f.
func (f PoolStatterFunc) PoolGauges() (PoolGauges, error) {
	return f()
}

// LatencySnapshot is the number of observations and their summed duration.
type LatencySnapshot struct {
	Count int64
	Sum   time.Duration
}

// EndpointSnapshot holds the counters of one endpoint.
type EndpointSnapshot struct {
	// ByStatusClass maps "2xx", "4xx" and so on to response counts.
	ByStatusClass map[string]int64
	Latency       LatencySnapshot
}

// Requests returns the number of responses across all status classes.
func (e EndpointSnapshot) Requests() int64 {
	var n int64
	for _, v := range e.ByStatusClass {
		n += v
	}
	return n
}

// OperationSnapshot holds the counters of one store operation.
type OperationSnapshot struct {
	ByOutcome map[Outcome]int64
	Latency   LatencySnapshot
}

// Snapshot is a point-in-time copy of a Registry.
type Snapshot struct {
	Uptime        time.Duration
	Requests      int64
	InFlight      int64
	Errors        int64
	PoolExhausted int64

	Endpoints  map[Endpoint]EndpointSnapshot
	Operations map[Operation]OperationSnapshot

	// Pool is the zero value when no pool is registered or it failed to
	// report; PoolErr is set in the latter case.
	Pool    PoolGauges
	HasPool bool
	PoolErr error
}

// Snapshot copies the current counter values. It is safe to call while
// requests are being recorded; counters are read individually, so totals may
// disagree by the requests in flight while the copy is taken.
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Uptime:        time.Since(r.started),
		Requests:      r.requests.Load(),
		InFlight:      r.inFlight.Load(),
		Errors:        r.errors.Load(),
		PoolExhausted: r.poolExhausted.Load(),
		Endpoints:     make(map[Endpoint]EndpointSnapshot, len(r.endpoints)),
		Operations:    make(map[Operation]OperationSnapshot, len(r.operations)),
	}

	for name, stats := range r.endpoints {
		byClass := make(map[string]int64, len(statusClasses))
		for i, label := range statusClasses {
			byClass[label] = stats.byClass[i].Load()
		}
		s.Endpoints[name] = EndpointSnapshot{ByStatusClass: byClass, Latency: stats.latency.snapshot()}
	}

	for name, stats := range r.operations {
		byOutcome := make(map[Outcome]int64, len(stats.byOutcome))
		for o, c := range stats.byOutcome {
			byOutcome[o] = c.Load()
		}
		s.Operations[name] = OperationSnapshot{ByOutcome: byOutcome, Latency: stats.latency.snapshot()}
	}

	if src := r.pool.Load(); src != nil {
		s.HasPool = true
		s.Pool, s.PoolErr = readPool(src.statter)
	}

	return s
}

func readPool(statter PoolStatter) (g PoolGauges, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			g, err = PoolGauges{}, fmt.Errorf("pool statter panicked: %v", rec)
		}
	}()

	g, err = statter.PoolGauges()
	if err != nil {
		return PoolGauges{}, err
	}
	return g, nil
}

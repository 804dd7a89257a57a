package metrics

import (
	"sync/atomic"
	"time"
)

// Endpoint identifies a group of HTTP routes.
type Endpoint string

// Endpoints with their own counters. Requests to any other path are recorded
// under EndpointOther.
const (
	EndpointListDecks Endpoint = "list_decks"
	EndpointGetDeck   Endpoint = "get_deck"
	EndpointMetrics   Endpoint = "metrics"
	EndpointHealth    Endpoint = "health"
	EndpointStatic    Endpoint = "static"
	EndpointOther     Endpoint = "other"
)

// Endpoints lists every endpoint in rendering order.
var Endpoints = []Endpoint{
	EndpointListDecks,
	EndpointGetDeck,
	EndpointMetrics,
	EndpointHealth,
	EndpointStatic,
	EndpointOther,
}

// Operation identifies a store operation.
type Operation string

// Store operations observed by the service layer.
const (
	OpListDecks    Operation = "list_decks"
	OpGetDeck      Operation = "get_deck"
	OpContentStats Operation = "content_stats"
	OpPing         Operation = "ping"
)

// Operations lists every operation in rendering order.
var Operations = []Operation{OpListDecks, OpGetDeck, OpContentStats, OpPing}

// Outcome classifies how a store operation ended.
type Outcome string

// Operation outcomes.
const (
	OutcomeOK            Outcome = "ok"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeInvalid       Outcome = "invalid"
	OutcomePoolExhausted Outcome = "pool_exhausted"
	OutcomeCanceled      Outcome = "canceled"
	OutcomeError         Outcome = "error"
)

// Outcomes lists every outcome in rendering order.
var Outcomes = []Outcome{
	OutcomeOK,
	OutcomeNotFound,
	OutcomeInvalid,
	OutcomePoolExhausted,
	OutcomeCanceled,
	OutcomeError,
}

// statusClasses are the rendered labels for statusClassIndex results.
var statusClasses = [...]string{"other", "1xx", "2xx", "3xx", "4xx", "5xx"}

func statusClassIndex(status int) int {
	class := status / 100
	if class < 1 || class > 5 {
		return 0
	}
	return class
}

type latency struct {
	count atomic.Int64
	nanos atomic.Int64
}

func (l *latency) observe(d time.Duration) {
	l.count.Add(1)
	l.nanos.Add(int64(d))
}

func (l *latency) snapshot() LatencySnapshot {
	return LatencySnapshot{
		Count: l.count.Load(),
		Sum:   time.Duration(l.nanos.Load()),
	}
}

type endpointStats struct {
	byClass [len(statusClasses)]atomic.Int64
	latency latency
}

type operationStats struct {
	byOutcome map[Outcome]*atomic.Int64
	latency   latency
}

// Registry holds the process's counters.
// The zero value is not usable; create one with NewRegistry.
type Registry struct {
	started time.Time

	requests      atomic.Int64
	inFlight      atomic.Int64
	errors        atomic.Int64
	poolExhausted atomic.Int64

	// Both maps are fully populated by NewRegistry and never written again.
	endpoints  map[Endpoint]*endpointStats
	operations map[Operation]*operationStats

	pool atomic.Pointer[poolSource]
}

type poolSource struct {
	statter PoolStatter
}

// NewRegistry returns a registry with every endpoint and operation registered.
func NewRegistry() *Registry {
	r := &Registry{
		started:    time.Now(),
		endpoints:  make(map[Endpoint]*endpointStats, len(Endpoints)),
		operations: make(map[Operation]*operationStats, len(Operations)),
	}
	for _, e := range Endpoints {
		r.endpoints[e] = &endpointStats{}
	}
	for _, op := range Operations {
		stats := &operationStats{byOutcome: make(map[Outcome]*atomic.Int64, len(Outcomes))}
		for _, o := range Outcomes {
			stats.byOutcome[o] = &atomic.Int64{}
		}
		r.operations[op] = stats
	}
	return r
}

// SetPoolSource registers the pool whose gauges are rendered with the
// metrics. Passing nil removes it.
func (r *Registry) SetPoolSource(s PoolStatter) {
	if s == nil {
		r.pool.Store(nil)
		return
	}
	r.pool.Store(&poolSource{statter: s})
}

// RequestStarted records the arrival of an HTTP request. Every call must be
// paired with RequestFinished.
func (r *Registry) RequestStarted() {
	r.requests.Add(1)
	r.inFlight.Add(1)
}

// RequestFinished records the completion of an HTTP request.
// Responses with a 5xx status count as errors.
func (r *Registry) RequestFinished(endpoint Endpoint, status int, elapsed time.Duration) {
	r.inFlight.Add(-1)

	stats, ok := r.endpoints[endpoint]
	if !ok {
		stats = r.endpoints[EndpointOther]
	}
	stats.byClass[statusClassIndex(status)].Add(1)
	stats.latency.observe(elapsed)

	if status >= 500 {
		r.errors.Add(1)
	}
}

// ObserveOperation records the outcome and latency of a store operation.
func (r *Registry) ObserveOperation(op Operation, outcome Outcome, elapsed time.Duration) {
	stats, ok := r.operations[op]
	if !ok {
		return
	}
	counter, ok := stats.byOutcome[outcome]
	if !ok {
		counter = stats.byOutcome[OutcomeError]
	}
	counter.Add(1)
	stats.latency.observe(elapsed)

	if outcome == OutcomePoolExhausted {
		r.poolExhausted.Add(1)
	}
}

package metrics

import (
	"fmt"
	"io"
	"sort"

	"github.com/phrazzld/obo-api/internal/domain"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// ContentType is the media type of WriteText output.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

const namespace = "obo_"

// WriteText renders the registry in the Prometheus text exposition format.
// content supplies the deck and card totals; pass nil if they could not be
// read. Missing or failed sources are rendered as zero and flagged through
// the obo_metrics_degraded gauge rather than failing the whole render.
func (r *Registry) WriteText(w io.Writer, content *domain.ContentStats) error {
	for _, mf := range r.Families(content) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Families builds the metric families for the current snapshot, sorted by name.
func (r *Registry) Families(content *domain.ContentStats) []*dto.MetricFamily {
	s := r.Snapshot()
	degraded := content == nil || s.PoolErr != nil

	families := []*dto.MetricFamily{
		counterFamily("http_requests_total", "HTTP requests received.", float64(s.Requests)),
		gaugeFamily("http_requests_in_flight", "HTTP requests currently being served.", float64(s.InFlight)),
		counterFamily("http_errors_total", "HTTP responses with a 5xx status.", float64(s.Errors)),
		counterFamily("pool_exhausted_total", "Store operations that timed out waiting for a connection.", float64(s.PoolExhausted)),
		gaugeFamily("uptime_seconds", "Seconds since the process started.", s.Uptime.Seconds()),
		endpointRequestsFamily(s),
		endpointLatencyFamily(s),
		operationsFamily(s),
		operationLatencyFamily(s),
	}

	var stats domain.ContentStats
	if content != nil {
		stats = *content
	}
	families = append(families,
		gaugeFamily("decks", "Decks in the store.", float64(stats.Decks)),
		gaugeFamily("cards", "Cards in the store.", float64(stats.Cards)),
	)

	if s.HasPool {
		families = append(families, poolFamilies(s.Pool)...)
	}

	families = append(families,
		gaugeFamily("metrics_degraded", "1 if a metrics source failed and was rendered as zero.", boolValue(degraded)))

	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	return families
}

func poolFamilies(g PoolGauges) []*dto.MetricFamily {
	return []*dto.MetricFamily{
		{
			Name: proto.String(namespace + "pool_connections"),
			Help: proto.String("Open store connections by state."),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{
				gaugeMetric(float64(g.Acquired), label("state", "acquired")),
				gaugeMetric(float64(g.Idle), label("state", "idle")),
			},
		},
		gaugeFamily("pool_connections_total", "Open store connections.", float64(g.Total)),
		gaugeFamily("pool_connections_max", "Configured maximum store connections.", float64(g.Max)),
	}
}

func endpointRequestsFamily(s Snapshot) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: proto.String(namespace + "http_endpoint_requests_total"),
		Help: proto.String("HTTP responses by endpoint and status class."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, e := range Endpoints {
		snap := s.Endpoints[e]
		for _, class := range statusClasses {
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label:   []*dto.LabelPair{label("code", class), label("endpoint", string(e))},
				Counter: &dto.Counter{Value: proto.Float64(float64(snap.ByStatusClass[class]))},
			})
		}
	}
	return mf
}

func endpointLatencyFamily(s Snapshot) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: proto.String(namespace + "http_request_duration_seconds"),
		Help: proto.String("HTTP request latency by endpoint."),
		Type: dto.MetricType_SUMMARY.Enum(),
	}
	for _, e := range Endpoints {
		mf.Metric = append(mf.Metric, summaryMetric(s.Endpoints[e].Latency, label("endpoint", string(e))))
	}
	return mf
}

func operationsFamily(s Snapshot) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: proto.String(namespace + "store_operations_total"),
		Help: proto.String("Store operations by outcome."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, op := range Operations {
		snap := s.Operations[op]
		for _, o := range Outcomes {
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label:   []*dto.LabelPair{label("operation", string(op)), label("outcome", string(o))},
				Counter: &dto.Counter{Value: proto.Float64(float64(snap.ByOutcome[o]))},
			})
		}
	}
	return mf
}

func operationLatencyFamily(s Snapshot) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: proto.String(namespace + "store_operation_duration_seconds"),
		Help: proto.String("Store operation latency, including the wait for a connection."),
		Type: dto.MetricType_SUMMARY.Enum(),
	}
	for _, op := range Operations {
		mf.Metric = append(mf.Metric, summaryMetric(s.Operations[op].Latency, label("operation", string(op))))
	}
	return mf
}

func counterFamily(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(namespace + name),
		Help:   proto.String(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(v)}}},
	}
}

func gaugeFamily(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(namespace + name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{gaugeMetric(v)},
	}
}

func gaugeMetric(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Gauge: &dto.Gauge{Value: proto.Float64(v)}}
}

func summaryMetric(l LatencySnapshot, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Summary: &dto.Summary{
			SampleCount: proto.Uint64(uint64(l.Count)),
			SampleSum:   proto.Float64(l.Sum.Seconds()),
		},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

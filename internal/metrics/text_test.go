package metrics

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/obo-api/internal/domain"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseText(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(text))
	require.NoError(t, err, "output must be valid exposition text:\n%s", text)
	return mfs
}

func render(t *testing.T, r *Registry, content *domain.ContentStats) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf, content))
	return buf.String()
}

// sampleValue returns the value of the sample in mf whose labels include all
// of want.
func sampleValue(t *testing.T, mf *dto.MetricFamily, want map[string]string) float64 {
	t.Helper()
	require.NotNil(t, mf)

	for _, m := range mf.GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		match := true
		for k, v := range want {
			if labels[k] != v {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		switch {
		case m.Counter != nil:
			return m.GetCounter().GetValue()
		case m.Gauge != nil:
			return m.GetGauge().GetValue()
		case m.Summary != nil:
			return float64(m.GetSummary().GetSampleCount())
		}
	}
	t.Fatalf("no sample in %s with labels %v", mf.GetName(), want)
	return 0
}

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.SetPoolSource(PoolStatterFunc(func() (PoolGauges, error) {
		return PoolGauges{Acquired: 1, Idle: 2, Total: 3, Max: 10}, nil
	}))

	for i := 0; i < 4; i++ {
		r.RequestStarted()
		r.ObserveOperation(OpListDecks, OutcomeOK, time.Millisecond)
		r.RequestFinished(EndpointListDecks, 200, 2*time.Millisecond)
	}
	r.RequestStarted()
	r.ObserveOperation(OpGetDeck, OutcomeNotFound, time.Millisecond)
	r.RequestFinished(EndpointGetDeck, 404, time.Millisecond)

	text := render(t, r, &domain.ContentStats{Decks: 12, Cards: 340})
	mfs := parseText(t, text)

	assert.Equal(t, 5.0, sampleValue(t, mfs["obo_http_requests_total"], nil))
	assert.Equal(t, 0.0, sampleValue(t, mfs["obo_http_requests_in_flight"], nil))
	assert.Equal(t, 0.0, sampleValue(t, mfs["obo_http_errors_total"], nil))
	assert.Equal(t, 4.0, sampleValue(t, mfs["obo_http_endpoint_requests_total"],
		map[string]string{"endpoint": "list_decks", "code": "2xx"}))
	assert.Equal(t, 1.0, sampleValue(t, mfs["obo_http_endpoint_requests_total"],
		map[string]string{"endpoint": "get_deck", "code": "4xx"}))
	assert.Equal(t, 4.0, sampleValue(t, mfs["obo_http_request_duration_seconds"],
		map[string]string{"endpoint": "list_decks"}))
	assert.Equal(t, 1.0, sampleValue(t, mfs["obo_store_operations_total"],
		map[string]string{"operation": "get_deck", "outcome": "not_found"}))
	assert.Equal(t, 12.0, sampleValue(t, mfs["obo_decks"], nil))
	assert.Equal(t, 340.0, sampleValue(t, mfs["obo_cards"], nil))
	assert.Equal(t, 1.0, sampleValue(t, mfs["obo_pool_connections"], map[string]string{"state": "acquired"}))
	assert.Equal(t, 2.0, sampleValue(t, mfs["obo_pool_connections"], map[string]string{"state": "idle"}))
	assert.Equal(t, 3.0, sampleValue(t, mfs["obo_pool_connections_total"], nil))
	assert.Equal(t, 10.0, sampleValue(t, mfs["obo_pool_connections_max"], nil))
	assert.Equal(t, 0.0, sampleValue(t, mfs["obo_metrics_degraded"], nil))

	assert.Contains(t, text, "# HELP obo_http_requests_total HTTP requests received.\n")
	assert.Contains(t, text, "# TYPE obo_http_requests_total counter\n")
	assert.Contains(t, text, "\nobo_http_requests_total 5\n")
}

func TestWriteTextIsSortedByName(t *testing.T) {
	var names []string
	for _, mf := range NewRegistry().Families(&domain.ContentStats{}) {
		names = append(names, mf.GetName())
	}

	assert.IsIncreasing(t, names)
}

func TestWriteTextDegraded(t *testing.T) {
	tests := []struct {
		name    string
		content *domain.ContentStats
		pool    PoolStatter
	}{
		{
			name:    "content unavailable",
			content: nil,
		},
		{
			name:    "pool source failed",
			content: &domain.ContentStats{Decks: 1},
			pool: PoolStatterFunc(func() (PoolGauges, error) {
				return PoolGauges{}, errors.New("closed")
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if tt.pool != nil {
				r.SetPoolSource(tt.pool)
			}

			mfs := parseText(t, render(t, r, tt.content))

			assert.Equal(t, 1.0, sampleValue(t, mfs["obo_metrics_degraded"], nil))
			if tt.content == nil {
				assert.Equal(t, 0.0, sampleValue(t, mfs["obo_decks"], nil))
				assert.Equal(t, 0.0, sampleValue(t, mfs["obo_cards"], nil))
			}
			if tt.pool != nil {
				assert.Equal(t, 0.0, sampleValue(t, mfs["obo_pool_connections_total"], nil))
			}
		})
	}
}

func TestWriteTextWhileRecording(t *testing.T) {
	r := NewRegistry()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				r.RequestStarted()
				r.ObserveOperation(OpGetDeck, OutcomeOK, time.Microsecond)
				r.RequestFinished(EndpointGetDeck, 200, time.Microsecond)
			}
		}()
	}

	for i := 0; i < 25; i++ {
		parseText(t, render(t, r, &domain.ContentStats{}))
	}
	close(stop)
	wg.Wait()

	mfs := parseText(t, render(t, r, &domain.ContentStats{}))
	total := sampleValue(t, mfs["obo_http_requests_total"], nil)
	served := sampleValue(t, mfs["obo_http_endpoint_requests_total"],
		map[string]string{"endpoint": "get_deck", "code": "2xx"})
	assert.Equal(t, total, served)
}

func TestContentType(t *testing.T) {
	assert.True(t, strings.HasPrefix(ContentType, "text/plain; version=0.0.4"))
}

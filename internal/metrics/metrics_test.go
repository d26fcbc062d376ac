package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector := NewCollector()

	assert.NotNil(t, collector, "NewCollector should return a non-nil collector")
	assert.NotNil(t, collector.posted, "posted counter should be initialized")
	assert.NotNil(t, collector.dispatched, "dispatched counter should be initialized")
	assert.NotNil(t, collector.completed, "completed counter should be initialized")
	assert.NotNil(t, collector.failed, "failed counter should be initialized")
	assert.NotNil(t, collector.broken, "broken counter should be initialized")
	assert.NotNil(t, collector.postLatency, "postLatency histogram should be initialized")
	assert.NotNil(t, collector.pending, "pending gauge should be initialized")
	assert.NotNil(t, collector.inFlight, "inFlight gauge should be initialized")
}

func TestRecordPosted(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordPosted()
	}, "RecordPosted should not panic")

	for i := 0; i < 5; i++ {
		collector.RecordPosted()
	}
}

func TestRecordDispatched(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordDispatched()
	}, "RecordDispatched should not panic")

	for i := 0; i < 10; i++ {
		collector.RecordDispatched()
	}
}

func TestRecordCompleted(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	latencies := []float64{0.001, 0.01, 0.1, 1.0, 5.0}

	for _, latency := range latencies {
		assert.NotPanics(t, func() {
			collector.RecordCompleted(latency)
		}, "RecordCompleted should not panic with latency %f", latency)
	}
}

func TestRecordFailed(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordFailed(0.2)
	}, "RecordFailed should not panic")

	for i := 0; i < 3; i++ {
		collector.RecordFailed(0.2)
	}
}

func TestRecordBroken(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordBroken()
	}, "RecordBroken should not panic")

	for i := 0; i < 2; i++ {
		collector.RecordBroken()
	}
}

func TestUpdateQueueStats(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	testCases := []struct {
		name     string
		pending  int
		inFlight int
	}{
		{"zero values", 0, 0},
		{"normal values", 10, 5},
		{"high pending", 100, 8},
		{"high in-flight", 5, 50},
		{"equal values", 20, 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				collector.UpdateQueueStats(tc.pending, tc.inFlight)
			}, "UpdateQueueStats should not panic")
		})
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	done := make(chan bool, 100)

	for i := 0; i < 100; i++ {
		go func() {
			collector.RecordPosted()
			collector.RecordDispatched()
			collector.RecordCompleted(0.1)
			collector.UpdateQueueStats(10, 5)
			done <- true
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}
}

func TestCollectorIsolation(t *testing.T) {
	// A process should only ever construct one collector; a second one
	// panics on duplicate Prometheus registration.
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector1 := NewCollector()
	require.NotNil(t, collector1)

	assert.Panics(t, func() {
		NewCollector()
	}, "Creating a second collector should panic due to duplicate registration")
}

func TestMetricOperationSequence(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	// Simulates one message's lifecycle: posted, dispatched, completed.
	assert.NotPanics(t, func() {
		collector.RecordPosted()
		collector.UpdateQueueStats(1, 0)

		collector.RecordDispatched()
		collector.UpdateQueueStats(0, 1)

		collector.RecordCompleted(0.5)
		collector.UpdateQueueStats(0, 0)
	}, "complete message lifecycle should not panic")
}

func TestMetricOperationWithFailure(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordPosted()
		collector.RecordDispatched()
		collector.RecordFailed(0.3)
	}, "handler failure scenario should not panic")
}

func TestBrokenWorkerScenario(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordPosted()
		collector.RecordDispatched()
		collector.RecordBroken()
	}, "broken-worker scenario should not panic")
}

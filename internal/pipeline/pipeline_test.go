package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
	"github.com/couchcryptid/aqi-warning-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	events []domain.RawEvent
	index  atomic.Int64
	err    error
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	start := int(m.index.Load())
	if start >= len(m.events) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	end := min(start+batchSize, len(m.events))
	m.index.Store(int64(end))
	return m.events[start:end], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.AssessmentEvent, error) {
	if m.err != nil {
		return domain.AssessmentEvent{}, m.err
	}
	return domain.AssessmentEvent{StationReading: domain.StationReading{ID: string(raw.Key)}}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.AssessmentEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.AssessmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loaded)
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{events: []domain.RawEvent{makeRawEvent(t, "st-1"), makeRawEvent(t, "st-2")}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), newTestMetrics(), 10)
	require.Error(t, p.CheckReadiness(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 2, ldr.count())
	assert.Equal(t, "st-1", ldr.loaded[0].ID)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RespectsBatchSize(t *testing.T) {
	events := make([]domain.RawEvent, 5)
	for i := range events {
		events[i] = makeRawEvent(t, "st")
	}
	ext := &mockExtractor{events: events}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), newTestMetrics(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 5, ldr.count())
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, discardLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	committed := false
	raw := makeRawEvent(t, "st-bad")
	raw.Commit = func(_ context.Context) error {
		committed = true
		return nil
	}

	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{events: []domain.RawEvent{raw}}, &mockTransformer{err: domain.ErrInvalidReading}, ldr, discardLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.True(t, committed)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := false
	raw := makeRawEvent(t, "st-5")
	raw.Topic = "raw-pollutant-readings"
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	p := pipeline.New(&mockExtractor{events: []domain.RawEvent{raw}}, &mockTransformer{}, &mockLoader{}, discardLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.True(t, commitCalled)
}

func TestPipeline_Run_LoadErrorDoesNotCommit(t *testing.T) {
	commitCalled := false
	raw := makeRawEvent(t, "st-6")
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ldr := &mockLoader{err: errors.New("broker down")}
	p := pipeline.New(&mockExtractor{events: []domain.RawEvent{raw}}, &mockTransformer{}, ldr, discardLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.False(t, commitCalled)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	p := pipeline.New(&mockExtractor{err: errors.New("no brokers")}, &mockTransformer{}, &mockLoader{}, discardLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, p.Run(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestReadingTransformer_Transform(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := newTestMetrics()
	a, err := pipeline.NewAssessor(&stubModel{prediction: 245.318, importances: pmHeavyImportances()}, domain.DefaultSafeLimits())
	require.NoError(t, err)

	tfm := pipeline.NewTransformer(a, discardLogger(), metrics)
	out, err := tfm.Transform(context.Background(), makeRawEvent(t, "st-7"))
	require.NoError(t, err)

	assert.Equal(t, "st-7", out.StationID)
	assert.Equal(t, fakeClock.Now(), out.AssessedAt)
	assert.Equal(t, domain.TierUnhealthy, out.Assessment.Tier)
	assert.InDelta(t, 245.32, out.Assessment.AQI, 0)
	assert.Equal(t, domain.PM25, out.Assessment.CurrentCritical)
}

func TestReadingTransformer_InvalidPayload(t *testing.T) {
	a, err := pipeline.NewAssessor(&stubModel{prediction: 10, importances: pmHeavyImportances()}, domain.DefaultSafeLimits())
	require.NoError(t, err)

	tfm := pipeline.NewTransformer(a, discardLogger(), newTestMetrics())
	_, err = tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(`{"pm25":-1,"pm10":0,"no2":0,"so2":0,"co":0,"o3":0}`)})
	assert.ErrorIs(t, err, domain.ErrInvalidReading)

	_, err = tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	assert.Error(t, err)
}

// --- helpers ---

func makeRawEvent(t *testing.T, stationID string) domain.RawEvent {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"station_id":  stationID,
		"observed_at": "2025-11-03T08:00:00Z",
		"pm25":        180.0,
		"pm10":        220.0,
		"no2":         55.0,
		"so2":         14.0,
		"co":          2.1,
		"o3":          40.0,
	})
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(stationID),
		Value: data,
	}
}

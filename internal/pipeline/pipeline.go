package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
)

// BatchExtractor fetches station readings from the source topic.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns one raw reading into an assessment.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.AssessmentEvent, error)
}

// BatchLoader publishes assessments to the sink topic.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.AssessmentEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline assesses streamed readings batch by batch. Offsets are committed
// only after an assessment is published, or when a reading can never be
// assessed.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	published atomic.Bool
	backoff   time.Duration
}

func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		backoff:     initialBackoff,
	}
}

// CheckReadiness fails until the first assessment reaches the sink.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.published.Load() {
		return errors.New("no assessments published yet")
	}
	return nil
}

// Run blocks until ctx is cancelled. Broker failures are retried with
// exponential backoff and never end the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for ctx.Err() == nil {
		if !p.step(ctx) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// step handles one batch and reports whether the loop should continue.
func (p *Pipeline) step(ctx context.Context) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	switch {
	case ctx.Err() != nil:
		return false
	case err != nil:
		p.logger.Error("extract batch failed", "error", err)
		return p.retryAfterBackoff(ctx)
	case len(batch) == 0:
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	p.backoff = initialBackoff

	events, assessed := p.assessBatch(ctx, batch)
	if len(events) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, events); err != nil {
		p.logger.Error("publish batch failed", "error", err, "batch_size", len(events))
		return p.retryAfterBackoff(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(events)))
	for _, raw := range assessed {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.published.Store(true)
	return true
}

// assessBatch returns the assessments and the raw events they came from.
// Readings that fail are committed right away so they are not redelivered.
func (p *Pipeline) assessBatch(ctx context.Context, batch []domain.RawEvent) ([]domain.AssessmentEvent, []domain.RawEvent) {
	events := make([]domain.AssessmentEvent, 0, len(batch))
	assessed := make([]domain.RawEvent, 0, len(batch))

	for _, raw := range batch {
		event, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("assessment failed, skipping message",
				"error", err,
				"kind", domain.ErrorKind(err),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		events = append(events, event)
		assessed = append(assessed, raw)
	}
	return events, assessed
}

// retryAfterBackoff sleeps for the current backoff, then doubles it up to
// maxBackoff. It returns false if ctx ends first.
func (p *Pipeline) retryAfterBackoff(ctx context.Context) bool {
	timer := time.NewTimer(p.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	p.backoff = min(p.backoff*2, maxBackoff)
	return true
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

package pipeline

import (
	"context"
	"time"

	"github.com/floodwatch/water-level-service/internal/domain"
)

// Run consumes raw sample cycles from the extractor until the context is
// cancelled. Malformed or rejected cycles are logged, counted, and their
// offsets committed so they are never redelivered; extract failures retry
// with exponential backoff.
func (p *Pipeline) Run(ctx context.Context, extractor CycleExtractor) error {
	p.logger.Info("ingestion loop started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during broker outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("ingestion loop stopping", "reason", ctx.Err())
			return nil
		default:
		}

		raw, err := extractor.Extract(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("extract cycle failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		p.processRaw(ctx, raw)
	}
}

// processRaw parses and ingests one raw cycle, then commits its offset.
// Every terminal outcome commits: a cycle rejected by validation, ordering,
// or an unknown sensor will not parse differently on redelivery.
func (p *Pipeline) processRaw(ctx context.Context, raw domain.RawCycle) {
	req, err := domain.ParseRawCycle(raw)
	if err != nil {
		p.logger.Warn("unparseable cycle, skipping",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.metrics.IngestErrors.WithLabelValues(errorKind(err)).Inc()
		p.commitOffset(ctx, raw)
		return
	}

	if _, err := p.Ingest(ctx, req.SensorID, req.Samples, req.Timestamp); err != nil {
		p.logger.Warn("cycle rejected",
			"error", err,
			"sensor_id", req.SensorID,
			"kind", errorKind(err),
		)
		p.metrics.IngestErrors.WithLabelValues(errorKind(err)).Inc()
		p.commitOffset(ctx, raw)
		return
	}

	p.ready.Store(true)
	p.commitOffset(ctx, raw)
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawCycle) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func errorKind(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsOrdering(err):
		return "ordering"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

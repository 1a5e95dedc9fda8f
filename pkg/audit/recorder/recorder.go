package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/themis/pkg/audit"
	"mercator-hq/themis/pkg/engine"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing records to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder records audit entries for engine decisions.
// Records are written asynchronously to avoid blocking evaluation.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	recordChan chan *audit.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a new audit recorder with the provided storage backend
// and configuration.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *audit.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	// Start background worker to drain channel
	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds an audit record from a decision and the event that produced
// it, then enqueues the record for async writing.
//
// This method returns quickly and does not block on storage writes. When the
// channel buffer stays full for longer than WriteTimeout the record is
// dropped and an *audit.RecorderError is returned.
func (r *Recorder) Record(ctx context.Context, decision *engine.Decision, event engine.Event) error {
	if !r.config.Enabled {
		return nil
	}

	record := r.buildRecord(decision, event)

	select {
	case r.recordChan <- record:
		r.logger.Debug("audit record enqueued for writing",
			"record_id", record.ID,
			"rule_id", record.RuleID,
		)
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("audit record channel full, dropping record",
			"record_id", record.ID,
			"rule_id", record.RuleID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return audit.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"rule_id", record.RuleID,
		)
		return audit.NewRecorderError(record.ID, context.Canceled)
	}

	return nil
}

// Close gracefully shuts down the recorder by draining the async channel and
// waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down audit recorder")

	// Signal shutdown
	close(r.done)

	// Wait for worker to finish draining channel
	r.wg.Wait()

	r.logger.Info("audit recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the record channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records from channel before exit
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					// Channel is empty, we can exit
					r.logger.Info("audit channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single audit record to storage.
func (r *Recorder) writeRecord(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"rule_id", record.RuleID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("decision recorded",
		"record_id", record.ID,
		"rule_id", record.RuleID,
		"duration_ms", duration.Milliseconds(),
	)

	// Warn if write was slow
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// buildRecord converts a decision and its source event into an audit record.
func (r *Recorder) buildRecord(decision *engine.Decision, event engine.Event) *audit.Record {
	outcome, err := json.Marshal(decision.Outcome)
	if err != nil {
		outcome = []byte("{}")
	}

	return &audit.Record{
		ID:            uuid.New().String(),
		RuleID:        decision.RuleID,
		RulesetSHA:    decision.RulesetSHA,
		Outcome:       string(outcome),
		ElapsedMicros: decision.ElapsedMicros,
		Timestamp:     time.Unix(decision.Timestamp, 0).UTC(),
		PayloadHash:   HashEvent(event),
		RecordedAt:    time.Now().UTC(),
	}
}

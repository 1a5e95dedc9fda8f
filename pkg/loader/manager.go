package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/engine"
	"mercator-hq/themis/pkg/registry"
	"mercator-hq/themis/pkg/telemetry/metrics"
)

// Config contains configuration for the ruleset manager.
type Config struct {
	// Author is recorded in the registry for every successful load.
	Author string

	// Watch enables hot reload of the ruleset file.
	Watch bool

	// Path is the ruleset file to watch when Watch is set.
	Path string

	// DebounceInterval is the quiet period before a file change triggers
	// a reload.
	DebounceInterval time.Duration
}

// Manager coordinates ruleset loading: it pulls documents from a Source,
// loads them into the engine, records successful loads in the registry, and
// keeps the ruleset metrics current. A failed load leaves the engine on its
// previous ruleset.
type Manager struct {
	config    Config
	source    Source
	engine    *engine.Engine
	registry  *registry.Registry
	collector *metrics.Collector
	logger    *slog.Logger

	// State
	mu            sync.RWMutex
	lastLoadTime  time.Time
	lastLoadError error
}

// NewManager creates a ruleset manager. The registry and collector are
// optional integrations; pass nil to disable version history or metrics.
func NewManager(
	cfg Config,
	source Source,
	eng *engine.Engine,
	reg *registry.Registry,
	collector *metrics.Collector,
	logger *slog.Logger,
) (*Manager, error) {
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		config:    cfg,
		source:    source,
		engine:    eng,
		registry:  reg,
		collector: collector,
		logger:    logger,
	}, nil
}

// Load pulls the ruleset from the source and loads it into the engine.
// On failure the engine keeps serving its previous ruleset (or stays empty
// before the first successful load) and the error is returned.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	startTime := time.Now()

	rs, origin, err := m.source.Load(ctx)
	if err != nil {
		return m.loadFailed(err, origin, startTime)
	}

	return m.apply(ctx, rs, origin, startTime)
}

// Apply loads an already-parsed ruleset, bypassing the source. Callers that
// receive documents over the wire parse them first and push the result here
// so uploads and file loads share one pipeline.
func (m *Manager) Apply(ctx context.Context, rs *ast.RuleSet, origin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.apply(ctx, rs, origin, time.Now())
}

// apply activates rs in the engine and records the change. Callers hold m.mu.
func (m *Manager) apply(ctx context.Context, rs *ast.RuleSet, origin string, startTime time.Time) error {
	if err := m.engine.Load(rs); err != nil {
		return m.loadFailed(err, origin, startTime)
	}

	sha, _ := m.engine.RulesetSHA()

	if m.collector != nil {
		m.collector.RecordRulesetLoad(metrics.StatusSuccess)
		m.collector.SetActiveRuleset(sha, rs.Version, len(rs.Rules))
	}

	m.recordChange(ctx, rs, sha)

	m.lastLoadTime = time.Now()
	m.lastLoadError = nil

	m.logger.Info("ruleset loaded",
		"origin", origin,
		"rule_sha", sha,
		"version", rs.Version,
		"rule_count", len(rs.Rules),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return nil
}

// loadFailed records a failed load attempt. Callers hold m.mu.
func (m *Manager) loadFailed(err error, origin string, startTime time.Time) error {
	m.lastLoadError = err

	if m.collector != nil {
		m.collector.RecordRulesetLoad(metrics.StatusFailure)
	}

	m.logger.Error("ruleset load failed, previous ruleset stays active",
		"origin", origin,
		"error", err,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return err
}

// recordChange appends the loaded ruleset to the registry. History is
// best-effort: the ruleset is already serving, so a registry failure is
// logged rather than propagated.
func (m *Manager) recordChange(ctx context.Context, rs *ast.RuleSet, sha string) {
	if m.registry == nil {
		return
	}

	content, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		m.logger.Error("failed to serialize ruleset for registry", "error", err)
		return
	}

	change := &registry.Change{
		SHA:       sha,
		Version:   rs.Version,
		Author:    m.config.Author,
		RuleCount: len(rs.Rules),
		Content:   string(content),
		CreatedAt: time.Now().UTC(),
	}
	for _, r := range rs.Rules {
		if r.GeneratedByLLM && r.PromptSHA != "" {
			change.PromptSHA = r.PromptSHA
			break
		}
	}

	if err := m.registry.Record(ctx, change); err != nil {
		m.logger.Error("failed to record ruleset change",
			"rule_sha", sha,
			"error", err,
		)
	}
}

// Run watches the configured ruleset file and reloads on change. It blocks
// until the context is cancelled. Reload failures are logged and leave the
// previous ruleset active.
func (m *Manager) Run(ctx context.Context) error {
	if !m.config.Watch {
		return fmt.Errorf("ruleset watching is not enabled in configuration")
	}
	if m.config.Path == "" {
		return fmt.Errorf("ruleset watching requires a file path")
	}

	watcher, err := NewWatcher(&WatcherConfig{
		Path:             m.config.Path,
		DebounceInterval: m.config.DebounceInterval,
	}, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create ruleset watcher: %w", err)
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Watch(ctx, func() error {
			return m.Load(ctx)
		})
	}()

	select {
	case err := <-watchErr:
		return err
	case <-ctx.Done():
		if err := watcher.Stop(); err != nil {
			m.logger.Error("failed to stop ruleset watcher", "error", err)
		}
		return <-watchErr
	}
}

// LastLoadTime returns the timestamp of the last successful load.
func (m *Manager) LastLoadTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadTime
}

// LastLoadError returns the error from the last load attempt, or nil when
// the last load succeeded.
func (m *Manager) LastLoadError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadError
}

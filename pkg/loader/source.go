package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/dsl/parser"
)

// Source supplies ruleset documents to the Manager. Load returns the parsed
// ruleset together with a human-readable origin (a file path, "memory") used
// in logs and registry entries.
type Source interface {
	Load(ctx context.Context) (*ast.RuleSet, string, error)
}

// FileSource loads a ruleset from a single file on disk. The document format
// is chosen by file extension (.yaml/.yml/.json).
type FileSource struct {
	path   string
	parser *parser.Parser
	logger *slog.Logger
}

// NewFileSource creates a file-based ruleset source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		parser: parser.NewParser(),
		logger: logger,
	}
}

// Load reads and parses the ruleset file.
func (s *FileSource) Load(ctx context.Context) (*ast.RuleSet, string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, s.path, fmt.Errorf("failed to stat ruleset path %q: %w", s.path, err)
	}
	if info.IsDir() {
		return nil, s.path, fmt.Errorf("ruleset path %q is a directory, want a file", s.path)
	}

	rs, err := s.parser.ParseFile(s.path)
	if err != nil {
		return nil, s.path, err
	}

	s.logger.Debug("loaded ruleset from file",
		"path", s.path,
		"rule_count", len(rs.Rules),
		"version", rs.Version,
	)

	return rs, s.path, nil
}

// Path returns the file path this source reads from.
func (s *FileSource) Path() string {
	return s.path
}

// MemorySource serves a ruleset held in memory, for tests and embedding.
type MemorySource struct {
	mu sync.RWMutex
	rs *ast.RuleSet
}

// NewMemorySource creates an in-memory ruleset source.
func NewMemorySource(rs *ast.RuleSet) *MemorySource {
	return &MemorySource{rs: rs}
}

// Load returns the ruleset stored in memory.
func (s *MemorySource) Load(ctx context.Context) (*ast.RuleSet, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rs == nil {
		return nil, "memory", fmt.Errorf("memory source holds no ruleset")
	}
	return s.rs, "memory", nil
}

// Set replaces the stored ruleset. The next Load returns the new value.
func (s *MemorySource) Set(rs *ast.RuleSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs = rs
}

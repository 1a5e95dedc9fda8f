package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/dsl/parser"
	"mercator-hq/themis/pkg/engine"
)

// loadRuleset parses path and activates the ruleset in a fresh engine
// that logs only errors, keeping command output clean.
func loadRuleset(path string) (*engine.Engine, *ast.RuleSet, error) {
	rs, err := parser.NewParser().ParseFile(path)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	eng := engine.New(logger)
	if err := eng.Load(rs); err != nil {
		return nil, nil, err
	}

	return eng, rs, nil
}

// readEvents reads a single JSON event, or an array of them, from path.
// "-" reads standard input.
func readEvents(path string) ([]engine.Event, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		// #nosec G304 - The event file path is the operator's own flag value.
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("event input %s is empty", path)
	}

	if trimmed[0] == '[' {
		var events []engine.Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("failed to parse events: %w", err)
		}
		if len(events) == 0 {
			return nil, fmt.Errorf("event input %s contains no events", path)
		}
		return events, nil
	}

	var event engine.Event
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return []engine.Event{event}, nil
}

package main

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"mercator-hq/themis/pkg/registry"
)

func TestRunLogEmptyRegistry(t *testing.T) {
	reg, regPath := newTestRegistry(t)
	if err := reg.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()
	cfgFile = writeTempFile(t, "config.yaml", fmt.Sprintf("registry:\n  path: %q\n", regPath))

	logFlags.limit = 20
	logFlags.format = "text"

	if err := runLog(newTestCommand(t), []string{}); err != nil {
		t.Errorf("runLog() with empty registry returned error: %v", err)
	}
}

func TestRunLogListsChanges(t *testing.T) {
	reg, regPath := newTestRegistry(t)
	ctx := context.Background()

	changes := []*registry.Change{
		{
			SHA:       strings.Repeat("1", 64),
			Version:   "1.0",
			Author:    "alice",
			RuleCount: 2,
			Content:   "rules: v1\n",
			CreatedAt: time.Now().Add(-time.Hour),
		},
		{
			SHA:       strings.Repeat("2", 64),
			Version:   "1.0",
			Author:    "gen",
			Generator: "gpt-4o-mini",
			PromptSHA: strings.Repeat("3", 64),
			RuleCount: 3,
			Content:   "rules: v2\n",
			CreatedAt: time.Now(),
		},
	}
	for _, change := range changes {
		if err := reg.Record(ctx, change); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := reg.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()
	cfgFile = writeTempFile(t, "config.yaml", fmt.Sprintf("registry:\n  path: %q\n", regPath))

	logFlags.limit = 20
	logFlags.format = "text"

	if err := runLog(newTestCommand(t), []string{}); err != nil {
		t.Errorf("runLog() returned error: %v", err)
	}

	logFlags.format = "json"
	if err := runLog(newTestCommand(t), []string{}); err != nil {
		t.Errorf("runLog() with JSON format returned error: %v", err)
	}
}

func TestRunLogRegistryDisabled(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()
	cfgFile = writeTempFile(t, "config.yaml", "registry:\n  enabled: false\n")

	logFlags.limit = 20
	logFlags.format = "text"

	if err := runLog(newTestCommand(t), []string{}); err == nil {
		t.Error("runLog() with disabled registry should return error")
	}
}

func TestRunLogUnknownFormat(t *testing.T) {
	logFlags.limit = 20
	logFlags.format = "xml"

	if err := runLog(newTestCommand(t), []string{}); err == nil {
		t.Error("runLog() with unknown format should return error")
	}
}

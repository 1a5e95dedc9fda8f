// Package registry keeps a content-addressed history of every ruleset the
// engine has accepted. Each loaded ruleset is recorded once, keyed by its
// canonical SHA-256, together with provenance (author, generator, prompt
// fingerprint) and the full document content.
//
// The registry answers three operational questions:
//
//   - Which ruleset produced this decision? (Get by the decision's rule_sha)
//   - What is deployed right now, and what came before it? (Latest, List)
//   - What changed between two versions? (Diff)
//
// # Basic Usage
//
//	reg, err := registry.NewRegistry("data/registry.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//
//	err = reg.Record(ctx, &registry.Change{
//	    SHA:       sha,
//	    Version:   rs.Version,
//	    Author:    "deploy",
//	    RuleCount: len(rs.Rules),
//	    Content:   string(content),
//	})
//
// Recording is idempotent: a SHA already present is left untouched, so
// reloading the same document never rewrites history.
package registry

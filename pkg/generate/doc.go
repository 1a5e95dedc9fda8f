// Package generate drafts rulesets from plain-language policy statements
// using an OpenAI-compatible chat-completions endpoint.
//
// The prompt pins the condition grammar, the reply's YAML body is parsed
// and safety-validated like any other ruleset, and every drafted rule is
// stamped with generated_by_llm: true plus the SHA-256 of the prompt that
// produced it. A draft is written out for review; it is never loaded into
// an engine by this package.
package generate

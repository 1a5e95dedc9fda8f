package generate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/dsl/parser"
	"mercator-hq/themis/pkg/dsl/validator"
)

const (
	// DefaultTimeout bounds the whole chat-completions exchange.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxTokens is generous for a ruleset document; drafts that
	// need more are almost certainly off the rails.
	DefaultMaxTokens = 2048

	// DefaultTemperature keeps sampling near-deterministic so the same
	// statements draft substantially the same rules.
	DefaultTemperature = 0.2

	// maxResponseBytes caps how much of a response body is read. Draft
	// documents are small; anything larger is a misbehaving endpoint.
	maxResponseBytes = 4 << 20
)

// Config holds the connection settings for a drafting endpoint.
type Config struct {
	// Endpoint is the full chat-completions URL, for example
	// https://api.openai.com/v1/chat/completions or any local server
	// speaking the same API.
	Endpoint string

	// Model is passed through to the endpoint unchanged.
	Model string

	// APIKey is sent as a bearer token when non-empty. Local endpoints
	// usually run without one.
	APIKey string

	// Timeout bounds each HTTP attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxTokens caps the completion length. Zero means DefaultMaxTokens.
	MaxTokens int

	// Temperature is the sampling temperature. Zero or negative means
	// DefaultTemperature.
	Temperature float64

	// MaxRetries is the number of extra attempts after a transient
	// failure (network error or 5xx). Zero means one retry.
	MaxRetries int
}

// Draft is a generated ruleset awaiting human review. Document is the
// stamped YAML source; RuleSet is its parsed and validated form. Drafts
// are never activated automatically.
type Draft struct {
	RuleSet   *ast.RuleSet
	Document  []byte
	PromptSHA string
}

// Generator drafts rulesets from plain-language policy statements by
// calling an OpenAI-compatible chat-completions endpoint. Every rule in a
// draft is stamped with generated_by_llm and the SHA-256 of the prompt
// that produced it, so provenance survives into the audit trail.
type Generator struct {
	config    Config
	client    *http.Client
	parser    *parser.Parser
	validator *validator.Validator
	logger    *slog.Logger
}

// New creates a generator. The endpoint and model are required; logger
// may be nil.
func New(cfg Config, logger *slog.Logger) (*Generator, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("generate: endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("generate: model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		config:    cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		parser:    parser.NewParser(),
		validator: validator.NewValidator(),
		logger:    logger.With("component", "generate"),
	}, nil
}

// Generate drafts a ruleset from the given policy statements. The returned
// draft parses cleanly and passed safety validation, but it is a proposal:
// the caller decides whether it ever reaches an engine.
func (g *Generator) Generate(ctx context.Context, statements []string) (*Draft, error) {
	if len(statements) == 0 {
		return nil, fmt.Errorf("generate: at least one policy statement is required")
	}
	for i, s := range statements {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("generate: statement %d is empty", i+1)
		}
	}

	prompt := BuildPrompt(statements)
	sum := sha256.Sum256([]byte(prompt))
	promptSHA := hex.EncodeToString(sum[:])

	content, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	body := ExtractYAML(content)
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("generate: response contains no YAML document")
	}

	doc, err := stampDraft([]byte(body), promptSHA, g.config.Model, len(statements))
	if err != nil {
		return nil, err
	}

	rs, err := g.parser.ParseYAML(doc)
	if err != nil {
		return nil, fmt.Errorf("generate: draft does not parse: %w", err)
	}
	if err := validateDraft(g.validator, rs); err != nil {
		return nil, fmt.Errorf("generate: draft failed validation: %w", err)
	}

	g.logger.Info("ruleset draft generated",
		"model", g.config.Model,
		"statement_count", len(statements),
		"rule_count", len(rs.Rules),
		"prompt_sha", promptSHA,
	)

	return &Draft{RuleSet: rs, Document: doc, PromptSHA: promptSHA}, nil
}

// chatRequest is the subset of the chat-completions request the drafter
// needs.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// complete sends the prompt and returns the assistant's reply, retrying
// transient failures with exponential backoff.
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			g.logger.Debug("retrying draft request",
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		content, retryable, err := g.doRequest(ctx, reqBody)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		g.logger.Warn("draft request failed, will retry",
			"attempt", attempt+1,
			"error", err,
		)
	}

	return "", lastErr
}

// doRequest performs one HTTP attempt. The retryable result tells the
// caller whether another attempt could help: network errors and 5xx are
// retryable, everything else is final.
func (g *Generator) doRequest(ctx context.Context, body []byte) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("generate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("generate: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", true, fmt.Errorf("generate: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return "", resp.StatusCode >= 500, fmt.Errorf("generate: endpoint returned %d: %s", resp.StatusCode, msg)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, fmt.Errorf("generate: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("generate: endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("generate: response has no choices")
	}
	content = parsed.Choices[0].Message.Content
	if content == "" {
		return "", false, fmt.Errorf("generate: response content is empty")
	}
	return content, false, nil
}

// draftDoc is the generic decoded form of a draft. Rules stay untyped
// mappings here so provenance fields can be stamped before the typed
// parse sees them.
type draftDoc struct {
	Version  string           `yaml:"version"`
	Metadata map[string]any   `yaml:"metadata,omitempty"`
	Rules    []map[string]any `yaml:"rules"`
}

// stampDraft marks every rule as machine-drafted and records the drafting
// provenance in the document metadata.
func stampDraft(body []byte, promptSHA, model string, statementCount int) ([]byte, error) {
	var doc draftDoc
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("generate: response is not valid YAML: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("generate: response contains no rules")
	}
	if doc.Version == "" {
		doc.Version = "1.0"
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	doc.Metadata["generated_by"] = "themis gen"
	doc.Metadata["model"] = model
	doc.Metadata["statement_count"] = statementCount

	for _, rule := range doc.Rules {
		rule["generated_by_llm"] = true
		rule["prompt_sha"] = promptSHA
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("generate: encode draft: %w", err)
	}
	return out, nil
}

// validateDraft applies the same checks a load would: duplicate rule ids
// first, then the safety validator.
func validateDraft(v *validator.Validator, rs *ast.RuleSet) error {
	seen := make(map[string]struct{}, len(rs.Rules))
	for i := range rs.Rules {
		id := rs.Rules[i].ID
		if _, dup := seen[id]; dup {
			return &validator.ValidationError{RuleID: id, Message: "duplicate id"}
		}
		seen[id] = struct{}{}
	}
	return v.Validate(rs)
}

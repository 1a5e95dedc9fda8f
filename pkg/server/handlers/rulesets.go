package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	"mercator-hq/themis/pkg/dsl/parser"
	"mercator-hq/themis/pkg/engine"
	"mercator-hq/themis/pkg/server/middleware"
)

// maxRulesetBytes caps uploaded ruleset documents at 4 MB.
const maxRulesetBytes = 4 << 20

// UploadRulesetResponse is the response body for a successful upload.
type UploadRulesetResponse struct {
	RuleSHA   string `json:"rule_sha"`
	Version   string `json:"version"`
	RuleCount int    `json:"rule_count"`
}

// RulesetsHandler accepts ruleset documents over HTTP and activates them.
type RulesetsHandler struct {
	parser *parser.Parser
	loader RulesetLoader
	engine *engine.Engine
}

// NewRulesetsHandler creates the ruleset upload handler.
func NewRulesetsHandler(p *parser.Parser, loader RulesetLoader, eng *engine.Engine) *RulesetsHandler {
	return &RulesetsHandler{parser: p, loader: loader, engine: eng}
}

// ServeHTTP handles POST /api/v1/rulesets.
func (h *RulesetsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRulesetBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxRulesetBytes {
		writeError(w, http.StatusRequestEntityTooLarge, ErrTypeBadRequest, "ruleset document too large")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "request body is empty")
		return
	}

	rs, err := h.parser.ParseBytes(body, formatForContentType(r.Header.Get("Content-Type")), "")
	if err != nil {
		writeLoadError(w, err)
		return
	}

	if err := h.loader.Apply(r.Context(), rs, "http:"+r.RemoteAddr); err != nil {
		writeLoadError(w, err)
		return
	}

	sha, _ := h.engine.RulesetSHA()

	slog.InfoContext(r.Context(), "ruleset uploaded",
		"rule_sha", sha,
		"version", rs.Version,
		"rule_count", len(rs.Rules),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, UploadRulesetResponse{
		RuleSHA:   sha,
		Version:   rs.Version,
		RuleCount: len(rs.Rules),
	})
}

// formatForContentType picks the document format from the Content-Type
// header. YAML is the default: it is the native ruleset format and curl
// uploads rarely set a media type.
func formatForContentType(contentType string) parser.Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return parser.FormatYAML
	}
	switch mediaType {
	case "application/json":
		return parser.FormatJSON
	default:
		return parser.FormatYAML
	}
}

// ActiveRulesetResponse describes the currently loaded ruleset.
type ActiveRulesetResponse struct {
	Loaded    bool   `json:"loaded"`
	RuleSHA   string `json:"rule_sha,omitempty"`
	Version   string `json:"version,omitempty"`
	RuleCount int    `json:"rule_count"`
}

// ActiveRulesetHandler reports the identity of the active ruleset.
type ActiveRulesetHandler struct {
	engine *engine.Engine
}

// NewActiveRulesetHandler creates the active-ruleset info handler.
func NewActiveRulesetHandler(eng *engine.Engine) *ActiveRulesetHandler {
	return &ActiveRulesetHandler{engine: eng}
}

// ServeHTTP handles GET /api/v1/rulesets/active.
func (h *ActiveRulesetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := ActiveRulesetResponse{}
	if sha, ok := h.engine.RulesetSHA(); ok {
		resp.Loaded = true
		resp.RuleSHA = sha
		resp.RuleCount = h.engine.RuleCount()
		if rs := h.engine.ActiveRuleSet(); rs != nil {
			resp.Version = rs.Version
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

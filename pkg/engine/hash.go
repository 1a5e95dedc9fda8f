package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"

	"mercator-hq/themis/pkg/dsl/ast"
)

// CanonicalHash computes the content hash of a ruleset: the SHA-256 digest
// of its RFC 8785 (JCS) canonical JSON encoding, as lowercase hex.
//
// Canonicalization makes the hash independent of incidental formatting in
// the source document: a ruleset authored in YAML and its JSON equivalent
// hash identically, as do re-serializations with reordered object keys.
// The hash changes whenever any rule, condition, or outcome value changes.
func CanonicalHash(rs *ast.RuleSet) (string, error) {
	encoded, err := json.Marshal(rs)
	if err != nil {
		return "", &ExecutionError{Op: "encode ruleset", Cause: err}
	}

	canonical, err := jcs.Transform(encoded)
	if err != nil {
		return "", &ExecutionError{Op: "canonicalize ruleset", Cause: err}
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

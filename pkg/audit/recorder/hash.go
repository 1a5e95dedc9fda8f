package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"

	"mercator-hq/themis/pkg/engine"
)

const (
	// PayloadHashLength is the number of hex characters kept from the
	// SHA-256 digest of the canonical event payload.
	PayloadHashLength = 16

	// UnknownPayloadHash marks records whose event payload was empty or
	// could not be encoded.
	UnknownPayloadHash = "unknown"
)

// HashEvent computes a truncated SHA-256 fingerprint of the event payload.
// The payload is canonicalized (RFC 8785) before hashing, so equivalent
// events produce the same fingerprint regardless of key order or source
// formatting.
//
// Returns UnknownPayloadHash for empty events and for events that cannot
// be encoded.
func HashEvent(event engine.Event) string {
	if len(event) == 0 {
		return UnknownPayloadHash
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return UnknownPayloadHash
	}

	canonical, err := jcs.Transform(encoded)
	if err != nil {
		return UnknownPayloadHash
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:PayloadHashLength]
}

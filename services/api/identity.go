package api

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// DeriveKey flattens a (scope, discriminator) pair into a single opaque
// primary-key string: the BLAKE3-256 digest of the scope followed by the
// digest of the discriminator, hex encoded. Deterministic and one-way; two
// distinct pairs never collide in practice.
//
// Used for member keys (team id + username), tag and status uniqueness
// hashes (team id + title), and pinned-ticket keys (member id + ticket id).
func DeriveKey(scopeID, discriminator string) (string, error) {
	if scopeID == "" {
		return "", missingField("scope")
	}
	if discriminator == "" {
		return "", missingField("discriminator")
	}

	scope := blake3.Sum256([]byte(scopeID))
	disc := blake3.Sum256([]byte(discriminator))
	return hex.EncodeToString(scope[:]) + hex.EncodeToString(disc[:]), nil
}

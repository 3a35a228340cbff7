// Package identity derives an opaque caller key for admission control so
// raw client addresses never reach the counter store.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// Hasher turns a raw caller identity into an opaque string.
type Hasher struct {
	salt string
}

// NewHasher returns a Hasher that mixes salt into every digest.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// Hash returns the hex SHA-256 digest of salt and raw.
func (h *Hasher) Hash(raw string) string {
	sum := sha256.Sum256([]byte(h.salt + ":" + raw))
	return hex.EncodeToString(sum[:])
}

// FromRequest returns the caller's address. With trustProxy set, the first
// X-Forwarded-For hop wins over the socket address.
func FromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

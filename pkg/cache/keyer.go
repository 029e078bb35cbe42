package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Key types, used as the first segment of every generated key.
const (
	KeyTypeArtifact = "artifact"
	KeyTypeDocument = "document"
)

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string   `json:"format"`
	Detailed bool     `json:"detailed,omitempty"`
	Layers   []string `json:"layers,omitempty"`
}

// Keyer builds cache keys. Keys start with their key type followed by a
// colon, which is what [Instrument] reports to the hooks.
type Keyer interface {
	// ArtifactKey identifies a rendered diagram of the catalog with the
	// given digest.
	ArtifactKey(digest string, opts ArtifactKeyOpts) string

	// DocumentKey identifies the serialized export of a catalog.
	DocumentKey(digest, format string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the digest together with the options.
func (DefaultKeyer) ArtifactKey(digest string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, digest, opts)
}

// DocumentKey is readable because it has no free-form parts.
func (DefaultKeyer) DocumentKey(digest, format string) string {
	return fmt.Sprintf("%s:%s:%s", KeyTypeDocument, format, digest)
}

// KeyType returns the key type segment of a key built by a [Keyer], with
// any scope prefix removed. Unknown keys report "other".
func KeyType(key string) string {
	for _, t := range []string{KeyTypeArtifact, KeyTypeDocument} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "other"
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Package apikey generates and parses the prefixed API keys described
// in spec GLOSSARY: "prefix_shortToken_longToken". The server persists
// shortToken verbatim (as a lookup shard) and SHA3-256(longTokenBytes)
// (grounded on original_source/server/src/util.rs's hash_key).
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const prefix = "extrachat"

// base58Alphabet mirrors original_source/server/src/logging.rs's
// KEY_REGEX charset: digits and letters, minus the visually ambiguous
// 0, O, I, l.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func randomToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating random token: %w", err)
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = base58Alphabet[int(b)%len(base58Alphabet)]
	}
	return string(out), nil
}

// Key is a freshly generated credential. LongToken is hashed and
// discarded; it is never persisted in plaintext (spec §4.3 Register:
// "the key is returned in plaintext exactly once").
type Key struct {
	ShortToken string
	LongToken  string
}

// Generate produces a new prefixed key with the fixed "extrachat"
// prefix.
func Generate() (Key, error) {
	short, err := randomToken(8)
	if err != nil {
		return Key{}, err
	}
	long, err := randomToken(24)
	if err != nil {
		return Key{}, err
	}
	return Key{ShortToken: short, LongToken: long}, nil
}

// String renders the full bearer credential.
func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s", prefix, k.ShortToken, k.LongToken)
}

// Hash returns the hex-encoded SHA3-256 of the long token, the form
// stored as users.key_hash.
func (k Key) Hash() string {
	sum := sha3.Sum256([]byte(k.LongToken))
	return hex.EncodeToString(sum[:])
}

// Parse splits a bearer credential into its short token and long-token
// hash, ready to look up against users.(key_short, key_hash).
func Parse(raw string) (shortToken, longHash string, err error) {
	parts := strings.SplitN(raw, "_", 3)
	if len(parts) != 3 || parts[0] != prefix || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("apikey: malformed key")
	}
	sum := sha3.Sum256([]byte(parts[2]))
	return parts[1], hex.EncodeToString(sum[:]), nil
}

// Package vault generates, hashes, and verifies secrets and passwords.
//
// Secrets are drawn from a cryptographically secure random source and
// surfaced to their owner exactly once; only the bcrypt hash is ever
// persisted. Hashing is adaptive and self-salting, so the encoded hash
// carries its own salt and cost and two hashes of the same input are
// never equal. Comparison goes through Verify, never string equality.
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
)

// secretBytes is the size of generated raw secrets.
const secretBytes = 32

// Config configures credential hashing.
type Config struct {
	// BcryptCost is the bcrypt work factor (default: 12, range: 4-31).
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("vault.bcrypt_cost must be between %d and %d (got: %d)",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	return nil
}

// Vault generates random secrets and hashes/verifies credentials.
// Stateless per call; hashing is CPU-bound and intentionally slow, so
// callers must not hold shared locks while invoking Hash or Verify.
type Vault struct {
	cost int
	log  *logger.Logger
}

// New creates a Vault from configuration.
func New(cfg Config, log *logger.Logger) (*Vault, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Vault{
		cost: cfg.BcryptCost,
		log:  log.WithComponent("vault"),
	}, nil
}

// GenerateSecret returns a fresh random secret: 32 cryptographically
// random bytes encoded as URL-safe, unpadded base64.
func (v *Vault) GenerateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("vault: generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash returns the bcrypt hash of raw. Each call produces a different
// encoded hash for the same input. Inputs beyond bcrypt's 72-byte limit
// are rejected as invalid input, not surfaced as an internal failure.
func (v *Vault) Hash(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), v.cost)
	if err == bcrypt.ErrPasswordTooLong {
		return "", errors.Validation("Password must not exceed 72 bytes.")
	}
	if err != nil {
		return "", fmt.Errorf("vault: hash: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether raw is the input that produced hash.
//
// A malformed or corrupt stored hash verifies as false rather than
// raising an error, so callers need no separate path for credential
// mismatch vs. storage corruption; the corruption itself is logged.
func (v *Vault) Verify(raw, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
	if err == nil {
		return true
	}
	if err != bcrypt.ErrMismatchedHashAndPassword {
		v.log.Warn("Stored credential hash is malformed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return false
}

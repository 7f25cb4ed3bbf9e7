package vault

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
)

// Low cost keeps the bcrypt-heavy tests fast.
func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(Config{BcryptCost: 4}, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestNewValidatesCost(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{"default from zero", 0, false},
		{"minimum", 4, false},
		{"maximum", 31, false},
		{"below minimum", 3, true},
		{"above maximum", 32, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{BcryptCost: tt.cost}, logger.NewDefault("test"))
			if (err != nil) != tt.wantErr {
				t.Errorf("New(cost=%d) error = %v, wantErr %v", tt.cost, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateSecretShape(t *testing.T) {
	v := newTestVault(t)

	secret, err := v.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if strings.ContainsAny(secret, "+/=") {
		t.Errorf("secret %q is not URL-safe unpadded", secret)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(secret)
	if err != nil {
		t.Fatalf("secret is not valid base64url: %v", err)
	}
	if len(decoded) != 32 {
		t.Errorf("expected 32 decoded bytes, got %d", len(decoded))
	}
}

func TestGenerateSecretUnique(t *testing.T) {
	v := newTestVault(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		secret, err := v.GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret: %v", err)
		}
		if seen[secret] {
			t.Fatalf("secret repeated after %d draws", i)
		}
		seen[secret] = true
	}
}

func TestHashSelfSalting(t *testing.T) {
	v := newTestVault(t)

	h1, err := v.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := v.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same input must differ (self-salting)")
	}
}

func TestHashRejectsOverlongInput(t *testing.T) {
	v := newTestVault(t)

	// bcrypt only reads the first 72 bytes; longer inputs must fail as
	// invalid input so callers do not report them as internal errors.
	_, err := v.Hash(strings.Repeat("a", 100))
	if err == nil {
		t.Fatal("expected Hash of a 100-byte input to fail")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected code %s, got %v", errors.ErrCodeInvalidInput, err)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	v := newTestVault(t)

	hash, err := v.Hash("s3cret-value")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if !v.Verify("s3cret-value", hash) {
		t.Error("expected Verify(raw, Hash(raw)) to be true")
	}
	if v.Verify("other-value", hash) {
		t.Error("expected Verify with wrong raw to be false")
	}
}

func TestVerifyMalformedHashIsFalse(t *testing.T) {
	v := newTestVault(t)

	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$corrupt"} {
		if v.Verify("anything", hash) {
			t.Errorf("expected Verify against %q to be false", hash)
		}
	}
}

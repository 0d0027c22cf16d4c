package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

func TestKeystore(t *testing.T) {
	t.Run("generate and load plaintext", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hearth.key")
		secretKey := GenerateKey()

		if err := SaveKey(path, secretKey, ""); err != nil {
			t.Fatalf("failed to save key: %v", err)
		}

		loaded, publicKey, err := LoadKey(path, "")
		if err != nil {
			t.Fatalf("failed to load key: %v", err)
		}
		if loaded != secretKey {
			t.Error("loaded key does not match saved key")
		}

		expected, err := nostr.GetPublicKey(secretKey)
		if err != nil {
			t.Fatalf("failed to derive public key: %v", err)
		}
		if publicKey != expected {
			t.Errorf("expected public key %s, got %s", expected, publicKey)
		}
	})

	t.Run("encrypted round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hearth.key")
		secretKey := GenerateKey()

		if err := SaveKey(path, secretKey, "correct horse"); err != nil {
			t.Fatalf("failed to save key: %v", err)
		}

		loaded, _, err := LoadKey(path, "correct horse")
		if err != nil {
			t.Fatalf("failed to load key: %v", err)
		}
		if loaded != secretKey {
			t.Error("loaded key does not match saved key")
		}
	})

	t.Run("encrypted keystore does not store the key in the clear", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hearth.key")
		secretKey := GenerateKey()

		if err := SaveKey(path, secretKey, "passphrase"); err != nil {
			t.Fatalf("failed to save key: %v", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read keystore: %v", err)
		}
		if strings.Contains(string(raw), secretKey) {
			t.Error("secret key appears in plaintext in the keystore")
		}
	})

	t.Run("wrong passphrase is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hearth.key")

		if err := SaveKey(path, GenerateKey(), "right"); err != nil {
			t.Fatalf("failed to save key: %v", err)
		}

		if _, _, err := LoadKey(path, "wrong"); !errors.Is(err, ErrWrongPassphrase) {
			t.Errorf("expected ErrWrongPassphrase, got %v", err)
		}

		if _, _, err := LoadKey(path, ""); !errors.Is(err, ErrWrongPassphrase) {
			t.Errorf("expected ErrWrongPassphrase for empty passphrase, got %v", err)
		}
	})

	t.Run("missing keystore returns ErrMissingKey", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.key")
		if _, _, err := LoadKey(path, ""); !errors.Is(err, ErrMissingKey) {
			t.Errorf("expected ErrMissingKey, got %v", err)
		}
	})

	t.Run("ForgetKey removes the keystore", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hearth.key")
		if err := SaveKey(path, GenerateKey(), ""); err != nil {
			t.Fatalf("failed to save key: %v", err)
		}

		if err := ForgetKey(path); err != nil {
			t.Fatalf("failed to forget key: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("keystore file should be gone")
		}

		// A second forget is not an error.
		if err := ForgetKey(path); err != nil {
			t.Errorf("forgetting a missing keystore should succeed: %v", err)
		}
	})
}

func TestDecodeKeyInput(t *testing.T) {
	secretKey := GenerateKey()

	t.Run("hex passes through", func(t *testing.T) {
		decoded, err := DecodeKeyInput(secretKey)
		if err != nil {
			t.Fatalf("failed to decode hex key: %v", err)
		}
		if decoded != secretKey {
			t.Error("hex key should pass through unchanged")
		}
	})

	t.Run("nsec decodes to hex", func(t *testing.T) {
		nsec, err := nip19.EncodePrivateKey(secretKey)
		if err != nil {
			t.Fatalf("failed to encode nsec: %v", err)
		}

		decoded, err := DecodeKeyInput(nsec)
		if err != nil {
			t.Fatalf("failed to decode nsec: %v", err)
		}
		if decoded != secretKey {
			t.Error("nsec should decode to the original hex key")
		}
	})

	t.Run("junk is rejected", func(t *testing.T) {
		for _, input := range []string{"", "zzzz", "nsec1notakey", "deadbeef"} {
			if _, err := DecodeKeyInput(input); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("DecodeKeyInput(%q): expected ErrInvalidKey, got %v", input, err)
			}
		}
	})
}

func TestNpub(t *testing.T) {
	secretKey := GenerateKey()
	publicKey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		t.Fatalf("failed to derive public key: %v", err)
	}

	npub := Npub(publicKey)
	if !strings.HasPrefix(npub, "npub1") {
		t.Errorf("expected npub1 prefix, got %s", npub)
	}
}

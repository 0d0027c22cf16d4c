package shared

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Current version of the keystore blob format.
const keystoreVersion = 1

// keystoreBlob is the on-disk JSON structure holding the secret key, either
// plaintext (kdf "none") or sealed with a passphrase-derived key.
type keystoreBlob struct {
	V      int    `json:"v"`
	KDF    string `json:"kdf"`
	Salt   []byte `json:"salt,omitempty"`
	N      int    `json:"scrypt_n,omitempty"`
	R      int    `json:"scrypt_r,omitempty"`
	P      int    `json:"scrypt_p,omitempty"`
	Cipher []byte `json:"cipher"`
}

// scryptParams returns the key derivation tunables used for new keystores.
func scryptParams() (N, r, p int) { return 1 << 15, 8, 1 }

// GenerateKey creates a fresh Nostr secret key in hex form.
func GenerateKey() string {
	return nostr.GeneratePrivateKey()
}

// DecodeKeyInput accepts a secret key as hex or bech32 (nsec) and returns hex.
func DecodeKeyInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "nsec1") {
		prefix, value, err := nip19.Decode(input)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		if prefix != "nsec" {
			return "", fmt.Errorf("%w: unexpected prefix %q", ErrInvalidKey, prefix)
		}
		sk, ok := value.(string)
		if !ok {
			return "", ErrInvalidKey
		}
		return sk, nil
	}

	raw, err := hex.DecodeString(input)
	if err != nil || len(raw) != 32 {
		return "", fmt.Errorf("%w: expected 64 hex characters or an nsec", ErrInvalidKey)
	}
	return input, nil
}

// SaveKey writes the secret key to path. With a non-empty passphrase the key
// is sealed with scrypt + ChaCha20-Poly1305; otherwise it is stored plaintext.
func SaveKey(path, secretKey, passphrase string) error {
	var blob keystoreBlob

	if passphrase == "" {
		blob = keystoreBlob{V: keystoreVersion, KDF: "none", Cipher: []byte(secretKey)}
	} else {
		var salt [16]byte
		if _, err := rand.Read(salt[:]); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}

		N, r, p := scryptParams()
		key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
		if err != nil {
			return fmt.Errorf("key derivation failed: %w", err)
		}

		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return fmt.Errorf("cipher init failed: %w", err)
		}

		// Zero nonce: the salt-bound key is unique per keystore write.
		var nonce [chacha20poly1305.NonceSize]byte
		ct := aead.Seal(nil, nonce[:], []byte(secretKey), salt[:])

		blob = keystoreBlob{V: keystoreVersion, KDF: "scrypt", Salt: salt[:], N: N, R: r, P: p, Cipher: ct}
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keystore: %w", err)
	}

	return nil
}

// LoadKey reads the keystore at path and returns the secret key and its public key.
func LoadKey(path, passphrase string) (secretKey, publicKey string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", ErrMissingKey
		}
		return "", "", fmt.Errorf("failed to read keystore: %w", err)
	}

	var blob keystoreBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return "", "", fmt.Errorf("failed to parse keystore: %w", err)
	}
	if blob.V > keystoreVersion {
		return "", "", fmt.Errorf("%w: unsupported keystore version %d", ErrInvalidKey, blob.V)
	}

	switch blob.KDF {
	case "none", "":
		secretKey = string(blob.Cipher)
	case "scrypt":
		if passphrase == "" {
			return "", "", fmt.Errorf("%w: keystore is encrypted", ErrWrongPassphrase)
		}
		key, kerr := scrypt.Key([]byte(passphrase), blob.Salt, blob.N, blob.R, blob.P, chacha20poly1305.KeySize)
		if kerr != nil {
			return "", "", fmt.Errorf("key derivation failed: %w", kerr)
		}
		aead, kerr := chacha20poly1305.New(key)
		if kerr != nil {
			return "", "", fmt.Errorf("cipher init failed: %w", kerr)
		}
		var nonce [chacha20poly1305.NonceSize]byte
		pt, kerr := aead.Open(nil, nonce[:], blob.Cipher, blob.Salt)
		if kerr != nil {
			return "", "", ErrWrongPassphrase
		}
		secretKey = string(pt)
	default:
		return "", "", fmt.Errorf("%w: unknown kdf %q", ErrInvalidKey, blob.KDF)
	}

	publicKey, err = nostr.GetPublicKey(secretKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return secretKey, publicKey, nil
}

// ForgetKey removes the keystore file. Missing files are not an error.
func ForgetKey(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove keystore: %w", err)
	}
	return nil
}

// Npub renders a hex public key in bech32 form for display.
func Npub(publicKey string) string {
	if npub, err := nip19.EncodePublicKey(publicKey); err == nil {
		return npub
	}
	return publicKey
}

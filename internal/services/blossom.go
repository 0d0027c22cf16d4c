// Blossom file server client
//
// Implements the upload, fetch, list, and delete flows against BUD-01/BUD-02
// servers. Blobs are addressed by their sha256 hash; authorization is a
// signed kind 24242 event carried base64-encoded in the Authorization header.
package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nbd-wtf/go-nostr"

	"github.com/hearthkeep/hearth/internal/shared"
)

// KindBlossomAuth is the authorization event kind for Blossom servers.
const KindBlossomAuth = 24242

const authExpiry = 5 * time.Minute

// BlobDescriptor describes a stored blob as returned by a Blossom server.
type BlobDescriptor struct {
	URL      string `json:"url"`
	SHA256   string `json:"sha256"`
	Size     int64  `json:"size"`
	Type     string `json:"type,omitempty"`
	Uploaded int64  `json:"uploaded,omitempty"`
}

// BlossomService uploads and retrieves file attachments (manuals, receipts,
// photos) from a prioritized list of Blossom servers.
type BlossomService struct {
	servers []string
	secret  string
	pubkey  string
	client  *http.Client
	logger  *log.Logger
}

// NewBlossomService builds a BlossomService from config and a decrypted
// secret key.
func NewBlossomService(config *shared.Config, secretKey string, client *http.Client, logger *log.Logger) (*BlossomService, error) {
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidKey, err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &BlossomService{
		servers: config.Blossom.Servers,
		secret:  secretKey,
		pubkey:  pubkey,
		client:  client,
		logger:  shared.WithLogger(logger, "service", "blossom"),
	}, nil
}

// Servers returns the configured server URLs in priority order.
func (b *BlossomService) Servers() []string { return b.servers }

// Hash returns the hex sha256 of a blob, its Blossom address.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// authHeader builds the base64-encoded signed authorization event for one
// verb ("upload", "delete", "list") against one blob hash.
func (b *BlossomService) authHeader(verb, hash string) (string, error) {
	tags := nostr.Tags{
		{"t", verb},
		{"expiration", strconv.FormatInt(time.Now().Add(authExpiry).Unix(), 10)},
	}
	if hash != "" {
		tags = append(tags, nostr.Tag{"x", hash})
	}

	evt := nostr.Event{
		PubKey:    b.pubkey,
		CreatedAt: nostr.Now(),
		Kind:      KindBlossomAuth,
		Tags:      tags,
		Content:   verb + " blob",
	}
	if err := evt.Sign(b.secret); err != nil {
		return "", fmt.Errorf("failed to sign auth event: %w", err)
	}

	raw, err := json.Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("failed to encode auth event: %w", err)
	}
	return "Nostr " + base64.StdEncoding.EncodeToString(raw), nil
}

// Upload sends a blob to the first server that accepts it, trying each
// configured server in order.
func (b *BlossomService) Upload(ctx context.Context, data []byte, mimeType string) (*BlobDescriptor, error) {
	if len(b.servers) == 0 {
		return nil, fmt.Errorf("%w: no file servers configured", shared.ErrMissingConfig)
	}

	hash := Hash(data)
	auth, err := b.authHeader("upload", hash)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, server := range b.servers {
		desc, err := b.uploadTo(ctx, server, data, mimeType, auth)
		if err != nil {
			b.logger.Warn("upload failed, trying next server", "server", server, "error", err)
			lastErr = err
			continue
		}
		b.logger.Info("blob uploaded", "server", server, "sha256", desc.SHA256, "size", desc.Size)
		return desc, nil
	}

	return nil, fmt.Errorf("%w: %v", shared.ErrUploadRejected, lastErr)
}

func (b *BlossomService) uploadTo(ctx context.Context, server string, data []byte, mimeType, auth string) (*BlobDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, strings.TrimSuffix(server, "/")+"/upload", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth)
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var desc BlobDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to decode blob descriptor: %w", err)
	}
	return &desc, nil
}

// Fetch retrieves a blob by hash, trying each server in order until one has
// it. Blob reads need no authorization.
func (b *BlossomService) Fetch(ctx context.Context, hash string) ([]byte, error) {
	if len(b.servers) == 0 {
		return nil, fmt.Errorf("%w: no file servers configured", shared.ErrMissingConfig)
	}

	for _, server := range b.servers {
		data, err := b.fetchFrom(ctx, server, hash)
		if err != nil {
			b.logger.Debug("blob not on server", "server", server, "sha256", hash, "error", err)
			continue
		}
		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrBlobNotFound, hash)
}

func (b *BlossomService) fetchFrom(ctx context.Context, server, hash string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(server, "/")+"/"+hash, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Verify content addressing before trusting a mirror.
	if Hash(data) != hash {
		return nil, fmt.Errorf("hash mismatch from %s", server)
	}
	return data, nil
}

// List returns the blobs stored for the service's public key on the first
// reachable server.
func (b *BlossomService) List(ctx context.Context) ([]BlobDescriptor, error) {
	if len(b.servers) == 0 {
		return nil, fmt.Errorf("%w: no file servers configured", shared.ErrMissingConfig)
	}

	auth, err := b.authHeader("list", "")
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, server := range b.servers {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(server, "/")+"/list/"+b.pubkey, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", auth)

		resp, err := b.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
			continue
		}

		var blobs []BlobDescriptor
		err = json.NewDecoder(resp.Body).Decode(&blobs)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to decode blob list: %w", err)
			continue
		}
		return blobs, nil
	}

	return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, lastErr)
}

// Delete removes a blob from every server that has it. A server without the
// blob is not an error.
func (b *BlossomService) Delete(ctx context.Context, hash string) error {
	if len(b.servers) == 0 {
		return fmt.Errorf("%w: no file servers configured", shared.ErrMissingConfig)
	}

	auth, err := b.authHeader("delete", hash)
	if err != nil {
		return err
	}

	deleted := 0
	for _, server := range b.servers {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, strings.TrimSuffix(server, "/")+"/"+hash, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", auth)

		resp, err := b.client.Do(req)
		if err != nil {
			b.logger.Warn("delete failed", "server", server, "error", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
			deleted++
		}
	}

	if deleted == 0 {
		return fmt.Errorf("%w: no server accepted the delete", shared.ErrServiceUnavailable)
	}
	return nil
}

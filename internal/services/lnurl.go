// LNURL-pay client for the donation flow
//
// Resolves a lightning address (name@domain) to pay parameters per LUD-16,
// then requests a bolt11 invoice for a chosen amount.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hearthkeep/hearth/internal/shared"
)

// PayParams holds the LNURL-pay parameters resolved from a lightning address.
type PayParams struct {
	Callback    string `json:"callback"`
	MinSendable int64  `json:"minSendable"` // millisats
	MaxSendable int64  `json:"maxSendable"` // millisats
	Metadata    string `json:"metadata"`
	Tag         string `json:"tag"`
}

type invoiceResponse struct {
	PR     string `json:"pr"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// LNURLService resolves lightning addresses and fetches invoices.
type LNURLService struct {
	client *http.Client

	// AllowHTTP permits plain-http endpoints. Tests only.
	AllowHTTP bool
}

// NewLNURLService creates an LNURLService with the given HTTP client.
func NewLNURLService(client *http.Client) *LNURLService {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &LNURLService{client: client}
}

// Resolve looks up the LNURL-pay parameters for a lightning address.
func (l *LNURLService) Resolve(ctx context.Context, address string) (*PayParams, error) {
	name, domain, ok := strings.Cut(address, "@")
	if !ok || name == "" || domain == "" {
		return nil, fmt.Errorf("%w: lightning address must be name@domain", shared.ErrInvalidInput)
	}

	scheme := "https"
	if l.AllowHTTP {
		scheme = "http"
	}
	endpoint := fmt.Sprintf("%s://%s/.well-known/lnurlp/%s", scheme, domain, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: lnurl endpoint returned %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	var params PayParams
	if err := json.NewDecoder(resp.Body).Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode pay params: %w", err)
	}
	if params.Callback == "" {
		return nil, fmt.Errorf("%w: pay params missing callback", shared.ErrInvalidInput)
	}

	return &params, nil
}

// RequestInvoice fetches a bolt11 invoice for the given amount in millisats.
func (l *LNURLService) RequestInvoice(ctx context.Context, params *PayParams, amountMsat int64) (string, error) {
	if params.MinSendable > 0 && amountMsat < params.MinSendable {
		return "", fmt.Errorf("%w: amount below minimum of %s", shared.ErrInvalidInput, shared.FormatSats(params.MinSendable))
	}
	if params.MaxSendable > 0 && amountMsat > params.MaxSendable {
		return "", fmt.Errorf("%w: amount above maximum of %s", shared.ErrInvalidInput, shared.FormatSats(params.MaxSendable))
	}

	callback, err := url.Parse(params.Callback)
	if err != nil {
		return "", fmt.Errorf("%w: bad callback url: %v", shared.ErrInvalidInput, err)
	}
	query := callback.Query()
	query.Set("amount", fmt.Sprintf("%d", amountMsat))
	callback.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callback.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	var invoice invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return "", fmt.Errorf("failed to decode invoice response: %w", err)
	}

	if invoice.Status == "ERROR" {
		return "", fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, invoice.Reason)
	}
	if invoice.PR == "" {
		return "", fmt.Errorf("%w: response missing invoice", shared.ErrServiceUnavailable)
	}

	return invoice.PR, nil
}

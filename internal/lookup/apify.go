package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"inviterbot/internal/models"
)

// defaultBaseURL is the Apify API root.
const defaultBaseURL = "https://api.apify.com"

// ApifyProvider runs an Apify actor synchronously and reads its dataset
// items as lookup results.
type ApifyProvider struct {
	client  *http.Client
	baseURL string
	token   string
	actor   string
	proxy   map[string]interface{}
}

// NewApifyProvider creates a provider for the given actor (for example
// "wilcode~telegram-phone-number-checker") authenticated with token.
func NewApifyProvider(token, actor string) *ApifyProvider {
	return &ApifyProvider{
		client:  &http.Client{Timeout: 5 * time.Minute},
		baseURL: defaultBaseURL,
		token:   token,
		actor:   actor,
		proxy: map[string]interface{}{
			"useApifyProxy":    true,
			"apifyProxyGroups": []string{"SHADER"},
		},
	}
}

// runInput is the actor input for one batch.
type runInput struct {
	PhoneNumbers       []string               `json:"phoneNumbers"`
	ProxyConfiguration map[string]interface{} `json:"proxyConfiguration"`
}

// CheckBatch implements Provider. It calls the actor's
// run-sync-get-dataset-items endpoint, which runs the actor and returns
// the resulting dataset items in one response.
func (p *ApifyProvider) CheckBatch(ctx context.Context, phoneNumbers []string) ([]models.PhoneLookupResult, error) {
	body, err := json.Marshal(runInput{
		PhoneNumbers:       phoneNumbers,
		ProxyConfiguration: p.proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		p.baseURL, url.PathEscape(p.actor), url.QueryEscape(p.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build actor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("actor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("actor returned status %d: %s", resp.StatusCode, snippet)
	}

	var items []models.PhoneLookupResult
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}
	return items, nil
}

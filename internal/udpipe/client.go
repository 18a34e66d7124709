package udpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the public LINDAT UDPipe REST service.
const DefaultEndpoint = "https://lindat.mff.cuni.cz/services/udpipe/api/process"

// Client calls a UDPipe REST /process endpoint.
type Client struct {
	Endpoint string
	Model    string // model selector, e.g. "english" or "german-hdt"

	HTTPClient *http.Client
}

type processResponse struct {
	Model  string `json:"model"`
	Result string `json:"result"`
}

// Process tokenizes and tags text and returns the CoNLL-U output.
func (c *Client) Process(ctx context.Context, text string) (string, error) {
	if c.Model == "" {
		return "", fmt.Errorf("udpipe: model required")
	}

	form := url.Values{}
	form.Set("model", c.Model)
	form.Set("tokenizer", "")
	form.Set("tagger", "")
	form.Set("data", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// the service reports errors as plain text
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("udpipe: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload processResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("udpipe: decode response: %w", err)
	}
	if payload.Result == "" && strings.TrimSpace(text) != "" {
		return "", fmt.Errorf("udpipe: empty result")
	}
	return payload.Result, nil
}

func (c *Client) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultEndpoint
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	// tagging a long document is slow
	return &http.Client{Timeout: 5 * time.Minute}
}

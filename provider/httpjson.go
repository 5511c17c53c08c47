package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// maxResponseSize caps vendor response bodies read by postJSON.
const maxResponseSize = 4 << 20

// postJSON sends body to url with bearer auth and returns the raw 2xx body.
// Non-2xx answers become a *ProviderError carrying the status and the
// vendor's error message when one can be found.
func postJSON(ctx context.Context, client *http.Client, provider, url, apiKey string, body any) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, requestError(provider, 0, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, requestError(provider, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, requestError(provider, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, requestError(provider, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, requestError(provider, resp.StatusCode, errors.New(vendorErrorMessage(resp.Status, data)))
	}

	if !gjson.ValidBytes(data) {
		return nil, decodeError(provider, errors.New("response is not valid JSON"))
	}

	return data, nil
}

// vendorErrorMessage picks the most specific message out of an error body.
func vendorErrorMessage(status string, body []byte) string {
	for _, path := range []string{"message", "error.message", "error"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 200 {
		return s
	}
	return status
}

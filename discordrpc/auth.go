package discordrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultTokenURL is the endpoint that trades a one-time code for an access token.
const DefaultTokenURL = "https://streamkit.discord.com/overlay/token"

// TokenExchanger trades the one-time authorization code from an AUTHORIZE
// response for a durable access token.
type TokenExchanger struct {
	url        string
	httpClient *http.Client
}

// NewTokenExchanger creates a token exchanger against the given endpoint,
// falling back to DefaultTokenURL when empty.
func NewTokenExchanger(url string) *TokenExchanger {
	if url == "" {
		url = DefaultTokenURL
	}
	return &TokenExchanger{
		url:        url,
		httpClient: &http.Client{},
	}
}

// Exchange posts the code and returns the access token from the response.
func (t *TokenExchanger) Exchange(ctx context.Context, code string) (string, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return "", fmt.Errorf("marshal code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint error (status %d): %s", resp.StatusCode, string(data))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return out.AccessToken, nil
}

package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"odeplac.in/pro/config"
)

// AIClient talks to the generative document-analysis service. Requests
// block the calling handler until the remote call returns or the configured
// timeout fires; there is no retry, a failed call surfaces immediately.
type AIClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewAIClient builds a client from process configuration.
func NewAIClient() *AIClient {
	return &AIClient{
		baseURL: config.App.AIBaseURL,
		apiKey:  config.App.AIAPIKey,
		model:   config.App.AIModel,
		http:    &http.Client{Timeout: config.App.AITimeout},
	}
}

type aiPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *aiInlineData `json:"inline_data,omitempty"`
}

type aiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type aiRequest struct {
	Contents []aiContent `json:"contents"`
}

type aiContent struct {
	Parts []aiPart `json:"parts"`
}

type aiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText sends a plain prompt and returns the model's text reply.
func (c *AIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := aiRequest{Contents: []aiContent{{Parts: []aiPart{{Text: prompt}}}}}
	return c.call(ctx, req)
}

// GenerateFromDocument sends a binary document with an instruction and
// returns the model's text reply.
func (c *AIClient) GenerateFromDocument(ctx context.Context, document []byte, mimeType, instruction string) (string, error) {
	req := aiRequest{Contents: []aiContent{{Parts: []aiPart{
		{InlineData: &aiInlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(document)}},
		{Text: instruction},
	}}}}
	return c.call(ctx, req)
}

func (c *AIClient) call(ctx context.Context, payload aiRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read model reply: %w", err)
	}

	var parsed aiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unexpected model reply (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model error (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates (status %d)", resp.StatusCode)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

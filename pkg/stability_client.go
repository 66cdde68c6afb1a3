package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"aimage-backend/fault"
)

// DefaultNegativePrompt is applied when the caller supplies none
const DefaultNegativePrompt = "blurry, low quality, distorted, deformed, disfigured"

// GenerateRequest carries the text-to-image parameters
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Samples        int
	CfgScale       float64
	Steps          int
	Seed           int64
	StylePreset    string
}

// Artifact is one generated image unit as returned by the provider
type Artifact struct {
	Base64       string `json:"base64"`
	Seed         int64  `json:"seed"`
	FinishReason string `json:"finishReason"`
}

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type textToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    float64      `json:"cfg_scale"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
	StylePreset string       `json:"style_preset"`
	Seed        int64        `json:"seed"`
}

type textToImageResponse struct {
	Artifacts []Artifact `json:"artifacts"`
}

// StabilityClient calls the Stability AI text-to-image endpoint
type StabilityClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
	engine  string
}

func NewStabilityClient(apiKey, baseURL, engine string) *StabilityClient {
	return &StabilityClient{
		client:  &http.Client{},
		apiKey:  apiKey,
		baseURL: baseURL,
		engine:  engine,
	}
}

// Generate performs a single text-to-image call and classifies the
// outcome: auth failures and provider-reported rejections are fatal,
// rate-limit signals and server/network errors are transient.
func (c *StabilityClient) Generate(ctx context.Context, req GenerateRequest) ([]Artifact, error) {
	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.baseURL, c.engine)

	body := textToImageRequest{
		TextPrompts: []textPrompt{
			{Text: req.Prompt, Weight: 1},
		},
		CfgScale:    req.CfgScale,
		Height:      req.Height,
		Width:       req.Width,
		Samples:     req.Samples,
		Steps:       req.Steps,
		StylePreset: req.StylePreset,
		Seed:        req.Seed,
	}
	if req.NegativePrompt != "" {
		body.TextPrompts = append(body.TextPrompts, textPrompt{Text: req.NegativePrompt, Weight: -1})
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fault.ErrProviderAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, TransientError{Err: fmt.Errorf("provider rate limited (status %d)", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, TransientError{Err: fmt.Errorf("provider error (status %d)", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fault.ErrProviderRejected
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransientError{Err: fmt.Errorf("failed to read response body: %v", err)}
	}

	var response textToImageResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fault.ErrProviderRejected
	}

	// a 200 whose payload reports failure is a rejection, not a retry
	if len(response.Artifacts) == 0 {
		return nil, fault.ErrProviderRejected
	}
	for _, art := range response.Artifacts {
		if art.FinishReason == "ERROR" || art.Base64 == "" {
			return nil, fault.ErrProviderRejected
		}
	}

	return response.Artifacts, nil
}

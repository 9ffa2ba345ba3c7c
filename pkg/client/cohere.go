package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/narrative"
)

var ErrNoGeneration = errors.New("cohere returned no generations")

// CohereClient calls the Cohere generate endpoint. It implements narrative.Generator.
type CohereClient struct {
	*BaseClient
	baseURL string
	model   string
}

type cohereGenerateRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type CohereGenerateResponse struct {
	ID          string `json:"id"`
	Generations []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"generations"`
}

func NewCohereClient(apiKey, baseURL, model string, config ClientConfig, logger *zap.Logger) *CohereClient {
	if baseURL == "" {
		baseURL = "https://api.cohere.ai/v1"
	}
	base := NewBaseClient("cohere", config, logger)
	base.SetHeader("Authorization", "Bearer "+apiKey)
	return &CohereClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

func (c *CohereClient) Generate(ctx context.Context, prompt narrative.Prompt) (string, error) {
	data, err := c.PostJSON(ctx, c.baseURL+"/generate", cohereGenerateRequest{
		Prompt:      prompt.Text,
		Model:       c.model,
		MaxTokens:   prompt.MaxTokens,
		Temperature: prompt.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("cohere generate: %w", err)
	}

	var response CohereGenerateResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return "", fmt.Errorf("cohere generate: decode response: %w", err)
	}
	if len(response.Generations) == 0 {
		return "", ErrNoGeneration
	}

	return response.Generations[0].Text, nil
}

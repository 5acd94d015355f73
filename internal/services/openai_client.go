package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/utils"
)

// GenerationClient is the outbound boundary to the text-generation service.
// It returns the raw response text; parsing and coercion belong to the
// blueprint normalizer. A single attempt per call: retrying a failed
// generation is the caller's decision, not this client's.
type GenerationClient interface {
	// GenerateJSON requests a single structured object response.
	GenerateJSON(ctx context.Context, system string, user string) (string, error)
	// GenerateText requests free-form prose, used for section rewrites.
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type openAIClient struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewOpenAIClient(log *logger.Logger) (GenerationClient, error) {
	serviceLog := log.With("service", "OpenAIClient")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", serviceLog)
	model := utils.GetEnv("OPENAI_MODEL", "gpt-4-turbo-preview", serviceLog)
	temperature := utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.7, serviceLog)
	timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 180, serviceLog)

	return &openAIClient{
		log:         serviceLog,
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type responsesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesText struct {
	Format map[string]any `json:"format"`
}

type responsesRequest struct {
	Model       string             `json:"model"`
	Input       []responsesMessage `json:"input"`
	Text        *responsesText     `json:"text,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func (c *openAIClient) GenerateJSON(ctx context.Context, system string, user string) (string, error) {
	return c.generate(ctx, system, user, true)
}

func (c *openAIClient) GenerateText(ctx context.Context, system string, user string) (string, error) {
	return c.generate(ctx, system, user, false)
}

func (c *openAIClient) generate(ctx context.Context, system string, user string, jsonObject bool) (string, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []responsesMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}
	if jsonObject {
		req.Text = &responsesText{Format: map[string]any{"type": "json_object"}}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrGenerationUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrGenerationUnavailable, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("OpenAI request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	raw, readErr := io.ReadAll(httpResp.Body)
	_ = httpResp.Body.Close()
	if readErr != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrGenerationUnavailable, readErr)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.log.Warn("OpenAI request returned error status", "status", httpResp.StatusCode, "body", string(raw))
		return "", fmt.Errorf("%w: http %d: %s", ErrGenerationUnavailable, httpResp.StatusCode, string(raw))
	}

	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGenerationUnavailable, err)
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", ErrGenerationEmpty, resp.Refusal)
	}

	var outText string
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, content := range item.Content {
				if content.Type == "output_text" && content.Text != "" {
					outText += content.Text
				}
			}
		}
	}
	if strings.TrimSpace(outText) == "" {
		return "", ErrGenerationEmpty
	}
	return outText, nil
}

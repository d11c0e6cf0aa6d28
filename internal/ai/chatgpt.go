package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/wordbox/pkg/models"
)

const (
	defaultAPIURL = "https://api.openai.com/v1/chat/completions"
	defaultModel  = "gpt-3.5-turbo"
)

// ErrMissingAPIKey is returned by New when no key is configured
var ErrMissingAPIKey = errors.New("OpenAI API key is not set")

// ChatGPT represents a client for the OpenAI ChatGPT API
type ChatGPT struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// New creates a new ChatGPT client
func New(apiKey string) (*ChatGPT, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &ChatGPT{
		apiKey:      apiKey,
		apiURL:      defaultAPIURL,
		model:       defaultModel,
		maxTokens:   100,
		temperature: 0.7,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Message represents a message in the ChatGPT conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the ChatGPT API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the ChatGPT API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateExample generates an example sentence for the given word
func (c *ChatGPT) GenerateExample(ctx context.Context, word models.Word) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a short, practical example sentence in English that naturally includes the word '%s' (which translates to '%s' in Persian). Return only the sentence.",
		word.English, word.Persian,
	)

	return c.complete(ctx, []Message{
		{Role: "system", Content: "You help Persian speakers learn English vocabulary by writing clear, natural example sentences."},
		{Role: "user", Content: prompt},
	})
}

// GenerateExampleWithFallback generates an example, falling back to a
// template sentence when the API fails
func (c *ChatGPT) GenerateExampleWithFallback(ctx context.Context, word models.Word) string {
	example, err := c.GenerateExample(ctx, word)
	if err != nil {
		log.Printf("Error generating example for '%s': %v", word.English, err)
		return FallbackExample(word)
	}
	return example
}

// FallbackExample is the sentence shown when no generated example is available
func FallbackExample(word models.Word) string {
	return fmt.Sprintf("This is an example of the word '%s'.", word.English)
}

func (c *ChatGPT) complete(ctx context.Context, messages []Message) (string, error) {
	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

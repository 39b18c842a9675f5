package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"budgetly/internal/core"
)

// Client refines rule-engine purchase advice into a friendlier explanation
// using an OpenAI-compatible chat completion API. The rule-driven
// classification is never changed, only the reason text. When no API key is
// configured or the call fails, the original rule-based reason stands.
type Client struct {
	apiKey     string
	apiURL     string
	enabled    bool
	httpClient *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

func NewClient(apiKey, apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		apiKey:  apiKey,
		apiURL:  apiURL,
		enabled: apiKey != "",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Refine produces a refined reason for the suggestion given the user's
// current-month metrics. Falls back to the existing reason on any failure.
func (c *Client) Refine(ctx context.Context, s core.PurchaseSuggestion, m core.MonthMetrics) string {
	if !c.Enabled() {
		return s.Reason
	}

	prompt := fmt.Sprintf(`A budgeting app classified a purchase request. Rewrite the explanation below in 2-3 friendly, concrete sentences without changing the verdict.

PURCHASE:
- Product: %s
- Price: %s
- Monthly installment: %s over %d months
- Verdict: %s

USER'S CURRENT MONTH:
- Income: %s
- Expenses: %s
- Installment burden: %s
- Savings rate: %.1f%%
- Financial health score: %d/100

RULE-BASED EXPLANATION:
%s

Keep the verdict (%s) unchanged. Mention the numbers that drove it.`,
		s.ProductName, s.Price, s.MonthlyEMI, s.DurationMonths, s.Classification,
		m.TotalIncome, m.TotalExpenses, m.EMIBurden, m.SavingsRate, m.HealthScore,
		s.Reason, s.Classification)

	refined, err := c.callLLM(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "Advice refinement failed, keeping rule-based reason",
			"error", err,
			"suggestion_id", s.ID)
		return s.Reason
	}
	return refined
}

func (c *Client) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: "gpt-4o-mini",
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a personal finance assistant. You explain purchase advice in clear, practical language. You never change the verdict you are given, you only explain it better.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: 300,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	return chatResp.Choices[0].Message.Content, nil
}

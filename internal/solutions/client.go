package solutions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/exampapers/backend/internal/config"
	"github.com/exampapers/backend/internal/logger"
)

// LLMClient is the interface every drafting backend satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// NewClient picks the backend for cfg.Mode. Mode "off" returns nil.
func NewClient(cfg config.SolutionsConfig, log *logger.Logger) (LLMClient, string) {
	switch cfg.Mode {
	case "api":
		log.Info("solutions drafter using Anthropic API", "model", cfg.Model)
		return NewAPIClient(cfg.APIKey, cfg.Model, log), cfg.Model
	case "cli":
		log.Info("solutions drafter using claude CLI", "path", cfg.CLIPath)
		return NewCLIClient(cfg.CLIPath), "claude-cli"
	case "mock":
		log.Info("solutions drafter using mock data")
		return NewMockClient(), "mock"
	default:
		return nil, ""
	}
}

// ── APIClient: Anthropic SDK ───────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
	log    *logger.Logger
}

func NewAPIClient(apiKey, model string, log *logger.Logger) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &APIClient{client: &client, model: model, log: log.With("component", "AnthropicClient")}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.2),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn("retrying Anthropic API call", "wait", wait.String(), "attempt", attempt+1)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		c.log.Warn("Anthropic API attempt failed", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── CLIClient: local claude CLI ────────────────────────────

// CLIClient shells out to the claude CLI for local drafting without an API key.
type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	if cliPath == "" {
		cliPath = "claude"
	}
	return &CLIClient{cliPath: cliPath}
}

func (c *CLIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cmd := exec.CommandContext(ctx,
		c.cliPath,
		"--print",
		"--output-format", "text",
		"--system-prompt", systemPrompt,
		"--max-turns", "1",
	)
	cmd.Stdin = strings.NewReader(userPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("claude CLI error: %w\nstderr: %s", err, stderr.String())
	}

	responseText := strings.TrimSpace(stdout.String())
	if responseText == "" {
		return nil, fmt.Errorf("claude CLI returned empty response")
	}
	return &LLMResponse{Content: responseText}, nil
}

// ── MockClient: Local Development ──────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// Generate echoes the question back as a three-step placeholder solution.
func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	question := userPrompt
	if i := strings.Index(userPrompt, "Question:"); i >= 0 {
		question = strings.TrimSpace(userPrompt[i+len("Question:"):])
		if j := strings.Index(question, "\n"); j >= 0 {
			question = question[:j]
		}
	}

	draft := DraftedSteps{Steps: []DraftedStep{
		{StepNumber: 1, Content: "[Mock] Write down what is given: " + question},
		{StepNumber: 2, Content: "[Mock] Apply the relevant method and simplify."},
		{StepNumber: 3, Content: "[Mock] State the final answer with units or rounding as asked."},
	}}
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	return &LLMResponse{Content: string(raw), PromptTokens: 400, OutputTokens: 120}, nil
}

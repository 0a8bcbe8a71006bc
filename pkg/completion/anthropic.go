package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	log "github.com/sirupsen/logrus"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5"
	responseToolName      = "respond"
)

type AnthropicClient struct {
	apiKey    string
	model     string
	maxTokens int64
	client    anthropic.Client
}

// NewAnthropicClient talks to the Messages API. The response schema is enforced through a
// forced tool call whose input is returned as the completion text. An empty baseURL keeps
// the SDK default.
func NewAnthropicClient(apiKey, model, baseURL string, timeout time.Duration) *AnthropicClient {
	if model == "" {
		model = defaultAnthropicModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: 2000,
		client:    anthropic.NewClient(opts...),
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}
	if req.Schema != nil {
		params.Tools = []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        responseToolName,
				Description: anthropic.String("Return the structured response."),
				InputSchema: toolInputSchema(req.Schema),
			},
		}}
		params.ToolChoice = anthropic.ToolChoiceParamOfTool(responseToolName)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic API returned status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	log.Debugf("Anthropic model %s used %d input / %d output tokens",
		message.Model, message.Usage.InputTokens, message.Usage.OutputTokens)

	for _, block := range message.Content {
		if block.Type == "tool_use" && len(block.Input) > 0 {
			return string(block.Input), nil
		}
	}
	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("empty response from anthropic")
}

func toolInputSchema(s *Schema) anthropic.ToolInputSchemaParam {
	properties := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		properties[name] = prop.JSONSchema()
	}
	return anthropic.ToolInputSchemaParam{
		Properties: properties,
		Required:   s.Required,
	}
}

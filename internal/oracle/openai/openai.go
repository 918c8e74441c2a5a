// Package openai provides the OpenAI implementation of the oracle.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/pkg/logger"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gpt-4o-mini"

const defaultMaxTokens = 4096

// Model implements oracle.Oracle against the OpenAI chat completions API.
type Model struct {
	client    *openai.Client
	modelName string
	logger    logger.Logger
}

// New creates an OpenAI oracle.
func New(apiKey, modelName string, log logger.Logger) (*Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Model{
		client:    &client,
		modelName: modelName,
		logger:    log,
	}, nil
}

// Name returns the configured model name.
func (m *Model) Name() string {
	return m.modelName
}

// Generate sends the conversation to OpenAI and returns its reply.
func (m *Model) Generate(ctx context.Context, req oracle.Request) (*oracle.Reply, error) {
	messages, err := transformRequest(req)
	if err != nil {
		return nil, fmt.Errorf("transform request: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model:     m.modelName,
		MaxTokens: openai.Int(defaultMaxTokens),
		Messages:  messages,
	}
	if len(req.Tools) > 0 {
		params.Tools = transformDeclarations(req.Tools)
	}

	m.logger.Debug("sending request to openai",
		logger.StringField("model", m.modelName),
		logger.IntField("messages", len(messages)))

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	reply, err := transformResponse(completion)
	if err != nil {
		return nil, fmt.Errorf("transform response: %w", err)
	}
	return reply, nil
}

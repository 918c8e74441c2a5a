// Package anthropic provides the Claude implementation of the oracle.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/pkg/logger"
)

const defaultMaxTokens = 4000

// Model implements oracle.Oracle against the Anthropic messages API.
type Model struct {
	client    anthropic.Client
	modelName string
	logger    logger.Logger
}

// New creates a Claude oracle.
func New(apiKey, modelName string, log logger.Logger, opts ...option.RequestOption) (*Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if modelName == "" {
		modelName = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}

	client := anthropic.NewClient(
		append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...,
	)

	return &Model{
		client:    client,
		modelName: modelName,
		logger:    log,
	}, nil
}

// Name returns the configured model name.
func (m *Model) Name() string {
	return m.modelName
}

// Generate sends the conversation to Claude and returns its reply.
func (m *Model) Generate(ctx context.Context, req oracle.Request) (*oracle.Reply, error) {
	messages, err := transformRequest(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("transform request: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.modelName),
		MaxTokens: defaultMaxTokens,
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = transformDeclarations(req.Tools)
	}

	m.logger.Debug("sending request to anthropic",
		logger.StringField("model", m.modelName),
		logger.IntField("messages", len(messages)))

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude api error: %w", err)
	}

	reply, err := transformResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("transform response: %w", err)
	}
	return reply, nil
}

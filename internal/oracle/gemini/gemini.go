// Package gemini provides the Gemini implementation of the oracle.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/pkg/logger"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Model implements oracle.Oracle against the Gemini API.
type Model struct {
	client    *genai.Client
	modelName string
	logger    logger.Logger
}

// New creates a Gemini oracle.
func New(ctx context.Context, apiKey, modelName string, log logger.Logger) (*Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

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

// Generate sends the conversation to Gemini and returns its reply.
func (m *Model) Generate(ctx context.Context, req oracle.Request) (*oracle.Reply, error) {
	contents, err := transformRequest(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("transform request: %w", err)
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{
			{FunctionDeclarations: transformDeclarations(req.Tools)},
		}
	}

	m.logger.Debug("sending request to gemini",
		logger.StringField("model", m.modelName),
		logger.IntField("messages", len(contents)))

	resp, err := m.client.Models.GenerateContent(ctx, m.modelName, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	reply, err := transformResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("transform response: %w", err)
	}
	return reply, nil
}

package openai

import (
	"encoding/json"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/tools"
)

func TestTransformRequest(t *testing.T) {
	req := oracle.Request{
		System: "You are a helpful local places assistant.",
		Messages: []oracle.Message{
			{Role: oracle.RoleUser, Text: "find parks"},
			{Role: oracle.RoleAssistant, ToolCalls: []oracle.ToolCall{
				{ID: "call-1", Name: tools.ToolSearchPlaces, Args: json.RawMessage(`{"category":"park"}`)},
			}},
			{Role: oracle.RoleTool, ToolResults: []oracle.ToolResult{
				{CallID: "call-1", Name: tools.ToolSearchPlaces, Payload: json.RawMessage(`{"success":true}`)},
			}},
			{Role: oracle.RoleAssistant, Text: "Here are the parks."},
		},
	}

	messages, err := transformRequest(req)
	require.NoError(t, err)
	require.Len(t, messages, 5)

	require.NotNil(t, messages[0].OfSystem)
	require.NotNil(t, messages[1].OfUser)

	assistant := messages[2].OfAssistant
	require.NotNil(t, assistant)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call-1", assistant.ToolCalls[0].ID)
	assert.Equal(t, tools.ToolSearchPlaces, assistant.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"category":"park"}`, assistant.ToolCalls[0].Function.Arguments)

	require.NotNil(t, messages[3].OfTool)

	require.NotNil(t, messages[4].OfAssistant)
}

func TestTransformResponse(t *testing.T) {
	completion := &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Content: "One moment.",
				ToolCalls: []openai.ChatCompletionMessageToolCall{{
					ID: "call-9",
					Function: openai.ChatCompletionMessageToolCallFunction{
						Name:      tools.ToolSearchByName,
						Arguments: `{"searchTerm":"bean"}`,
					},
				}},
			},
		}},
	}

	reply, err := transformResponse(completion)
	require.NoError(t, err)

	assert.Equal(t, "One moment.", reply.Text)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "call-9", reply.ToolCalls[0].ID)
	assert.Equal(t, tools.ToolSearchByName, reply.ToolCalls[0].Name)
}

func TestTransformResponseNoChoices(t *testing.T) {
	_, err := transformResponse(&openai.ChatCompletion{})
	assert.Error(t, err)
}

func TestTransformDeclarations(t *testing.T) {
	params := transformDeclarations(tools.Declarations())
	require.Len(t, params, 8)

	for _, param := range params {
		assert.Equal(t, "object", param.Function.Parameters["type"])
		assert.NotEmpty(t, param.Function.Name)
	}

	first := params[0]
	assert.Equal(t, tools.ToolSearchPlaces, first.Function.Name)
	properties := first.Function.Parameters["properties"].(map[string]any)
	category := properties["category"].(map[string]any)
	assert.Contains(t, category["enum"], "cafe")
}

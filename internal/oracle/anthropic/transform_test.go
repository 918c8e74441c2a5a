package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/tools"
)

func TestTransformRequest(t *testing.T) {
	messages := []oracle.Message{
		{Role: oracle.RoleUser, Text: "delete place 4"},
		{Role: oracle.RoleAssistant, Text: "Deleting it now.", ToolCalls: []oracle.ToolCall{
			{ID: "toolu_1", Name: tools.ToolDeletePlace, Args: json.RawMessage(`{"id":4}`)},
		}},
		{Role: oracle.RoleTool, ToolResults: []oracle.ToolResult{
			{CallID: "toolu_1", Name: tools.ToolDeletePlace, Payload: json.RawMessage(`{"success":true,"message":"Place deleted"}`)},
		}},
	}

	params, err := transformRequest(messages)
	require.NoError(t, err)
	require.Len(t, params, 3)

	assert.Equal(t, anthropic.MessageParamRoleUser, params[0].Role)

	assert.Equal(t, anthropic.MessageParamRoleAssistant, params[1].Role)
	require.Len(t, params[1].Content, 2)
	toolUse := params[1].Content[1].OfToolUse
	require.NotNil(t, toolUse)
	assert.Equal(t, "toolu_1", toolUse.ID)
	assert.Equal(t, tools.ToolDeletePlace, toolUse.Name)
	assert.Equal(t, map[string]any{"id": float64(4)}, toolUse.Input)

	assert.Equal(t, anthropic.MessageParamRoleUser, params[2].Role)
	toolResult := params[2].Content[0].OfToolResult
	require.NotNil(t, toolResult)
	assert.Equal(t, "toolu_1", toolResult.ToolUseID)
}

func TestTransformRequestUnknownRole(t *testing.T) {
	_, err := transformRequest([]oracle.Message{{Role: "narrator", Text: "meanwhile"}})
	assert.Error(t, err)
}

func TestTransformDeclarations(t *testing.T) {
	params := transformDeclarations(tools.Declarations())
	require.Len(t, params, 8)

	byName := map[string]*anthropic.ToolParam{}
	for _, p := range params {
		require.NotNil(t, p.OfTool)
		byName[p.OfTool.Name] = p.OfTool
	}

	nearby := byName[tools.ToolPlacesNearby]
	require.NotNil(t, nearby)
	assert.ElementsMatch(t, []string{"latitude", "longitude", "radiusKm"}, nearby.InputSchema.Required)

	properties := nearby.InputSchema.Properties.(map[string]any)
	radius := properties["radiusKm"].(map[string]any)
	assert.Equal(t, "number", radius["type"])
}

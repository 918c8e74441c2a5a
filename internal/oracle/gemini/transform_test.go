package gemini

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/tools"
)

func TestTransformRequest(t *testing.T) {
	messages := []oracle.Message{
		{Role: oracle.RoleUser, Text: "find cafes"},
		{Role: oracle.RoleAssistant, ToolCalls: []oracle.ToolCall{
			{ID: "call-1", Name: tools.ToolSearchPlaces, Args: json.RawMessage(`{"category":"cafe"}`)},
		}},
		{Role: oracle.RoleTool, ToolResults: []oracle.ToolResult{
			{CallID: "call-1", Name: tools.ToolSearchPlaces, Payload: json.RawMessage(`{"success":true,"count":0}`)},
		}},
	}

	contents, err := transformRequest(messages)
	require.NoError(t, err)
	require.Len(t, contents, 3)

	assert.EqualValues(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, "find cafes", contents[0].Parts[0].Text)

	assert.EqualValues(t, genai.RoleModel, contents[1].Role)
	call := contents[1].Parts[0].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, tools.ToolSearchPlaces, call.Name)
	assert.Equal(t, map[string]any{"category": "cafe"}, call.Args)

	assert.EqualValues(t, genai.RoleUser, contents[2].Role)
	response := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, response)
	assert.Equal(t, "call-1", response.ID)
	assert.Equal(t, map[string]any{"success": true, "count": float64(0)}, response.Response)
}

func TestTransformResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{Text: "Let me check."},
					{FunctionCall: &genai.FunctionCall{ID: "call-2", Name: tools.ToolGetStatistics, Args: map[string]any{"category": "park"}}},
				},
			},
		}},
	}

	reply, err := transformResponse(resp)
	require.NoError(t, err)

	assert.Equal(t, "Let me check.", reply.Text)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, tools.ToolGetStatistics, reply.ToolCalls[0].Name)
	assert.JSONEq(t, `{"category":"park"}`, string(reply.ToolCalls[0].Args))
}

func TestTransformResponseNoCandidates(t *testing.T) {
	_, err := transformResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}

func TestTransformDeclarations(t *testing.T) {
	decls := transformDeclarations(tools.Declarations())
	require.Len(t, decls, 8)

	byName := map[string]*genai.FunctionDeclaration{}
	for _, d := range decls {
		byName[d.Name] = d
	}

	search := byName[tools.ToolSearchPlaces]
	require.NotNil(t, search)
	assert.Equal(t, genai.TypeObject, search.Parameters.Type)
	assert.Equal(t, genai.TypeString, search.Parameters.Properties["category"].Type)
	assert.NotEmpty(t, search.Parameters.Properties["category"].Enum)

	add := byName[tools.ToolAddPlace]
	require.NotNil(t, add)
	assert.ElementsMatch(t, []string{"name", "category", "latitude", "longitude"}, add.Parameters.Required)
	amenities := add.Parameters.Properties["amenities"]
	require.NotNil(t, amenities.Items)
	assert.Equal(t, genai.TypeString, amenities.Items.Type)
}

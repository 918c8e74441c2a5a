package gemini

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/tools"
)

// transformRequest converts neutral messages into genai contents. Tool
// results travel as function response parts in a user-role content.
func transformRequest(messages []oracle.Message) ([]*genai.Content, error) {
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case oracle.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Text}},
			})

		case oracle.RoleAssistant:
			var parts []*genai.Part
			if msg.Text != "" {
				parts = append(parts, &genai.Part{Text: msg.Text})
			}
			for _, call := range msg.ToolCalls {
				args, err := decodeArgs(call.Args)
				if err != nil {
					return nil, fmt.Errorf("decode args for %s: %w", call.Name, err)
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: call.ID, Name: call.Name, Args: args},
				})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})

		case oracle.RoleTool:
			var parts []*genai.Part
			for _, result := range msg.ToolResults {
				response, err := decodeArgs(result.Payload)
				if err != nil {
					return nil, fmt.Errorf("decode result for %s: %w", result.Name, err)
				}
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       result.CallID,
						Name:     result.Name,
						Response: response,
					},
				})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})

		default:
			return nil, fmt.Errorf("unknown role %q", msg.Role)
		}
	}

	return contents, nil
}

// transformResponse extracts text and function calls from the first
// candidate.
func transformResponse(resp *genai.GenerateContentResponse) (*oracle.Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	reply := &oracle.Reply{}
	content := resp.Candidates[0].Content
	if content == nil {
		return reply, nil
	}

	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			if reply.Text != "" {
				reply.Text += "\n"
			}
			reply.Text += part.Text
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("encode args for %s: %w", part.FunctionCall.Name, err)
			}
			reply.ToolCalls = append(reply.ToolCalls, oracle.ToolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: args,
			})
		}
	}

	return reply, nil
}

// transformDeclarations converts neutral tool declarations into genai
// function declarations.
func transformDeclarations(decls []tools.Declaration) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		properties := make(map[string]*genai.Schema, len(decl.Properties))
		for name, prop := range decl.Properties {
			properties[name] = propertySchema(prop)
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   decl.Required,
			},
		})
	}
	return out
}

func propertySchema(prop tools.Property) *genai.Schema {
	schema := &genai.Schema{
		Type:        schemaType(prop.Type),
		Description: prop.Description,
		Enum:        prop.Enum,
	}
	if prop.Items != nil {
		schema.Items = propertySchema(*prop.Items)
	}
	return schema
}

func schemaType(name string) genai.Type {
	switch name {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/tools"
)

// transformRequest converts neutral messages into Anthropic message
// params. Tool results travel as tool_result blocks in a user message.
func transformRequest(messages []oracle.Message) ([]anthropic.MessageParam, error) {
	var out []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case oracle.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))

		case oracle.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				input, err := decodeInput(call.Args)
				if err != nil {
					return nil, fmt.Errorf("decode args for %s: %w", call.Name, err)
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: input,
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: blocks,
			})

		case oracle.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for _, result := range msg.ToolResults {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: result.CallID,
						Content: []anthropic.ToolResultBlockParamContentUnion{
							{OfText: &anthropic.TextBlockParam{Text: string(result.Payload)}},
						},
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: blocks,
			})

		default:
			return nil, fmt.Errorf("unknown role %q", msg.Role)
		}
	}

	return out, nil
}

// transformResponse extracts text and tool use blocks from the message.
func transformResponse(message *anthropic.Message) (*oracle.Reply, error) {
	if message == nil {
		return nil, fmt.Errorf("nil message")
	}

	reply := &oracle.Reply{}
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			if reply.Text != "" {
				reply.Text += "\n"
			}
			reply.Text += b.Text

		case anthropic.ToolUseBlock:
			args, err := json.Marshal(b.Input)
			if err != nil {
				return nil, fmt.Errorf("encode input for %s: %w", b.Name, err)
			}
			reply.ToolCalls = append(reply.ToolCalls, oracle.ToolCall{
				ID:   b.ID,
				Name: b.Name,
				Args: args,
			})
		}
	}

	return reply, nil
}

// transformDeclarations converts neutral tool declarations into Anthropic
// tool params.
func transformDeclarations(decls []tools.Declaration) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, decl := range decls {
		properties := make(map[string]any, len(decl.Properties))
		for name, prop := range decl.Properties {
			properties[name] = propertySchema(prop)
		}
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        decl.Name,
				Description: anthropic.String(decl.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   decl.Required,
				},
			},
		})
	}
	return out
}

func propertySchema(prop tools.Property) map[string]any {
	schema := map[string]any{"type": prop.Type}
	if prop.Description != "" {
		schema["description"] = prop.Description
	}
	if len(prop.Enum) > 0 {
		schema["enum"] = prop.Enum
	}
	if prop.Items != nil {
		schema["items"] = propertySchema(*prop.Items)
	}
	return schema
}

func decodeInput(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

package openai

import (
	"fmt"

	"github.com/openai/openai-go"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/tools"
)

// transformRequest converts the neutral request to chat completion
// messages. The system prompt rides along as the first message; tool
// results become one tool message per result.
func transformRequest(req oracle.Request) ([]openai.ChatCompletionMessageParamUnion, error) {
	var messages []openai.ChatCompletionMessageParamUnion

	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case oracle.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Text))

		case oracle.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(msg.Text))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(msg.ToolCalls))
			for _, call := range msg.ToolCalls {
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   call.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: string(call.Args),
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCalls}
			if msg.Text != "" {
				assistant.Content.OfString.Value = msg.Text
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		case oracle.RoleTool:
			for _, result := range msg.ToolResults {
				messages = append(messages, openai.ToolMessage(string(result.Payload), result.CallID))
			}

		default:
			return nil, fmt.Errorf("unknown role %q", msg.Role)
		}
	}

	return messages, nil
}

// transformResponse extracts text and tool calls from the first choice.
func transformResponse(completion *openai.ChatCompletion) (*oracle.Reply, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := completion.Choices[0]
	reply := &oracle.Reply{Text: choice.Message.Content}

	for _, call := range choice.Message.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, oracle.ToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: []byte(call.Function.Arguments),
		})
	}

	return reply, nil
}

// transformDeclarations converts neutral tool declarations into OpenAI
// function definitions.
func transformDeclarations(decls []tools.Declaration) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(decls))
	for _, decl := range decls {
		properties := make(map[string]any, len(decl.Properties))
		for name, prop := range decl.Properties {
			properties[name] = propertySchema(prop)
		}
		parameters := openai.FunctionParameters{
			"type":       "object",
			"properties": properties,
		}
		if len(decl.Required) > 0 {
			parameters["required"] = decl.Required
		}
		out = append(out, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        decl.Name,
				Description: openai.String(decl.Description),
				Parameters:  parameters,
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

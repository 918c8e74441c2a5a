// Package bridge runs chat turns: it shuttles messages between the oracle
// and the tool executor until the model settles on a final answer.
package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/session"
	"github.com/lewisedginton/local_places/internal/tools"
	"github.com/lewisedginton/local_places/pkg/logger"
)

// FallbackReply is returned when the model terminates without any text.
const FallbackReply = "I received the data but had trouble formulating a response. Please try rephrasing your question."

// DefaultMaxRounds bounds how many tool rounds one turn may take.
const DefaultMaxRounds = 10

// Recorder receives bridge metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordChatTurn(rounds int)
	RecordToolExecution(tool string, success bool)
}

// noopRecorder stands in when no recorder is wired.
type noopRecorder struct{}

func (noopRecorder) RecordChatTurn(int) {}

func (noopRecorder) RecordToolExecution(string, bool) {}

// Config assembles a bridge.
type Config struct {
	Oracle    oracle.Oracle
	Executor  *tools.Executor
	Logger    logger.Logger
	Recorder  Recorder
	MaxRounds int
	System    string
}

// Bridge drives the tool-calling loop for chat turns.
type Bridge struct {
	oracle    oracle.Oracle
	executor  *tools.Executor
	logger    logger.Logger
	recorder  Recorder
	maxRounds int
	system    string
}

// New creates a bridge from the config, filling in defaults.
func New(config Config) *Bridge {
	maxRounds := config.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	system := config.System
	if system == "" {
		system = SystemInstruction
	}
	recorder := config.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Bridge{
		oracle:    config.Oracle,
		executor:  config.Executor,
		logger:    config.Logger,
		recorder:  recorder,
		maxRounds: maxRounds,
		system:    system,
	}
}

// Converse runs one chat turn against the session. Every tool call the
// model requests in a round executes exactly once, then all results go
// back together. Tool rounds live only in the working exchange; on
// successful termination the transcript gains just the user turn and the
// final assistant text. A failed turn leaves it untouched.
func (b *Bridge) Converse(ctx context.Context, sess *session.Session, userMessage string) (string, error) {
	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	userMsg := oracle.Message{Role: oracle.RoleUser, Text: userMessage}
	working := make([]oracle.Message, len(sess.History), len(sess.History)+2)
	copy(working, sess.History)
	working = append(working, userMsg)

	declarations := tools.Declarations()
	rounds := 0

	for {
		reply, err := b.oracle.Generate(ctx, oracle.Request{
			System:   b.system,
			Messages: working,
			Tools:    declarations,
		})
		if err != nil {
			return "", fmt.Errorf("oracle generate: %w", err)
		}
		rounds++

		if len(reply.ToolCalls) == 0 {
			text := reply.Text
			if strings.TrimSpace(text) == "" {
				b.logger.Warn("oracle returned empty final reply", logger.SessionIDField(sess.Token))
				text = FallbackReply
			}
			sess.History = append(sess.History, userMsg, oracle.Message{Role: oracle.RoleAssistant, Text: text})
			b.recorder.RecordChatTurn(rounds)
			b.logger.Info("chat turn complete",
				logger.SessionIDField(sess.Token),
				logger.IntField("rounds", rounds),
				logger.IntField("history_len", len(sess.History)))
			return text, nil
		}

		if rounds >= b.maxRounds {
			return "", fmt.Errorf("tool-call rounds exceeded limit of %d", b.maxRounds)
		}

		working = append(working, oracle.Message{
			Role:      oracle.RoleAssistant,
			Text:      reply.Text,
			ToolCalls: reply.ToolCalls,
		})

		results := make([]oracle.ToolResult, 0, len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			outcome := b.executor.Dispatch(ctx, call.Name, call.Args)
			b.recorder.RecordToolExecution(call.Name, outcome.Success)
			results = append(results, oracle.ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Payload: outcome.Payload,
			})
		}
		working = append(working, oracle.Message{Role: oracle.RoleTool, ToolResults: results})
	}
}

package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/als-ai/bl531-agent/internal/capabilities"
	"github.com/als-ai/bl531-agent/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// Brain defines the core intelligence interface for the agent.
type Brain interface {
	Think(ctx context.Context, sessionID string, input string) (string, error)
}

// HistoryStore persists conversation turns between sessions.
type HistoryStore interface {
	AddMessage(sessionID string, role string, content string) error
	GetHistory(sessionID string, limit int) ([]llms.MessageContent, error)
}

// BeamlineBrain is a ReAct agent that drives beamline capabilities.
type BeamlineBrain struct {
	Model    llms.Model
	Registry *capabilities.Registry
	History  HistoryStore
	Prompts  *PromptManager
	Logger   *observability.Logger
}

func NewBeamlineBrain(model llms.Model, registry *capabilities.Registry, history HistoryStore, prompts *PromptManager, logger *observability.Logger) *BeamlineBrain {
	return &BeamlineBrain{
		Model:    model,
		Registry: registry,
		History:  history,
		Prompts:  prompts,
		Logger:   logger,
	}
}

func (b *BeamlineBrain) Think(ctx context.Context, sessionID string, input string) (string, error) {
	observability.SetStatus(observability.StateThinking, "")
	defer observability.SetStatus(observability.StateIdle, "")

	// 1. System prompt (identity + beamline guide + capability usage)
	systemPrompt, err := b.Prompts.GetSystemPrompt()
	if err != nil {
		log.Printf("Warning: Failed to load system prompt: %v", err)
	}

	// 2. Prepare messages: system prompt, recent history, current input
	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.MessageContent{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		})
	}

	if b.History != nil {
		history, _ := b.History.GetHistory(sessionID, 10)
		messages = append(messages, history...)
	}

	messages = append(messages, llms.MessageContent{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.TextPart(input),
		},
	})

	// 3. Prepare capability schemas for the LLM
	var llmTools []llms.Tool
	for _, c := range b.Registry.Capabilities {
		llmTools = append(llmTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        c.Name(),
				Description: c.Description(),
				Parameters:  c.Parameters(),
			},
		})
	}

	// 4. Reasoning loop (ReAct)
	maxSteps := 10
	var finalResponse string

	for i := 0; i < maxSteps; i++ {
		resp, err := b.Model.GenerateContent(ctx, messages, llms.WithTools(llmTools))
		if err != nil {
			return "", err
		}

		choice := resp.Choices[0]
		if b.Logger != nil {
			b.Logger.LogLLM(input, choice.Content, choice.ToolCalls)
		}

		// Add assistant's message to the running context
		var assistantParts []llms.ContentPart
		if choice.Content != "" {
			assistantParts = append(assistantParts, llms.TextContent{Text: choice.Content})
		}
		for _, tc := range choice.ToolCalls {
			assistantParts = append(assistantParts, tc)
		}

		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: assistantParts,
		})

		// If no tool calls, this is the final answer
		if len(choice.ToolCalls) == 0 {
			finalResponse = choice.Content
			break
		}

		// Execute the requested capabilities (observe results)
		for _, tc := range choice.ToolCalls {
			capability := b.Registry.Get(tc.FunctionCall.Name)
			var result string

			if capability == nil {
				result = fmt.Sprintf("Error: Capability %s not found", tc.FunctionCall.Name)
			} else {
				if b.Logger != nil {
					b.Logger.LogToolCall(capability.Name(), tc.FunctionCall.Arguments)
				}
				observability.SetStatus(observability.StateExecuting, capability.Name())
				res, err := capability.Execute(ctx, tc.FunctionCall.Arguments)
				observability.SetStatus(observability.StateThinking, "")
				if err != nil {
					res = fmt.Sprintf("Error: %v", err)
				}
				result = res
				log.Printf("[Step %d] Capability %s returned: %s", i+1, capability.Name(), result)
			}

			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       tc.FunctionCall.Name,
						Content:    result,
					},
				},
			})
		}
	}

	if finalResponse == "" {
		finalResponse = "I've reached the maximum reasoning steps for this request. Please try a simpler instruction."
	}

	if b.History != nil {
		_ = b.History.AddMessage(sessionID, "human", input)
		_ = b.History.AddMessage(sessionID, "ai", finalResponse)
	}

	return finalResponse, nil
}

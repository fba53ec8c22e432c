// Package agent drives the LLM conversation loop: it sends the assembled
// prompt to a Groq-hosted model through the OpenAI-compatible API, runs any
// tool calls the model requests, and returns the decoded response.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	// DefaultModel is the Groq model used for recommendations.
	DefaultModel = "llama-3.3-70b-versatile"

	groqBaseURL = "https://api.groq.com/openai/v1"

	temperature = 0.3

	// maxToolIterations bounds the request/tool-call loop so a model that
	// keeps asking for tools cannot spin forever.
	maxToolIterations = 5
)

// Runtime invokes the chat model with the movie toolset attached.
type Runtime struct {
	client openai.Client
	model  string
	tools  *Toolset
}

// New creates a Runtime talking to Groq with the given API key and model.
// An empty model selects DefaultModel. Transport errors are retried twice
// by the client before surfacing.
func New(apiKey, model string, tools *Toolset) *Runtime {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(groqBaseURL),
		option.WithMaxRetries(2),
	)
	return &Runtime{client: client, model: model, tools: tools}
}

// NewWithBaseURL creates a Runtime pointing at a custom endpoint (for testing).
func NewWithBaseURL(apiKey, model, baseURL string, tools *Toolset) *Runtime {
	r := New(apiKey, model, tools)
	r.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(2),
	)
	return r
}

// Invoke sends the formatted prompt as a single user turn and runs the
// tool-call loop to completion. The returned response is structured: its
// messages are the assistant/tool transcript of this invocation, last
// message holding the final reply.
func (r *Runtime) Invoke(ctx context.Context, prompt string) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(r.model),
		Temperature: openai.Float(temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	}
	if r.tools != nil {
		params.Tools = r.tools.Definitions()
	}

	var transcript []ResponseMessage

	for i := 0; i < maxToolIterations; i++ {
		completion, err := r.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return Response{}, fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return Response{}, fmt.Errorf("chat completion returned no choices")
		}

		msg := completion.Choices[0].Message
		transcript = append(transcript, ResponseMessage{Role: "assistant", Content: msg.Content})

		if len(msg.ToolCalls) == 0 {
			return Structured(transcript), nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			result, err := r.tools.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				slog.Warn("tool dispatch failed", "tool", call.Function.Name, "error", err)
				result = fmt.Sprintf("Tool %s failed.", call.Function.Name)
			}
			transcript = append(transcript, ResponseMessage{Role: "tool", Content: result})
			params.Messages = append(params.Messages, openai.ToolMessage(result, call.ID))
		}
	}

	return Response{}, fmt.Errorf("tool loop exceeded %d iterations", maxToolIterations)
}

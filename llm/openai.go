package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(opts Options) Backend {
	cfg := openai.DefaultConfig(opts.OpenAIAPIKey)
	if opts.OpenAIBaseURL != "" {
		cfg.BaseURL = opts.OpenAIBaseURL
	}

	return &openAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
	}
}

func (b *openAIBackend) QueryGuidelines(ctx context.Context, q GuidelineQuery) (string, error) {
	return b.generate(ctx, []Message{{Role: RoleUser, Content: buildGuidelinePrompt(q)}})
}

func (b *openAIBackend) GenerateNote(ctx context.Context, r NoteRequest) (string, error) {
	return b.generate(ctx, []Message{{Role: RoleUser, Content: buildNotePrompt(r)}})
}

func (b *openAIBackend) generate(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: b.model,
	}

	req.Messages = make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

var _ Backend = (*openAIBackend)(nil)

package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/utils"
)

const (
	defaultTemperature = float32(0.7)
	defaultMaxTokens   = 1024
)

// ChatModel is the slice of the eino chat model the generator needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// GeminiGenerator implements core.ReplyGenerator over a multi-key
// Gemini chat model. Provider failures degrade to the fixed fallback
// text; the relay always has something to send.
type GeminiGenerator struct {
	model     ChatModel
	modelName string
}

// NewGeminiGenerator builds a generator with round-robin key rotation.
func NewGeminiGenerator(ctx context.Context, apiKeys []string, modelName string) (*GeminiGenerator, error) {
	temperature := defaultTemperature
	maxTokens := defaultMaxTokens

	chatModel, err := NewMultiKeyChatModel(ctx, apiKeys, modelName, &temperature, &maxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &GeminiGenerator{
		model:     chatModel,
		modelName: modelName,
	}, nil
}

// NewGeneratorWithModel wires an explicit chat model. Used by tests.
func NewGeneratorWithModel(chatModel ChatModel, modelName string) *GeminiGenerator {
	return &GeminiGenerator{model: chatModel, modelName: modelName}
}

func (g *GeminiGenerator) Generate(ctx context.Context, in *core.GenerateInput) (*core.GenerateResult, error) {
	messages := g.buildMessages(in)

	result, err := g.model.Generate(ctx, messages)
	if err != nil {
		utils.Zlog.Error("Chat model invocation failed",
			zap.String("business_id", in.Business.ID),
			zap.String("model", g.modelName),
			zap.Error(err))
		return &core.GenerateResult{
			Text:     core.FallbackReplyText,
			Fallback: true,
		}, nil
	}

	text := ApplyLengthLimit(result.Content, in.Business.AI.MaxResponseLength)
	if text == "" {
		utils.Zlog.Warn("Chat model returned empty content",
			zap.String("business_id", in.Business.ID))
		return &core.GenerateResult{
			Text:     core.FallbackReplyText,
			Fallback: true,
		}, nil
	}

	out := &core.GenerateResult{
		Text:               text,
		ProductsReferenced: CountProductMentions(text, in.Products),
		Model:              g.modelName,
	}
	if result.ResponseMeta != nil && result.ResponseMeta.Usage != nil {
		out.PromptTokens = result.ResponseMeta.Usage.PromptTokens
		out.CompletionTokens = result.ResponseMeta.Usage.CompletionTokens
	}

	return out, nil
}

// buildMessages assembles system prompt + history + current message.
func (g *GeminiGenerator) buildMessages(in *core.GenerateInput) []*schema.Message {
	messages := []*schema.Message{
		schema.SystemMessage(BuildSystemPrompt(in.Business, in.Products)),
	}

	for _, msg := range in.History {
		switch msg.Direction {
		case core.DirectionIncoming:
			messages = append(messages, schema.UserMessage(msg.Text))
		case core.DirectionOutgoing:
			messages = append(messages, schema.AssistantMessage(msg.Text, nil))
		}
	}

	messages = append(messages, schema.UserMessage(in.Message))
	return messages
}

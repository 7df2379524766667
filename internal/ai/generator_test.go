package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/types"
)

type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	msg := schema.AssistantMessage(f.reply, nil)
	msg.ResponseMeta = &schema.ResponseMeta{
		Usage: &schema.TokenUsage{PromptTokens: 42, CompletionTokens: 7},
	}
	return msg, nil
}

func generatorInput() *core.GenerateInput {
	return &core.GenerateInput{
		Business: &types.BusinessInfo{
			ID:   "biz-1",
			Name: "Mug Haven",
			AI:   types.AIConfig{Enabled: true, MaxResponseLength: 200},
		},
		History: []types.StoredMessage{
			{Direction: core.DirectionIncoming, Text: "hi"},
			{Direction: core.DirectionOutgoing, Text: "hello, how can I help?"},
		},
		Message: "do you have blue mugs?",
	}
}

func TestGenerateSuccess(t *testing.T) {
	chatModel := &fakeChatModel{reply: "Yes, blue mugs are in stock."}
	gen := NewGeneratorWithModel(chatModel, "test-model")

	result, err := gen.Generate(context.Background(), generatorInput())
	require.NoError(t, err)

	assert.Equal(t, "Yes, blue mugs are in stock.", result.Text)
	assert.False(t, result.Fallback)
	assert.Equal(t, 42, result.PromptTokens)
	assert.Equal(t, 7, result.CompletionTokens)

	// system + 2 history + current
	require.Len(t, chatModel.received, 4)
	assert.Equal(t, schema.System, chatModel.received[0].Role)
	assert.Equal(t, schema.User, chatModel.received[1].Role)
	assert.Equal(t, schema.Assistant, chatModel.received[2].Role)
	assert.Equal(t, "do you have blue mugs?", chatModel.received[3].Content)
}

func TestGenerateProviderFailureFallsBack(t *testing.T) {
	chatModel := &fakeChatModel{err: errors.New("rate limited")}
	gen := NewGeneratorWithModel(chatModel, "test-model")

	result, err := gen.Generate(context.Background(), generatorInput())
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.NotEmpty(t, result.Text)
	assert.Equal(t, core.FallbackReplyText, result.Text)
}

func TestGenerateEmptyContentFallsBack(t *testing.T) {
	chatModel := &fakeChatModel{reply: ""}
	gen := NewGeneratorWithModel(chatModel, "test-model")

	result, err := gen.Generate(context.Background(), generatorInput())
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.NotEmpty(t, result.Text)
}

func TestGenerateAppliesLengthLimit(t *testing.T) {
	chatModel := &fakeChatModel{reply: strings.Repeat("mugs ", 200)}
	gen := NewGeneratorWithModel(chatModel, "test-model")

	in := generatorInput()
	in.Business.AI.MaxResponseLength = 80

	result, err := gen.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(result.Text)), 81)
}

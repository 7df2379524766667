package core

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/types"
	"github.com/Conversly/channel-relay/internal/utils"
)

const defaultProductMatches = 5

// Orchestrator sequences resolver -> store (inbound) -> generator ->
// sender -> store (outbound) for every inbound event. One pass per
// event, terminal, no retries; the webhook was acknowledged to the
// vendor before this runs.
type Orchestrator struct {
	resolver     BusinessResolver
	store        ConversationStore
	generator    ReplyGenerator
	retriever    ProductRetriever // optional
	usage        UsageRecorder    // optional
	historyLimit int
}

// UsageRecorder bumps per-business message counters after a processed
// exchange. Billing itself lives outside the relay.
type UsageRecorder interface {
	RecordExchange(ctx context.Context, businessID string, messages int) error
}

func NewOrchestrator(resolver BusinessResolver, store ConversationStore, generator ReplyGenerator, historyLimit int) *Orchestrator {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Orchestrator{
		resolver:     resolver,
		store:        store,
		generator:    generator,
		historyLimit: historyLimit,
	}
}

// WithProductRetriever enables product grounding for generated replies.
func (o *Orchestrator) WithProductRetriever(r ProductRetriever) *Orchestrator {
	o.retriever = r
	return o
}

// WithUsageRecorder enables message counter bookkeeping.
func (o *Orchestrator) WithUsageRecorder(u UsageRecorder) *Orchestrator {
	o.usage = u
	return o
}

// HandleEvent runs the relay pipeline for one normalized event. A nil
// return means the event reached a terminal state, including the
// deliberate drop paths (unknown routing key, inactive business,
// own-echo comment, non-AI conversation mode).
func (o *Orchestrator) HandleEvent(ctx context.Context, sender ReplySender, ev NormalizedEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.Zlog.Error("Panic in relay pipeline",
				zap.String("channel", string(ev.Channel)),
				zap.String("routing_key", ev.RoutingKey),
				zap.Any("panic", r))
			err = errors.New("relay pipeline panic")
		}
	}()

	biz, err := o.resolver.ResolveByRoutingKey(ctx, ev.Channel, ev.RoutingKey)
	if err != nil {
		if errors.Is(err, ErrRoutingNotFound) {
			utils.Zlog.Warn("Dropping event with unknown routing key",
				zap.String("channel", string(ev.Channel)),
				zap.String("routing_key", ev.RoutingKey))
			return nil
		}
		return err
	}

	if !biz.Active {
		utils.Zlog.Debug("Dropping event for inactive business",
			zap.String("business_id", biz.ID))
		return nil
	}

	// Own-echo suppression: a comment authored by the business's own
	// channel identity must never trigger a reply loop.
	if ev.Kind == EventComment && ev.SenderAddress == RoutingIdentity(biz, ev.Channel) {
		utils.Zlog.Debug("Dropping own-echo comment",
			zap.String("business_id", biz.ID),
			zap.String("channel", string(ev.Channel)))
		return nil
	}

	conv, err := o.store.FindOrCreateConversation(ctx, biz.ID, ev.SenderAddress, ev.Channel)
	if err != nil {
		return err
	}

	inboundMeta := map[string]interface{}{
		"provider_msg_id": ev.ProviderMsgID,
	}
	if ev.SenderName != "" {
		inboundMeta["sender_name"] = ev.SenderName
	}
	if _, err := o.store.Append(ctx, MessageRecord{
		BusinessID:       biz.ID,
		ConversationID:   conv.ID,
		Direction:        DirectionIncoming,
		SenderAddress:    ev.SenderAddress,
		RecipientAddress: ev.RoutingKey,
		Text:             ev.Text,
		Channel:          ev.Channel,
		Kind:             ev.Kind,
		Metadata:         inboundMeta,
	}); err != nil {
		// Store failures never block the reply path
		utils.Zlog.Warn("Failed to append inbound message",
			zap.String("business_id", biz.ID),
			zap.Error(err))
	}

	if kw, ok := utils.MatchEscalationKeyword(ev.Text, biz.EscalationKeywords); ok {
		if err := o.store.EscalateConversation(ctx, conv.ID, kw); err != nil {
			utils.Zlog.Warn("Failed to escalate conversation",
				zap.String("conversation_id", conv.ID),
				zap.Error(err))
		}
		utils.Zlog.Info("Conversation escalated to human",
			zap.String("business_id", biz.ID),
			zap.String("conversation_id", conv.ID),
			zap.String("keyword", kw))
		return nil
	}

	if !biz.AI.Enabled || conv.Mode != types.ModeAI {
		utils.Zlog.Debug("AI reply suppressed",
			zap.String("business_id", biz.ID),
			zap.String("conversation_id", conv.ID),
			zap.Bool("ai_enabled", biz.AI.Enabled),
			zap.String("mode", conv.Mode))
		return nil
	}

	history, err := o.store.RecentHistory(ctx, biz.ID, ev.SenderAddress, o.historyLimit)
	if err != nil {
		utils.Zlog.Debug("Failed to load conversation history",
			zap.String("business_id", biz.ID),
			zap.Error(err))
		history = nil
	}

	var products []types.ProductMatch
	if o.retriever != nil {
		products, err = o.retriever.TopMatches(ctx, biz.ID, ev.Text, defaultProductMatches)
		if err != nil {
			utils.Zlog.Debug("Product retrieval failed",
				zap.String("business_id", biz.ID),
				zap.Error(err))
			products = nil
		}
	}

	result, genErr := o.generator.Generate(ctx, &GenerateInput{
		Business: biz,
		History:  history,
		Message:  ev.Text,
		Products: products,
	})
	replyText := ""
	if result != nil {
		replyText = result.Text
	}
	if genErr != nil || replyText == "" {
		utils.Zlog.Error("Reply generation failed, using fallback",
			zap.String("business_id", biz.ID),
			zap.String("conversation_id", conv.ID),
			zap.Error(genErr))
		replyText = FallbackReplyText
		result = &GenerateResult{Text: replyText, Fallback: true}
	}

	sentMsgID, err := sender.SendReply(ctx, biz, ev.SenderAddress, replyText)
	if err != nil {
		// No retry; the outbound message is not recorded as sent
		utils.Zlog.Error("Failed to deliver reply",
			zap.String("business_id", biz.ID),
			zap.String("conversation_id", conv.ID),
			zap.Error(err))
		return err
	}

	outboundMeta := map[string]interface{}{
		"provider_msg_id": sentMsgID,
		"reply_to":        ev.ProviderMsgID,
		"fallback":        result.Fallback,
	}
	if !result.Fallback {
		outboundMeta["model"] = result.Model
		outboundMeta["prompt_tokens"] = result.PromptTokens
		outboundMeta["completion_tokens"] = result.CompletionTokens
		outboundMeta["products_referenced"] = result.ProductsReferenced
	}
	if _, err := o.store.Append(ctx, MessageRecord{
		BusinessID:       biz.ID,
		ConversationID:   conv.ID,
		Direction:        DirectionOutgoing,
		SenderAddress:    ev.RoutingKey,
		RecipientAddress: ev.SenderAddress,
		Text:             replyText,
		Channel:          ev.Channel,
		Kind:             EventMessage,
		Metadata:         outboundMeta,
	}); err != nil {
		utils.Zlog.Warn("Failed to append outbound message",
			zap.String("business_id", biz.ID),
			zap.Error(err))
	}

	if o.usage != nil {
		if err := o.usage.RecordExchange(ctx, biz.ID, 2); err != nil {
			utils.Zlog.Debug("Failed to record usage",
				zap.String("business_id", biz.ID),
				zap.Error(err))
		}
	}

	return nil
}

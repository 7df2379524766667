package core

import (
	"context"
	"time"

	"github.com/Conversly/channel-relay/internal/types"
)

// Channel identifies the messaging platform an event arrived on.
type Channel string

const (
	ChannelWhatsApp  Channel = "WHATSAPP"
	ChannelMessenger Channel = "MESSENGER"
	ChannelInstagram Channel = "INSTAGRAM"
)

// EventKind distinguishes direct messages from public comments.
type EventKind string

const (
	EventMessage EventKind = "message"
	EventComment EventKind = "comment"
)

// Message directions in the conversation log.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// NormalizedEvent is the channel-agnostic form of one inbound message
// or comment, produced by a channel adapter's parser.
type NormalizedEvent struct {
	Channel       Channel
	Kind          EventKind
	RoutingKey    string // phone_number_id | page_id | instagram_account_id
	SenderAddress string
	SenderName    string
	Text          string
	ProviderMsgID string
	Timestamp     time.Time
}

// MessageRecord is a message to be appended to the conversation log.
type MessageRecord struct {
	BusinessID       string
	ConversationID   string
	Direction        string
	SenderAddress    string
	RecipientAddress string
	Text             string
	Channel          Channel
	Kind             EventKind
	Metadata         map[string]interface{}
}

// BusinessResolver maps a channel routing key to the owning business.
type BusinessResolver interface {
	ResolveByRoutingKey(ctx context.Context, channel Channel, routingKey string) (*types.BusinessInfo, error)
}

// ConversationStore appends to and reads the per-business message log.
type ConversationStore interface {
	FindOrCreateConversation(ctx context.Context, businessID, customerAddress string, channel Channel) (*types.Conversation, error)
	Append(ctx context.Context, rec MessageRecord) (*types.StoredMessage, error)
	RecentHistory(ctx context.Context, businessID, customerAddress string, limit int) ([]types.StoredMessage, error)
	EscalateConversation(ctx context.Context, conversationID, reason string) error
}

// GenerateInput carries everything the reply generator needs.
type GenerateInput struct {
	Business *types.BusinessInfo
	History  []types.StoredMessage
	Message  string
	Products []types.ProductMatch
}

// GenerateResult is the reply generator output.
type GenerateResult struct {
	Text               string
	ProductsReferenced int
	PromptTokens       int
	CompletionTokens   int
	Fallback           bool
	Model              string
}

// ReplyGenerator produces the outbound reply text. Implementations
// degrade to FallbackReplyText on provider failure instead of
// returning an empty reply.
type ReplyGenerator interface {
	Generate(ctx context.Context, in *GenerateInput) (*GenerateResult, error)
}

// ReplySender sends a text reply through one channel's vendor API.
// Implementations never retry; a non-success status surfaces as a
// *DeliveryError.
type ReplySender interface {
	Channel() Channel
	SendReply(ctx context.Context, biz *types.BusinessInfo, recipient, text string) (providerMsgID string, err error)
}

// ProductRetriever returns catalog items semantically close to a query.
type ProductRetriever interface {
	TopMatches(ctx context.Context, businessID, query string, limit int) ([]types.ProductMatch, error)
}

// RoutingIdentity returns the business's own identity on the given
// channel. Used to drop comment events the business authored itself.
func RoutingIdentity(biz *types.BusinessInfo, channel Channel) string {
	switch channel {
	case ChannelWhatsApp:
		return biz.PhoneNumberID
	case ChannelMessenger:
		return biz.PageID
	case ChannelInstagram:
		return biz.InstagramAccountID
	default:
		return ""
	}
}

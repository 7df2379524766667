package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/types"
)

// PgConversationStore implements ConversationStore over Postgres.
// Appends go through the background batch saver; a write failure is
// logged there and never blocks the user-facing reply.
type PgConversationStore struct {
	db *loaders.PostgresClient
}

func NewPgConversationStore(db *loaders.PostgresClient) *PgConversationStore {
	return &PgConversationStore{db: db}
}

func (s *PgConversationStore) FindOrCreateConversation(ctx context.Context, businessID, customerAddress string, channel Channel) (*types.Conversation, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate conversation id: %w", err)
	}
	return s.db.FindOrCreateConversation(ctx, id.String(), businessID, customerAddress, string(channel))
}

func (s *PgConversationStore) Append(ctx context.Context, rec MessageRecord) (*types.StoredMessage, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	now := time.Now().UTC()
	kind := rec.Kind
	if kind == "" {
		kind = EventMessage
	}

	enqueueMessageRow(s.db, loaders.MessageRow{
		UniqueMsgID:      id.String(),
		ConversationID:   rec.ConversationID,
		BusinessID:       rec.BusinessID,
		Direction:        rec.Direction,
		SenderAddress:    rec.SenderAddress,
		RecipientAddress: rec.RecipientAddress,
		Content:          rec.Text,
		Channel:          string(rec.Channel),
		Kind:             string(kind),
		Metadata:         rec.Metadata,
		CreatedAt:        now,
	})

	return &types.StoredMessage{
		ID:               id.String(),
		ConversationID:   rec.ConversationID,
		BusinessID:       rec.BusinessID,
		Direction:        rec.Direction,
		SenderAddress:    rec.SenderAddress,
		RecipientAddress: rec.RecipientAddress,
		Text:             rec.Text,
		Channel:          string(rec.Channel),
		Kind:             string(kind),
		CreatedAt:        now,
	}, nil
}

func (s *PgConversationStore) RecentHistory(ctx context.Context, businessID, customerAddress string, limit int) ([]types.StoredMessage, error) {
	return s.db.GetConversationHistory(ctx, businessID, customerAddress, limit)
}

func (s *PgConversationStore) EscalateConversation(ctx context.Context, conversationID, reason string) error {
	return s.db.EscalateConversation(ctx, conversationID, reason)
}

package loaders

import (
	"context"
	"fmt"

	"github.com/Conversly/channel-relay/internal/types"
)

const conversationColumns = `
	id, business_id, customer_address, channel, mode,
	escalation_requested, escalation_reason, escalated_at, assigned_to, escalation_count,
	last_activity_at, created_at`

// FindOrCreateConversation returns the open conversation for a
// business + customer address + channel triple, creating one in mode
// "ai" on first contact. The upsert also refreshes last_activity_at.
func (c *PostgresClient) FindOrCreateConversation(ctx context.Context, id, businessID, customerAddress, channel string) (*types.Conversation, error) {
	query := fmt.Sprintf(`
		INSERT INTO conversations (
			id, business_id, customer_address, channel, mode,
			escalation_requested, escalation_reason, escalation_count,
			last_activity_at, created_at
		) VALUES ($1, $2, $3, $4, 'ai', false, '', 0, NOW(), NOW())
		ON CONFLICT (business_id, customer_address, channel)
		DO UPDATE SET last_activity_at = NOW()
		RETURNING %s`, conversationColumns)

	var conv types.Conversation
	err := c.pool.QueryRow(ctx, query, id, businessID, customerAddress, channel).Scan(
		&conv.ID, &conv.BusinessID, &conv.CustomerAddress, &conv.Channel, &conv.Mode,
		&conv.EscalationRequested, &conv.EscalationReason, &conv.EscalatedAt, &conv.AssignedTo, &conv.EscalationCount,
		&conv.LastActivityAt, &conv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create conversation: %w", err)
	}

	return &conv, nil
}

// EscalateConversation flags a conversation for human takeover and
// moves it out of AI mode. Repeat escalations bump the counter.
func (c *PostgresClient) EscalateConversation(ctx context.Context, conversationID, reason string) error {
	_, err := c.pool.Exec(ctx, `
		UPDATE conversations SET
			mode = 'human',
			escalation_requested = true,
			escalation_reason = $2,
			escalated_at = NOW(),
			escalation_count = escalation_count + 1,
			last_activity_at = NOW()
		WHERE id = $1`,
		conversationID, reason)
	if err != nil {
		return fmt.Errorf("failed to escalate conversation: %w", err)
	}
	return nil
}

// SetConversationMode moves a conversation between ai, human and
// paused. Backs the takeover endpoint: an operator taking or releasing
// a thread.
func (c *PostgresClient) SetConversationMode(ctx context.Context, conversationID, mode string, assignee *string) error {
	_, err := c.pool.Exec(ctx, `
		UPDATE conversations SET mode = $2, assigned_to = $3, last_activity_at = NOW()
		WHERE id = $1`,
		conversationID, mode, assignee)
	if err != nil {
		return fmt.Errorf("failed to set conversation mode: %w", err)
	}
	return nil
}

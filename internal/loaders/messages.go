package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Conversly/channel-relay/internal/types"
)

type MessageRow struct {
	UniqueMsgID      string
	ConversationID   string
	BusinessID       string
	Direction        string // incoming | outgoing
	SenderAddress    string
	RecipientAddress string
	Content          string
	Channel          string // WHATSAPP | MESSENGER | INSTAGRAM
	Kind             string // text | comment
	Metadata         map[string]interface{}
	CreatedAt        time.Time
}

// BatchInsertMessages inserts a batch of messages into the messages table.
func (c *PostgresClient) BatchInsertMessages(ctx context.Context, rows []MessageRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
        INSERT INTO messages (
            id, conversation_id, business_id, direction,
            sender_address, recipient_address, content, channel, "type", metadata, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	successCount := 0
	for _, r := range rows {
		kind := r.Kind
		if kind == "" {
			kind = "text"
		}

		var metadataJSON interface{}
		if r.Metadata != nil {
			jsonBytes, err := json.Marshal(r.Metadata)
			if err != nil {
				log.Printf("Failed to marshal message metadata: %v", err)
			} else {
				metadataJSON = jsonBytes
			}
		}

		_, err := c.pool.Exec(ctx, query,
			r.UniqueMsgID,
			r.ConversationID,
			r.BusinessID,
			r.Direction,
			r.SenderAddress,
			r.RecipientAddress,
			r.Content,
			r.Channel,
			kind,
			metadataJSON,
			r.CreatedAt.UTC(),
		)
		if err != nil {
			log.Printf("Failed to insert message for conversation=%s business=%s: %v", r.ConversationID, r.BusinessID, err)
			continue
		}
		successCount++
	}

	if successCount == 0 {
		return fmt.Errorf("failed to insert any messages")
	}

	return nil
}

// GetConversationHistory retrieves the most recent messages for a
// business + customer address pair, oldest first.
func (c *PostgresClient) GetConversationHistory(ctx context.Context, businessID, customerAddress string, limit int) ([]types.StoredMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, conversation_id, business_id, direction,
		       sender_address, recipient_address, content, channel, "type", created_at
		FROM messages
		WHERE business_id = $1 AND (sender_address = $2 OR recipient_address = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := c.pool.Query(ctx, query, businessID, customerAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	defer rows.Close()

	var messages []types.StoredMessage
	for rows.Next() {
		var m types.StoredMessage
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.BusinessID, &m.Direction,
			&m.SenderAddress, &m.RecipientAddress, &m.Text, &m.Channel, &m.Kind, &m.CreatedAt,
		); err != nil {
			continue
		}
		messages = append(messages, m)
	}

	return chronological(messages), nil
}

// chronological reverses a newest-first result window in place. The
// history query selects the N most recent rows DESC; callers expect
// oldest first.
func chronological(messages []types.StoredMessage) []types.StoredMessage {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}

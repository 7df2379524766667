package loaders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/Conversly/channel-relay/internal/types"
)

// ErrBusinessNotFound is returned when no row matches the lookup.
var ErrBusinessNotFound = errors.New("business not found")

const businessColumns = `
	id, account_id, name,
	phone_number_id, page_id, instagram_account_id,
	access_token, verify_token,
	ai_enabled, greeting, tone, instructions,
	forbidden_topics, faqs, special_offers,
	max_response_length, language,
	refund_policy, return_policy, shipping_policy, privacy_policy, terms_policy,
	store_hours, escalation_keywords,
	message_count, active, created_at, updated_at`

func scanBusiness(row pgx.Row) (*types.BusinessInfo, error) {
	var (
		b          types.BusinessInfo
		faqsJSON   []byte
		offersJSON []byte
		hoursJSON  []byte
	)

	err := row.Scan(
		&b.ID, &b.AccountID, &b.Name,
		&b.PhoneNumberID, &b.PageID, &b.InstagramAccountID,
		&b.AccessToken, &b.VerifyToken,
		&b.AI.Enabled, &b.AI.Greeting, &b.AI.Tone, &b.AI.Instructions,
		&b.AI.ForbiddenTopics, &faqsJSON, &offersJSON,
		&b.AI.MaxResponseLength, &b.AI.Language,
		&b.Policies.Refund, &b.Policies.Return, &b.Policies.Shipping, &b.Policies.Privacy, &b.Policies.Terms,
		&hoursJSON, &b.EscalationKeywords,
		&b.MessageCount, &b.Active, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to scan business: %w", err)
	}

	if len(faqsJSON) > 0 {
		if err := json.Unmarshal(faqsJSON, &b.AI.FAQs); err != nil {
			log.Printf("Warning: failed to parse faqs for business %s: %v", b.ID, err)
		}
	}
	if len(offersJSON) > 0 {
		if err := json.Unmarshal(offersJSON, &b.AI.SpecialOffers); err != nil {
			log.Printf("Warning: failed to parse special_offers for business %s: %v", b.ID, err)
		}
	}
	if len(hoursJSON) > 0 && string(hoursJSON) != "null" {
		var hours types.StoreHours
		if err := json.Unmarshal(hoursJSON, &hours); err != nil {
			log.Printf("Warning: failed to parse store_hours for business %s: %v", b.ID, err)
		} else {
			b.Hours = &hours
		}
	}

	return &b, nil
}

// GetBusinessByRoutingKey looks up the business owning a channel
// routing key. The column depends on the channel: phone_number_id,
// page_id or instagram_account_id.
func (c *PostgresClient) GetBusinessByRoutingKey(ctx context.Context, column, routingKey string) (*types.BusinessInfo, error) {
	switch column {
	case "phone_number_id", "page_id", "instagram_account_id":
	default:
		return nil, fmt.Errorf("invalid routing column: %s", column)
	}

	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE %s = $1 LIMIT 1`, businessColumns, column)
	return scanBusiness(c.pool.QueryRow(ctx, query, routingKey))
}

// GetBusinessByID fetches a single business row.
func (c *PostgresClient) GetBusinessByID(ctx context.Context, id string) (*types.BusinessInfo, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE id = $1`, businessColumns)
	return scanBusiness(c.pool.QueryRow(ctx, query, id))
}

// ListBusinessesByAccount returns all businesses owned by an account.
func (c *PostgresClient) ListBusinessesByAccount(ctx context.Context, accountID string) ([]types.BusinessInfo, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE account_id = $1 ORDER BY created_at`, businessColumns)

	rows, err := c.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	defer rows.Close()

	var businesses []types.BusinessInfo
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			log.Printf("Failed to scan business row: %v", err)
			continue
		}
		businesses = append(businesses, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating businesses: %w", err)
	}

	return businesses, nil
}

// InsertBusiness creates a business row and returns the stored record.
func (c *PostgresClient) InsertBusiness(ctx context.Context, b *types.BusinessInfo) (*types.BusinessInfo, error) {
	faqsJSON, _ := json.Marshal(b.AI.FAQs)
	offersJSON, _ := json.Marshal(b.AI.SpecialOffers)
	var hoursJSON []byte
	if b.Hours != nil {
		hoursJSON, _ = json.Marshal(b.Hours)
	}

	query := fmt.Sprintf(`
		INSERT INTO businesses (
			id, account_id, name,
			phone_number_id, page_id, instagram_account_id,
			access_token, verify_token,
			ai_enabled, greeting, tone, instructions,
			forbidden_topics, faqs, special_offers,
			max_response_length, language,
			refund_policy, return_policy, shipping_policy, privacy_policy, terms_policy,
			store_hours, escalation_keywords,
			message_count, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, 0, $25, NOW(), NOW()
		)
		RETURNING %s`, businessColumns)

	return scanBusiness(c.pool.QueryRow(ctx, query,
		b.ID, b.AccountID, b.Name,
		b.PhoneNumberID, b.PageID, b.InstagramAccountID,
		b.AccessToken, b.VerifyToken,
		b.AI.Enabled, b.AI.Greeting, b.AI.Tone, b.AI.Instructions,
		b.AI.ForbiddenTopics, faqsJSON, offersJSON,
		b.AI.MaxResponseLength, b.AI.Language,
		b.Policies.Refund, b.Policies.Return, b.Policies.Shipping, b.Policies.Privacy, b.Policies.Terms,
		hoursJSON, b.EscalationKeywords,
		b.Active,
	))
}

// UpdateBusiness overwrites the mutable fields of a business row.
func (c *PostgresClient) UpdateBusiness(ctx context.Context, b *types.BusinessInfo) (*types.BusinessInfo, error) {
	faqsJSON, _ := json.Marshal(b.AI.FAQs)
	offersJSON, _ := json.Marshal(b.AI.SpecialOffers)
	var hoursJSON []byte
	if b.Hours != nil {
		hoursJSON, _ = json.Marshal(b.Hours)
	}

	query := fmt.Sprintf(`
		UPDATE businesses SET
			name = $2,
			phone_number_id = $3, page_id = $4, instagram_account_id = $5,
			access_token = $6, verify_token = $7,
			ai_enabled = $8, greeting = $9, tone = $10, instructions = $11,
			forbidden_topics = $12, faqs = $13, special_offers = $14,
			max_response_length = $15, language = $16,
			store_hours = $17, escalation_keywords = $18,
			active = $19, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, businessColumns)

	return scanBusiness(c.pool.QueryRow(ctx, query,
		b.ID, b.Name,
		b.PhoneNumberID, b.PageID, b.InstagramAccountID,
		b.AccessToken, b.VerifyToken,
		b.AI.Enabled, b.AI.Greeting, b.AI.Tone, b.AI.Instructions,
		b.AI.ForbiddenTopics, faqsJSON, offersJSON,
		b.AI.MaxResponseLength, b.AI.Language,
		hoursJSON, b.EscalationKeywords,
		b.Active,
	))
}

// DeleteBusiness removes a business; dependent conversations, messages,
// products and integrations cascade at the schema level.
func (c *PostgresClient) DeleteBusiness(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// UpdateBusinessPolicies replaces the policy texts for a business.
func (c *PostgresClient) UpdateBusinessPolicies(ctx context.Context, id string, p *types.Policies) error {
	tag, err := c.pool.Exec(ctx, `
		UPDATE businesses SET
			refund_policy = $2, return_policy = $3, shipping_policy = $4,
			privacy_policy = $5, terms_policy = $6, updated_at = NOW()
		WHERE id = $1`,
		id, p.Refund, p.Return, p.Shipping, p.Privacy, p.Terms)
	if err != nil {
		return fmt.Errorf("failed to update policies: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// IncrementMessageCount bumps the business message counter after a
// processed exchange. Best-effort bookkeeping for billing.
func (c *PostgresClient) IncrementMessageCount(ctx context.Context, id string, delta int) error {
	_, err := c.pool.Exec(ctx,
		`UPDATE businesses SET message_count = message_count + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("failed to increment message count: %w", err)
	}
	return nil
}

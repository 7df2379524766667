package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/types"
)

// PgResolver resolves routing keys against the businesses table.
// Exactly one lookup column per channel.
type PgResolver struct {
	db *loaders.PostgresClient
}

func NewPgResolver(db *loaders.PostgresClient) *PgResolver {
	return &PgResolver{db: db}
}

func routingColumn(channel Channel) (string, error) {
	switch channel {
	case ChannelWhatsApp:
		return "phone_number_id", nil
	case ChannelMessenger:
		return "page_id", nil
	case ChannelInstagram:
		return "instagram_account_id", nil
	default:
		return "", fmt.Errorf("unknown channel: %s", channel)
	}
}

func (r *PgResolver) ResolveByRoutingKey(ctx context.Context, channel Channel, routingKey string) (*types.BusinessInfo, error) {
	if routingKey == "" {
		return nil, ErrRoutingNotFound
	}

	column, err := routingColumn(channel)
	if err != nil {
		return nil, err
	}

	biz, err := r.db.GetBusinessByRoutingKey(ctx, column, routingKey)
	if err != nil {
		if errors.Is(err, loaders.ErrBusinessNotFound) {
			return nil, ErrRoutingNotFound
		}
		return nil, err
	}

	return biz, nil
}

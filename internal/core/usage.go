package core

import (
	"context"

	"github.com/Conversly/channel-relay/internal/loaders"
)

// PgUsageRecorder bumps the business message counter in Postgres.
type PgUsageRecorder struct {
	db *loaders.PostgresClient
}

func NewPgUsageRecorder(db *loaders.PostgresClient) *PgUsageRecorder {
	return &PgUsageRecorder{db: db}
}

func (r *PgUsageRecorder) RecordExchange(ctx context.Context, businessID string, messages int) error {
	return r.db.IncrementMessageCount(ctx, businessID, messages)
}

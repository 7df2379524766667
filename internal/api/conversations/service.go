package conversations

import (
	"context"
	"fmt"

	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/types"
)

type Service struct {
	db *loaders.PostgresClient
}

func NewService(db *loaders.PostgresClient) *Service {
	return &Service{db: db}
}

// SetMode flips a conversation's owning actor. Setting ai hands the
// thread back to the relay; human and paused stop automatic replies.
func (s *Service) SetMode(ctx context.Context, conversationID string, req *ModeRequest) error {
	switch req.Mode {
	case types.ModeAI, types.ModeHuman, types.ModePaused:
	default:
		return fmt.Errorf("invalid mode: %s", req.Mode)
	}

	assignee := req.Assignee
	if req.Mode != types.ModeHuman {
		assignee = nil
	}

	return s.db.SetConversationMode(ctx, conversationID, req.Mode, assignee)
}

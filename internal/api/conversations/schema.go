package conversations

// ModeRequest moves a conversation between ai, human and paused.
// Assignee names the operator taking the thread; meaningful for human
// mode only.
type ModeRequest struct {
	Mode     string  `json:"mode" binding:"required"`
	Assignee *string `json:"assignee,omitempty"`
}

// ModeResponse acknowledges a mode change.
type ModeResponse struct {
	ConversationID string `json:"conversationId"`
	Mode           string `json:"mode"`
	Success        bool   `json:"success"`
}

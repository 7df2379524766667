package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/types"
)

const metaGraphAPIBaseURL = "https://graph.facebook.com/v21.0"

// Adapter implements the Facebook Messenger side of the relay.
type Adapter struct {
	client  *http.Client
	baseURL string
}

func NewAdapter() *Adapter {
	return &Adapter{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: metaGraphAPIBaseURL,
	}
}

func (a *Adapter) Channel() core.Channel {
	return core.ChannelMessenger
}

// WebhookPayload is the Messenger Platform webhook envelope.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID        string           `json:"id"` // page id
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type MessagingEvent struct {
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient"`
	Timestamp int64       `json:"timestamp"` // milliseconds
	Message   *Message    `json:"message,omitempty"`
	Delivery  *Delivery   `json:"delivery,omitempty"`
	Read      *Read       `json:"read,omitempty"`
	Reaction  *Reaction   `json:"reaction,omitempty"`
}

type Participant struct {
	ID string `json:"id"`
}

type Message struct {
	MID         string       `json:"mid"`
	Text        string       `json:"text,omitempty"`
	IsEcho      bool         `json:"is_echo,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Type string `json:"type"`
}

type Delivery struct {
	MIDs []string `json:"mids"`
}

type Read struct {
	Watermark int64 `json:"watermark"`
}

type Reaction struct {
	Reaction string `json:"reaction"`
	Emoji    string `json:"emoji"`
}

// ParseInbound walks the entry/messaging nesting and emits one event
// per qualifying text message. Echoes of the page's own sends,
// delivery/read receipts, reactions and attachment-only messages are
// skipped. Malformed payloads yield zero events.
func (a *Adapter) ParseInbound(payload []byte) []core.NormalizedEvent {
	var body WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}

	var events []core.NormalizedEvent
	for _, entry := range body.Entry {
		if entry.ID == "" {
			continue
		}
		for _, msg := range entry.Messaging {
			if msg.Message == nil || msg.Message.IsEcho || msg.Message.Text == "" {
				continue
			}
			if msg.Sender.ID == "" {
				continue
			}

			events = append(events, core.NormalizedEvent{
				Channel:       core.ChannelMessenger,
				Kind:          core.EventMessage,
				RoutingKey:    entry.ID,
				SenderAddress: msg.Sender.ID,
				Text:          msg.Message.Text,
				ProviderMsgID: msg.Message.MID,
				Timestamp:     parseMillisTimestamp(msg.Timestamp),
			})
		}
	}

	return events
}

func parseMillisTimestamp(ms int64) time.Time {
	if ms <= 0 {
		return time.Now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}

// SendRequest is the Send API body.
type SendRequest struct {
	Recipient     Participant `json:"recipient"`
	MessagingType string      `json:"messaging_type"`
	Message       SendMessage `json:"message"`
}

type SendMessage struct {
	Text string `json:"text"`
}

// SendResponse is the Send API response.
type SendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// SendReply sends a text message via the Send API using the page
// access token. Never retries.
func (a *Adapter) SendReply(ctx context.Context, biz *types.BusinessInfo, recipient, text string) (string, error) {
	url := fmt.Sprintf("%s/me/messages?access_token=%s", a.baseURL, biz.AccessToken)

	reqBody := &SendRequest{
		Recipient:     Participant{ID: recipient},
		MessagingType: "RESPONSE",
		Message:       SendMessage{Text: text},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return "", &core.DeliveryError{
			Channel: core.ChannelMessenger,
			Status:  resp.StatusCode,
			Reason:  fmt.Sprintf("%v", errBody),
		}
	}

	var sendResp SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return sendResp.MessageID, nil
}

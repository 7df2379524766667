package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/types"
)

const metaGraphAPIBaseURL = "https://graph.facebook.com/v21.0"

// Adapter implements the WhatsApp side of the relay: parsing Cloud API
// webhook payloads and sending replies through the Graph API.
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
	return core.ChannelWhatsApp
}

// WebhookPayload is the Cloud API webhook envelope.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Value Value  `json:"value"`
	Field string `json:"field"`
}

type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

type Profile struct {
	Name string `json:"name"`
}

type Message struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *TextMessage `json:"text,omitempty"`
}

type TextMessage struct {
	Body string `json:"body"`
}

// Status is a delivery/read receipt; never produces an event.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"` // sent, delivered, read, failed
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// ParseInbound walks the entry/changes/messages nesting and emits one
// event per qualifying text message. Statuses, media and reactions are
// skipped. Malformed payloads yield zero events.
func (a *Adapter) ParseInbound(payload []byte) []core.NormalizedEvent {
	var body WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}

	var events []core.NormalizedEvent
	for _, entry := range body.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			phoneNumberID := value.Metadata.PhoneNumberID
			if phoneNumberID == "" {
				continue
			}

			names := make(map[string]string, len(value.Contacts))
			for _, contact := range value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}

			for _, msg := range value.Messages {
				if msg.Type != "text" || msg.Text == nil || msg.Text.Body == "" {
					continue
				}

				events = append(events, core.NormalizedEvent{
					Channel:       core.ChannelWhatsApp,
					Kind:          core.EventMessage,
					RoutingKey:    phoneNumberID,
					SenderAddress: msg.From,
					SenderName:    names[msg.From],
					Text:          msg.Text.Body,
					ProviderMsgID: msg.ID,
					Timestamp:     parseUnixTimestamp(msg.Timestamp),
				})
			}
		}
	}

	return events
}

func parseUnixTimestamp(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}

// MessageRequest is the Cloud API send body.
type MessageRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *TextContent `json:"text,omitempty"`
}

type TextContent struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// MessageResponse is the Cloud API send response.
type MessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendReply sends a text message via the Cloud API. Never retries; a
// non-success status surfaces as a *core.DeliveryError.
func (a *Adapter) SendReply(ctx context.Context, biz *types.BusinessInfo, recipient, text string) (string, error) {
	url := fmt.Sprintf("%s/%s/messages", a.baseURL, biz.PhoneNumberID)

	reqBody := &MessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               recipient,
		Type:             "text",
		Text: &TextContent{
			PreviewURL: false,
			Body:       text,
		},
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
	req.Header.Set("Authorization", "Bearer "+biz.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return "", &core.DeliveryError{
			Channel: core.ChannelWhatsApp,
			Status:  resp.StatusCode,
			Reason:  fmt.Sprintf("%v", errBody),
		}
	}

	var msgResp MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(msgResp.Messages) == 0 {
		return "", fmt.Errorf("no message ID returned from Meta API")
	}

	return msgResp.Messages[0].ID, nil
}

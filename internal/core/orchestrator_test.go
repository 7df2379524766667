package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conversly/channel-relay/internal/types"
)

type fakeResolver struct {
	businesses map[string]*types.BusinessInfo // routing key -> business
}

func (f *fakeResolver) ResolveByRoutingKey(_ context.Context, _ Channel, routingKey string) (*types.BusinessInfo, error) {
	if biz, ok := f.businesses[routingKey]; ok {
		return biz, nil
	}
	return nil, ErrRoutingNotFound
}

type fakeStore struct {
	appended    []MessageRecord
	appendErr   error
	history     []types.StoredMessage
	mode        string
	escalations []string
}

func (f *fakeStore) FindOrCreateConversation(_ context.Context, businessID, customerAddress string, channel Channel) (*types.Conversation, error) {
	mode := f.mode
	if mode == "" {
		mode = types.ModeAI
	}
	return &types.Conversation{
		ID:              "conv-1",
		BusinessID:      businessID,
		CustomerAddress: customerAddress,
		Channel:         string(channel),
		Mode:            mode,
		LastActivityAt:  time.Now(),
	}, nil
}

func (f *fakeStore) Append(_ context.Context, rec MessageRecord) (*types.StoredMessage, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	f.appended = append(f.appended, rec)
	return &types.StoredMessage{
		ID:        "msg",
		Direction: rec.Direction,
		Text:      rec.Text,
	}, nil
}

func (f *fakeStore) RecentHistory(_ context.Context, _, _ string, _ int) ([]types.StoredMessage, error) {
	return f.history, nil
}

func (f *fakeStore) EscalateConversation(_ context.Context, conversationID, reason string) error {
	f.escalations = append(f.escalations, reason)
	return nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, _ *GenerateInput) (*GenerateResult, error) {
	if f.err != nil {
		// Contract: provider failures degrade to the fallback text
		return &GenerateResult{Text: FallbackReplyText, Fallback: true}, nil
	}
	return &GenerateResult{Text: f.text, Model: "test-model"}, nil
}

type fakeSender struct {
	sent    []string
	sendErr error
}

func (f *fakeSender) Channel() Channel { return ChannelWhatsApp }

func (f *fakeSender) SendReply(_ context.Context, _ *types.BusinessInfo, _ string, text string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, text)
	return "wamid.sent", nil
}

func testBusiness() *types.BusinessInfo {
	return &types.BusinessInfo{
		ID:            "biz-1",
		Name:          "Test Shop",
		PhoneNumberID: "555001",
		Active:        true,
		AI: types.AIConfig{
			Enabled: true,
			Tone:    "friendly",
		},
		EscalationKeywords: []string{"human"},
	}
}

func testEvent() NormalizedEvent {
	return NormalizedEvent{
		Channel:       ChannelWhatsApp,
		Kind:          EventMessage,
		RoutingKey:    "555001",
		SenderAddress: "15550001234",
		Text:          "do you have blue mugs?",
		ProviderMsgID: "wamid.in",
		Timestamp:     time.Now(),
	}
}

func TestHandleEventHappyPath(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": testBusiness()}},
		store,
		&fakeGenerator{text: "Yes, blue mugs are in stock!"},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.NoError(t, err)

	// exactly one reply sent, exactly two messages appended, in order
	require.Len(t, sender.sent, 1)
	require.Len(t, store.appended, 2)
	assert.Equal(t, DirectionIncoming, store.appended[0].Direction)
	assert.Equal(t, "do you have blue mugs?", store.appended[0].Text)
	assert.Equal(t, DirectionOutgoing, store.appended[1].Direction)
	assert.Equal(t, "Yes, blue mugs are in stock!", store.appended[1].Text)
	assert.Equal(t, "Yes, blue mugs are in stock!", sender.sent[0])
}

func TestHandleEventUnknownRoutingKey(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{}},
		store,
		&fakeGenerator{text: "hi"},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.NoError(t, err)

	assert.Empty(t, store.appended)
	assert.Empty(t, sender.sent)
}

func TestHandleEventGeneratorFailureSendsFallback(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": testBusiness()}},
		store,
		&fakeGenerator{err: errors.New("provider unavailable")},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.NotEmpty(t, sender.sent[0])
	assert.Equal(t, FallbackReplyText, sender.sent[0])

	require.Len(t, store.appended, 2)
	assert.Equal(t, true, store.appended[1].Metadata["fallback"])
}

func TestHandleEventDeliveryFailureNotRecorded(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{sendErr: &DeliveryError{Channel: ChannelWhatsApp, Status: 500, Reason: "boom"}}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": testBusiness()}},
		store,
		&fakeGenerator{text: "hello"},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.Error(t, err)

	// inbound recorded, outbound not
	require.Len(t, store.appended, 1)
	assert.Equal(t, DirectionIncoming, store.appended[0].Direction)
}

func TestHandleEventHumanModeSuppressesReply(t *testing.T) {
	store := &fakeStore{mode: types.ModeHuman}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": testBusiness()}},
		store,
		&fakeGenerator{text: "hi"},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.NoError(t, err)

	// inbound still logged, but no AI reply
	require.Len(t, store.appended, 1)
	assert.Empty(t, sender.sent)
}

func TestHandleEventAIDisabledSuppressesReply(t *testing.T) {
	biz := testBusiness()
	biz.AI.Enabled = false
	store := &fakeStore{}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": biz}},
		store,
		&fakeGenerator{text: "hi"},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.NoError(t, err)
	require.Len(t, store.appended, 1)
	assert.Empty(t, sender.sent)
}

func TestHandleEventOwnEchoCommentDropped(t *testing.T) {
	biz := testBusiness()
	biz.InstagramAccountID = "ig-99"
	store := &fakeStore{}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"ig-99": biz}},
		store,
		&fakeGenerator{text: "hi"},
		10,
	)

	ev := NormalizedEvent{
		Channel:       ChannelInstagram,
		Kind:          EventComment,
		RoutingKey:    "ig-99",
		SenderAddress: "ig-99", // business commenting on its own post
		Text:          "thanks everyone!",
	}

	err := orch.HandleEvent(context.Background(), sender, ev)
	require.NoError(t, err)

	assert.Empty(t, store.appended)
	assert.Empty(t, sender.sent)
}

func TestHandleEventEscalationKeyword(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": testBusiness()}},
		store,
		&fakeGenerator{text: "hi"},
		10,
	)

	ev := testEvent()
	ev.Text = "I need a human please"

	err := orch.HandleEvent(context.Background(), sender, ev)
	require.NoError(t, err)

	// inbound stored, conversation escalated, no AI reply sent
	require.Len(t, store.appended, 1)
	require.Len(t, store.escalations, 1)
	assert.Equal(t, "human", store.escalations[0])
	assert.Empty(t, sender.sent)
}

func TestHandleEventStoreFailureStillReplies(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("db down")}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": testBusiness()}},
		store,
		&fakeGenerator{text: "still here"},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.NoError(t, err)

	// the customer still gets a reply despite the store failure
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "still here", sender.sent[0])
}

func TestHandleEventInactiveBusinessDropped(t *testing.T) {
	biz := testBusiness()
	biz.Active = false
	store := &fakeStore{}
	sender := &fakeSender{}
	orch := NewOrchestrator(
		&fakeResolver{businesses: map[string]*types.BusinessInfo{"555001": biz}},
		store,
		&fakeGenerator{text: "hi"},
		10,
	)

	err := orch.HandleEvent(context.Background(), sender, testEvent())
	require.NoError(t, err)
	assert.Empty(t, store.appended)
	assert.Empty(t, sender.sent)
}

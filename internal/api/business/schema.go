package business

import "github.com/Conversly/channel-relay/internal/types"

// CreateRequest carries everything needed to register a business and
// its channel routing keys.
type CreateRequest struct {
	AccountID          string            `json:"accountId" binding:"required"`
	Name               string            `json:"name" binding:"required"`
	PhoneNumberID      string            `json:"phoneNumberId,omitempty"`
	PageID             string            `json:"pageId,omitempty"`
	InstagramAccountID string            `json:"instagramAccountId,omitempty"`
	AccessToken        string            `json:"accessToken" binding:"required"`
	VerifyToken        *string           `json:"verifyToken,omitempty"`
	AI                 AISettings        `json:"ai"`
	Hours              *types.StoreHours `json:"storeHours,omitempty"`
	EscalationKeywords []string          `json:"escalationKeywords,omitempty"`
	Active             *bool             `json:"active,omitempty"`
}

// UpdateRequest mirrors CreateRequest minus the immutable account link.
type UpdateRequest struct {
	Name               string            `json:"name" binding:"required"`
	PhoneNumberID      string            `json:"phoneNumberId,omitempty"`
	PageID             string            `json:"pageId,omitempty"`
	InstagramAccountID string            `json:"instagramAccountId,omitempty"`
	AccessToken        string            `json:"accessToken" binding:"required"`
	VerifyToken        *string           `json:"verifyToken,omitempty"`
	AI                 AISettings        `json:"ai"`
	Hours              *types.StoreHours `json:"storeHours,omitempty"`
	EscalationKeywords []string          `json:"escalationKeywords,omitempty"`
	Active             *bool             `json:"active,omitempty"`
}

// AISettings is the reply-generation configuration block.
type AISettings struct {
	Enabled           bool                 `json:"enabled"`
	Greeting          string               `json:"greeting,omitempty"`
	Tone              string               `json:"tone,omitempty"`
	Instructions      string               `json:"instructions,omitempty"`
	ForbiddenTopics   []string             `json:"forbiddenTopics,omitempty"`
	FAQs              []types.FAQ          `json:"faqs,omitempty"`
	SpecialOffers     []types.SpecialOffer `json:"specialOffers,omitempty"`
	MaxResponseLength int                  `json:"maxResponseLength,omitempty"`
	Language          string               `json:"language,omitempty"`
}

// PoliciesRequest replaces the customer-facing policy texts.
type PoliciesRequest struct {
	Refund   string `json:"refundPolicy"`
	Return   string `json:"returnPolicy"`
	Shipping string `json:"shippingPolicy"`
	Privacy  string `json:"privacyPolicy"`
	Terms    string `json:"termsPolicy"`
}

// Response is the API view of a business row. Access tokens are never
// echoed back.
type Response struct {
	ID                 string            `json:"id"`
	AccountID          string            `json:"accountId"`
	Name               string            `json:"name"`
	PhoneNumberID      string            `json:"phoneNumberId,omitempty"`
	PageID             string            `json:"pageId,omitempty"`
	InstagramAccountID string            `json:"instagramAccountId,omitempty"`
	AI                 AISettings        `json:"ai"`
	Policies           PoliciesRequest   `json:"policies"`
	Hours              *types.StoreHours `json:"storeHours,omitempty"`
	EscalationKeywords []string          `json:"escalationKeywords,omitempty"`
	MessageCount       int64             `json:"messageCount"`
	Active             bool              `json:"active"`
	CreatedAt          string            `json:"createdAt"`
	UpdatedAt          string            `json:"updatedAt"`
}

func toResponse(b *types.BusinessInfo) Response {
	return Response{
		ID:                 b.ID,
		AccountID:          b.AccountID,
		Name:               b.Name,
		PhoneNumberID:      b.PhoneNumberID,
		PageID:             b.PageID,
		InstagramAccountID: b.InstagramAccountID,
		AI: AISettings{
			Enabled:           b.AI.Enabled,
			Greeting:          b.AI.Greeting,
			Tone:              b.AI.Tone,
			Instructions:      b.AI.Instructions,
			ForbiddenTopics:   b.AI.ForbiddenTopics,
			FAQs:              b.AI.FAQs,
			SpecialOffers:     b.AI.SpecialOffers,
			MaxResponseLength: b.AI.MaxResponseLength,
			Language:          b.AI.Language,
		},
		Policies: PoliciesRequest{
			Refund:   b.Policies.Refund,
			Return:   b.Policies.Return,
			Shipping: b.Policies.Shipping,
			Privacy:  b.Policies.Privacy,
			Terms:    b.Policies.Terms,
		},
		Hours:              b.Hours,
		EscalationKeywords: b.EscalationKeywords,
		MessageCount:       b.MessageCount,
		Active:             b.Active,
		CreatedAt:          b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:          b.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

package business

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/types"
)

type Service struct {
	db *loaders.PostgresClient
}

func NewService(db *loaders.PostgresClient) *Service {
	return &Service{db: db}
}

// Create registers a business. At least one channel routing key must be
// present, otherwise no webhook will ever resolve to it.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*types.BusinessInfo, error) {
	if req.PhoneNumberID == "" && req.PageID == "" && req.InstagramAccountID == "" {
		return nil, fmt.Errorf("at least one of phoneNumberId, pageId, instagramAccountId is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate business id: %w", err)
	}

	b := buildBusiness(req)
	b.ID = id.String()
	b.AccountID = req.AccountID

	return s.db.InsertBusiness(ctx, b)
}

func (s *Service) Get(ctx context.Context, id string) (*types.BusinessInfo, error) {
	return s.db.GetBusinessByID(ctx, id)
}

func (s *Service) List(ctx context.Context, accountID string) ([]types.BusinessInfo, error) {
	return s.db.ListBusinessesByAccount(ctx, accountID)
}

// Update overwrites the mutable fields of an existing business.
func (s *Service) Update(ctx context.Context, id string, req *UpdateRequest) (*types.BusinessInfo, error) {
	if req.PhoneNumberID == "" && req.PageID == "" && req.InstagramAccountID == "" {
		return nil, fmt.Errorf("at least one of phoneNumberId, pageId, instagramAccountId is required")
	}

	b := buildBusiness(&CreateRequest{
		Name:               req.Name,
		PhoneNumberID:      req.PhoneNumberID,
		PageID:             req.PageID,
		InstagramAccountID: req.InstagramAccountID,
		AccessToken:        req.AccessToken,
		VerifyToken:        req.VerifyToken,
		AI:                 req.AI,
		Hours:              req.Hours,
		EscalationKeywords: req.EscalationKeywords,
		Active:             req.Active,
	})
	b.ID = id

	return s.db.UpdateBusiness(ctx, b)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.DeleteBusiness(ctx, id)
}

func (s *Service) GetPolicies(ctx context.Context, id string) (*types.Policies, error) {
	b, err := s.db.GetBusinessByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &b.Policies, nil
}

func (s *Service) UpdatePolicies(ctx context.Context, id string, req *PoliciesRequest) error {
	return s.db.UpdateBusinessPolicies(ctx, id, &types.Policies{
		Refund:   req.Refund,
		Return:   req.Return,
		Shipping: req.Shipping,
		Privacy:  req.Privacy,
		Terms:    req.Terms,
	})
}

func buildBusiness(req *CreateRequest) *types.BusinessInfo {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &types.BusinessInfo{
		Name:               req.Name,
		PhoneNumberID:      req.PhoneNumberID,
		PageID:             req.PageID,
		InstagramAccountID: req.InstagramAccountID,
		AccessToken:        req.AccessToken,
		VerifyToken:        req.VerifyToken,
		AI: types.AIConfig{
			Enabled:           req.AI.Enabled,
			Greeting:          req.AI.Greeting,
			Tone:              req.AI.Tone,
			Instructions:      req.AI.Instructions,
			ForbiddenTopics:   req.AI.ForbiddenTopics,
			FAQs:              req.AI.FAQs,
			SpecialOffers:     req.AI.SpecialOffers,
			MaxResponseLength: req.AI.MaxResponseLength,
			Language:          req.AI.Language,
		},
		Hours:              req.Hours,
		EscalationKeywords: req.EscalationKeywords,
		Active:             active,
	}
}

package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Conversly/channel-relay/internal/types"
)

func promptBusiness() *types.BusinessInfo {
	return &types.BusinessInfo{
		ID:   "biz-1",
		Name: "Mug Haven",
		AI: types.AIConfig{
			Enabled:         true,
			Tone:            "cheerful",
			Language:        "Spanish",
			ForbiddenTopics: []string{"politics", "competitors"},
			FAQs: []types.FAQ{
				{Question: "Do you ship abroad?", Answer: "Yes, worldwide."},
			},
			SpecialOffers: []types.SpecialOffer{
				{Title: "Summer sale", Details: "20% off all mugs"},
			},
			MaxResponseLength: 500,
		},
		Policies: types.Policies{Refund: "Refunds within 30 days."},
	}
}

func TestBuildSystemPromptIncludesRules(t *testing.T) {
	prompt := BuildSystemPrompt(promptBusiness(), nil)

	assert.Contains(t, prompt, "Mug Haven")
	assert.Contains(t, prompt, "cheerful")
	assert.Contains(t, prompt, "Spanish")
	assert.Contains(t, prompt, "politics, competitors")
	assert.Contains(t, prompt, "Do you ship abroad?")
	assert.Contains(t, prompt, "Summer sale")
	assert.Contains(t, prompt, "Refunds within 30 days.")
	assert.Contains(t, prompt, "under 500 characters")
}

func TestBuildSystemPromptIncludesProducts(t *testing.T) {
	sale := 9.99
	products := []types.ProductMatch{
		{Product: types.Product{Name: "Blue Mug", Price: 12.50, Description: "Ceramic, 350ml"}},
		{Product: types.Product{Name: "Red Mug", Price: 14.00, SalePrice: &sale}},
	}

	prompt := BuildSystemPrompt(promptBusiness(), products)

	assert.Contains(t, prompt, "Blue Mug")
	assert.Contains(t, prompt, "Ceramic, 350ml")
	assert.Contains(t, prompt, "on sale: 9.99")
	assert.Contains(t, prompt, "Only recommend products from this list")
}

func TestApplyLengthLimit(t *testing.T) {
	assert.Equal(t, "short", ApplyLengthLimit("short", 100))
	assert.Equal(t, "unbounded", ApplyLengthLimit("unbounded", 0))

	long := strings.Repeat("word ", 100)
	limited := ApplyLengthLimit(long, 50)
	assert.LessOrEqual(t, len([]rune(limited)), 51) // limit plus ellipsis
	assert.True(t, strings.HasSuffix(limited, "…"))
}

func TestCountProductMentions(t *testing.T) {
	products := []types.ProductMatch{
		{Product: types.Product{Name: "Blue Mug"}},
		{Product: types.Product{Name: "Red Mug"}},
	}

	assert.Equal(t, 1, CountProductMentions("Try our blue mug!", products))
	assert.Equal(t, 2, CountProductMentions("Both the Blue Mug and red mug are great.", products))
	assert.Equal(t, 0, CountProductMentions("We sell plates.", products))
	assert.Equal(t, 0, CountProductMentions("", products))
}

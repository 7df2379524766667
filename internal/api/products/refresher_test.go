package products

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Conversly/channel-relay/internal/types"
)

func TestEmbeddingTextIncludesSearchableFields(t *testing.T) {
	p := &types.Product{
		Name:        "Ceramic Mug",
		Description: "Hand-glazed 350ml mug in deep blue.",
		Category:    "Kitchenware",
	}

	text := EmbeddingText(p)
	assert.Contains(t, text, "Ceramic Mug")
	assert.Contains(t, text, "Kitchenware")
	assert.Contains(t, text, "deep blue")
}

func TestEmbeddingTextOmitsEmptyFields(t *testing.T) {
	p := &types.Product{Name: "Ceramic Mug"}

	assert.Equal(t, "Ceramic Mug", EmbeddingText(p))
}

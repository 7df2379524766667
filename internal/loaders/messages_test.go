package loaders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conversly/channel-relay/internal/types"
)

func historyWindow(n int) []types.StoredMessage {
	// shaped like the DESC LIMIT query result: newest first
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	msgs := make([]types.StoredMessage, 0, n)
	for i := n - 1; i >= 0; i-- {
		dir := "incoming"
		if i%2 == 1 {
			dir = "outgoing"
		}
		msgs = append(msgs, types.StoredMessage{
			ID:        string(rune('a' + i)),
			Direction: dir,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return msgs
}

func TestChronologicalReversesNewestFirstWindow(t *testing.T) {
	msgs := chronological(historyWindow(5))
	require.Len(t, msgs, 5)

	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i-1].CreatedAt.Before(msgs[i].CreatedAt),
			"message %d should precede message %d", i-1, i)
	}
	assert.Equal(t, "a", msgs[0].ID)
	assert.Equal(t, "e", msgs[len(msgs)-1].ID)
}

func TestChronologicalKeepsMostRecentWindow(t *testing.T) {
	// a limit-3 window over the same thread keeps the 3 newest rows;
	// after reordering they still read oldest first
	window := historyWindow(5)[:3]
	msgs := chronological(window)

	require.Len(t, msgs, 3)
	assert.Equal(t, "c", msgs[0].ID)
	assert.Equal(t, "d", msgs[1].ID)
	assert.Equal(t, "e", msgs[2].ID)
}

func TestChronologicalHandlesShortWindows(t *testing.T) {
	assert.Empty(t, chronological(nil))

	one := chronological(historyWindow(1))
	require.Len(t, one, 1)
	assert.Equal(t, "a", one[0].ID)
}

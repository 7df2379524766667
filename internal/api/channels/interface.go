package channels

import (
	"github.com/Conversly/channel-relay/internal/core"
)

// ChannelAdapter translates between one vendor's webhook/send API and
// the relay's normalized types. One implementation per channel.
type ChannelAdapter interface {
	core.ReplySender

	// ParseInbound walks the vendor payload and returns zero or more
	// normalized events. Malformed or empty payloads yield zero
	// events, never an error.
	ParseInbound(payload []byte) []core.NormalizedEvent
}

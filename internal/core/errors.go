package core

import (
	"errors"
	"fmt"
)

// Relay error taxonomy. Callers branch on these to distinguish
// "nothing to do" from "something failed".
var (
	// ErrVerificationFailed means the webhook handshake token did not
	// match configuration. Maps to HTTP 403 at the boundary.
	ErrVerificationFailed = errors.New("webhook verification failed")

	// ErrRoutingNotFound means no business owns the routing key. The
	// event is dropped silently; nothing is written, no reply is sent.
	ErrRoutingNotFound = errors.New("no business for routing key")

	// ErrReplyGeneration marks a provider failure during reply
	// generation. The customer still receives FallbackReplyText.
	ErrReplyGeneration = errors.New("reply generation failed")
)

// FallbackReplyText is delivered whenever reply generation fails.
const FallbackReplyText = "Sorry, we're having trouble responding right now. Please try again in a few minutes."

// DeliveryError is a vendor send API failure. Never retried; the
// outbound message is not recorded as sent.
type DeliveryError struct {
	Channel Channel
	Status  int
	Reason  string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed (status %d): %s", e.Channel, e.Status, e.Reason)
}

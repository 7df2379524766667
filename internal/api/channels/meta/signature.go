// Package meta holds the webhook plumbing shared by all Meta-platform
// channels: payload signature verification and the hub.challenge
// handshake.
package meta

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Conversly/channel-relay/internal/core"
)

const sigPrefix = "sha256="

// VerifySignature verifies the X-Hub-Signature-256 header against the
// payload. The signature is in the format: sha256=<hex_signature>
func VerifySignature(signature string, payload []byte, appSecret string) error {
	if len(signature) <= len(sigPrefix) || signature[:len(sigPrefix)] != sigPrefix {
		return fmt.Errorf("invalid signature format: missing sha256= prefix")
	}

	expectedSig := signature[len(sigPrefix):]

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(payload)
	computedSig := hex.EncodeToString(mac.Sum(nil))

	// Constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(expectedSig), []byte(computedSig)) {
		return fmt.Errorf("signature verification failed")
	}

	return nil
}

// VerifyHandshake checks Meta's webhook subscription handshake
// (hub.mode, hub.verify_token, hub.challenge) and returns the
// challenge string to echo back on success.
func VerifyHandshake(mode, token, challenge, expectedToken string) (string, error) {
	if mode != "subscribe" {
		return "", core.ErrVerificationFailed
	}
	if token == "" || token != expectedToken {
		return "", core.ErrVerificationFailed
	}
	if challenge == "" {
		return "", core.ErrVerificationFailed
	}
	return challenge, nil
}

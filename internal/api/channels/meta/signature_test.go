package meta

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conversly/channel-relay/internal/core"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"object":"whatsapp_business_account"}`)

	require.NoError(t, VerifySignature(sign(payload, "secret"), payload, "secret"))

	assert.Error(t, VerifySignature(sign(payload, "wrong"), payload, "secret"))
	assert.Error(t, VerifySignature("sha256=deadbeef", payload, "secret"))
	assert.Error(t, VerifySignature("md5=abc", payload, "secret"))
	assert.Error(t, VerifySignature("", payload, "secret"))
}

func TestVerifyHandshake(t *testing.T) {
	challenge, err := VerifyHandshake("subscribe", "tok", "12345", "tok")
	require.NoError(t, err)
	assert.Equal(t, "12345", challenge)

	_, err = VerifyHandshake("subscribe", "bad", "12345", "tok")
	assert.ErrorIs(t, err, core.ErrVerificationFailed)

	_, err = VerifyHandshake("unsubscribe", "tok", "12345", "tok")
	assert.ErrorIs(t, err, core.ErrVerificationFailed)

	_, err = VerifyHandshake("subscribe", "tok", "", "tok")
	assert.ErrorIs(t, err, core.ErrVerificationFailed)

	_, err = VerifyHandshake("subscribe", "", "12345", "")
	assert.ErrorIs(t, err, core.ErrVerificationFailed)
}

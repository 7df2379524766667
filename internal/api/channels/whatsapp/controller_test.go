package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conversly/channel-relay/internal/config"
)

const testAppSecret = "app-secret"

func signBody(body string) string {
	mac := hmac.New(sha256.New, []byte(testAppSecret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		MetaVerifyToken: "verify-me",
		MetaAppSecret:   testAppSecret,
	}
	ctrl := NewController(NewAdapter(), nil, cfg)

	router := gin.New()
	router.GET("/webhooks/whatsapp", ctrl.VerifyWebhook)
	router.POST("/webhooks/whatsapp", ctrl.Webhook)
	return router
}

func TestVerifyWebhookEchoesChallenge(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=challenge-42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge-42", rec.Body.String())
}

func TestVerifyWebhookRejectsBadToken(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=challenge-42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "challenge-42")
}

func TestWebhookAcknowledgesMalformedBody(t *testing.T) {
	router := testRouter()

	body := "this is not json"
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp",
		strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// vendors retry-storm on non-2xx, so malformed bodies are still acked
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp",
		strings.NewReader(`{"entry":[]}`))
	req.Header.Set("X-Hub-Signature-256", "sha256=0000000000000000000000000000000000000000000000000000000000000000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookRejectsUnsignedPost(t *testing.T) {
	router := testRouter()

	// well-formed payload but no signature header; with an app secret
	// configured this must be refused before any parsing or processing
	body := `{
		"entry": [{
			"changes": [{
				"value": {
					"metadata": {"phone_number_id": "555001"},
					"messages": [{"from": "15550001234", "id": "wamid.forged", "type": "text", "text": {"body": "hi"}}]
				}
			}]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp",
		strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookAcceptsSignedPayload(t *testing.T) {
	router := testRouter()

	body := `{"entry":[]}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp",
		strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

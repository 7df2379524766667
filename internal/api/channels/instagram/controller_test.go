package instagram

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
	router.GET("/webhooks/instagram", ctrl.VerifyWebhook)
	router.POST("/webhooks/instagram", ctrl.Webhook)
	return router
}

func TestVerifyWebhookEchoesChallenge(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/instagram?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=challenge-9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge-9", rec.Body.String())
}

func TestWebhookRejectsUnsignedPost(t *testing.T) {
	router := testRouter()

	body := `{
		"object": "instagram",
		"entry": [{
			"id": "ig-500",
			"messaging": [{"sender": {"id": "ig-user-7"}, "message": {"mid": "m_forged", "text": "hi"}}]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/instagram",
		strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookAcceptsSignedPayload(t *testing.T) {
	router := testRouter()

	body := `{"object":"instagram","entry":[]}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/instagram",
		strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

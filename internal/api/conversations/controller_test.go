package conversations

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	ctrl := NewController(NewService(nil))

	router := gin.New()
	router.PUT("/conversations/:id/mode", ctrl.SetMode)
	return router
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPut, "/conversations/conv-1/mode",
		strings.NewReader(`{"mode": "autopilot"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid mode")
}

func TestSetModeRequiresMode(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPut, "/conversations/conv-1/mode",
		strings.NewReader(`{"assignee": "ada"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

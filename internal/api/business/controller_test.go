package business

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
	router.POST("/businesses", ctrl.Create)
	router.GET("/businesses", ctrl.List)
	router.PUT("/businesses/:id/policies", ctrl.UpdatePolicies)
	return router
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/businesses",
		strings.NewReader(`{"name": "Blue Mugs Co"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_request")
}

func TestCreateRejectsMissingRoutingKeys(t *testing.T) {
	router := testRouter()

	// all required fields present, but no channel identity at all
	req := httptest.NewRequest(http.MethodPost, "/businesses",
		strings.NewReader(`{"accountId": "acc-1", "name": "Blue Mugs Co", "accessToken": "tok"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "create_failed")
}

func TestListRequiresAccountID(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/businesses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "accountId")
}

func TestUpdatePoliciesRejectsMalformedBody(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPut, "/businesses/biz-1/policies",
		strings.NewReader(`{"refundPolicy": 12}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")
	return c, w
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSuccess(t *testing.T) {
	c, w := testContext()
	Success(c, http.StatusCreated, "created", Fields{"user": map[string]string{"username": "alice"}})

	assert.Equal(t, http.StatusCreated, w.Code)
	b := body(t, w)
	assert.Equal(t, true, b["success"])
	assert.Equal(t, "created", b["message"])
	assert.Equal(t, "rid-1", b["request_id"])
	assert.Contains(t, b, "timestamp")
	assert.Equal(t, "alice", b["user"].(map[string]any)["username"])
}

func TestSuccess_NoMessage(t *testing.T) {
	c, w := testContext()
	Success(c, 0, "", Fields{"users": []string{}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, body(t, w), "message")
}

func TestError(t *testing.T) {
	c, w := testContext()
	Error(c, 0, "bad", map[string]string{"username": "is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	b := body(t, w)
	assert.Equal(t, false, b["success"])
	assert.Equal(t, "bad", b["message"])
	assert.Equal(t, "is required", b["errors"].(map[string]any)["username"])
}

func TestAbort(t *testing.T) {
	c, w := testContext()
	Abort(c, http.StatusUnauthorized, "Invalid token", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
	assert.NotContains(t, body(t, w), "errors")
}

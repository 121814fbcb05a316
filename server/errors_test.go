package server

import (
	"commonroom/apperr"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"auth", apperr.Auth("Action is not allowed"), http.StatusUnauthorized, "Action is not allowed"},
		{"wrapped not found", fmt.Errorf("get post: %w", apperr.NotFound("Post not found")), http.StatusNotFound, "Post not found"},
		{"domain rule", apperr.DomainRule("Cannot follow yourself."), http.StatusUnprocessableEntity, "Cannot follow yourself."},
		{"validation", apperr.FieldError("username", "Username is taken"), http.StatusBadRequest, "Username is taken"},
		{"typed internal", apperr.Internal("db down", errors.New("dial")), http.StatusInternalServerError, "Internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			sendError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.body, body["error"])
		})
	}
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind common.Kind
		want int
	}{
		{common.KindInvalidArgument, http.StatusBadRequest},
		{common.KindLimitExceeded, http.StatusBadRequest},
		{common.KindPreconditionFailed, http.StatusBadRequest},
		{common.KindVerificationFailed, http.StatusBadRequest},
		{common.KindUnauthorized, http.StatusUnauthorized},
		{common.KindNotFound, http.StatusNotFound},
		{common.KindConflict, http.StatusConflict},
		{common.KindUpstreamFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.kind), string(tt.kind))
	}
}

func TestFromError(t *testing.T) {
	t.Run("classified error keeps its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		FromError(c, common.NotFound("List not found"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "List not found", body.Message)
	})

	t.Run("raw error hides its cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		FromError(c, errors.New("dial tcp: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
		assert.Contains(t, w.Body.String(), "Something went wrong")
	})
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, gin.H{"name": "Birthday"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"name":"Birthday"}}`, w.Body.String())
}

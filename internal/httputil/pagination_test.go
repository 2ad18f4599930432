package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xambitlan/disclosure/internal/httputil"
)

func paginationContext(t *testing.T, url string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	c.Request = req
	return c
}

func TestParsePagination(t *testing.T) {
	valid := []struct {
		url    string
		offset int
		limit  int
	}{
		{"/v1/reveal-requests", 0, httputil.DefaultPageLimit},
		{"/v1/reveal-requests?offset=10&limit=20", 10, 20},
		{"/v1/audit/reveal_request/x?limit=100", 0, httputil.MaxPageLimit},
		{"/v1/reveal-requests?role=provider&offset=3", 3, httputil.DefaultPageLimit},
	}
	for _, tt := range valid {
		t.Run(tt.url, func(t *testing.T) {
			offset, limit, err := httputil.ParsePagination(paginationContext(t, tt.url))
			require.NoError(t, err)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}

	invalid := map[string]string{
		"/?offset=-1":  "invalid offset parameter: must be a non-negative integer",
		"/?offset=abc": "invalid offset parameter: must be a non-negative integer",
		"/?offset=":    "invalid offset parameter: must be a non-negative integer",
		"/?limit=0":    "invalid limit parameter: must be between 1 and 100",
		"/?limit=101":  "invalid limit parameter: must be between 1 and 100",
		"/?limit=xyz":  "invalid limit parameter: must be between 1 and 100",
	}
	for url, message := range invalid {
		t.Run(url, func(t *testing.T) {
			offset, limit, err := httputil.ParsePagination(paginationContext(t, url))
			require.Error(t, err)
			assert.Equal(t, message, err.Error())
			assert.Zero(t, offset)
			assert.Zero(t, limit)
		})
	}
}

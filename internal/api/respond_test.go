package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rentalhub/internal/authz"  // Denial taxonomy
	"rentalhub/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"            // Gin web framework
	"github.com/stretchr/testify/assert"  // Assertion library
	"github.com/stretchr/testify/require" // Assertion library that stops the test
)

// respondTo runs respondError in a fresh gin context and captures the response
func respondTo(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, err)
	return rec
}

func TestCrossTenantRendersAsNotFound(t *testing.T) {
	probe := respondTo(t, authz.ErrCrossTenantAccess)
	absent := respondTo(t, authz.ErrNotFound)

	// A probing actor must not be able to tell an out-of-scope id from a
	// nonexistent one: status and body are byte-identical.
	assert.Equal(t, http.StatusNotFound, probe.Code)
	assert.Equal(t, absent.Code, probe.Code)
	assert.Equal(t, absent.Body.String(), probe.Body.String())
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{authz.ErrUnauthenticated, http.StatusUnauthorized},
		{authz.ErrInsufficientRole, http.StatusForbidden},
		{authz.ErrInactiveTenant, http.StatusForbidden},
		{authz.ErrNotFound, http.StatusNotFound},
		{authz.ErrCrossTenantAccess, http.StatusNotFound},
		{authz.ErrDuplicateSubmission, http.StatusConflict},
		{domain.ErrPropertyFull, http.StatusBadRequest},
		{authz.ErrBrokenChain, http.StatusInternalServerError}, // Internal cause, never leaked
	}
	for _, tc := range cases {
		rec := respondTo(t, tc.err)
		assert.Equal(t, tc.code, rec.Code, "error %v", tc.err)
	}
}

func TestInternalCausesAreNotLeaked(t *testing.T) {
	rec := respondTo(t, authz.ErrBrokenChain)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// The specific cause stays in the logs
	assert.NotContains(t, rec.Body.String(), "chain")
	assert.Contains(t, rec.Body.String(), "Operation failed")
}

func TestPaginationBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	page := func(query string) (int, int, int) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return pagination(c)
	}

	p, size, offset := page("")
	assert.Equal(t, 1, p)
	assert.Equal(t, 20, size)
	assert.Equal(t, 0, offset)

	p, size, offset = page("page=3&page_size=50")
	assert.Equal(t, 3, p)
	assert.Equal(t, 50, size)
	assert.Equal(t, 100, offset)

	// Out-of-bounds values fall back to the defaults
	_, size, _ = page("page_size=500")
	assert.Equal(t, 20, size)
	p, _, _ = page("page=-1")
	assert.Equal(t, 1, p)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(1, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
}

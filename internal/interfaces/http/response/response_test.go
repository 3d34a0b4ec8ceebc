package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	domainerrors "stark-ops.backend/internal/domain/errors"
)

func record(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", handler)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	return rec
}

func TestSuccess(t *testing.T) {
	rec := record(t, func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": "abc"})
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"id": "abc"}`, rec.Body.String())
}

func TestError_AppErrorPassthrough(t *testing.T) {
	rec := record(t, func(c *gin.Context) {
		Error(c, domainerrors.NewAppError(http.StatusConflict, "CONFLICT", "name taken", nil))
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{"code": "CONFLICT", "message": "name taken"}`, rec.Body.String())
}

func TestError_DomainMapping(t *testing.T) {
	rec := record(t, func(c *gin.Context) {
		Error(c, fmt.Errorf("encode amount: %w", domainerrors.ErrArgumentShape))
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "ARGUMENT_ERROR")

	rec = record(t, func(c *gin.Context) {
		Error(c, fmt.Errorf("plain failure"))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "INTERNAL")
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-eats-backend/internal/models"
)

func writeAndDecode(t *testing.T, err error) (int, models.ErrorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, WriteError(c, err))

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrCartPublished, http.StatusConflict},
		{models.ErrItemNotInCart, http.StatusUnprocessableEntity},
		{models.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := writeAndDecode(t, tc.err)
		assert.Equal(t, tc.code, code, "error %v", tc.err)
	}
}

func TestWriteErrorStripsContextPrefixes(t *testing.T) {
	// A specific sentinel under service wrapping keeps its own text.
	wrapped := fmt.Errorf("service.Publish: %w", models.ErrCartPublished)
	code, body := writeAndDecode(t, wrapped)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, models.ErrCartPublished.Error(), body.Message)

	// A base sentinel wrapped directly, with extra context in between, still
	// comes out as the sentinel alone.
	deep := fmt.Errorf("service.AdvanceStatus: courier required: %w", models.ErrPrecondition)
	code, body = writeAndDecode(t, deep)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, models.ErrPrecondition.Error(), body.Message)

	bare := fmt.Errorf("service.Register: %w", models.ErrConflict)
	code, body = writeAndDecode(t, bare)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, models.ErrConflict.Error(), body.Message)
	assert.NotContains(t, body.Message, "service.")
}

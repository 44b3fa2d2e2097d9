package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/types"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func TestWriteSuccessStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"orderNumber": "ORD-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"orderNumber":"ORD-1"}}`, w.Body.String())
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestWriteErrorExposesClientMessages(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive"), http.StatusBadRequest},
		{"stock", pkgerrors.New(pkgerrors.CodeInsufficient, "insufficient stock. available: 2, requested: 3"), http.StatusConflict},
		{"state", pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot move from DELIVERED to ACCEPTED"), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), nil, w, tc.err)

			assert.Equal(t, tc.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, string(pkgerrors.CodeOf(tc.err)), body.Code)
			assert.Equal(t, pkgerrors.As(tc.err).Message(), body.Message)
			assert.False(t, body.Retryable)
		})
	}
}

func TestWriteErrorDetailsFollowMetadata(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "quantity"}))
	assert.Equal(t, map[string]any{"field": "quantity"}, decodeError(t, w).Details)

	w = httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeForbidden, "not your order").
		WithDetails(map[string]string{"owner": "someone"}))
	assert.Nil(t, decodeError(t, w).Details)
}

func TestWriteErrorHidesDependencyMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "load cart"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "dependency unavailable", body.Message)
	assert.True(t, body.Retryable)
}

func TestWriteErrorDefaultsToInternalForUntypedErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	w := httptest.NewRecorder()
	WriteError(context.Background(), logg, w, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Code)
	assert.NotEqual(t, "boom", body.Message)
	assert.Nil(t, body.Details)
	assert.Contains(t, buf.String(), "request failed")
	assert.Contains(t, buf.String(), `"http_status":500`)
}

func TestWriteErrorLogsRejectionsAtWarn(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	WriteError(context.Background(), logg, httptest.NewRecorder(), pkgerrors.New(pkgerrors.CodeNotFound, "cart not found"))

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "request rejected")
	assert.Contains(t, buf.String(), `"error_code":"NOT_FOUND"`)
}

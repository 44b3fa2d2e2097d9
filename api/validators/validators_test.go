package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

type samplePayload struct {
	Name     string `json:"name" validate:"notblank"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBody(t *testing.T) {
	var dest samplePayload
	require.NoError(t, DecodeJSONBody(post(`{"name":"crate","quantity":2}`), &dest))
	assert.Equal(t, "crate", dest.Name)
	assert.Equal(t, 2, dest.Quantity)
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"unknown field": `{"name":"x","quantity":1,"extra":true}`,
		"trailing data": `{"name":"x","quantity":1}{"name":"y"}`,
		"blank name":    `{"name":"   ","quantity":1}`,
		"wrong type":    `{"name":"x","quantity":"two"}`,
		"below minimum": `{"name":"x","quantity":0}`,
		"not an object": `[1,2]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest samplePayload
			err := DecodeJSONBody(post(body), &dest)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestDecodeJSONBodyFieldDetails(t *testing.T) {
	var dest samplePayload
	err := DecodeJSONBody(post(`{"name":"","quantity":0}`), &dest)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be at least 1", details["quantity"])
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `","quantity":1}`
	var dest samplePayload
	err := DecodeJSONBody(post(big), &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("orderId", v)
		return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.WithValue(context.Background(), chi.RouteCtxKey, rctx))
	}

	got, err := ParseUUIDParam(withParam(id.String()), "orderId", "order")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(withParam("not-a-uuid"), "orderId", "order")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "invalid order id")
}

func TestParseQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=30&active=true&bad=maybe", nil)

	limit, err := ParseQueryInt(r, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 30, limit)

	_, err = ParseQueryInt(r, "limit", 20, 1, 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	active, err := ParseQueryBool(r, "active", false)
	require.NoError(t, err)
	assert.True(t, active)

	_, err = ParseQueryBool(r, "bad", false)
	assert.Error(t, err)

	fallback, err := ParseQueryBool(r, "missing", true)
	require.NoError(t, err)
	assert.True(t, fallback)
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	assert.Equal(t, "Route A", SanitizeString("  Route A  ", 255))
	assert.Equal(t, "ñañ", SanitizeString("ñañaña", 3))
	assert.Equal(t, "abc", SanitizeString("abc", 0))
}

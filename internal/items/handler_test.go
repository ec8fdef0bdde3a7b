package items

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

func postForm(t *testing.T, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseFormRejectsMalformedNumbers(t *testing.T) {
	h := &Handler{}
	form := url.Values{
		"name":        {"Widget"},
		"sku":         {"WID-1"},
		"quantity":    {"1O"},
		"threshold":   {"5"},
		"unit_price":  {"9.99"},
		"category_id": {"3"},
		"location_id": {"1"},
		"supplier_id": {"2"},
	}

	input, err := h.parseForm(postForm(t, form))
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "Quantity")

	// The parsable fields survive for the re-rendered form.
	require.Equal(t, "Widget", input.Name)
	require.Equal(t, int64(3), input.CategoryID)
}

func TestParseFormAcceptsBlankOptionalNumbers(t *testing.T) {
	h := &Handler{}
	form := url.Values{
		"name":        {"Widget"},
		"sku":         {"WID-1"},
		"quantity":    {""},
		"category_id": {"3"},
		"location_id": {"1"},
		"supplier_id": {"2"},
	}

	input, err := h.parseForm(postForm(t, form))
	require.NoError(t, err)
	require.Zero(t, input.Quantity)
	require.Zero(t, input.UnitPrice)
}

func TestDeleteErrorMessage(t *testing.T) {
	require.Equal(t, "Item not found", deleteErrorMessage(httpx.ErrNotFound))
	require.Equal(t, "Failed to delete item", deleteErrorMessage(errors.New("pq: connection reset")))
}

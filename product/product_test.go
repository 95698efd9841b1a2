package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewService(Config{BaseURL: server.URL})
}

func upstreamJSON(t *testing.T, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/123.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestEnrichmentFromStructuredQuantity(t *testing.T) {
	s := newTestService(
		t, upstreamJSON(
			t, `{"status": 1, "product": {"product_quantity": "500", "nutriments": {"sugars_100g": 10}}}`,
		),
	)
	payload, err := s.FetchAndEnrich(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, 50.0, gjson.GetBytes(payload, "product.nutriments.sugars_serving").Float())
	// the per-100g figure stays untouched
	assert.Equal(t, 10.0, gjson.GetBytes(payload, "product.nutriments.sugars_100g").Float())
}

func TestEnrichmentFromQuantityString(t *testing.T) {
	s := newTestService(
		t, upstreamJSON(
			t, `{"status": 1, "product": {"quantity": "330 ml", "nutriments": {"sugars_100g": 10.6}}}`,
		),
	)
	payload, err := s.FetchAndEnrich(context.Background(), "123")
	require.NoError(t, err)
	assert.InDelta(t, 34.98, gjson.GetBytes(payload, "product.nutriments.sugars_serving").Float(), 0.001)
}

func TestEnrichmentNumericProductQuantity(t *testing.T) {
	s := newTestService(
		t, upstreamJSON(
			t, `{"status": 1, "product": {"product_quantity": 250, "nutriments": {"sugars_100g": 4}}}`,
		),
	)
	payload, err := s.FetchAndEnrich(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, 10.0, gjson.GetBytes(payload, "product.nutriments.sugars_serving").Float())
}

func TestMissingQuantityLeavesPayloadAlone(t *testing.T) {
	body := `{"status": 1, "product": {"nutriments": {"sugars_100g": 10}}}`
	s := newTestService(t, upstreamJSON(t, body))
	payload, err := s.FetchAndEnrich(context.Background(), "123")
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(payload, "product.nutriments.sugars_serving").Exists())
	assert.Equal(t, 10.0, gjson.GetBytes(payload, "product.nutriments.sugars_100g").Float())
	// no enrichment applies, so the payload passes through byte-identical
	assert.Equal(t, body, string(payload))
}

func TestMissingSugarsLeavesPayloadAlone(t *testing.T) {
	s := newTestService(
		t, upstreamJSON(t, `{"status": 1, "product": {"product_quantity": "500", "nutriments": {}}}`),
	)
	payload, err := s.FetchAndEnrich(context.Background(), "123")
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(payload, "product.nutriments.sugars_serving").Exists())
}

func TestNonNumericQuantityString(t *testing.T) {
	s := newTestService(
		t, upstreamJSON(t, `{"status": 1, "product": {"quantity": "a bottle", "nutriments": {"sugars_100g": 10}}}`),
	)
	payload, err := s.FetchAndEnrich(context.Background(), "123")
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(payload, "product.nutriments.sugars_serving").Exists())
}

func TestStatusZeroIsNotFound(t *testing.T) {
	s := newTestService(t, upstreamJSON(t, `{"status": 0, "status_verbose": "product not found"}`))
	_, err := s.FetchAndEnrich(context.Background(), "123")
	require.Error(t, err)
	_, ok := err.(NotFoundError)
	assert.True(t, ok)
}

func TestMissingProductObjectIsNotFound(t *testing.T) {
	s := newTestService(t, upstreamJSON(t, `{"status": 1}`))
	_, err := s.FetchAndEnrich(context.Background(), "123")
	require.Error(t, err)
	_, ok := err.(NotFoundError)
	assert.True(t, ok)
}

func TestUpstreamTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	s := NewService(Config{BaseURL: url})
	_, err := s.FetchAndEnrich(context.Background(), "123")
	require.Error(t, err)
	var upstreamErr UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.NotEmpty(t, upstreamErr.Error())
}

func TestUpstreamServerError(t *testing.T) {
	s := newTestService(
		t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	)
	_, err := s.FetchAndEnrich(context.Background(), "123")
	require.Error(t, err)
	_, ok := err.(UpstreamError)
	assert.True(t, ok)
}

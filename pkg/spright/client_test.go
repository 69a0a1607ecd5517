package spright

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictMass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict/mass", r.URL.Path)

		var req map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2.0, req["radius"])
		assert.Equal(t, 0.1, req["radius_sigma"])

		json.NewEncoder(w).Encode(map[string][]float64{"samples": {4.1, 5.0, 5.9}})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, RPS: 1000})
	samples, err := c.PredictMass(context.Background(), 2.0, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4.1, 5.0, 5.9}, samples)
}

func TestPredictMass_EmptyDistribution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]float64{"samples": {}})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, RPS: 1000})
	_, err := c.PredictMass(context.Background(), 2.0, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty sample distribution")
}

func TestPredictMass_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad radius", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, RPS: 1000})
	_, err := c.PredictMass(context.Background(), -1, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
)

func newTestClarifai(server *httptest.Server) *Clarifai {
	return &Clarifai{
		apiKey:     "test-key",
		endpoint:   server.URL,
		httpClient: server.Client(),
	}
}

func TestIdentifyDog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Key test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"outputs":[{"data":{"concepts":[
			{"name":"mammal","value":0.99},
			{"name":"dog","value":0.97},
			{"name":"pet","value":0.95}
		]}}]}`))
	}))
	defer server.Close()

	analysis, err := newTestClarifai(server).Identify(context.Background(), []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "犬", analysis.AnimalType)
	assert.InDelta(t, 0.97, analysis.Confidence, 0.001)
}

func TestIdentifyCat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"outputs":[{"data":{"concepts":[{"name":"kitten","value":0.9}]}}]}`))
	}))
	defer server.Close()

	analysis, err := newTestClarifai(server).Identify(context.Background(), []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "猫", analysis.AnimalType)
}

func TestIdentifyUnknownSpecies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"outputs":[{"data":{"concepts":[{"name":"tractor","value":0.9}]}}]}`))
	}))
	defer server.Close()

	analysis, err := newTestClarifai(server).Identify(context.Background(), []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "不明", analysis.AnimalType)
	assert.Equal(t, "ミックス", analysis.Breed)
}

func TestIdentifyUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClarifai(server).Identify(context.Background(), []byte("jpeg"))
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestIdentifyMissingKey(t *testing.T) {
	c := &Clarifai{httpClient: http.DefaultClient}
	_, err := c.Identify(context.Background(), []byte("jpeg"))
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Part one. "}, {"text": "Part two."}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 9, "candidatesTokenCount": 4}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.GenerateContent(context.Background(), GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "Hi"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", resp.Text())
	require.NotNil(t, resp.UsageMetadata)
	assert.Equal(t, 4, resp.UsageMetadata.CandidatesTokenCount)
}

func TestGenerateContent_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GenerateContent(context.Background(), GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "Hi"}}}},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestText_NoCandidates(t *testing.T) {
	resp := &GenerateContentResponse{}
	assert.Equal(t, "", resp.Text())
}

package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"id": "chatcmpl-1",
				"model": "gpt-4o",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "Report."}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 7}
			}`,
		},
		{
			name:       "auth_failure",
			status:     http.StatusUnauthorized,
			body:       `{"error": {"message": "invalid api key"}}`,
			wantErr:    "unexpected status 401",
			wantStatus: 401,
		},
		{
			name:       "gateway_timeout",
			status:     http.StatusGatewayTimeout,
			body:       `{"error": {"message": "timeout"}}`,
			wantErr:    "unexpected status 504",
			wantStatus: 504,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
				Messages: []Message{{Role: "user", Content: "Hi"}},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				return
			}

			require.NoError(t, err)
			require.Len(t, resp.Choices, 1)
			assert.Equal(t, "Report.", resp.Choices[0].Message.Content)
			assert.Equal(t, 7, resp.Usage.CompletionTokens)
		})
	}
}

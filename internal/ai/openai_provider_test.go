package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/custclassify/internal/model"
)

// capturedRequest holds the decoded body and headers of the last request seen.
type capturedRequest struct {
	body   map[string]any
	header http.Header
	calls  int
}

// makeTestServer answers every request with statusCode and body, recording
// what it received.
func makeTestServer(t *testing.T, statusCode int, body any) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.calls++
		got.header = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func testMessages() []Message {
	return []Message{
		{Role: RoleSystem, Content: "You are a system. You will only output JSON"},
		{Role: RoleUser, Content: "classify Jaxon"},
	}
}

func TestOpenAIComplete_Success(t *testing.T) {
	want := `{"category":"good customer","explanation":"Bakes often."}`
	srv, _ := makeTestServer(t, http.StatusOK, chatCompletion(want))

	provider := NewOpenAIProvider(Options{APIKey: "test-key", BaseURL: srv.URL})
	got, err := provider.Complete(context.Background(), testMessages())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpenAIComplete_SendsRequestShape(t *testing.T) {
	srv, got := makeTestServer(t, http.StatusOK, chatCompletion("{}"))

	provider := NewOpenAIProvider(Options{APIKey: "my-secret-key", BaseURL: srv.URL})
	_, err := provider.Complete(context.Background(), testMessages())
	require.NoError(t, err)

	assert.Equal(t, "Bearer my-secret-key", got.header.Get("Authorization"))
	assert.Equal(t, DefaultOpenAIModel, got.body["model"])
	assert.EqualValues(t, 0, got.body["temperature"])

	msgs, ok := got.body["messages"].([]any)
	require.True(t, ok, "messages should be an array")
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

	format, ok := got.body["response_format"].(map[string]any)
	require.True(t, ok, "response_format should be an object")
	assert.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, "customer_classification", schema["name"])
}

func TestOpenAIComplete_HTTPErrorNotRetried(t *testing.T) {
	srv, got := makeTestServer(t, http.StatusInternalServerError, map[string]any{
		"error": map[string]any{"message": "server error", "type": "server_error"},
	})

	provider := NewOpenAIProvider(Options{APIKey: "test-key", BaseURL: srv.URL})
	_, err := provider.Complete(context.Background(), testMessages())
	require.Error(t, err)

	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, 1, got.calls)
}

func TestOpenAIComplete_Unauthorized(t *testing.T) {
	srv, _ := makeTestServer(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]any{"message": "bad key", "type": "invalid_request_error"},
	})

	provider := NewOpenAIProvider(Options{APIKey: "wrong", BaseURL: srv.URL})
	_, err := provider.Complete(context.Background(), testMessages())

	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsAuth())
}

func TestOpenAIComplete_EmptyChoices(t *testing.T) {
	resp := chatCompletion("")
	resp["choices"] = []any{}
	srv, _ := makeTestServer(t, http.StatusOK, resp)

	provider := NewOpenAIProvider(Options{APIKey: "test-key", BaseURL: srv.URL})
	_, err := provider.Complete(context.Background(), testMessages())
	require.Error(t, err)
}

func TestOpenAIComplete_NoMessages(t *testing.T) {
	provider := NewOpenAIProvider(Options{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"})
	_, err := provider.Complete(context.Background(), nil)
	require.Error(t, err)
}

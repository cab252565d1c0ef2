package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/custclassify/internal/ai"
	"github.com/amishk599/custclassify/internal/config"
	"github.com/amishk599/custclassify/internal/model"
	"github.com/amishk599/custclassify/internal/store"
)

var discardLogger = slog.New(slog.DiscardHandler)

func TestBuildRequest_UsesDefaults(t *testing.T) {
	defaults := config.DefaultsConfig{
		CustomerInformation: "Jaxon is a baker.",
		Industry:            "Food and Drink",
		Categories:          []string{"best customer", "bad customer"},
	}

	req := buildRequest(defaults, inputOptions{})
	assert.Equal(t, "Jaxon is a baker.", req.CustomerInformation)
	assert.Equal(t, "Food and Drink", req.Industry)
	assert.Equal(t, model.Categories{"best customer", "bad customer"}, req.Categories)
}

func TestBuildRequest_FlagsOverrideDefaults(t *testing.T) {
	defaults := config.DefaultsConfig{CustomerInformation: "a", Industry: "b", Categories: []string{"c"}}

	req := buildRequest(defaults, inputOptions{
		customer:   "Mia",
		industry:   "Retail",
		categories: []string{"vip", "regular", "churned"},
	})
	assert.Equal(t, "Mia", req.CustomerInformation)
	assert.Equal(t, "Retail", req.Industry)
	assert.Equal(t, model.Categories{"vip", "regular", "churned"}, req.Categories, "order is kept")
}

func TestWriteResult(t *testing.T) {
	result := model.ClassificationResult{Category: "good customer", Explanation: "Bakes often."}

	tests := []struct {
		name    string
		format  string
		explain bool
		want    string
	}{
		{"text", outputText, false, "good customer\n"},
		{"text with explanation", outputText, true, "good customer\nBakes often.\n"},
		{"json", outputJSON, false, `{"category":"good customer","explanation":"Bakes often."}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeResult(&buf, result, tt.format, tt.explain))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteMessages(t *testing.T) {
	var buf bytes.Buffer
	err := writeMessages(&buf, []ai.Message{
		{Role: ai.RoleSystem, Content: "sys"},
		{Role: ai.RoleUser, Content: "usr"},
	})
	require.NoError(t, err)
	assert.Equal(t, "[system]\nsys\n\n[user]\nusr\n", buf.String())
}

func TestWriteHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	writeHistoryTable(&buf, []model.Record{{
		ID:        7,
		CreatedAt: time.Now(),
		Model:     "gpt-4o-mini",
		Request:   model.ClassificationRequest{Industry: "Retail"},
		Result:    model.ClassificationResult{Category: "a very long category label that overflows"},
	}})

	out := buf.String()
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "Total: 1 classifications")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

// setupCLI points the global flags at a fresh config file and clears the
// environment Load consults.
func setupCLI(t *testing.T, configYAML string) {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvProvider, config.EnvModel, config.EnvBaseURL, config.EnvHistoryPath, "ANTHROPIC_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))

	oldCfg, oldEnv := cfgPath, envFile
	cfgPath = path
	envFile = filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, nil, 0600))
	t.Cleanup(func() { cfgPath, envFile = oldCfg, oldEnv })
}

func openAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifyOnce_EndToEnd(t *testing.T) {
	srv := openAIServer(t, `{"category":"best customer","explanation":"Bakes whenever he can."}`)
	historyPath := filepath.Join(t.TempDir(), "history.db")
	setupCLI(t, `
provider: openai
api_key: sk-test
base_url: `+srv.URL+`
history:
  path: `+historyPath+`
`)

	var out bytes.Buffer
	err := classifyOnce(context.Background(), classifyOptions{output: outputText}, &out, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, "best customer\n", out.String())

	s, err := store.NewSQLiteStore(historyPath)
	require.NoError(t, err)
	defer s.Close()
	records, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "openai", records[0].Provider)
	assert.Equal(t, "Food and Drink", records[0].Request.Industry)
}

func TestClassifyOnce_ParseFailure(t *testing.T) {
	srv := openAIServer(t, "not json")
	setupCLI(t, "provider: openai\napi_key: sk-test\nbase_url: "+srv.URL+"\n")

	var out bytes.Buffer
	err := classifyOnce(context.Background(), classifyOptions{output: outputText}, &out, discardLogger)
	require.ErrorIs(t, err, model.ErrParse)
	assert.Empty(t, out.String(), "nothing is printed on failure")
}

func TestClassifyOnce_MissingCredentials(t *testing.T) {
	setupCLI(t, "provider: anthropic\n")

	err := classifyOnce(context.Background(), classifyOptions{output: outputText}, &bytes.Buffer{}, discardLogger)
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.True(t, strings.Contains(err.Error(), "ANTHROPIC_API_KEY"))
}

func TestClassifyOnce_BadOutputFormat(t *testing.T) {
	err := classifyOnce(context.Background(), classifyOptions{output: "yaml"}, &bytes.Buffer{}, discardLogger)
	require.ErrorIs(t, err, config.ErrInvalid)
}

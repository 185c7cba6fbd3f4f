package scriptgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pulpit/internal/testsupport"
)

const sampleScriptJSON = `{
  "title": "Walking in Patience",
  "description": "A short reflection on patience. Subscribe for daily sermons.",
  "tags": ["daily sermon", "patience"],
  "sections": [
    {"heading": "Opening", "text": "Patience is hard won.", "image_query": "sunrise over hills"},
    {"text": "James writes that trials produce steadfastness.", "image_query": "open bible candle"}
  ]
}`

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": content,
				},
			},
		},
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(completionResponse(`{"ok":true}`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}

func TestGenerateScriptParsesDocument(t *testing.T) {
	var sawAuth, sawTopic bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") == "Bearer test"
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat["type"] != "json_object" {
			t.Fatalf("expected json response format, got %v", req.ResponseFormat)
		}
		for _, msg := range req.Messages {
			if msg.Role == "user" && strings.Contains(msg.Content, "patience") {
				sawTopic = true
			}
		}
		if err := json.NewEncoder(w).Encode(completionResponse(sampleScriptJSON)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	script, err := client.GenerateScript(context.Background(), Request{RunDate: "2026-03-14", SeedTopic: "patience"})
	if err != nil {
		t.Fatalf("GenerateScript returned error: %v", err)
	}
	if !sawAuth {
		t.Fatal("missing bearer token")
	}
	if !sawTopic {
		t.Fatal("seed topic not included in user prompt")
	}
	if script.Title != "Walking in Patience" {
		t.Fatalf("title = %q", script.Title)
	}
	if len(script.Sections) != 2 {
		t.Fatalf("sections = %d", len(script.Sections))
	}
}

func TestGenerateScriptHandlesCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n" + sampleScriptJSON + "\n```"
		if err := json.NewEncoder(w).Encode(completionResponse(fenced)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	script, err := client.GenerateScript(context.Background(), Request{RunDate: "2026-03-14"})
	if err != nil {
		t.Fatalf("GenerateScript returned error: %v", err)
	}
	if script.WordCount() == 0 {
		t.Fatal("expected words in script")
	}
}

func TestGenerateScriptPlainTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text := "Title: On Hope\nBeloved, hope is not a feeling but a practice.\nHold fast to it."
		if err := json.NewEncoder(w).Encode(completionResponse(text)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	script, err := client.GenerateScript(context.Background(), Request{RunDate: "2026-03-14"})
	if err != nil {
		t.Fatalf("GenerateScript returned error: %v", err)
	}
	if script.Title != "On Hope" {
		t.Fatalf("title = %q", script.Title)
	}
	if len(script.Sections) != 1 {
		t.Fatalf("sections = %d", len(script.Sections))
	}
	if !strings.Contains(script.Sections[0].Text, "hope is not a feeling") {
		t.Fatalf("section text = %q", script.Sections[0].Text)
	}
}

func TestGenerateScriptPlainTextWithoutTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(completionResponse("Beloved, let us begin with gratitude.")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	script, err := client.GenerateScript(context.Background(), Request{})
	if err != nil {
		t.Fatalf("GenerateScript returned error: %v", err)
	}
	if script.Title != "Daily Sermon" {
		t.Fatalf("title = %q", script.Title)
	}
}

func TestGenerateScriptRejectsBrokenJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(completionResponse(`{"title": "Broken`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if _, err := client.GenerateScript(context.Background(), Request{}); err == nil {
		t.Fatal("expected parse error for truncated JSON")
	}
}

func TestGenerateScriptRejectsIncompleteDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(completionResponse(`{"title":"","sections":[]}`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if _, err := client.GenerateScript(context.Background(), Request{}); err == nil {
		t.Fatal("expected validation error for empty script")
	}
}

func TestGenerateScriptUsesPromptFile(t *testing.T) {
	promptPath := filepath.Join(t.TempDir(), "prompt.txt")
	testsupport.WriteFile(t, promptPath, "Custom sermon instructions. Respond with JSON.")

	var sawCustomPrompt bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		for _, msg := range req.Messages {
			if msg.Role == "system" && strings.Contains(msg.Content, "Custom sermon instructions") {
				sawCustomPrompt = true
			}
		}
		if err := json.NewEncoder(w).Encode(completionResponse(sampleScriptJSON)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", PromptPath: promptPath})
	if _, err := client.GenerateScript(context.Background(), Request{}); err != nil {
		t.Fatalf("GenerateScript returned error: %v", err)
	}
	if !sawCustomPrompt {
		t.Fatal("custom prompt file not used as system prompt")
	}
}

func TestCompleteJSONRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if err := json.NewEncoder(w).Encode(completionResponse(`{"ok":true}`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
		WithSleeper(func(time.Duration) {}),
	)
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("content = %q", content)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestCompleteJSONDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error for http 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls.Load())
	}
}

func TestDecodeModelJSONVariants(t *testing.T) {
	type doc struct {
		OK bool `json:"ok"`
	}
	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"plain", `{"ok":true}`, false},
		{"fenced", "```json\n{\"ok\":true}\n```", false},
		{"prose wrapped", `Here is the JSON you asked for: {"ok":true} Hope that helps!`, false},
		{"empty", "", true},
		{"not json", "sorry, I cannot do that", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var target doc
			err := DecodeModelJSON(tc.payload, &target)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !target.OK {
				t.Fatal("payload not decoded")
			}
		})
	}
}

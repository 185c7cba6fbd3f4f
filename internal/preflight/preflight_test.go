package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"pulpit/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func scriptAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{"content": `{"ok":true}`},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
}

func TestCheckScriptAPI_OK(t *testing.T) {
	srv := scriptAPIServer(t)
	defer srv.Close()

	result := CheckScriptAPI(context.Background(), config.Scriptwriter{
		APIKey:  "good-key",
		BaseURL: srv.URL,
		Model:   "demo-model",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckScriptAPI_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckScriptAPI(context.Background(), config.Scriptwriter{
		APIKey:  "bad-key",
		BaseURL: srv.URL,
		Model:   "demo-model",
	})
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckScriptAPI_MissingKey(t *testing.T) {
	result := CheckScriptAPI(context.Background(), config.Scriptwriter{})
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func elevenLabsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"bad key"}}`))
			return
		}
		w.Write([]byte(`{"tier":"free"}`))
	}))
}

func TestCheckElevenLabs_OK(t *testing.T) {
	srv := elevenLabsServer(t)
	defer srv.Close()

	cfg := config.Default()
	cfg.ElevenLabs.APIKey = "good-key"
	cfg.ElevenLabs.VoiceID = "voice"
	cfg.ElevenLabs.BaseURL = srv.URL

	result := CheckElevenLabs(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckElevenLabs_BadKey(t *testing.T) {
	srv := elevenLabsServer(t)
	defer srv.Close()

	cfg := config.Default()
	cfg.ElevenLabs.APIKey = "bad-key"
	cfg.ElevenLabs.VoiceID = "voice"
	cfg.ElevenLabs.BaseURL = srv.URL

	result := CheckElevenLabs(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckElevenLabs_MissingKey(t *testing.T) {
	cfg := config.Default()
	result := CheckElevenLabs(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	scriptSrv := scriptAPIServer(t)
	defer scriptSrv.Close()
	voiceSrv := elevenLabsServer(t)
	defer voiceSrv.Close()

	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Render.Mode = config.RenderModeHandoff
	cfg.Scriptwriter.APIKey = "good-key"
	cfg.Scriptwriter.BaseURL = scriptSrv.URL
	cfg.ElevenLabs.APIKey = "good-key"
	cfg.ElevenLabs.VoiceID = "voice"
	cfg.ElevenLabs.BaseURL = voiceSrv.URL
	cfg.YouTube.Enabled = false

	results := RunAll(context.Background(), &cfg)
	// Output dir, library dir, script API, ElevenLabs.
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesAssetsForLocalRender(t *testing.T) {
	scriptSrv := scriptAPIServer(t)
	defer scriptSrv.Close()
	voiceSrv := elevenLabsServer(t)
	defer voiceSrv.Close()

	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LibraryDir = ""
	cfg.Paths.AssetsDir = t.TempDir()
	cfg.Render.Mode = config.RenderModeLocal
	cfg.Scriptwriter.APIKey = "good-key"
	cfg.Scriptwriter.BaseURL = scriptSrv.URL
	cfg.ElevenLabs.APIKey = "good-key"
	cfg.ElevenLabs.VoiceID = "voice"
	cfg.ElevenLabs.BaseURL = voiceSrv.URL

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Assets directory" {
			found = true
			if !r.Passed {
				t.Errorf("assets check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected assets directory check in results")
	}
}

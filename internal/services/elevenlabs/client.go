package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pulpit/internal/config"
)

const defaultTimeout = 5 * time.Minute

// formatFallbacks lists output formats in descending quality order. Free
// ElevenLabs tiers reject the higher bitrates, so synthesis walks down the
// ladder until one is accepted.
var formatFallbacks = []string{
	"mp3_44100_128",
	"mp3_44100_64",
	"mp3_22050_64",
	"mp3_44100_32",
}

// HTTPDoer describes the HTTP client used by the ElevenLabs service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// VoiceSettings mirrors the ElevenLabs voice_settings request object.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Client synthesizes narration audio through the ElevenLabs API.
type Client struct {
	baseURL  string
	apiKey   string
	voiceID  string
	modelID  string
	settings VoiceSettings
	format   string
	client   HTTPDoer
}

// Option customises a Client, primarily for tests.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// NewClient builds a synthesis client from configuration.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	apiKey := strings.TrimSpace(cfg.ElevenLabs.APIKey)
	if apiKey == "" {
		return nil, errors.New("elevenlabs api key is required")
	}
	voiceID := strings.TrimSpace(cfg.ElevenLabs.VoiceID)
	if voiceID == "" {
		return nil, errors.New("elevenlabs voice id is required")
	}
	timeout := defaultTimeout
	if cfg.ElevenLabs.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.ElevenLabs.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.ElevenLabs.BaseURL), "/"),
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: strings.TrimSpace(cfg.ElevenLabs.ModelID),
		settings: VoiceSettings{
			Stability:       cfg.ElevenLabs.Stability,
			SimilarityBoost: cfg.ElevenLabs.SimilarityBoost,
			Style:           cfg.ElevenLabs.Style,
			UseSpeakerBoost: cfg.ElevenLabs.SpeakerBoost,
		},
		format: strings.TrimSpace(cfg.ElevenLabs.OutputFormat),
		client: &http.Client{Timeout: timeout},
	}
	if client.baseURL == "" {
		client.baseURL = "https://api.elevenlabs.io"
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Result describes a completed synthesis.
type Result struct {
	AudioPath    string
	OutputFormat string
	SizeBytes    int64
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize converts text to narration audio and writes it to outputPath.
// When the account's tier rejects the requested output format, lower quality
// formats are tried in order before giving up.
func (c *Client) Synthesize(ctx context.Context, text, outputPath string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("synthesis text is empty")
	}
	if strings.TrimSpace(outputPath) == "" {
		return nil, errors.New("synthesis output path is empty")
	}

	var lastErr error
	for _, format := range c.formatLadder() {
		size, err := c.synthesizeOnce(ctx, text, outputPath, format)
		if err == nil {
			return &Result{AudioPath: outputPath, OutputFormat: format, SizeBytes: size}, nil
		}
		lastErr = err
		if !isFormatNotAllowed(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no accepted output format: %w", lastErr)
}

// formatLadder returns the configured format followed by the remaining
// fallbacks, highest quality first.
func (c *Client) formatLadder() []string {
	ladder := make([]string, 0, len(formatFallbacks)+1)
	if c.format != "" {
		ladder = append(ladder, c.format)
	}
	for _, format := range formatFallbacks {
		if format != c.format {
			ladder = append(ladder, format)
		}
	}
	return ladder
}

func (c *Client) synthesizeOnce(ctx context.Context, text, outputPath, format string) (int64, error) {
	payload, err := json.Marshal(synthesizeRequest{
		Text:          text,
		ModelID:       c.modelID,
		VoiceSettings: c.settings,
	})
	if err != nil {
		return 0, fmt.Errorf("encode synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		c.baseURL, url.PathEscape(c.voiceID), url.QueryEscape(format))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("synthesize narration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, decodeAPIError(resp)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, fmt.Errorf("create audio directory: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create audio file: %w", err)
	}
	size, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return 0, fmt.Errorf("write audio file: %w", err)
	}
	if size == 0 {
		os.Remove(outputPath)
		return 0, errors.New("synthesis returned empty audio")
	}
	return size, nil
}

// HealthCheck verifies the API key by requesting the subscription endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/user/subscription", nil)
	if err != nil {
		return fmt.Errorf("build health check request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// apiError is the structured error the API returns, for example
// {"detail":{"status":"output_format_not_allowed","message":"..."}}.
type apiError struct {
	HTTPStatus int
	Status     string
	Message    string
}

func (e *apiError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("elevenlabs returned %d (%s): %s", e.HTTPStatus, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("elevenlabs returned %d: %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("elevenlabs returned %d", e.HTTPStatus)
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &apiError{HTTPStatus: resp.StatusCode}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var detail struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
			apiErr.Status = detail.Status
			apiErr.Message = detail.Message
		} else {
			var message string
			if json.Unmarshal(envelope.Detail, &message) == nil {
				apiErr.Message = message
			}
		}
	}
	if apiErr.Message == "" && len(body) > 0 {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func isFormatNotAllowed(err error) bool {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == "output_format_not_allowed" ||
		strings.Contains(apiErr.Message, "output_format_not_allowed")
}

// Package scriptgen provides an OpenAI-compatible chat client for sermon
// script generation.
//
// # Script Documents
//
// The client asks the configured model for a JSON sermon document: a title,
// a video description, tags, and 5-8 narration sections each paired with an
// image search query. Script validates, persists, and rehydrates these
// documents; every later stage (narration, rendering, publishing) consumes
// the same file.
//
// # Configuration
//
// Requires api_key and model; base_url, prompt_path, referer, title, and
// timeout are optional. A prompt file configured via prompt_path replaces the
// built-in system prompt entirely.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.GenerateScript: produce a validated Script for a run date and topic.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
package scriptgen

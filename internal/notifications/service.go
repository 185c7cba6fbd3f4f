package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pulpit/internal/config"
)

const userAgent = "Pulpit/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled:  enabledEvents(cfg.Notifications),
	}
}

func enabledEvents(cfg config.Notifications) map[Event]bool {
	return map[Event]bool{
		EventScriptCompleted:    cfg.Script,
		EventNarrationCompleted: cfg.Narration,
		EventRenderCompleted:    cfg.Render,
		EventHandoffReady:       cfg.Render,
		EventPublishCompleted:   cfg.Publish,
		EventQueueStarted:       cfg.Queue,
		EventQueueCompleted:     cfg.Queue,
		EventReviewRequired:     cfg.Review,
		EventError:              cfg.Errors,
		EventTest:               true,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

// Publish formats the event and posts it to the configured ntfy topic.
// Events disabled in configuration are dropped silently.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	if on, known := n.enabled[event]; !known || !on {
		return nil
	}
	msg, ok := formatEvent(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func formatEvent(event Event, payload Payload) (message, bool) {
	switch event {
	case EventScriptCompleted:
		return message{
			title: "Pulpit - Script Ready",
			body:  fmt.Sprintf("Script generated: %s", payloadString(payload, "title")),
			tags:  []string{"pulpit", "script", "completed"},
		}, true
	case EventNarrationCompleted:
		return message{
			title: "Pulpit - Narration Ready",
			body:  fmt.Sprintf("Narration synthesized: %s", payloadString(payload, "title")),
			tags:  []string{"pulpit", "narration", "completed"},
		}, true
	case EventRenderCompleted:
		return message{
			title: "Pulpit - Video Rendered",
			body:  fmt.Sprintf("Video rendered: %s", payloadString(payload, "title")),
			tags:  []string{"pulpit", "render", "completed"},
		}, true
	case EventHandoffReady:
		body := fmt.Sprintf("Canva handoff ready: %s", payloadString(payload, "title"))
		if dir := payloadString(payload, "directory"); dir != "" {
			body = fmt.Sprintf("%s\nFolder: %s", body, dir)
		}
		return message{
			title:    "Pulpit - Handoff Ready",
			body:     body,
			tags:     []string{"pulpit", "handoff", "review"},
			priority: "high",
		}, true
	case EventPublishCompleted:
		body := fmt.Sprintf("Published: %s", payloadString(payload, "title"))
		if videoID := payloadString(payload, "videoId"); videoID != "" {
			body = fmt.Sprintf("%s\nhttps://youtu.be/%s", body, videoID)
		}
		return message{
			title:    "Pulpit - Published",
			body:     body,
			tags:     []string{"pulpit", "publish", "completed"},
			priority: "high",
		}, true
	case EventQueueStarted:
		return message{
			title: "Pulpit - Queue Started",
			body:  fmt.Sprintf("Started processing queue with %d items", payloadInt(payload, "count")),
			tags:  []string{"pulpit", "queue", "started"},
		}, true
	case EventQueueCompleted:
		processed := payloadInt(payload, "processed")
		failed := payloadInt(payload, "failed")
		durationText := formatDuration(payloadDuration(payload, "duration"))
		title := "Pulpit - Queue Complete"
		body := fmt.Sprintf("Queue processing complete: %d items processed in %s", processed, durationText)
		if failed > 0 {
			title = "Pulpit - Queue Complete (with errors)"
			body = fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, durationText)
		}
		return message{
			title: title,
			body:  body,
			tags:  []string{"pulpit", "queue", "completed"},
		}, true
	case EventReviewRequired:
		body := fmt.Sprintf("Manual review required: %s", payloadString(payload, "title"))
		if reason := payloadString(payload, "reason"); reason != "" {
			body = fmt.Sprintf("%s\nReason: %s", body, reason)
		}
		return message{
			title:    "Pulpit - Review Required",
			body:     body,
			tags:     []string{"pulpit", "review"},
			priority: "high",
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("Error")
		if contextLabel := payloadString(payload, "context"); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		if errText := payloadError(payload, "error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Pulpit - Error",
			body:     builder.String(),
			tags:     []string{"pulpit", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Pulpit - Test",
			body:     "Notification system test",
			tags:     []string{"pulpit", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	if value, ok := payload[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch value := payload[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	default:
		return 0
	}
}

func payloadDuration(payload Payload, key string) time.Duration {
	if payload == nil {
		return 0
	}
	if value, ok := payload[key].(time.Duration); ok {
		return value
	}
	return 0
}

func payloadError(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch value := payload[key].(type) {
	case error:
		return strings.TrimSpace(value.Error())
	case string:
		return strings.TrimSpace(value)
	default:
		return ""
	}
}

func formatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	if duration <= 0 {
		return "0s"
	}
	return duration.String()
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

package notifications

// Event enumerates the workflow milestones surfaced to users.
type Event string

const (
	EventScriptCompleted    Event = "script_completed"
	EventNarrationCompleted Event = "narration_completed"
	EventRenderCompleted    Event = "render_completed"
	EventHandoffReady       Event = "handoff_ready"
	EventPublishCompleted   Event = "publish_completed"
	EventQueueStarted       Event = "queue_started"
	EventQueueCompleted     Event = "queue_completed"
	EventReviewRequired     Event = "review_required"
	EventError              Event = "error"
	EventTest               Event = "test"
)

// Payload carries event-specific values used to format the message.
type Payload map[string]any

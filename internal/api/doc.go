// Package api defines wire-format types and converters for the IPC layer. It
// translates internal queue models into transport-friendly DTOs so clients can
// render queue state without coupling to internal types.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress, artifact
// paths, and publish metadata.
//
// WorkflowStatus: daemon running state, queue stats, stage health, and last item.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Converters
//
// FromQueueItem: queue.Item -> QueueItem with artifact paths and metadata
// pass-through.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// StageHealthSlice: deterministic ordering of stage health map.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (queue.Status, queue.ProcessingLane) are exposed as lowercase strings.
// Timestamps use RFC3339 with milliseconds. Metadata is passed through as
// json.RawMessage to avoid double-encoding.
package api

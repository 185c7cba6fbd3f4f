// Package scriptwriter implements the first pipeline stage: generating the
// day's sermon script through the chat-completions service and persisting it
// with publish metadata for the later stages.
package scriptwriter

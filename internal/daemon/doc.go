// Package daemon hosts the long-running pulpit process: it owns the queue
// store and workflow manager, enforces single-instance execution through a
// lock file, and runs the daily scheduler that enqueues sermon runs at the
// configured wall-clock time.
package daemon

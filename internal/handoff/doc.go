// Package handoff prepares the Canva Bulk Create bundle for manual video
// assembly: a sorted-header single-row CSV, the title card PNG, the
// narration audio, and printable instructions, all grouped in a per-run
// review folder.
package handoff

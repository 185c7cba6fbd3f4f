// Package preflight provides readiness checks for external services
// and filesystem paths that Pulpit depends on.
//
// These checks run from the CLI: "pulpit status" uses individual check
// functions (CheckScriptAPI, CheckDirectoryAccess) to display service
// health, and RunAll backs a full readiness sweep before the first
// daemon start on a new machine.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight

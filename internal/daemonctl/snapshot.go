package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulpit/internal/api"
	"pulpit/internal/config"
	"pulpit/internal/ipc"
	"pulpit/internal/preflight"
	"pulpit/internal/queue"
)

// BuildStatusSnapshot assembles the full status view for the CLI. It asks
// the daemon over IPC when possible and fills in queue stats, dependency
// probes, and config checks client-side when the daemon is down.
func BuildStatusSnapshot(ctx context.Context, socketPath string, cfg *config.Config) (*ipc.StatusResponse, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}
	statusResp := &ipc.StatusResponse{}

	client, err := ipc.Dial(socketPath)
	if err == nil {
		defer client.Close()
		if resp, statusErr := client.Status(); statusErr == nil && resp != nil {
			statusResp = resp
		}
	}

	queueStats := make(map[string]int, len(statusResp.QueueStats))
	for k, v := range statusResp.QueueStats {
		queueStats[k] = v
	}
	if !statusResp.Running {
		if stats, ok := offlineQueueStats(ctx, cfg); ok {
			queueStats = stats
		}
	}

	if len(statusResp.Dependencies) == 0 {
		statusResp.Dependencies = resolveDependencies(context.Background(), cfg)
	}
	for i := range statusResp.Dependencies {
		if strings.TrimSpace(statusResp.Dependencies[i].Severity) == "" {
			statusResp.Dependencies[i].Severity = dependencySeverity(
				statusResp.Dependencies[i].Available,
				statusResp.Dependencies[i].Optional,
			)
		}
	}

	statusResp.QueueStats = queueStats
	statusResp.SystemChecks = systemChecks(cfg, statusResp.Running)
	statusResp.LibraryPaths = libraryPathChecks(cfg)
	statusResp.DependencySummary = dependencySummary(statusResp.Dependencies)
	return statusResp, nil
}

// offlineQueueStats reads queue counts straight from the database so the
// status command stays useful without the daemon.
func offlineQueueStats(ctx context.Context, cfg *config.Config) (map[string]int, bool) {
	queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	store, err := queue.Open(cfg)
	if err != nil {
		return nil, false
	}
	stats, statsErr := store.Stats(queryCtx)
	_ = store.Close()
	if statsErr != nil {
		return nil, false
	}
	counts := make(map[string]int, len(stats))
	for status, count := range stats {
		counts[string(status)] = count
	}
	return counts, true
}

func dependencySeverity(available, optional bool) string {
	if available {
		return "ok"
	}
	if optional {
		return "warn"
	}
	return "error"
}

func resolveDependencies(ctx context.Context, cfg *config.Config) []ipc.DependencyStatus {
	if cfg == nil {
		return nil
	}
	checks := preflight.CheckSystemDeps(ctx, cfg)
	statuses := make([]ipc.DependencyStatus, 0, len(checks))
	for _, check := range checks {
		statuses = append(statuses, ipc.DependencyStatus{
			Name:        check.Name,
			Command:     check.Command,
			Description: check.Description,
			Optional:    check.Optional,
			Available:   check.Available,
			Detail:      check.Detail,
			Severity:    dependencySeverity(check.Available, check.Optional),
		})
	}
	return statuses
}

// systemChecks builds the "System Status" section: daemon state, render
// mode, schedule, and the external service credentials.
func systemChecks(cfg *config.Config, daemonRunning bool) []api.StatusLine {
	lines := make([]api.StatusLine, 0, 6)
	if daemonRunning {
		lines = append(lines, api.StatusLine{Label: "Pulpit", Severity: "ok", Detail: "Running"})
	} else {
		lines = append(lines, api.StatusLine{Label: "Pulpit", Severity: "warn", Detail: "Not running (run `pulpit start`)"})
	}

	lines = append(lines, api.StatusLine{Label: "Render Mode", Severity: "info", Detail: preflight.RenderModeDetail(cfg)})

	if cfg.Schedule.Enabled {
		detail := fmt.Sprintf("Daily enqueue at %s", strings.TrimSpace(cfg.Schedule.Time))
		if tz := strings.TrimSpace(cfg.Schedule.Timezone); tz != "" {
			detail += " (" + tz + ")"
		}
		lines = append(lines, api.StatusLine{Label: "Schedule", Severity: "ok", Detail: detail})
	} else {
		lines = append(lines, api.StatusLine{Label: "Schedule", Severity: "info", Detail: "Manual enqueue only"})
	}

	voice := preflight.CheckElevenLabsFromConfig(cfg)
	severity := "warn"
	if voice.Passed {
		severity = "ok"
	}
	lines = append(lines, api.StatusLine{Label: "ElevenLabs", Severity: severity, Detail: voice.Detail})

	upload := preflight.CheckYouTubeFromConfig(cfg)
	switch {
	case upload.Passed && strings.EqualFold(strings.TrimSpace(upload.Detail), "Disabled"):
		lines = append(lines, api.StatusLine{Label: "YouTube", Severity: "info", Detail: upload.Detail})
	case upload.Passed:
		lines = append(lines, api.StatusLine{Label: "YouTube", Severity: "ok", Detail: upload.Detail})
	default:
		lines = append(lines, api.StatusLine{Label: "YouTube", Severity: "warn", Detail: upload.Detail})
	}

	if strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
		lines = append(lines, api.StatusLine{Label: "Notifications", Severity: "ok", Detail: "Configured"})
	} else {
		lines = append(lines, api.StatusLine{Label: "Notifications", Severity: "warn", Detail: "Not configured"})
	}
	return lines
}

// libraryPathChecks reports write access to the pipeline directories. The
// assets directory only matters when rendering locally.
func libraryPathChecks(cfg *config.Config) []api.StatusLine {
	type dirCheck struct {
		label string
		path  string
	}
	dirs := []dirCheck{
		{label: "Output", path: cfg.Paths.OutputDir},
		{label: "Library", path: cfg.Paths.LibraryDir},
		{label: "Review", path: cfg.Paths.ReviewDir},
	}
	if cfg.LocalRender() {
		dirs = append(dirs, dirCheck{label: "Assets", path: cfg.Paths.AssetsDir})
	}

	lines := make([]api.StatusLine, 0, len(dirs))
	for _, dir := range dirs {
		result := preflight.CheckDirectoryAccess(dir.label, dir.path)
		severity := "error"
		if result.Passed {
			severity = "ok"
		}
		lines = append(lines, api.StatusLine{Label: dir.label, Severity: severity, Detail: result.Detail})
	}
	return lines
}

func dependencySummary(deps []ipc.DependencyStatus) api.DependencySummary {
	if len(deps) == 0 {
		return api.DependencySummary{
			Severity: "info",
			Detail:   "No dependency checks configured",
		}
	}

	missingRequired := 0
	missingOptional := 0
	for _, dep := range deps {
		if dep.Available {
			continue
		}
		if dep.Optional {
			missingOptional++
		} else {
			missingRequired++
		}
	}

	missing := missingRequired + missingOptional
	available := len(deps) - missing
	severity := "ok"
	if missingRequired > 0 {
		severity = "error"
	} else if missingOptional > 0 {
		severity = "warn"
	}
	detail := fmt.Sprintf("%d/%d available", available, len(deps))
	if missing > 0 {
		detail = fmt.Sprintf("%d/%d available (missing: %d required, %d optional)", available, len(deps), missingRequired, missingOptional)
	}

	return api.DependencySummary{
		Total:           len(deps),
		Available:       available,
		MissingRequired: missingRequired,
		MissingOptional: missingOptional,
		Severity:        severity,
		Detail:          detail,
	}
}

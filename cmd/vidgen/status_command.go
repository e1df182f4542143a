package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidgen/internal/config"
	"vidgen/internal/daemonctl"
	"vidgen/internal/deps"
	"vidgen/internal/jobs"
	"vidgen/internal/journal"
	"vidgen/internal/narration"
	"vidgen/internal/preflight"
	"vidgen/internal/services"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show worker, dependency and readiness status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			renderSection(out, "Worker", workerLines(cfg, ctx.invalidErr), colorize)

			depStatuses := preflight.CheckSystemDeps(cfg)
			fmt.Fprintln(out, renderDependencyTable(depStatuses))
			fmt.Fprintln(out)

			renderSection(out, "Readiness", readinessLines(cmd.Context(), cfg, depStatuses), colorize)
			renderSection(out, "Journal", journalLines(cmd.Context(), cfg), colorize)
			return nil
		},
	}
}

func workerLines(cfg *config.Config, invalid error) []statusLine {
	lines := make([]statusLine, 0, 3)
	running, pid, err := daemonctl.ProcessInfo(cfg)
	switch {
	case err != nil:
		lines = append(lines, statusLine{Label: "Worker", Kind: statusWarn, Message: err.Error()})
	case running:
		lines = append(lines, statusLine{Label: "Worker", Kind: statusOK, Message: fmt.Sprintf("Running (pid %d)", pid)})
	default:
		lines = append(lines, statusLine{Label: "Worker", Kind: statusInfo, Message: "Not running"})
	}
	if invalid != nil {
		lines = append(lines, statusLine{Label: "Configuration", Kind: statusError, Message: invalid.Error()})
	} else {
		lines = append(lines, statusLine{Label: "Queue API", Kind: statusInfo, Message: cfg.QueueAPIURL()})
	}
	return lines
}

func renderDependencyTable(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "available"
		if !s.Available {
			state = "missing"
			if s.Optional {
				state = "missing (optional)"
			}
		}
		rows = append(rows, []string{s.Name, s.Command, state, s.Description})
	}
	return renderTable([]string{"Dependency", "Command", "State", "Purpose"}, rows, nil, 0)
}

func readinessLines(ctx context.Context, cfg *config.Config, statuses []deps.Status) []statusLine {
	checkCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	var queue preflight.Pinger
	if apiURL := cfg.QueueAPIURL(); apiURL != "" {
		queue = jobs.NewClient(apiURL, time.Duration(cfg.Queue.RequestTimeout)*time.Second, nil)
	}
	catalog := narration.NewCatalog(cfg.Narration.CatalogURL, cfg.Narration.CatalogPath,
		time.Duration(cfg.Narration.RequestTimeout)*time.Second)

	results := preflight.RunAll(checkCtx, cfg, queue, catalog)
	results = append(results, preflight.CheckNotificationsFromConfig(cfg))

	lines := make([]statusLine, 0, len(results)+1)
	for _, r := range results {
		lines = append(lines, statusLine{Label: r.Name, Kind: passFail(r.Passed), Message: r.Detail})
	}
	lines = append(lines, encoderLine(checkCtx, cfg, statuses))
	return lines
}

func encoderLine(ctx context.Context, cfg *config.Config, statuses []deps.Status) statusLine {
	label := "Encoder " + cfg.Compose.VideoCodec
	for _, s := range statuses {
		if s.Name == "FFmpeg" && !s.Available {
			return statusLine{Label: label, Kind: statusWarn, Message: "ffmpeg unavailable"}
		}
	}
	ok, err := deps.HasEncoder(ctx, services.RunCommand, cfg.Tools.FFmpeg, cfg.Compose.VideoCodec)
	switch {
	case err != nil:
		return statusLine{Label: label, Kind: statusWarn, Message: err.Error()}
	case !ok:
		return statusLine{Label: label, Kind: statusError, Message: "not built into ffmpeg; set compose.video_codec"}
	default:
		return statusLine{Label: label, Kind: statusOK, Message: "available"}
	}
}

func journalLines(ctx context.Context, cfg *config.Config) []statusLine {
	store, err := journal.Open(ctx, cfg.JournalPath())
	if err != nil {
		return []statusLine{{Label: "Journal", Kind: statusWarn, Message: err.Error()}}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return []statusLine{{Label: "Journal", Kind: statusWarn, Message: err.Error()}}
	}
	parts := make([]string, 0, 3)
	for _, status := range []jobs.Status{jobs.StatusRendering, jobs.StatusDone, jobs.StatusError} {
		parts = append(parts, fmt.Sprintf("%s %d", status, stats[status]))
	}
	kind := statusOK
	if stats[jobs.StatusError] > 0 {
		kind = statusWarn
	}
	return []statusLine{
		{Label: "Path", Kind: statusInfo, Message: store.Path()},
		{Label: "Attempts", Kind: kind, Message: strings.Join(parts, ", ")},
	}
}

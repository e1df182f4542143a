package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/logs"
	"vidgen/internal/workflow"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow, raw bool
	var lines int
	var jobID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display worker logs (today's daily log, or one job's log)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var resolve func() string
			if id := strings.TrimSpace(jobID); id != "" {
				jobLogs := workflow.NewJobLogger(cfg)
				if jobLogs == nil {
					return errors.New("paths.log_dir is not set")
				}
				path := jobLogs.Path(jobs.Job{ID: id})
				resolve = func() string { return path }
			} else {
				resolve = func() string { return logging.DailyLogPath(cfg.Paths.LogDir, time.Now()) }
			}

			out := cmd.OutOrStdout()
			emit := func(line string) {
				if !raw {
					line = formatLogLine(line)
				}
				fmt.Fprintln(out, line)
			}

			if follow {
				return logs.Follow(cmd.Context(), resolve, lines, time.Second, emit)
			}
			result, err := logs.Tail(cmd.Context(), resolve(), logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			if len(result.Lines) == 0 {
				fmt.Fprintln(out, "No log entries available")
				return nil
			}
			for _, line := range result.Lines {
				emit(line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show")
	cmd.Flags().StringVar(&jobID, "job", "", "Show the log of this job id")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unchanged")
	return cmd
}

// formatLogLine renders one JSON record as "ts LEVEL component: msg k=v".
// Lines that are not JSON objects are returned unchanged.
func formatLogLine(line string) string {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return line
	}
	take := func(key string) string {
		v, ok := record[key]
		if !ok {
			return ""
		}
		delete(record, key)
		return fmt.Sprint(v)
	}

	ts := take("ts")
	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		ts = parsed.Local().Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(take("level"))
	component := take(logging.FieldComponent)
	msg := take("msg")

	var b strings.Builder
	b.WriteString(ts)
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s ", level)
	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, record[k])
	}
	return b.String()
}

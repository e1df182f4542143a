package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidgen/internal/daemon"
	"vidgen/internal/daemonctl"
	"vidgen/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the queue and render jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.validConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:      ctx.logLevel(),
				SkipPreflight: skipPreflight,
			})
		},
	}
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without directory, queue and catalog checks")
	return cmd
}

func newOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Pick and render at most one job, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.validConfig()
			if err != nil {
				return err
			}
			picked, err := daemonrun.RunOnce(cmd.Context(), cfg, daemonrun.Options{LogLevel: ctx.logLevel()})
			if err != nil {
				return err
			}
			if !picked {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending job")
			}
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration
	var force bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask the running worker to finish its current job and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result, err := daemonctl.Stop(cfg, grace, force)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(out, "Worker is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Worker (pid %d) killed after %s\n", result.PID, grace)
				return nil
			}
			fmt.Fprintf(out, "Worker (pid %d) stopped\n", result.PID)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 15*time.Minute, "How long to wait for the current job to finish")
	cmd.Flags().BoolVar(&force, "force", false, "Kill the worker if it is still running after --grace")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured ntfy topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, message, err := daemon.SendTestNotification(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", message, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

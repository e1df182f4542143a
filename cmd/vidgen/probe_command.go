package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidgen/internal/media"
)

type probeOutput struct {
	File     string  `json:"file"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	HasVideo bool    `json:"has_video"`
	Error    string  `json:"error,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <file>...",
		Short: "Report duration and geometry of media files with ffprobe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := make([]probeOutput, 0, len(args))
			failed := 0
			for _, path := range args {
				entry := probeOutput{File: path}
				meta, err := media.Inspect(cmd.Context(), cfg.Tools.FFprobe, path)
				if err != nil {
					entry.Error = err.Error()
					failed++
				} else {
					entry.Duration = meta.Duration
					entry.Width = meta.Width
					entry.Height = meta.Height
					entry.HasVideo = meta.HasVideo
				}
				results = append(results, entry)
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					if r.Error != "" {
						rows = append(rows, []string{r.File, "-", "-", r.Error})
						continue
					}
					size := "audio"
					if r.HasVideo {
						size = fmt.Sprintf("%dx%d", r.Width, r.Height)
					}
					rows = append(rows, []string{r.File, media.FormatTimestamp(r.Duration), size, ""})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"File", "Duration", "Size", "Error"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}, 60))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be probed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

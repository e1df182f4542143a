package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"vidgen/internal/narration"
	"vidgen/internal/services"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "Inspect and build the narration voice catalog",
	}
	voicesCmd.AddCommand(newVoicesListCommand(ctx))
	voicesCmd.AddCommand(newVoicesExportCommand(ctx))
	return voicesCmd
}

func newVoicesListCommand(ctx *commandContext) *cobra.Command {
	var gender, locale string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog voices, optionally filtered by gender and locale",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog := narration.NewCatalog(cfg.Narration.CatalogURL, cfg.Narration.CatalogPath,
				time.Duration(cfg.Narration.RequestTimeout)*time.Second)
			voices, err := catalog.Voices(cmd.Context())
			if err != nil {
				return fmt.Errorf("load voice catalog: %w", err)
			}
			voices = filterVoices(voices, gender, locale)

			if asJSON {
				return writeJSON(cmd, voices)
			}
			out := cmd.OutOrStdout()
			if len(voices) == 0 {
				fmt.Fprintln(out, "No voices match")
				return nil
			}
			rows := lo.Map(voices, func(v narration.Voice, _ int) []string {
				return []string{v.ID(), v.Gender, v.Locale}
			})
			fmt.Fprintln(out, renderTable([]string{"Voice", "Gender", "Locale"}, rows, nil, 0))
			return nil
		},
	}
	cmd.Flags().StringVar(&gender, "gender", "", "Only voices of this gender (Male or Female)")
	cmd.Flags().StringVar(&locale, "locale", "", "Only voices of this locale (e.g. en-US)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func filterVoices(voices []narration.Voice, gender, locale string) []narration.Voice {
	gender = strings.TrimSpace(gender)
	locale = strings.TrimSpace(locale)
	switch {
	case gender != "" && locale != "":
		return narration.Filter(voices, gender, locale)
	case gender != "":
		return lo.Filter(voices, func(v narration.Voice, _ int) bool { return strings.EqualFold(v.Gender, gender) })
	case locale != "":
		return lo.Filter(voices, func(v narration.Voice, _ int) bool { return strings.EqualFold(v.Locale, locale) })
	default:
		return voices
	}
}

func newVoicesExportCommand(ctx *commandContext) *cobra.Command {
	var fromList, output string
	var languages []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a voice catalog JSON file from `edge-tts --list-voices`",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var listing io.Reader
			if strings.TrimSpace(fromList) != "" {
				data, err := os.ReadFile(fromList)
				if err != nil {
					return fmt.Errorf("read voice list: %w", err)
				}
				listing = bytes.NewReader(data)
			} else {
				data, err := services.RunCommand(cmd.Context(), cfg.Tools.UVX, "edge-tts", "--list-voices")
				if err != nil {
					return fmt.Errorf("list voices: %w", err)
				}
				listing = bytes.NewReader(data)
			}

			voices, err := narration.ParseVoiceList(listing)
			if err != nil {
				return fmt.Errorf("parse voice list: %w", err)
			}
			voices = narration.FilterLanguages(voices, languages)
			sort.SliceStable(voices, func(i, j int) bool { return voices[i].ID() < voices[j].ID() })

			if strings.TrimSpace(output) == "" || output == "-" {
				return writeJSON(cmd, voices)
			}
			var buf bytes.Buffer
			if err := encodeJSON(&buf, voices); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d voices to %s\n", len(voices), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromList, "from-list", "", "Read a saved `edge-tts --list-voices` output instead of running it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the catalog to this file (default stdout)")
	cmd.Flags().StringSliceVar(&languages, "languages", []string{"en", "es"}, "Language prefixes to keep")
	return cmd
}

package deps

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"vidgen/internal/services"
)

// Encoders lists the video encoder names compiled into ffmpeg.
func Encoders(ctx context.Context, run services.CommandRunner, ffmpeg string) ([]string, error) {
	if run == nil {
		run = services.RunCommand
	}
	out, err := run(ctx, ffmpeg, "-hide_banner", "-encoders")
	if err != nil {
		return nil, err
	}
	return parseEncoders(out), nil
}

// HasEncoder reports whether ffmpeg was built with codec.
func HasEncoder(ctx context.Context, run services.CommandRunner, ffmpeg, codec string) (bool, error) {
	encoders, err := Encoders(ctx, run, ffmpeg)
	if err != nil {
		return false, err
	}
	for _, name := range encoders {
		if name == codec {
			return true, nil
		}
	}
	return false, nil
}

// parseEncoders reads lines like " V....D hevc_nvenc  NVIDIA NVENC hevc encoder".
func parseEncoders(out []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	pastHeader := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "------" {
			pastHeader = true
			continue
		}
		if !pastHeader {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "V") {
			continue
		}
		names = append(names, fields[1])
	}
	return names
}

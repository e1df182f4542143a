package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidgen/internal/narration"
	"vidgen/internal/testsupport"
)

type cliEnv struct {
	dir        string
	configPath string
}

func newCLIEnv(t *testing.T, extra string) cliEnv {
	t.Helper()
	t.Setenv("BASE_URL", "")
	t.Setenv("NTFY_TOPIC", "")
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("mkdir state: %v", err)
	}
	body := fmt.Sprintf(`[paths]
backgrounds_dir = %q
output_dir = %q
render_dir = %q
log_dir = %q
state_dir = %q

[queue]
base_url = "http://127.0.0.1:9"
%s`,
		filepath.Join(dir, "backgrounds"),
		filepath.Join(dir, "output"),
		filepath.Join(dir, "renders"),
		filepath.Join(dir, "logs"),
		stateDir,
		extra,
	)
	configPath := filepath.Join(dir, "vidgen.toml")
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cliEnv{dir: dir, configPath: configPath}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "vidgen.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to name %s, got %q", target, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := newCLIEnv(t, "")

	out, err := runCLI(t, "--config", env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, "http://127.0.0.1:9/api") {
		t.Fatalf("unexpected validate output %q", out)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "renders")); err != nil {
		t.Fatalf("expected render dir to be created: %v", err)
	}
}

func TestConfigValidateRejectsMissingBaseURL(t *testing.T) {
	t.Setenv("BASE_URL", "")
	path := filepath.Join(t.TempDir(), "vidgen.toml")
	if err := os.WriteFile(path, []byte("[queue]\nbase_url = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runCLI(t, "--config", path, "config", "validate"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestVoicesExportFromList(t *testing.T) {
	env := newCLIEnv(t, "")
	listing := filepath.Join(env.dir, "voices.txt")
	if err := os.WriteFile(listing, []byte(`Name: es-MX-JorgeNeural
Gender: Male

Name: de-DE-KatjaNeural
Gender: Female

Name: en-US-AriaNeural
Gender: Female
`), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
	catalogPath := filepath.Join(env.dir, "voices.json")

	out, err := runCLI(t, "--config", env.configPath, "voices", "export", "--from-list", listing, "--output", catalogPath)
	if err != nil {
		t.Fatalf("voices export: %v", err)
	}
	if !strings.Contains(out, "Wrote 2 voices") {
		t.Fatalf("unexpected export output %q", out)
	}

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	var voices []narration.Voice
	if err := json.Unmarshal(data, &voices); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(voices) != 2 || voices[0].ID() != "en-US-AriaNeural" || voices[1].ID() != "es-MX-JorgeNeural" {
		t.Fatalf("unexpected catalog %+v", voices)
	}
}

func TestVoicesListFiltersCatalogFile(t *testing.T) {
	env := newCLIEnv(t, "")
	catalogPath := filepath.Join(env.dir, "voices.json")
	catalog := `[
  {"ShortName":"en-US-AriaNeural","Gender":"Female","Locale":"en-US"},
  {"ShortName":"en-US-GuyNeural","Gender":"Male","Locale":"en-US"},
  {"ShortName":"es-ES-AlvaroNeural","Gender":"Male","Locale":"es-ES"}
]`
	if err := os.WriteFile(catalogPath, []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	env = rewriteWithNarration(t, env, catalogPath)

	out, err := runCLI(t, "--config", env.configPath, "voices", "list", "--gender", "male", "--json")
	if err != nil {
		t.Fatalf("voices list: %v", err)
	}
	var voices []narration.Voice
	if err := json.Unmarshal([]byte(out), &voices); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(voices) != 2 {
		t.Fatalf("expected 2 male voices, got %+v", voices)
	}

	out, err = runCLI(t, "--config", env.configPath, "voices", "list", "--locale", "es-ES")
	if err != nil {
		t.Fatalf("voices list: %v", err)
	}
	if !strings.Contains(out, "es-ES-AlvaroNeural") || strings.Contains(out, "en-US-GuyNeural") {
		t.Fatalf("unexpected table %q", out)
	}
}

func rewriteWithNarration(t *testing.T, env cliEnv, catalogPath string) cliEnv {
	t.Helper()
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	data = append(data, []byte(fmt.Sprintf("\n[narration]\ncatalog_path = %q\n", catalogPath))...)
	if err := os.WriteFile(env.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func TestProbeReportsMetadata(t *testing.T) {
	dir := t.TempDir()
	stub := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffprobe", `cat <<'JSON'
{"streams":[{"codec_type":"video","width":1080,"height":1920},{"codec_type":"audio","duration":"61.5"}],"format":{"filename":"clip.mp4"}}
JSON
`)
	env := newCLIEnv(t, fmt.Sprintf("\n[tools]\nffprobe = %q\n", stub))

	out, err := runCLI(t, "--config", env.configPath, "probe", "--json", filepath.Join(dir, "clip.mp4"))
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var results []probeOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(results) != 1 || results[0].Duration != 61.5 || results[0].Width != 1080 || !results[0].HasVideo {
		t.Fatalf("unexpected probe results %+v", results)
	}
}

func TestProbeFailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	stub := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffprobe", "echo broken >&2\nexit 1\n")
	env := newCLIEnv(t, fmt.Sprintf("\n[tools]\nffprobe = %q\n", stub))

	out, err := runCLI(t, "--config", env.configPath, "probe", "--json", filepath.Join(dir, "missing.mp4"))
	if err == nil || !strings.Contains(err.Error(), "1 of 1 files") {
		t.Fatalf("expected probe error, got %v", err)
	}
	var results []probeOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(results) != 1 || results[0].Error == "" {
		t.Fatalf("expected failed entry, got %+v", results)
	}
}

func TestHistoryEmptyJournal(t *testing.T) {
	env := newCLIEnv(t, "")

	out, err := runCLI(t, "--config", env.configPath, "history", "--prune-days", "30")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Pruned 0 entries") || !strings.Contains(out, "No render attempts recorded") {
		t.Fatalf("unexpected history output %q", out)
	}
}

func TestFilterVoices(t *testing.T) {
	voices := []narration.Voice{
		{ShortName: "en-US-AriaNeural", Gender: "Female", Locale: "en-US"},
		{ShortName: "en-GB-RyanNeural", Gender: "Male", Locale: "en-GB"},
	}
	if got := filterVoices(voices, "", ""); len(got) != 2 {
		t.Fatalf("expected no filtering, got %+v", got)
	}
	if got := filterVoices(voices, "FEMALE", ""); len(got) != 1 || got[0].Gender != "Female" {
		t.Fatalf("gender filter failed: %+v", got)
	}
	if got := filterVoices(voices, "", "en-gb"); len(got) != 1 || got[0].Locale != "en-GB" {
		t.Fatalf("locale filter failed: %+v", got)
	}
}

func TestLogsShowsJobLog(t *testing.T) {
	env := newCLIEnv(t, "")
	jobLog := filepath.Join(env.dir, "logs", "jobs", "job-7.log")
	if err := os.MkdirAll(filepath.Dir(jobLog), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	records := `{"ts":"2026-10-17T08:00:00Z","level":"info","msg":"stage started","component":"workflow-manager","stage":"acquire"}
{"ts":"2026-10-17T08:00:05Z","level":"info","msg":"stage completed","component":"workflow-manager","stage":"acquire"}
`
	if err := os.WriteFile(jobLog, []byte(records), 0o644); err != nil {
		t.Fatalf("write job log: %v", err)
	}

	out, err := runCLI(t, "--config", env.configPath, "logs", "--job", "job-7", "-n", "1")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "INFO  workflow-manager: stage completed stage=acquire") || strings.Contains(out, "stage started") {
		t.Fatalf("unexpected logs output %q", out)
	}

	out, err = runCLI(t, "--config", env.configPath, "logs", "--job", "job-7", "--raw", "-n", "1")
	if err != nil {
		t.Fatalf("logs --raw: %v", err)
	}
	if !strings.HasPrefix(out, `{"ts":"2026-10-17T08:00:05Z"`) {
		t.Fatalf("expected raw record, got %q", out)
	}
}

func TestLogsWithoutDailyFile(t *testing.T) {
	env := newCLIEnv(t, "")
	out, err := runCLI(t, "--config", env.configPath, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "No log entries available") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFormatLogLinePassesThroughText(t *testing.T) {
	if got := formatLogLine("plain text"); got != "plain text" {
		t.Fatalf("formatLogLine = %q", got)
	}
}

package daemonrun

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"vidgen/internal/config"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/narration"
	"vidgen/internal/services"
	"vidgen/internal/testsupport"
)

func TestBuildRequiresBaseURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Queue.BaseURL = ""

	_, err := Build(context.Background(), cfg, logging.NewNop(), true)
	if !errors.Is(err, config.ErrMissingBaseURL) {
		t.Fatalf("expected ErrMissingBaseURL, got %v", err)
	}
	if services.Classify(err) != services.KindConfiguration {
		t.Fatalf("kind = %s", services.Classify(err))
	}
}

func TestBuildStagesWithoutStorage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	set, err := BuildStages(context.Background(), cfg, workflowLayout(cfg), narration.FileCatalog{}, logging.NewNop())
	if err != nil {
		t.Fatalf("BuildStages: %v", err)
	}
	if set.Acquire == nil || set.Narrate == nil || set.Caption == nil || set.Inspect == nil || set.Compose == nil {
		t.Fatalf("missing core stage: %+v", set)
	}
	if set.Publish != nil {
		t.Fatal("publish stage registered while storage disabled")
	}
}

func TestBuildStagesWithStorage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Storage.Enabled = true
	cfg.Storage.Bucket = "renders"
	cfg.Storage.Region = "auto"
	cfg.Storage.Endpoint = "http://127.0.0.1:9000"
	cfg.Storage.AccessKeyID = "key"
	cfg.Storage.SecretAccessKey = "secret"

	set, err := BuildStages(context.Background(), cfg, workflowLayout(cfg), narration.FileCatalog{}, logging.NewNop())
	if err != nil {
		t.Fatalf("BuildStages: %v", err)
	}
	if set.Publish == nil {
		t.Fatal("publish stage missing")
	}

	cfg.Storage.SecretAccessKey = ""
	if _, err := BuildStages(context.Background(), cfg, workflowLayout(cfg), narration.FileCatalog{}, logging.NewNop()); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestBuildCreatesJournalAndDirectories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"error":"no pending jobs"}`)
	}))
	defer srv.Close()
	cfg := testsupport.NewConfig(t, testsupport.WithQueueURL(srv.URL))

	rt, err := Build(context.Background(), cfg, logging.NewNop(), true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rt.Close()

	if _, err := os.Stat(cfg.JournalPath()); err != nil {
		t.Fatalf("journal not created: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.RenderDir); err != nil {
		t.Fatalf("render dir not created: %v", err)
	}

	picked, err := rt.Manager.RunOnce(context.Background())
	if err != nil || picked {
		t.Fatalf("RunOnce = %v, %v", picked, err)
	}
}

func workflowLayout(cfg *config.Config) jobs.Layout {
	return jobs.Layout{OutputDir: cfg.Paths.OutputDir, RenderDir: cfg.Paths.RenderDir}
}

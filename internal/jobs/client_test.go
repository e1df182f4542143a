package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"vidgen/internal/services"
)

type recordedPut struct {
	path string
	body map[string]string
}

func newQueueServer(t *testing.T, pick func(w http.ResponseWriter)) (*httptest.Server, *[]recordedPut) {
	t.Helper()
	var mu sync.Mutex
	puts := []recordedPut{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/jobs/pick":
			pick(w)
		case r.Method == http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			var body map[string]string
			_ = json.Unmarshal(data, &body)
			mu.Lock()
			puts = append(puts, recordedPut{path: r.URL.Path, body: body})
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &puts
}

func TestPickDecodesJob(t *testing.T) {
	srv, _ := newQueueServer(t, func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, `{"_id":"abc","language":"en-US","background_url":"https://example.com/v","tts":"en-US-ChristopherNeural","series":"Demo","part":1,"text":"Hello world","outro":"Bye","status":"pending"}`)
	})
	client := NewClient(srv.URL+"/api", time.Second, nil)

	job, err := client.Pick(context.Background())
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if job.ID != "abc" || job.Series != "Demo" || job.Part != 1 || job.Outro != "Bye" {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestPickMalformedPayloadKeepsID(t *testing.T) {
	srv, _ := newQueueServer(t, func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, `{"_id":"bad-1","language":"en-US","series":"Demo","part":"one","text":"t"}`)
	})
	client := NewClient(srv.URL+"/api", time.Second, nil)

	job, err := client.Pick(context.Background())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if job == nil || job.ID != "bad-1" {
		t.Fatalf("expected job id to survive a bad payload, got %+v", job)
	}
}

func TestPickUndecodableWithoutIDReturnsNoJob(t *testing.T) {
	srv, _ := newQueueServer(t, func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, `{"_id":42,"part":"one"}`)
	})
	client := NewClient(srv.URL+"/api", time.Second, nil)

	job, err := client.Pick(context.Background())
	if job != nil || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Pick = %+v, %v", job, err)
	}
}

func TestPickReportsNoJob(t *testing.T) {
	cases := map[string]func(w http.ResponseWriter){
		"error payload": func(w http.ResponseWriter) {
			_, _ = io.WriteString(w, `{"error":"no jobs"}`)
		},
		"non-200": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNotFound)
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newQueueServer(t, handler)
			_, err := NewClient(srv.URL+"/api", time.Second, nil).Pick(context.Background())
			if !errors.Is(err, ErrNoJob) {
				t.Fatalf("expected ErrNoJob, got %v", err)
			}
		})
	}
}

func TestPickUnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url+"/api", time.Second, nil).Pick(context.Background())
	if services.Classify(err) != services.KindTransient {
		t.Fatalf("expected transient error, got %v (%s)", err, services.Classify(err))
	}
}

func TestStatusAndFinishedVideoUpdates(t *testing.T) {
	srv, puts := newQueueServer(t, func(w http.ResponseWriter) {})
	client := NewClient(srv.URL+"/api/", time.Second, nil)
	ctx := context.Background()

	if err := client.UpdateStatus(ctx, "abc", StatusRendering); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := client.SetFinishedVideo(ctx, "abc", "/renders/Demo/Demo_1.mp4"); err != nil {
		t.Fatalf("SetFinishedVideo: %v", err)
	}

	if len(*puts) != 2 {
		t.Fatalf("expected 2 PUTs, got %d", len(*puts))
	}
	first, second := (*puts)[0], (*puts)[1]
	if first.path != "/api/jobs/abc" || first.body["status"] != "rendering" {
		t.Fatalf("unexpected first PUT %+v", first)
	}
	if second.body["finished_video"] != "/renders/Demo/Demo_1.mp4" {
		t.Fatalf("unexpected second PUT %+v", second)
	}
}

func TestUpdateStatusRejectedByQueue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, nil).UpdateStatus(context.Background(), "abc", StatusDone)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if err := NewClient(srv.URL, time.Second, nil).UpdateStatus(context.Background(), "", StatusDone); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if err := NewClient(srv.URL+"/api", time.Second, nil).Ping(context.Background()); err != nil {
		t.Fatalf("404 still proves the queue is reachable: %v", err)
	}
}

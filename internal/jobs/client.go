package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vidgen/internal/logging"
	"vidgen/internal/services"
)

const userAgent = "vidgen-worker/1.0"

type noJobError struct{}

func (noJobError) Error() string { return "no pending job" }

func (noJobError) NoWork() bool { return true }

// ErrNoJob is returned by Pick when the queue has nothing pending.
var ErrNoJob error = noJobError{}

// Client talks to the queue API rooted at {base_url}{api_prefix}.
type Client struct {
	apiURL string
	http   *http.Client
	logger *slog.Logger
}

// NewClient constructs a queue client. timeout bounds each request.
func NewClient(apiURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		http:   &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "queue"),
	}
}

// APIURL returns the root used for every request.
func (c *Client) APIURL() string { return c.apiURL }

// Pick asks the queue for one pending job. ErrNoJob means the queue is empty.
// The caller must mark the returned job rendering before doing any work.
//
// A payload that carries an _id but does not otherwise decode yields a Job
// holding only that id together with a validation error, so the caller can
// still settle the job instead of picking it again forever.
func (c *Client) Pick(ctx context.Context) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/jobs/pick", nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "queue", "pick job", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "queue", "pick job", "queue unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "queue", "pick job", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("pick returned non-200", logging.Int("status", resp.StatusCode))
		return nil, ErrNoJob
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, services.Wrap(services.ErrTransient, "queue", "pick job", "decode response", err)
	}
	if _, ok := envelope["error"]; ok {
		return nil, ErrNoJob
	}

	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		var ident struct {
			ID string `json:"_id"`
		}
		if json.Unmarshal(body, &ident) != nil || strings.TrimSpace(ident.ID) == "" {
			return nil, services.Wrap(services.ErrValidation, "queue", "pick job", "decode job", err)
		}
		return &Job{ID: ident.ID}, services.Wrap(services.ErrValidation, "queue", "pick job", "decode job "+ident.ID, err)
	}
	return &job, nil
}

// UpdateStatus records a status transition for a job.
func (c *Client) UpdateStatus(ctx context.Context, id string, status Status) error {
	return c.put(ctx, id, map[string]string{"status": string(status)}, "update status")
}

// SetFinishedVideo records the render's download path. It is always followed
// by a done status update.
func (c *Client) SetFinishedVideo(ctx context.Context, id, path string) error {
	return c.put(ctx, id, map[string]string{"finished_video": path}, "set finished video")
}

// Ping checks that the queue API answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "queue", "ping", "queue unreachable", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return services.Wrap(services.ErrTransient, "queue", "ping", fmt.Sprintf("queue returned %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *Client) put(ctx context.Context, id string, payload map[string]string, operation string) error {
	if strings.TrimSpace(id) == "" {
		return services.Wrap(services.ErrValidation, "queue", operation, "job id required", nil)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrValidation, "queue", operation, "encode payload", err)
	}
	endpoint := c.apiURL + "/jobs/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "queue", operation, "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "queue", operation, "queue unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransient, "queue", operation,
			fmt.Sprintf("queue returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	c.logger.Debug("job updated",
		logging.String(logging.FieldJobID, id),
		logging.String("operation", operation),
		logging.String(logging.FieldEventType, "job_updated"),
	)
	return nil
}

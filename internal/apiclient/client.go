package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"accessdash/internal/auth"
	"accessdash/internal/metrics"
	"accessdash/internal/model"
)

// Backend endpoint paths.
const (
	PathSummary      = "/api/stats/summary"
	PathRecent       = "/api/access/recent"
	PathAttendance   = "/api/attendance/today"
	PathUnauthorized = "/api/access/unauthorized"
	PathImages       = "/api/images/latest"
	PathCameras      = "/api/camera/status"
	PathHourly       = "/api/stats/hourly"
	PathReport       = "/api/attendance/report"
	PathEmployees    = "/api/employees/list"
	PathSearch       = "/api/search"
	PathHealth       = "/health"
)

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s: %s", e.Path, e.Status)
	}
	return fmt.Sprintf("backend %s: %s: %s", e.Path, e.Status, e.Body)
}

// NetworkError is returned when the request could not be completed.
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s unreachable: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client calls the monitoring backend's read-only JSON API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   *auth.ServiceToken
	Metrics *metrics.Metrics
}

// New creates a client with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Get issues GET path?query and decodes the JSON response into out.
// No retries: the next poll is the retry.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	start := time.Now()
	err := c.get(ctx, path, query, out)
	c.Metrics.ObserveBackend(path, outcome(err), time.Since(start))
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		req.Header.Set("X-Request-ID", id)
	} else {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if c.Token != nil {
		tok, err := c.Token.Token()
		if err != nil {
			return fmt.Errorf("sign service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID makes outgoing backend calls carry the given correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func outcome(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "decode_error"
	}
}

// Summary returns today's headline counters.
func (c *Client) Summary(ctx context.Context) (model.SummaryStats, error) {
	var out model.SummaryStats
	err := c.Get(ctx, PathSummary, nil, &out)
	return out, err
}

// RecentAccess returns the latest limit access attempts, newest first.
func (c *Client) RecentAccess(ctx context.Context, limit int) ([]model.AccessRecord, error) {
	var out []model.AccessRecord
	err := c.Get(ctx, PathRecent, url.Values{"limit": {strconv.Itoa(limit)}}, &out)
	return out, err
}

// AttendanceToday returns one aggregate per subject and camera for today.
func (c *Client) AttendanceToday(ctx context.Context) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	err := c.Get(ctx, PathAttendance, nil, &out)
	return out, err
}

// Unauthorized returns unauthorized attempts within the last hours.
func (c *Client) Unauthorized(ctx context.Context, hours int) ([]model.AccessRecord, error) {
	var out []model.AccessRecord
	err := c.Get(ctx, PathUnauthorized, url.Values{"hours": {strconv.Itoa(hours)}}, &out)
	return out, err
}

// LatestImages returns one page of captured images.
func (c *Client) LatestImages(ctx context.Context, page, perPage int) (model.ImagePage, error) {
	var out model.ImagePage
	err := c.Get(ctx, PathImages, url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}, &out)
	return out, err
}

// CameraStatus returns per-camera activity for the last hour.
func (c *Client) CameraStatus(ctx context.Context) ([]model.CameraStatus, error) {
	var out []model.CameraStatus
	err := c.Get(ctx, PathCameras, nil, &out)
	return out, err
}

// Hourly returns hourly buckets for the last hours, oldest first.
func (c *Client) Hourly(ctx context.Context, hours int) ([]model.HourlyBucket, error) {
	var out []model.HourlyBucket
	err := c.Get(ctx, PathHourly, url.Values{"hours": {strconv.Itoa(hours)}}, &out)
	return out, err
}

// AttendanceReport returns per-day attendance between start and end (YYYY-MM-DD).
func (c *Client) AttendanceReport(ctx context.Context, start, end string) ([]model.ReportRow, error) {
	var out []model.ReportRow
	err := c.Get(ctx, PathReport, url.Values{
		"start_date": {start},
		"end_date":   {end},
	}, &out)
	return out, err
}

// Employees returns every recognized subject.
func (c *Client) Employees(ctx context.Context) ([]model.Employee, error) {
	var out []model.Employee
	err := c.Get(ctx, PathEmployees, nil, &out)
	return out, err
}

// Search queries the access log; the backend caps results at 100.
func (c *Client) Search(ctx context.Context, f model.SearchFilter) ([]model.AccessRecord, error) {
	q := url.Values{}
	if f.SubjectName != "" {
		q.Set("subject_name", f.SubjectName)
	}
	if f.CameraName != "" {
		q.Set("camera_name", f.CameraName)
	}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	if f.IsAuthorized != nil {
		q.Set("is_authorized", strconv.FormatBool(*f.IsAuthorized))
	}
	var out []model.AccessRecord
	err := c.Get(ctx, PathSearch, q, &out)
	return out, err
}

// Health checks if the backend is available.
func (c *Client) Health(ctx context.Context) error {
	return c.Get(ctx, PathHealth, nil, nil)
}

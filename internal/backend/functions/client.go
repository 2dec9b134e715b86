// Package functions implements the service.Service interface over the HTTP
// task functions (get_tasks, create_task, update_task_status, delete_task).
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"tasker/internal/config"
	"tasker/internal/logging"
	"tasker/internal/service"
)

// Route names, appended to the base URL.
const (
	RouteGetTasks     = "get_tasks"
	RouteCreateTask   = "create_task"
	RouteUpdateStatus = "update_task_status"
	RouteDeleteTask   = "delete_task"
)

// maxErrorBody caps how much of an error response is kept in APIError.Message.
const maxErrorBody = 512

// Client implements service.Service against the task functions.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	log     logging.Logger
}

// New creates a client from backend settings, building an authenticated
// transport for the configured auth mode.
func New(ctx context.Context, cfg config.Backend, log logging.Logger) (*Client, error) {
	httpClient, err := newHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithHTTPClient(httpClient, cfg.BaseURL, cfg.Timeout, log), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, baseURL string, timeout time.Duration, log logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     log.With("component", "backend"),
	}
}

type listRequest struct {
	UserID string `json:"userId"`
}

// Tasks is a pointer so a reply without the key can be told apart from an
// empty list.
type listResponse struct {
	Tasks *[]service.Task `json:"tasks"`
}

type statusRequest struct {
	TaskID string         `json:"taskId"`
	Status service.Status `json:"status"`
}

type deleteRequest struct {
	TaskID string `json:"taskId"`
}

// ListTasks returns every task owned by userID.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	var resp listResponse
	if err := c.postJSON(ctx, RouteGetTasks, listRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}

	if resp.Tasks == nil {
		return nil, &service.APIError{Op: RouteGetTasks, StatusCode: http.StatusOK, Message: "response missing tasks", Kind: service.ErrServer}
	}
	tasks := *resp.Tasks
	if tasks == nil {
		tasks = []service.Task{}
	}
	for i := range tasks {
		tasks[i].Status = service.ParseStatus(string(tasks[i].Status))
	}
	return tasks, nil
}

// CreateTask uploads a new task as a multipart form, with the file part when present.
func (c *Client) CreateTask(ctx context.Context, req service.NewTask) (service.CreateResult, error) {
	body, contentType, err := encodeNewTask(req)
	if err != nil {
		return service.CreateResult{}, &service.APIError{Op: RouteCreateTask, Message: err.Error(), Kind: service.ErrValidation}
	}

	var res service.CreateResult
	if err := c.do(ctx, RouteCreateTask, contentType, body, &res); err != nil {
		return service.CreateResult{}, err
	}
	return res, nil
}

// UpdateTaskStatus sets the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID string, status service.Status) error {
	return c.postJSON(ctx, RouteUpdateStatus, statusRequest{TaskID: taskID, Status: status}, nil)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.postJSON(ctx, RouteDeleteTask, deleteRequest{TaskID: taskID}, nil)
}

func encodeNewTask(req service.NewTask) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"userId", req.UserID},
		{"email", req.Email},
		{"title", req.Title},
		{"description", req.Description},
		{"dueDate", req.DueDate},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if req.HasFile() {
		name := req.FileName
		if name == "" {
			name = "attachment"
		}
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, req.File); err != nil {
			return nil, "", fmt.Errorf("read attachment: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) postJSON(ctx context.Context, route string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return &service.APIError{Op: route, Message: err.Error(), Kind: service.ErrValidation}
	}
	return c.do(ctx, route, "application/json", bytes.NewReader(data), out)
}

// do sends one POST and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, route, contentType string, body io.Reader, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + "/" + route
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return &service.APIError{Op: route, Message: err.Error(), Kind: service.ErrNetwork}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "route", route, "error", err)
		return &service.APIError{Op: route, Message: transportMessage(err), Kind: service.ErrNetwork}
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "route", route, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &service.APIError{
			Op:         route,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			Kind:       service.KindForStatus(resp.StatusCode),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &service.APIError{Op: route, StatusCode: resp.StatusCode, Message: transportMessage(err), Kind: service.ErrNetwork}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &service.APIError{Op: route, StatusCode: resp.StatusCode, Message: "empty response body", Kind: service.ErrServer}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &service.APIError{Op: route, StatusCode: resp.StatusCode, Message: "invalid response body: " + err.Error(), Kind: service.ErrServer}
	}
	return nil
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}

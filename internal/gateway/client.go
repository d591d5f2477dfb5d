package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// Operation names sent with each GraphQL request.
const (
	LoadOperation   = "GetAllPhasesAndTasks"
	UpdateOperation = "updateTaskIsCompleted"
)

// LoadQuery fetches every phase and task in one round trip.
const LoadQuery = `query GetAllPhasesAndTasks {
  returnAllPhases {
    phaseId
    name
    order
  }
  returnAllTasks {
    phaseId
    taskId
    name
    isCompleted
  }
}`

// UpdateMutation sets a single task's completion flag.
const UpdateMutation = `mutation updateTaskIsCompleted($taskId: ID!, $isCompleted: Boolean!) {
  updateTaskIsCompleted(data: { taskId: $taskId, isCompleted: $isCompleted }) {
    phaseId
    isCompleted
  }
}`

// maxResponseSize caps how much of any response body is read.
const maxResponseSize = 4 << 20 // 4 MiB

// Compile-time check that Client implements progress.Gateway.
var _ progress.Gateway = (*Client)(nil)

// Client talks to the GraphQL backend and the closing message service.
type Client struct {
	cfg     Config
	backend *http.Client
	message *http.Client
	logger  *log.Logger
	newID   func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient makes both services use hc. Timeouts from Config still apply
// per request through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.backend = hc
		c.message = hc
	}
}

// WithLogger overrides the default "gateway" logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRequestIDFunc overrides X-Request-ID generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// New returns a Client for cfg. Zero config fields take package defaults.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg.withDefaults(),
		backend: &http.Client{},
		message: &http.Client{},
		logger:  logging.New("gateway"),
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// LoadAll fetches every phase and task.
func (c *Client) LoadAll(ctx context.Context) (progress.Snapshot, error) {
	body, err := graphQLBody(LoadOperation, LoadQuery, nil)
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("building load request: %w", err)
	}

	res, reqID, err := c.graphQL(ctx, "load", body)
	if err != nil {
		return progress.Snapshot{}, err
	}

	phases := res.Get("data.returnAllPhases")
	tasks := res.Get("data.returnAllTasks")
	if !phases.IsArray() || !tasks.IsArray() {
		return progress.Snapshot{}, &TransportError{
			Op:        "load",
			RequestID: reqID,
			Err:       errors.New("response is missing returnAllPhases or returnAllTasks"),
		}
	}

	var snap progress.Snapshot
	phases.ForEach(func(_, v gjson.Result) bool {
		snap.Phases = append(snap.Phases, progress.Phase{
			PhaseID: v.Get("phaseId").String(),
			Name:    v.Get("name").String(),
			Order:   int(v.Get("order").Int()),
		})
		return true
	})
	tasks.ForEach(func(_, v gjson.Result) bool {
		snap.Tasks = append(snap.Tasks, progress.Task{
			PhaseID:     v.Get("phaseId").String(),
			TaskID:      v.Get("taskId").String(),
			Name:        v.Get("name").String(),
			IsCompleted: v.Get("isCompleted").Bool(),
		})
		return true
	})

	c.logger.Debug("loaded snapshot", "request_id", reqID, "phases", len(snap.Phases), "tasks", len(snap.Tasks))
	return snap, nil
}

// SetTaskCompletion persists a task's completion flag and returns the
// backend's acknowledgement.
func (c *Client) SetTaskCompletion(ctx context.Context, taskID string, isCompleted bool) (progress.Ack, error) {
	body, err := graphQLBody(UpdateOperation, UpdateMutation, map[string]any{
		"taskId":      taskID,
		"isCompleted": isCompleted,
	})
	if err != nil {
		return progress.Ack{}, fmt.Errorf("building update request: %w", err)
	}

	res, reqID, err := c.graphQL(ctx, "update", body)
	if err != nil {
		return progress.Ack{}, err
	}

	ack := res.Get("data.updateTaskIsCompleted")
	if !ack.IsObject() {
		return progress.Ack{}, &TransportError{
			Op:        "update",
			RequestID: reqID,
			Err:       errors.New("response is missing updateTaskIsCompleted"),
		}
	}

	out := progress.Ack{
		PhaseID:     ack.Get("phaseId").String(),
		IsCompleted: ack.Get("isCompleted").Bool(),
	}
	c.logger.Info("task completion saved",
		"request_id", reqID, "task", taskID, "phase", out.PhaseID, "completed", out.IsCompleted)
	return out, nil
}

// FetchClosingMessage fetches a random fact and returns its text verbatim.
func (c *Client) FetchClosingMessage(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.MessageTimeout)
	defer cancel()

	reqID := c.newID()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.MessageEndpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building closing message request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req, reqID)

	raw, status, err := c.do(c.message, req)
	if err != nil {
		return "", &TransportError{Op: "closing-message", RequestID: reqID, StatusCode: status, Err: err}
	}
	c.logBody("closing message response", reqID, raw)

	if !gjson.ValidBytes(raw) {
		return "", &TransportError{Op: "closing-message", RequestID: reqID, StatusCode: status, Err: errors.New("response is not valid JSON")}
	}
	text := gjson.GetBytes(raw, "text").String()
	if text == "" {
		return "", &TransportError{Op: "closing-message", RequestID: reqID, StatusCode: status, Err: errors.New("response has no text")}
	}
	return text, nil
}

// graphQL posts body to the backend and returns the parsed response. GraphQL
// errors in the response are reported as a TransportError.
func (c *Client) graphQL(ctx context.Context, op string, body []byte) (gjson.Result, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqID := c.newID()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, reqID, fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req, reqID)
	c.logBody("graphql request", reqID, body)

	raw, status, err := c.do(c.backend, req)
	if err != nil {
		return gjson.Result{}, reqID, &TransportError{Op: op, RequestID: reqID, StatusCode: status, Err: err}
	}
	c.logBody("graphql response", reqID, raw)

	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, reqID, &TransportError{Op: op, RequestID: reqID, StatusCode: status, Err: errors.New("response is not valid JSON")}
	}
	res := gjson.ParseBytes(raw)
	if msgs := res.Get("errors.#.message").Array(); len(msgs) > 0 {
		parts := make([]string, 0, len(msgs))
		for _, m := range msgs {
			parts = append(parts, m.String())
		}
		return gjson.Result{}, reqID, &TransportError{
			Op:         op,
			RequestID:  reqID,
			StatusCode: status,
			Err:        fmt.Errorf("graphql: %s", strings.Join(parts, "; ")),
		}
	}
	return res, reqID, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(hc *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) setCommonHeaders(req *http.Request, reqID string) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Request-ID", reqID)
}

func (c *Client) logBody(msg, reqID string, body []byte) {
	if !c.cfg.Verbose {
		return
	}
	c.logger.Debug(msg, "request_id", reqID, "body", truncateBody(body, c.cfg.MaxBodyLogSize))
}

// truncateBody cuts body to at most limit bytes without splitting a UTF-8
// sequence. A limit <= 0 keeps the whole body.
func truncateBody(body []byte, limit int) string {
	if limit <= 0 || len(body) <= limit {
		return string(body)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "...(truncated)"
}

// graphQLBody builds a GraphQL request document. Variables are omitted when
// vars is empty.
func graphQLBody(operation, query string, vars map[string]any) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "operationName", operation)
	if err != nil {
		return nil, err
	}
	body, err = sjson.SetBytes(body, "query", query)
	if err != nil {
		return nil, err
	}
	if len(vars) > 0 {
		body, err = sjson.SetBytes(body, "variables", vars)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

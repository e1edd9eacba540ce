// Package filetrans implements the submit-and-poll ASR vendor backend: a
// transcription task is submitted once by media URL, then its result endpoint
// is polled until the vendor reports completion or the wait budget expires.
package filetrans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vidscribe/internal/asr"
)

// Vendor business status codes. Submission and result queries share the same
// envelope; anything outside this set is a hard failure.
const (
	statusSuccess  = 21050000
	statusRunning  = 21050001
	statusQueueing = 21050002

	statusAuthFailed    = 41050001
	statusQuotaExceeded = 41050002
)

// Client wraps the vendor's SubmitTask/GetTaskResult HTTP API.
type Client struct {
	appKey     string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the filetrans client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a filetrans API client.
func NewClient(appKey, apiKey, baseURL string, opts ...Option) *Client {
	client := &Client{
		appKey:     strings.TrimSpace(appKey),
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type taskEnvelope struct {
	StatusCode int    `json:"StatusCode"`
	StatusText string `json:"StatusText"`
	TaskID     string `json:"TaskId"`
	Result     *struct {
		Sentences []struct {
			Text      string `json:"Text"`
			BeginTime int64  `json:"BeginTime"`
		} `json:"Sentences"`
		AudioDuration int64 `json:"AudioDuration"`
	} `json:"Result"`
}

// TaskState is the decoded outcome of one result poll.
type TaskState struct {
	Done            bool
	Text            string
	DurationSeconds float64
}

// Submit registers a transcription task for the given media URL and returns
// the vendor task ID. Submission happens exactly once per attempt; the caller
// owns idempotency.
func (c *Client) Submit(ctx context.Context, mediaURL string) (string, error) {
	params := url.Values{}
	params.Set("appkey", c.appKey)
	params.Set("fileLink", mediaURL)
	params.Set("enablePunctuation", "true")
	params.Set("enableInverseTextNormalization", "true")

	envelope, err := c.call(ctx, http.MethodPost, "/v1/tasks", params)
	if err != nil {
		return "", err
	}
	switch envelope.StatusCode {
	case statusSuccess:
		if envelope.TaskID == "" {
			return "", asr.Wrap(asr.ErrUnknown, "filetrans", "submit", "vendor returned no task id", nil)
		}
		return envelope.TaskID, nil
	default:
		return "", c.classify("submit", envelope)
	}
}

// Poll asks the vendor for the task's current state. Repeated polls of a
// running task are side-effect free.
func (c *Client) Poll(ctx context.Context, taskID string) (TaskState, error) {
	params := url.Values{}
	params.Set("appkey", c.appKey)
	params.Set("taskId", taskID)

	envelope, err := c.call(ctx, http.MethodGet, "/v1/tasks/result", params)
	if err != nil {
		return TaskState{}, err
	}
	switch envelope.StatusCode {
	case statusRunning, statusQueueing:
		return TaskState{}, nil
	case statusSuccess:
		state := TaskState{Done: true}
		if envelope.Result != nil {
			var parts []string
			for _, sentence := range envelope.Result.Sentences {
				if text := strings.TrimSpace(sentence.Text); text != "" {
					parts = append(parts, text)
				}
			}
			state.Text = strings.Join(parts, "")
			state.DurationSeconds = float64(envelope.Result.AudioDuration) / 1000
		}
		return state, nil
	default:
		return TaskState{}, c.classify("poll", envelope)
	}
}

func (c *Client) call(ctx context.Context, method, path string, params url.Values) (taskEnvelope, error) {
	var envelope taskEnvelope
	endpoint := c.baseURL + path
	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader([]byte(params.Encode()))
	} else {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return envelope, asr.Wrap(asr.ErrUnknown, "filetrans", "request", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return envelope, asr.Wrap(asr.ErrTimeout, "filetrans", "request", "vendor request deadline exceeded", err)
		}
		return envelope, asr.Wrap(asr.ErrUnknown, "filetrans", "request", "vendor request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return envelope, asr.Wrap(asr.ErrUnknown, "filetrans", "request", "read body", err)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return envelope, asr.Wrap(asr.ErrAuth, "filetrans", "request", "vendor rejected credentials", nil)
	case http.StatusTooManyRequests:
		return envelope, asr.Wrap(asr.ErrQuota, "filetrans", "request", "vendor throttled request", nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return envelope, asr.Wrap(asr.ErrUnknown, "filetrans", "request",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return envelope, asr.Wrap(asr.ErrUnknown, "filetrans", "request", "decode response", err)
	}
	return envelope, nil
}

func (c *Client) classify(operation string, envelope taskEnvelope) error {
	message := strings.TrimSpace(envelope.StatusText)
	if message == "" {
		message = fmt.Sprintf("vendor status %d", envelope.StatusCode)
	}
	switch envelope.StatusCode {
	case statusAuthFailed:
		return asr.Wrap(asr.ErrAuth, "filetrans", operation, message, nil)
	case statusQuotaExceeded:
		return asr.Wrap(asr.ErrQuota, "filetrans", operation, message, nil)
	default:
		return asr.Wrap(asr.ErrUnknown, "filetrans", operation, message, nil)
	}
}

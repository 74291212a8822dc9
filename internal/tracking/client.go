package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shaiso/mlpipe/internal/domain"
)

const (
	defaultHTTPTimeout  = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultPollMax      = 30 * time.Second
)

// SubmitRequest — запрос на выполнение run.
type SubmitRequest struct {
	// Source — источник компонента: URL в components repository
	// или локальный путь к директории компонента.
	Source string `json:"source"`

	// EntryPoint — entry point компонента (для шагов pipeline всегда "main").
	EntryPoint string `json:"entry_point"`

	// Parameters — словарь параметров entry point.
	Parameters map[string]string `json:"parameters,omitempty"`

	// Project — проект, в который логируется run.
	Project string `json:"project"`

	// Group — группа экспериментов.
	Group string `json:"group,omitempty"`

	// JobType — тип job для фильтрации на платформе (имя шага).
	JobType string `json:"job_type,omitempty"`
}

// RunInfo — состояние run на платформе.
type RunInfo struct {
	ID         string           `json:"id"`
	Status     domain.RunStatus `json:"status"`
	Error      string           `json:"error,omitempty"`
	StartedAt  string           `json:"started_at,omitempty"`
	FinishedAt string           `json:"finished_at,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client — HTTP-клиент tracking-платформы.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	pollInterval time.Duration
	pollMax      time.Duration
}

// Option настраивает Client.
type Option func(*Client)

// WithAPIKey задаёт API-ключ (заголовок Authorization: Bearer).
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient заменяет http.Client (для тестов и нестандартных таймаутов).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval задаёт начальный интервал опроса статуса run.
func WithPollInterval(initial, max time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = initial
		c.pollMax = max
	}
}

// NewClient создаёт клиента для платформы по baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		pollInterval: defaultPollInterval,
		pollMax:      defaultPollMax,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitRun отправляет run на выполнение.
//
// Транзиентные ошибки (сеть, 5xx) повторяются с exponential backoff;
// ответы 4xx считаются постоянными и возвращаются сразу.
func (c *Client) SubmitRun(ctx context.Context, req *SubmitRequest) (*RunInfo, error) {
	var info *RunInfo

	op := func() error {
		var err error
		info, err = c.submitOnce(ctx, req)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.IsPermanent() {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.pollInterval
	b.MaxInterval = c.pollMax
	b.MaxElapsedTime = 2 * time.Minute

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmit, err)
	}
	return info, nil
}

func (c *Client) submitOnce(ctx context.Context, req *SubmitRequest) (*RunInfo, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal submit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/runs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var info RunInfo
	if err := decodeData(resp.Body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetRun возвращает состояние run по ID.
func (c *Client) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/runs/"+runID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var info RunInfo
	if err := decodeData(resp.Body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// errRunInProgress — внутренний маркер для backoff: run ещё не завершён.
var errRunInProgress = errors.New("run still in progress")

// WaitRun опрашивает платформу до достижения run терминального статуса.
//
// Интервал опроса растёт экспоненциально от pollInterval до pollMax
// и не ограничен по времени — только контекстом. Транзиентные ошибки
// опроса не прерывают ожидание.
func (c *Client) WaitRun(ctx context.Context, runID string) (*RunInfo, error) {
	var info *RunInfo

	op := func() error {
		got, err := c.GetRun(ctx, runID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return backoff.Permanent(err)
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.IsPermanent() {
				return backoff.Permanent(err)
			}
			return err
		}

		if !got.Status.IsValid() {
			return backoff.Permanent(fmt.Errorf("%w: %q", ErrUnexpectedStatus, got.Status))
		}
		if !got.Status.IsTerminal() {
			return errRunInProgress
		}

		info = got
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.pollInterval
	b.MaxInterval = c.pollMax
	b.MaxElapsedTime = 0 // ждём сколько потребуется, отмена — через ctx

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("wait run %s: %w", runID, err)
	}
	return info, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// decodeData извлекает поле data из envelope-ответа.
func decodeData(r io.Reader, v any) error {
	var wrapper dataResponse
	if err := json.NewDecoder(r).Decode(&wrapper); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(wrapper.Data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// decodeAPIError разбирает тело ошибки платформы в APIError.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		apiErr.Message = "unreadable error body"
		return apiErr
	}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		apiErr.Message = string(body)
		return apiErr
	}

	apiErr.Code = parsed.Error.Code
	apiErr.Message = parsed.Error.Message
	return apiErr
}

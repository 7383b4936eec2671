// Package taskapi implements service.Service against the task REST API.
package taskapi

import (
	"bytes"
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
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"tasker/internal/config"
	"tasker/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// RequestIDHeader carries a per-request id for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	// maxBodySize bounds how much of a response is read.
	maxBodySize = 4 << 20
)

// Client implements service.Service over HTTP. It keeps no state between
// calls; the credential is read from the token source on every request.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a client for the API configured in cfg.
func New(cfg *config.Config, tokens oauth2.TokenSource, logger zerolog.Logger) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.APIURL, &http.Client{}, tokens)
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Timeout
	c.logger = logger
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, tokens oauth2.TokenSource) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url: %s (want http or https)", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		timeout: APITimeout,
		logger:  zerolog.Nop(),
	}, nil
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, username, password string) error {
	username, password, err := service.NormalizeCredentials(username, password)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/register",
		body:    credentialsBody{username, password},
		failMsg: "registration failed",
	})
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	username, password, err := service.NormalizeCredentials(username, password)
	if err != nil {
		return "", err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err = c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     credentialsBody{username, password},
		failMsg:  "invalid credentials",
		decodeTo: &resp,
	})
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", service.Errorf(service.KindMalformedResponse, "login response has no access_token")
	}
	return resp.AccessToken, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, q service.Query) ([]service.Task, error) {
	if q.Page < 1 || q.PerPage < 1 {
		return nil, service.Errorf(service.KindValidation, "invalid page query: page=%d per_page=%d", q.Page, q.PerPage)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	switch q.Filter {
	case service.FilterAll, "":
	case service.FilterCompleted, service.FilterOpen:
		params.Set("completed", string(q.Filter))
	default:
		return nil, service.Errorf(service.KindValidation, "invalid filter: %s", q.Filter)
	}

	var page listResponse
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/tasks",
		query:    params,
		auth:     true,
		failMsg:  "failed to load tasks",
		decodeTo: &page,
	})
	if err != nil {
		return nil, err
	}
	return page.toTasks()
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     taskPath(id),
		auth:     true,
		failMsg:  "failed to load task",
		decodeTo: &raw,
	})
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(raw)
}

type taskBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	title, err := service.NormalizeTitle(title)
	if err != nil {
		return service.Task{}, err
	}

	var raw json.RawMessage
	err = c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/tasks",
		body:     taskBody{title, strings.TrimSpace(description)},
		auth:     true,
		failMsg:  "failed to create task",
		decodeTo: &raw,
	})
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(raw)
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int64, title, description string) (service.Task, error) {
	title, err := service.NormalizeTitle(title)
	if err != nil {
		return service.Task{}, err
	}
	return c.put(ctx, id, taskBody{title, strings.TrimSpace(description)}, "update failed")
}

// SetCompleted implements service.Service.
func (c *Client) SetCompleted(ctx context.Context, id int64, completed bool) (service.Task, error) {
	body := struct {
		Completed bool `json:"completed"`
	}{completed}
	return c.put(ctx, id, body, "update failed")
}

func (c *Client) put(ctx context.Context, id int64, body any, failMsg string) (service.Task, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     taskPath(id),
		body:     body,
		auth:     true,
		failMsg:  failMsg,
		decodeTo: &raw,
	})
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(raw)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method:  http.MethodDelete,
		path:    taskPath(id),
		auth:    true,
		failMsg: "delete failed",
	})
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool

	// failMsg is reported for a non-2xx response that carries no message.
	failMsg string

	// decodeTo receives the JSON body of a 2xx response; nil skips decoding.
	decodeTo any
}

// do performs one request. Every error it returns is a *service.Error.
func (c *Client) do(ctx context.Context, r request) error {
	var tok *oauth2.Token
	if r.auth {
		if c.tokens == nil {
			return service.Errorf(service.KindUnauthorized, "not logged in")
		}
		var err error
		tok, err = c.tokens.Token()
		if err != nil {
			return &service.Error{Kind: service.KindUnauthorized, Message: "not logged in", Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return &service.Error{Kind: service.KindValidation, Message: "cannot encode request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return &service.Error{Kind: service.KindValidation, Message: "cannot build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if tok != nil {
		tok.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", r.method).
			Str("path", r.path).
			Msg("api request failed")
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapStatusError(err, r.auth, r.failMsg)
	}

	if r.decodeTo == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return wrapTransportError(err)
	}
	if err := json.Unmarshal(data, r.decodeTo); err != nil {
		return &service.Error{
			Kind:    service.KindMalformedResponse,
			Message: "response is not valid JSON",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return nil
}

// wrapTransportError maps a failure to get a response to KindNetwork.
func wrapTransportError(err error) error {
	msg := "network error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	}
	return &service.Error{Kind: service.KindNetwork, Message: msg, Err: err}
}

// wrapStatusError maps a non-2xx response. On unauthenticated calls a 401
// only means bad input, so it is reported as a rejection.
func wrapStatusError(err error, authenticated bool, failMsg string) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return wrapTransportError(err)
	}

	msg := serverMessage(gerr)
	e := &service.Error{Status: gerr.Code, Message: msg, Err: err}
	switch {
	case authenticated && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusUnprocessableEntity):
		e.Kind = service.KindUnauthorized
		if e.Message == "" {
			e.Message = "session expired or invalid"
		}
	case gerr.Code == http.StatusNotFound:
		e.Kind = service.KindNotFound
		if e.Message == "" {
			e.Message = "not found"
		}
	default:
		e.Kind = service.KindRejected
		if e.Message == "" {
			e.Message = failMsg
		}
	}
	return e
}

// serverMessage extracts {"msg": "..."} from an error body, falling back to
// a Google-style {"error": {"message": "..."}} body.
func serverMessage(gerr *googleapi.Error) string {
	var body struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal([]byte(gerr.Body), &body); err == nil && body.Msg != "" {
		return body.Msg
	}
	return gerr.Message
}

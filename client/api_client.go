package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RezaEskandarii/lrrctl/custom_errors"
	"github.com/RezaEskandarii/lrrctl/internal/notify"
	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 32 << 20

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SuccessFunc is a success continuation. Returning an error (or panicking) routes the
// call to its failure path.
type SuccessFunc func(result types.RequestResult) error

// Request describes one API request. Body and ContentType are optional.
type Request struct {
	Endpoint    string
	Method      string
	Body        []byte
	ContentType string
}

// FormRequest builds a form-encoded request.
func FormRequest(endpoint, method string, values url.Values) Request {
	return Request{
		Endpoint:    endpoint,
		Method:      method,
		Body:        []byte(values.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	}
}

// APIClient issues requests against the archive server and turns every outcome into
// a toast. Callers never see an error from Call or Send, only whether the success
// path ran to completion.
type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient Doer
	notifier   notify.Notifier
	logger     *zap.Logger
}

type ClientOption func(*APIClient)

func WithHTTPClient(doer Doer) ClientOption {
	return func(c *APIClient) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithAPIKey sends the key as a bearer token, base64 encoded as the server expects.
// It is never sent to hosts other than the server.
func WithAPIKey(key string) ClientOption {
	return func(c *APIClient) {
		c.apiKey = key
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *APIClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewAPIClient(baseURL string, notifier notify.Notifier, opts ...ClientOption) (*APIClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}
	if notifier == nil {
		notifier = notify.Nop
	}

	c := &APIClient{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		notifier:   notifier,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Notifier returns the sink every toast of this client goes to.
func (c *APIClient) Notifier() notify.Notifier {
	return c.notifier
}

func (c *APIClient) Logger() *zap.Logger {
	return c.logger
}

// Call sends a bodiless request. See Send.
func (c *APIClient) Call(ctx context.Context, endpoint, method, successMessage, errorHeading string, onSuccess SuccessFunc) bool {
	return c.Send(ctx, Request{Endpoint: endpoint, Method: method}, successMessage, errorHeading, onSuccess)
}

// Send issues req and dispatches the decoded envelope. On success a non-empty
// successMessage is shown as a short-lived toast, then onSuccess runs. Any failure,
// including one raised by onSuccess, ends in exactly one error toast headed by
// errorHeading. The result reports whether the success path completed.
func (c *APIClient) Send(ctx context.Context, req Request, successMessage, errorHeading string, onSuccess SuccessFunc) bool {
	result, err := c.Fetch(ctx, req)
	if err != nil {
		c.fail(ctx, errorHeading, err)
		return false
	}

	if !result.Succeeded() {
		c.fail(ctx, errorHeading, &custom_errors.ApplicationError{Message: result.ErrorMessage()})
		return false
	}

	if successMessage != "" {
		c.notify(ctx, types.SuccessToast(successMessage))
	}

	if onSuccess != nil {
		if err := runContinuation(onSuccess, result); err != nil {
			c.fail(ctx, errorHeading, err)
			return false
		}
	}
	return true
}

// Fetch issues req and decodes the body without interpreting the success flag.
// Transport failures, non-2xx statuses and non-JSON bodies all yield
// custom_errors.ErrInvalidResponse; the details are logged.
func (c *APIClient) Fetch(ctx context.Context, req Request) (types.RequestResult, error) {
	target := c.resolve(req.Endpoint)
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	log := c.logger.With(zap.String("method", method), zap.String("url", target))

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		log.Warn("failed to build request", zap.Error(err))
		return types.RequestResult{}, custom_errors.ErrInvalidResponse
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" && strings.HasPrefix(target, c.baseURL+"/") {
		httpReq.Header.Set("Authorization", "Bearer "+base64.StdEncoding.EncodeToString([]byte(c.apiKey)))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return types.RequestResult{}, custom_errors.ErrInvalidResponse
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("unexpected status code", zap.Int("status", resp.StatusCode))
		return types.RequestResult{}, custom_errors.ErrInvalidResponse
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warn("failed to read response body", zap.Error(err))
		return types.RequestResult{}, custom_errors.ErrInvalidResponse
	}

	result, err := types.DecodeRequestResult(raw)
	if err != nil {
		log.Warn("failed to decode response body", zap.Error(err))
		return types.RequestResult{}, custom_errors.ErrInvalidResponse
	}

	log.Debug("request completed", zap.Int("status", resp.StatusCode))
	return result, nil
}

func (c *APIClient) resolve(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.IsAbs() {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *APIClient) fail(ctx context.Context, heading string, err error) {
	c.logger.Debug("call failed", zap.String("heading", heading), zap.Error(err))
	c.notify(ctx, types.ErrorToast(heading, err.Error()))
}

// notify detaches from the caller's cancellation so a toast about an aborted call
// still reaches remote sinks.
func (c *APIClient) notify(ctx context.Context, msg types.ToastMessage) {
	c.notifier.Notify(context.WithoutCancel(ctx), msg)
}

func runContinuation(fn SuccessFunc, result types.RequestResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = custom_errors.FromPanic(r)
		}
	}()
	if cerr := fn(result); cerr != nil {
		return &custom_errors.ContinuationError{Err: cerr}
	}
	return nil
}

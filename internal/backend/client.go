package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"resty.dev/v3"
)

const DefaultBaseURL = "http://localhost:5000/api/v1"

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// Client is the facade over the blood-donation REST API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.http.Close()
}

// errorBody is the failure shape the backend answers non-2xx responses with.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
}

// check turns a transport failure or a non-2xx response into an error.
func check(res *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if res.IsSuccess() {
		return nil
	}

	apiErr := &APIError{StatusCode: res.StatusCode()}
	if body, ok := res.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}

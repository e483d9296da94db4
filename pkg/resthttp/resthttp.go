package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// HeaderKeyRequestID request id header key
	headerKeyRequestID = "X-Request-Id"
)

// DefaultTimeout timeout of the shared client
const DefaultTimeout = 5 * time.Second

var (
	clientOnce sync.Once
	client     *resty.Client
)

// Client shared resty client, json in and out
func Client() *resty.Client {
	clientOnce.Do(func() {
		client = resty.New().
			SetHeader("Accept", "application/json").
			SetTimeout(DefaultTimeout).
			SetRetryCount(1)
	})

	return client
}

// Request new resty request
func Request(ctx context.Context) *resty.Request {
	return Client().R().SetContext(ctx)
}

// WithRequestID resty request with request id
func WithRequestID(ctx context.Context, requestID string) *resty.Request {
	return Request(ctx).SetHeader(headerKeyRequestID, requestID)
}

// StatusError non 2xx response
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

// Execute do network request and decode the json body into resp
func Execute(request *resty.Request, method, url string, body interface{}, resp interface{}) error {
	if body != nil {
		request = request.SetBody(body)
	}

	r, err := request.Execute(strings.ToUpper(method), url)
	if err != nil {
		return err
	}

	return ParseResponse(r, resp)
}

// ParseResponse failed responses turn into *StatusError
func ParseResponse(r *resty.Response, obj interface{}) error {
	if !r.IsSuccess() {
		return &StatusError{Status: r.StatusCode(), Body: strings.TrimSpace(string(r.Body()))}
	}

	if obj == nil {
		return nil
	}

	return json.Unmarshal(r.Body(), obj)
}

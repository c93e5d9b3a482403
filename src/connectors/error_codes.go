package connectors

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from an upstream provider.
type APIError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d (%s): %s", e.Provider, e.Endpoint, e.StatusCode, StatusText(e.StatusCode), e.Body)
}

// StatusText names the status codes providers use to signal plan and quota problems.
func StatusText(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "invalid or missing api key"
	case http.StatusPaymentRequired:
		return "endpoint not covered by plan"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not found"
	case http.StatusTooManyRequests:
		return "rate limited"
	default:
		return http.StatusText(code)
	}
}

func newAPIError(provider, endpoint string, resp *resty.Response) *APIError {
	body := string(resp.Body())
	if len(body) > 512 {
		body = body[:512]
	}
	return &APIError{
		Provider:   provider,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode(),
		Body:       body,
	}
}

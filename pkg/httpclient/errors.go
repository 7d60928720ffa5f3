package httpclient

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/qbazz/storefront/pkg/errors"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 1 << 20

// StatusError is returned for upstream responses outside the 2xx range.
// It unwraps to apperrors.ErrUpstream.
type StatusError struct {
	Service    string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d %s", e.Service, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s returned status %d %s: %s", e.Service, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *StatusError) Unwrap() error {
	return apperrors.ErrUpstream
}

// ParseResponseError reads the body of a non-2xx response into a StatusError.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	statusErr := &StatusError{
		Service:    serviceName,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%w (failed to read body: %v)", statusErr, err)
	}
	statusErr.Body = string(bodyBytes)
	return statusErr
}

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"

	"github.com/incluia/assessment-adapter/internal/domain"
)

// retryLaterHint is appended to overload errors shown to teachers.
const retryLaterHint = "the model seems overloaded or the quota was exceeded, try again later"

// StatusError is a non-success HTTP status from a model endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsTransient reports whether err signals overload, exhausted quota or an
// open circuit, as opposed to a request the model will never accept.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	if domain.IsType(err, domain.ErrorTypeModelUnavailable) {
		return true
	}

	if code := statusCode(err); code != 0 {
		return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "UNAVAILABLE") ||
		overloadStatusPattern.MatchString(msg)
}

// overloadStatusPattern finds 429 or 503 only where the text presents it as a
// status, e.g. "HTTP 503", "status: 429" or "Error 429".
var overloadStatusPattern = regexp.MustCompile(`\b(?:HTTP|STATUS|CODE|ERROR)(?:[ \t]*[:=]?[ \t]*|/[0-9.]+[ \t]+)(?:429|503)\b`)

// statusCode digs an HTTP status out of the error types of every client.
func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// classify turns a client failure into a DomainError. Context errors and
// errors that are already typed pass through unchanged.
func classify(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	if IsTransient(err) {
		return domain.ModelUnavailableError(message+": "+retryLaterHint, err)
	}
	return domain.APIError(message, err)
}

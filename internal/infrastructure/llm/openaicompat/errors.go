package openaicompat

import (
	"fmt"
	"net/http"

	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/resilience"
)

type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("chat completions status: %s", e.Status)
	}
	return fmt.Sprintf("chat completions status: %s: %s", e.Status, e.Body)
}

func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// Throttling and every 5xx are temporary.
var classifyError = resilience.TransportClassifier(func(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
})

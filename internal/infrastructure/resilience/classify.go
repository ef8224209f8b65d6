package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

// StatusError is implemented by transport errors that carry an HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

// TemporaryHTTPStatus reports whether a response status is worth trying again
// later: timeouts, throttling and server-side failures.
func TemporaryHTTPStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ClassifyTransportError sorts an outbound call failure. Cancellation is
// neither temporary nor a breaker failure. Status errors are decided by
// isTemporaryStatus (TemporaryHTTPStatus when nil) and only temporary ones
// count against the breaker. An open circuit, a network error or any of the
// temporary sentinels is temporary.
func ClassifyTransportError(err error, isTemporaryStatus func(int) bool, temporary ...error) ErrorClassification {
	if err == nil {
		return ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{}
	}
	if IsCircuitOpen(err) {
		return ErrorClassification{Temporary: true, RecordFailure: true}
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		if isTemporaryStatus == nil {
			isTemporaryStatus = TemporaryHTTPStatus
		}
		if isTemporaryStatus(statusErr.HTTPStatus()) {
			return ErrorClassification{Temporary: true, RecordFailure: true}
		}
		return ErrorClassification{}
	}

	for _, target := range temporary {
		if errors.Is(err, target) {
			return ErrorClassification{Temporary: true, RecordFailure: true}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassification{Temporary: true, RecordFailure: true}
	}
	return ErrorClassification{RecordFailure: true}
}

// TransportClassifier binds ClassifyTransportError into an ErrorClassifier.
func TransportClassifier(isTemporaryStatus func(int) bool, temporary ...error) ErrorClassifier {
	return func(err error) ErrorClassification {
		return ClassifyTransportError(err, isTemporaryStatus, temporary...)
	}
}

// WrapTemporary marks err as domain.ErrTemporary when classify says so.
// Errors that already carry the kind are returned unchanged.
func WrapTemporary(operation string, err error, classify ErrorClassifier) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classify == nil {
		classify = TransportClassifier(nil)
	}
	if classify(err).Temporary || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

package ingest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ritzau/casegraph/pkg/logging"
)

// ErrUnavailable is returned without calling the service while its breaker is open
var ErrUnavailable = errors.New("service temporarily unavailable")

// ServiceError is a non-2xx answer from the OCR or report service
type ServiceError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service returned %d: %s", e.Service, e.StatusCode, e.Message)
}

// BreakerConfig controls when a service is considered down
type BreakerConfig struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // window after which closed-state counts reset
	Timeout          time.Duration // time spent open before probing again
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests needed before the ratio counts
}

// DefaultBreakerConfig suits a local service that is either running or not
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("circuit breaker state changed", "service", name, "from", from.String(), "to", to.String())
		},
		// a rejected upload says nothing about the service's health
		IsSuccessful: func(err error) bool {
			var se *ServiceError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})
}

// execute runs call through the breaker, translating breaker rejections
func execute[T any](cb *gobreaker.CircuitBreaker, call func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		return call()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrUnavailable, cb.Name())
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

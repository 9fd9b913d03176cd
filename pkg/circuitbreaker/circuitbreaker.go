package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// StateChangeFunc is notified whenever the breaker moves between closed, open and half-open.
type StateChangeFunc func(name string, from, to gobreaker.State)

type Options struct {
	// MaxFailures consecutive failures trip the breaker. Defaults to 5.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a single probe
	// request is let through. Defaults to 30s.
	OpenTimeout time.Duration
	OnStateChange StateChangeFunc
	// IsSuccessful decides which errors count against the breaker. Errors it
	// accepts are still returned to the caller.
	IsSuccessful func(err error) bool
}

func CircuitBreaker(name string, opts Options) *gobreaker.CircuitBreaker {
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := opts.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      openTimeout,
		IsSuccessful: opts.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	if opts.OnStateChange != nil {
		onChange := opts.OnStateChange
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			onChange(name, from, to)
		}
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically in a background goroutine. A check must
// fail consecutively failureThreshold times before its probe reports
// unhealthy, so a single slow dependency poll does not flap the service out
// of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports the health of one component: nil when healthy.
type CheckFunc func(ctx context.Context) error

const failureThreshold = 3

type kind int

const (
	liveness kind = iota
	readiness
)

type check struct {
	name    string
	kind    kind
	timeout time.Duration
	fn      CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// consecutiveFails is only touched by the single poll goroutine.
	consecutiveFails int
}

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.consecutiveFails++
		if c.consecutiveFails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.consecutiveFails = 0
	c.healthy.Store(true)
}

// Service runs health checks and serves probe endpoints.
type Service struct {
	ready atomic.Bool

	mu     sync.Mutex
	checks []*check
	cancel context.CancelFunc
}

// New creates a Service in the not-ready state; call SetReady(true) once
// initialization finishes.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check consulted by the liveness probe.
// Register checks before calling Start.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(&check{name: name, kind: liveness, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check consulted by the readiness probe.
// Register checks before calling Start.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(&check{name: name, kind: readiness, timeout: timeout, fn: fn})
}

func (s *Service) add(c *check) {
	// Checks start healthy; they degrade only after consecutive failures.
	c.healthy.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, c)
}

// Start launches the background poll loop running every interval.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := s.checks
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range checks {
					c.run(ctx)
				}
			}
		}
	}()
}

// Stop cancels the poll loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. The readiness probe reports
// ready only when the gate is open and every readiness check is healthy.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// LiveEndpoint is the HTTP handler for the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.snapshot(liveness), true)
}

// ReadyEndpoint is the HTTP handler for the readiness probe.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.snapshot(readiness), s.ready.Load())
}

type probeResult struct {
	name    string
	healthy bool
	err     error
}

func (s *Service) snapshot(k kind) []probeResult {
	s.mu.Lock()
	checks := s.checks
	s.mu.Unlock()

	var results []probeResult
	for _, c := range checks {
		if c.kind != k {
			continue
		}
		var errVal error
		if p := c.lastErr.Load(); p != nil {
			errVal = *p
		}
		results = append(results, probeResult{name: c.name, healthy: c.healthy.Load(), err: errVal})
	}
	return results
}

func (s *Service) respond(w http.ResponseWriter, results []probeResult, gate bool) {
	healthy := gate
	details := make(map[string]string, len(results))
	for _, r := range results {
		status := "ok"
		if !r.healthy {
			healthy = false
			status = "failing"
			if r.err != nil {
				status = r.err.Error()
			}
		}
		details[r.name] = status
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": overall,
		"checks": details,
	})
}

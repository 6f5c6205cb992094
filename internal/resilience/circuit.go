package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var breakerNopLogger = zerolog.Nop()

// ErrOpenCircuit is returned when the circuit breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state.
type State int

const (
	// Closed accepts all requests and tracks failures.
	Closed State = iota
	// Open rejects requests until the cool-off period expires.
	Open
	// HalfOpen lets trial requests through to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Policy tunes when a breaker trips and how long it rejects calls once open.
type Policy struct {
	// MinRequests is the sample size before the failure ratio is evaluated.
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
}

func (p Policy) normalized() Policy {
	if p.MinRequests <= 0 {
		p.MinRequests = 1
	}
	if p.FailureRatio <= 0 {
		p.FailureRatio = 0.5
	}
	if p.FailureRatio > 1 {
		p.FailureRatio = 1
	}
	if p.OpenFor <= 0 {
		p.OpenFor = 30 * time.Second
	}
	return p
}

// Breaker is a failure-ratio circuit breaker for one operation of one upstream.
type Breaker struct {
	mu        sync.Mutex
	state     State
	failures  int
	successes int
	policy    Policy
	openedAt  time.Time
	upstream  string
	operation string
	logger    *zerolog.Logger
}

// NewBreaker constructs a closed breaker governed by p.
func NewBreaker(p Policy) *Breaker {
	return &Breaker{state: Closed, policy: p.normalized()}
}

// Allow reports whether a call may go out. An open breaker lets one call through
// once OpenFor elapsed and moves to half-open.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != Open {
		return true
	}
	if time.Since(b.openedAt) < b.policy.OpenFor {
		return false
	}
	b.changeStateLocked(ctx, HalfOpen)
	return true
}

// Report records the outcome of a call. A half-open breaker closes on success and
// reopens on failure; a closed one opens when the failure ratio over at least
// MinRequests calls reaches FailureRatio.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		next := Open
		if success {
			next = Closed
		}
		b.changeStateLocked(ctx, next)
		return
	}

	if success {
		b.successes++
	} else {
		b.failures++
	}
	total := b.failures + b.successes
	if total < b.policy.MinRequests {
		return
	}
	if float64(b.failures)/float64(total) >= b.policy.FailureRatio {
		b.changeStateLocked(ctx, Open)
		return
	}
	// Halve the window so old successes do not mask a fresh outage.
	if total > b.policy.MinRequests*2 {
		b.successes = int(math.Ceil(float64(b.successes) * 0.5))
		b.failures = int(math.Ceil(float64(b.failures) * 0.5))
	}
}

// Backoff returns an exponential backoff duration for the provided attempt.
// Jitter is expressed as a fraction (e.g. 0.2 == 20%).
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if jitterPct <= 0 {
		return d
	}
	jitter := float64(d) * jitterPct
	delta := (rand.Float64()*2 - 1) * jitter
	return d + time.Duration(delta)
}

// WithTarget names the upstream and operation used for metric labels and logs.
func (b *Breaker) WithTarget(upstream, operation string) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.upstream = strings.TrimSpace(upstream)
	b.operation = strings.TrimSpace(operation)
	b.recordStateLocked()
	return b
}

// WithLogger configures the logger used for transition events.
func (b *Breaker) WithLogger(logger zerolog.Logger) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = &logger
	return b
}

func (b *Breaker) changeStateLocked(ctx context.Context, next State) {
	prev := b.state
	if prev == next {
		b.recordStateLocked()
		return
	}
	b.state = next
	switch next {
	case Open:
		b.openedAt = time.Now()
	case Closed:
		b.openedAt = time.Time{}
	}
	b.failures = 0
	b.successes = 0
	b.recordStateLocked()
	b.recordTransition(ctx, prev, next)
}

func (b *Breaker) recordStateLocked() {
	if BreakerState == nil {
		return
	}
	upstream, operation := b.labels()
	BreakerState.WithLabelValues(upstream, operation).Set(stateGaugeValue(b.state))
}

func (b *Breaker) recordTransition(ctx context.Context, from, to State) {
	upstream, operation := b.labels()
	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(upstream, operation, from.String(), to.String()).Inc()
	}
	if to == Open && BreakerOpenedTotal != nil {
		BreakerOpenedTotal.WithLabelValues(upstream, operation).Inc()
	}
	evt := b.loggerFor(ctx).Info().
		Str("upstream", upstream).
		Str("operation", operation).
		Str("from_state", from.String()).
		Str("to_state", to.String())
	if traceID := traceIDFromContext(ctx); traceID != "" {
		evt = evt.Str("trace_id", traceID)
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) labels() (string, string) {
	upstream, operation := b.upstream, b.operation
	if upstream == "" {
		upstream = "default"
	}
	if operation == "" {
		operation = "all"
	}
	return upstream, operation
}

// loggerFor prefers a logger attached to ctx and falls back to the breaker's own.
func (b *Breaker) loggerFor(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}
	if b.logger == nil {
		return &breakerNopLogger
	}
	return b.logger
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func stateGaugeValue(state State) float64 {
	switch state {
	case Closed:
		return 0
	case Open:
		return 1
	case HalfOpen:
		return 2
	default:
		return -1
	}
}

func traceIDFromContext(ctx context.Context) string {
	span := trace.SpanContextFromContext(ctx)
	if span.IsValid() {
		return span.TraceID().String()
	}
	return ""
}

// Breakers hands out one breaker per operation of an upstream, each tuned by its own
// policy. Operations without a policy use Default.
type Breakers struct {
	Upstream string
	Default  Policy
	Policies map[string]Policy
	Logger   zerolog.Logger

	mu   sync.Mutex
	byOp map[string]*Breaker
}

// For returns the breaker guarding operation, creating it on first use.
func (bs *Breakers) For(operation string) *Breaker {
	operation = strings.TrimSpace(operation)
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if b, ok := bs.byOp[operation]; ok {
		return b
	}
	policy, ok := bs.Policies[operation]
	if !ok {
		policy = bs.Default
	}
	b := NewBreaker(policy).WithTarget(bs.Upstream, operation).WithLogger(bs.Logger)
	if bs.byOp == nil {
		bs.byOp = make(map[string]*Breaker)
	}
	bs.byOp[operation] = b
	return b
}

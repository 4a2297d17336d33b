package gamepad

import (
	"sync"
	"time"

	"github.com/lightsyr/chimera-go/pkg/protocol"
)

// DefaultMinInterval matches typical controller polling rates (120 Hz).
const DefaultMinInterval = time.Second / 120

// Outcome classifies what applying one frame did.
type Outcome uint8

const (
	// Applied means the frame changed controller state and was flushed.
	Applied Outcome = iota
	// NoChange means the frame was accepted but nothing moved: a
	// duplicate value, or an update inside the rate-limit window.
	NoChange
	// Rejected means the frame was malformed and dropped. The session
	// stays usable.
	Rejected
	// Fatal means the device refused the update.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NoChange:
		return "no-change"
	case Rejected:
		return "rejected"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Result is the outcome of applying one frame. Reason is set for Rejected,
// Err for Fatal.
type Result struct {
	Outcome Outcome
	Reason  string
	Err     error
}

// Config tunes a Translator. Zero values select the defaults.
type Config struct {
	// Deadzone is the stick magnitude below which input collapses to 0.
	Deadzone float64
	// MinInterval is the minimum time between applied updates per
	// session. Frames arriving faster are accepted as no-ops.
	MinInterval time.Duration
}

// Translator decodes, validates and normalizes wire frames and drives the
// shared Pad. One instance serves all sessions; its mutex is the exclusive
// access discipline for the pad and the device behind it, covering the whole
// translate-and-flush pass so concurrent sessions cannot interleave a torn
// device report.
type Translator struct {
	mu          sync.Mutex
	pad         *Pad
	deadzone    float64
	minInterval time.Duration
	now         func() time.Time
}

func NewTranslator(pad *Pad, cfg Config) *Translator {
	if cfg.Deadzone <= 0 {
		cfg.Deadzone = DefaultDeadzone
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	return &Translator{
		pad:         pad,
		deadzone:    cfg.Deadzone,
		minInterval: cfg.MinInterval,
		now:         time.Now,
	}
}

// Limiter tracks when a session last got an update applied. Each session
// owns one; it is not safe for concurrent use.
type Limiter struct {
	interval time.Duration
	last     time.Time
}

// NewLimiter returns a limiter enforcing the translator's update rate.
func (t *Translator) NewLimiter() *Limiter {
	return &Limiter{interval: t.minInterval}
}

func (l *Limiter) limited(now time.Time) bool {
	return !l.last.IsZero() && now.Sub(l.last) < l.interval
}

// Apply runs one frame through the pipeline: rate limit, decode, validate,
// normalize, update the pad, flush once if anything changed. Rate-limited
// frames return NoChange before decoding; last-value-wins, nothing queues.
// The limiter only advances when an update is actually flushed.
func (t *Translator) Apply(lim *Limiter, data []byte) Result {
	now := t.now()
	if lim != nil && lim.limited(now) {
		return Result{Outcome: NoChange}
	}

	var f protocol.Frame
	if err := f.UnmarshalBinary(data); err != nil {
		return Result{Outcome: Rejected, Reason: err.Error()}
	}
	if err := f.Validate(); err != nil {
		return Result{Outcome: Rejected, Reason: err.Error()}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	changed, err := t.applyFrame(f)
	if err != nil {
		return Result{Outcome: Fatal, Err: err}
	}
	if !changed {
		return Result{Outcome: NoChange}
	}
	if err := t.pad.Flush(); err != nil {
		return Result{Outcome: Fatal, Err: err}
	}
	if lim != nil {
		lim.last = now
	}
	return Result{Outcome: Applied}
}

func (t *Translator) applyFrame(f protocol.Frame) (bool, error) {
	switch f.Kind {
	case protocol.KindAxis:
		a := protocol.Axis(f.Index)
		if a.Trigger() {
			return t.pad.SetAxis(a, normalizeTrigger(f.Value))
		}
		return t.pad.SetAxis(a, normalizeStick(f.Value, t.deadzone))
	case protocol.KindButton:
		return t.pad.SetButton(protocol.Button(f.Index), f.Value == 1)
	}
	return false, nil
}

// Reset neutralizes the pad under the translator's lock.
func (t *Translator) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pad.Reset()
}

// Status snapshots the pad under the translator's lock.
func (t *Translator) Status() protocol.PadStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pad.Status()
}

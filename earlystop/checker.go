// Package earlystop decides when a training run should stop because a
// monitored metric stopped improving. It is pure bookkeeping: the training
// loop's callback layer feeds it one metric value per check interval and
// acts on the returned decision.
package earlystop

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Mode selects the improvement direction of the monitored metric.
type Mode string

const (
	// Min treats lower values as better (e.g. validation loss).
	Min Mode = "min"
	// Max treats higher values as better (e.g. accuracy).
	Max Mode = "max"
)

// ThresholdMode selects how MinDelta is applied.
type ThresholdMode string

const (
	// Abs requires an improvement of at least MinDelta.
	Abs ThresholdMode = "abs"
	// Rel requires an improvement of at least MinDelta times the best value.
	Rel ThresholdMode = "rel"
)

// ValidModes is the set of recognized mode names.
var ValidModes = map[Mode]bool{Min: true, Max: true}

// ValidThresholdModes is the set of recognized threshold mode names.
var ValidThresholdModes = map[ThresholdMode]bool{Abs: true, Rel: true}

// Config holds the stop criteria for a Checker.
type Config struct {
	Mode          Mode
	Patience      int     // checks without improvement before stopping
	MinDelta      float64 // minimum change that counts as an improvement
	ThresholdMode ThresholdMode
	CheckFinite   bool // stop when the value goes NaN or infinite
	// StoppingThreshold stops as soon as the value is at least this good
	// (at most, under Min). Nil disables the check.
	StoppingThreshold *float64
	// DivergenceThreshold stops as soon as the value is at least this bad
	// (at least, under Min). Nil disables the check.
	DivergenceThreshold *float64
}

// Checker tracks the best observed value of a monitored metric and a
// patience counter. Not safe for concurrent use.
type Checker struct {
	cfg       Config
	bestValue float64
	waitCount int
}

// New validates the config and returns a Checker primed so that the first
// check always counts as an improvement.
func New(cfg Config) (*Checker, error) {
	if cfg.Mode == "" {
		cfg.Mode = Min
	}
	if cfg.ThresholdMode == "" {
		cfg.ThresholdMode = Abs
	}
	if !ValidModes[cfg.Mode] {
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if !ValidThresholdModes[cfg.ThresholdMode] {
		return nil, fmt.Errorf("unknown threshold mode %q", cfg.ThresholdMode)
	}
	if cfg.Patience < 0 {
		return nil, fmt.Errorf("patience must be non-negative, got %d", cfg.Patience)
	}
	if cfg.MinDelta < 0 {
		return nil, fmt.Errorf("min delta must be non-negative, got %f", cfg.MinDelta)
	}
	c := &Checker{cfg: cfg}
	c.Reset()
	return c, nil
}

// Check records one observation of the monitored value and reports whether
// training should stop now.
func (c *Checker) Check(value float64) bool {
	if c.cfg.CheckFinite && (math.IsNaN(value) || math.IsInf(value, 0)) {
		logrus.Warnf("Monitored value is not finite (%f), stopping", value)
		return true
	}
	if t := c.cfg.StoppingThreshold; t != nil && c.beats(value, *t) {
		logrus.Infof("Monitored value %f passed stopping threshold %f, stopping", value, *t)
		return true
	}
	if t := c.cfg.DivergenceThreshold; t != nil && c.beats(*t, value) {
		logrus.Warnf("Monitored value %f diverged past %f, stopping", value, *t)
		return true
	}
	if c.improved(value) {
		c.bestValue = value
		c.waitCount = 0
		return false
	}
	c.waitCount++
	return c.waitCount >= c.cfg.Patience
}

// beats reports whether a is at least as good as b in the configured mode.
func (c *Checker) beats(a, b float64) bool {
	if c.cfg.Mode == Min {
		return a <= b
	}
	return a >= b
}

func (c *Checker) improved(value float64) bool {
	if math.IsInf(c.bestValue, 0) {
		// First observation after New or Reset.
		return true
	}
	delta := c.cfg.MinDelta
	if c.cfg.ThresholdMode == Rel {
		delta = c.cfg.MinDelta * math.Abs(c.bestValue)
	}
	if c.cfg.Mode == Min {
		return value < c.bestValue-delta
	}
	return value > c.bestValue+delta
}

// Reset clears the best value and patience counter.
func (c *Checker) Reset() {
	if c.cfg.Mode == Min {
		c.bestValue = math.Inf(1)
	} else {
		c.bestValue = math.Inf(-1)
	}
	c.waitCount = 0
}

// BestValue returns the best observation so far.
func (c *Checker) BestValue() float64 { return c.bestValue }

// Snapshot captures resumable state as a flat primitive map, matching the
// checkpoint contract of the mux iterators.
func (c *Checker) Snapshot() map[string]any {
	return map[string]any{
		"best_value": c.bestValue,
		"wait_count": c.waitCount,
	}
}

// Restore is best-effort: a malformed snapshot is logged and skipped.
func (c *Checker) Restore(snapshot map[string]any) {
	if len(snapshot) == 0 {
		return
	}
	best, okBest := snapshot["best_value"].(float64)
	wait, okWait := toInt(snapshot["wait_count"])
	if !okBest || !okWait || wait < 0 {
		logrus.Warnf("Malformed early-stop snapshot %v, skipping restore", snapshot)
		return
	}
	c.bestValue = best
	c.waitCount = wait
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

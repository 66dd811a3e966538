package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "controller.buffer_size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"json", "text"}
}

// ValidPersistFormats returns the list of valid snapshot formats
func ValidPersistFormats() []string {
	return []string{"json", "yaml", "msgpack"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if c.Graph.Path == "" {
		add("graph.path", c.Graph.Path, "must not be empty")
	}
	if c.Graph.Debounce < 0 {
		add("graph.debounce", c.Graph.Debounce, "must be non-negative")
	}

	cc := c.Controller
	if cc.BufferSize < 1 {
		add("controller.buffer_size", cc.BufferSize, "must be at least 1")
	}
	if cc.MaxStateQueries < 1 {
		add("controller.max_state_queries", cc.MaxStateQueries, "must be at least 1")
	}
	if cc.QueryWait < 0 {
		add("controller.query_wait", cc.QueryWait, "must be non-negative")
	}
	if cc.Speed < 0 {
		add("controller.speed", cc.Speed, "must be non-negative")
	}
	if cc.FrameRate <= 0 {
		add("controller.frame_rate", cc.FrameRate, "must be positive")
	}
	if cc.IdleHoldFrames < 1 {
		add("controller.idle_hold_frames", cc.IdleHoldFrames, "must be at least 1")
	}
	if cc.SegmentTimeout < 0 {
		add("controller.segment_timeout", cc.SegmentTimeout, "must be non-negative")
	}
	if cc.StepLength < 0 {
		add("controller.step_length", cc.StepLength, "must be non-negative")
	}

	if c.Runtime.TickRate <= 0 {
		add("runtime.tick_rate", c.Runtime.TickRate, "must be positive")
	}
	if c.Runtime.MaxTriggersPerTick < 1 {
		add("runtime.max_triggers_per_tick", c.Runtime.MaxTriggersPerTick, "must be at least 1")
	}

	if c.Simulate.Duration < 0 {
		add("simulate.duration", c.Simulate.Duration, "must be non-negative")
	}
	if len(c.Simulate.Actions) > 0 && c.Simulate.Interval <= 0 {
		add("simulate.interval", c.Simulate.Interval, "must be positive when actions are set")
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		add("logging.level", c.Logging.Level, fmt.Sprintf("must be one of %v", ValidLogLevels()))
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		add("logging.format", c.Logging.Format, fmt.Sprintf("must be one of %v", ValidLogFormats()))
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		add("metrics.addr", c.Metrics.Addr, "must not be empty when metrics are enabled")
	}

	if c.Persist.Enabled && c.Persist.Dir == "" {
		add("persist.dir", c.Persist.Dir, "must not be empty when persistence is enabled")
	}
	if !slices.Contains(ValidPersistFormats(), strings.ToLower(c.Persist.Format)) {
		add("persist.format", c.Persist.Format, fmt.Sprintf("must be one of %v", ValidPersistFormats()))
	}

	return errs
}

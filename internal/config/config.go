// Package config loads the motionchart application configuration through
// viper: defaults, an optional YAML file and MOTIONCHART_* environment
// variables, in increasing precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/comalice/motionchart/realtime"
)

// EnvPrefix prefixes environment overrides, e.g.
// MOTIONCHART_CONTROLLER_BUFFER_SIZE for controller.buffer_size.
const EnvPrefix = "MOTIONCHART"

// Config represents the complete motionchart configuration
type Config struct {
	Graph      GraphConfig      `mapstructure:"graph"`
	Controller ControllerConfig `mapstructure:"controller"`
	Runtime    RuntimeConfig    `mapstructure:"runtime"`
	Simulate   SimulateConfig   `mapstructure:"simulate"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Persist    PersistConfig    `mapstructure:"persist"`
}

// GraphConfig locates the motion graph file
type GraphConfig struct {
	Path string `mapstructure:"path"`
	// Watch reloads the graph when the file changes
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ControllerConfig mirrors realtime.Config
type ControllerConfig struct {
	BufferSize      int           `mapstructure:"buffer_size"`
	MaxStateQueries int           `mapstructure:"max_state_queries"`
	QueryWait       time.Duration `mapstructure:"query_wait"`
	Speed           float64       `mapstructure:"speed"`
	// FrameRate is frames per second of produced states
	FrameRate       float64       `mapstructure:"frame_rate"`
	IdleHoldFrames  int           `mapstructure:"idle_hold_frames"`
	SegmentTimeout  time.Duration `mapstructure:"segment_timeout"`
	StepLength      float64       `mapstructure:"step_length"`
	KeyStepDistance float64       `mapstructure:"key_step_distance"`
	ArrivalRadius   float64       `mapstructure:"arrival_radius"`
	TurnLeftAction  string        `mapstructure:"turn_left_action"`
	TurnRightAction string        `mapstructure:"turn_right_action"`
}

// RuntimeConfig controls the tick loop
type RuntimeConfig struct {
	TickRate           time.Duration `mapstructure:"tick_rate"`
	MaxTriggersPerTick int           `mapstructure:"max_triggers_per_tick"`
}

// SimulateConfig drives the run command without an external caller
type SimulateConfig struct {
	// Duration of the run; zero runs until interrupted
	Duration time.Duration `mapstructure:"duration"`
	// Actions are requested in turn every Interval
	Actions  []string      `mapstructure:"actions"`
	Interval time.Duration `mapstructure:"interval"`
	// Travel is added to the walk distance every Interval
	Travel float64 `mapstructure:"travel"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Dir, when set, logs to {dir}/motionchart.log instead of stderr
	Dir string `mapstructure:"dir"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// PersistConfig controls snapshot persistence
type PersistConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	// Format is one of "json", "yaml", "msgpack"
	Format string `mapstructure:"format"`
}

// Default returns the default configuration
func Default() *Config {
	rc := realtime.DefaultConfig()
	return &Config{
		Graph: GraphConfig{
			Path:     "configs/locomotion.yaml",
			Watch:    false,
			Debounce: 100 * time.Millisecond,
		},
		Controller: ControllerConfig{
			BufferSize:      rc.BufferSize,
			MaxStateQueries: rc.MaxStateQueries,
			QueryWait:       rc.QueryWait,
			Speed:           rc.Speed,
			FrameRate:       1 / rc.FrameTime,
			IdleHoldFrames:  rc.IdleHoldFrames,
			SegmentTimeout:  rc.SegmentTimeout,
			StepLength:      rc.StepLength,
			KeyStepDistance: rc.KeyStepDistance,
			ArrivalRadius:   rc.ArrivalRadius,
			TurnLeftAction:  rc.TurnLeftAction,
			TurnRightAction: rc.TurnRightAction,
		},
		Runtime: RuntimeConfig{
			TickRate:           16667 * time.Microsecond,
			MaxTriggersPerTick: 1000,
		},
		Simulate: SimulateConfig{
			Duration: 10 * time.Second,
			Actions:  []string{},
			Interval: 2 * time.Second,
			Travel:   1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Persist: PersistConfig{
			Enabled: false,
			Dir:     "snapshots",
			Format:  "json",
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("graph.path", defaults.Graph.Path)
	v.SetDefault("graph.watch", defaults.Graph.Watch)
	v.SetDefault("graph.debounce", defaults.Graph.Debounce)

	v.SetDefault("controller.buffer_size", defaults.Controller.BufferSize)
	v.SetDefault("controller.max_state_queries", defaults.Controller.MaxStateQueries)
	v.SetDefault("controller.query_wait", defaults.Controller.QueryWait)
	v.SetDefault("controller.speed", defaults.Controller.Speed)
	v.SetDefault("controller.frame_rate", defaults.Controller.FrameRate)
	v.SetDefault("controller.idle_hold_frames", defaults.Controller.IdleHoldFrames)
	v.SetDefault("controller.segment_timeout", defaults.Controller.SegmentTimeout)
	v.SetDefault("controller.step_length", defaults.Controller.StepLength)
	v.SetDefault("controller.key_step_distance", defaults.Controller.KeyStepDistance)
	v.SetDefault("controller.arrival_radius", defaults.Controller.ArrivalRadius)
	v.SetDefault("controller.turn_left_action", defaults.Controller.TurnLeftAction)
	v.SetDefault("controller.turn_right_action", defaults.Controller.TurnRightAction)

	v.SetDefault("runtime.tick_rate", defaults.Runtime.TickRate)
	v.SetDefault("runtime.max_triggers_per_tick", defaults.Runtime.MaxTriggersPerTick)

	v.SetDefault("simulate.duration", defaults.Simulate.Duration)
	v.SetDefault("simulate.actions", defaults.Simulate.Actions)
	v.SetDefault("simulate.interval", defaults.Simulate.Interval)
	v.SetDefault("simulate.travel", defaults.Simulate.Travel)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.dir", defaults.Logging.Dir)

	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.addr", defaults.Metrics.Addr)

	v.SetDefault("persist.enabled", defaults.Persist.Enabled)
	v.SetDefault("persist.dir", defaults.Persist.Dir)
	v.SetDefault("persist.format", defaults.Persist.Format)
}

// BindEnv enables MOTIONCHART_* overrides for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ControllerConfig converts to the controller's configuration.
func (c *Config) ControllerConfig() realtime.Config {
	cc := c.Controller
	cfg := realtime.Config{
		BufferSize:      cc.BufferSize,
		MaxStateQueries: cc.MaxStateQueries,
		QueryWait:       cc.QueryWait,
		Speed:           cc.Speed,
		IdleHoldFrames:  cc.IdleHoldFrames,
		SegmentTimeout:  cc.SegmentTimeout,
		StepLength:      cc.StepLength,
		KeyStepDistance: cc.KeyStepDistance,
		ArrivalRadius:   cc.ArrivalRadius,
		TurnLeftAction:  cc.TurnLeftAction,
		TurnRightAction: cc.TurnRightAction,
	}
	if cc.FrameRate > 0 {
		cfg.FrameTime = 1 / cc.FrameRate
	}
	return cfg
}

// RuntimeConfig converts to the tick loop's configuration.
func (c *Config) RuntimeConfig() realtime.RuntimeConfig {
	return realtime.RuntimeConfig{
		TickRate:           c.Runtime.TickRate,
		MaxTriggersPerTick: c.Runtime.MaxTriggersPerTick,
	}
}

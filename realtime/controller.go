package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/align"
	"github.com/comalice/motionchart/internal/metrics"
	"github.com/comalice/motionchart/internal/planner"
)

var (
	ErrClosed             = errors.New("controller closed")
	ErrActionNotPermitted = errors.New("action not permitted in current state")
)

// Phase is the controller's playback phase.
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseTransitioning
)

func (p Phase) String() string {
	if p == PhaseTransitioning {
		return "transitioning"
	}
	return "playing"
}

// Config tunes the controller.
type Config struct {
	BufferSize      int           // pose history length
	MaxStateQueries int           // queue polls before synthesizing idle
	QueryWait       time.Duration // bounded wait per poll
	Speed           float64       // playback speed multiplier; 0 selects the default, use Pause to freeze
	FrameTime       float64       // seconds per frame of produced states
	IdleHoldFrames  int           // length of a synthesized idle state
	SegmentTimeout  time.Duration // bound on a synchronous segment request
	StepLength      float64       // default policy: travel per step
	KeyStepDistance float64       // travel added by a forward key press
	ArrivalRadius   float64       // walk target counts as reached inside this radius
	TurnLeftAction  string
	TurnRightAction string
}

// DefaultConfig returns the configuration used for zero fields. A zero
// field always means "use the default", so a Config literal only names what
// it changes.
func DefaultConfig() Config {
	return Config{
		BufferSize:      20,
		MaxStateQueries: 10,
		QueryWait:       500 * time.Microsecond,
		Speed:           1,
		FrameTime:       motionchart.DefaultFrameTime,
		IdleHoldFrames:  30,
		SegmentTimeout:  50 * time.Millisecond,
		StepLength:      0.5,
		KeyStepDistance: 1,
		ArrivalRadius:   0.5,
		TurnLeftAction:  "turnLeft",
		TurnRightAction: "turnRight",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BufferSize == 0 {
		c.BufferSize = d.BufferSize
	}
	if c.MaxStateQueries == 0 {
		c.MaxStateQueries = d.MaxStateQueries
	}
	if c.QueryWait == 0 {
		c.QueryWait = d.QueryWait
	}
	if c.Speed == 0 {
		c.Speed = d.Speed
	}
	if c.FrameTime == 0 {
		c.FrameTime = d.FrameTime
	}
	if c.IdleHoldFrames == 0 {
		c.IdleHoldFrames = d.IdleHoldFrames
	}
	if c.SegmentTimeout == 0 {
		c.SegmentTimeout = d.SegmentTimeout
	}
	if c.StepLength == 0 {
		c.StepLength = d.StepLength
	}
	if c.KeyStepDistance == 0 {
		c.KeyStepDistance = d.KeyStepDistance
	}
	if c.ArrivalRadius == 0 {
		c.ArrivalRadius = d.ArrivalRadius
	}
	if c.TurnLeftAction == "" {
		c.TurnLeftAction = d.TurnLeftAction
	}
	if c.TurnRightAction == "" {
		c.TurnRightAction = d.TurnRightAction
	}
	return c
}

// Validate rejects negative sizes and rates.
func (c Config) Validate() error {
	switch {
	case c.BufferSize < 1:
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	case c.MaxStateQueries < 1:
		return fmt.Errorf("max state queries must be positive, got %d", c.MaxStateQueries)
	case c.QueryWait < 0:
		return fmt.Errorf("query wait must be non-negative, got %v", c.QueryWait)
	case c.Speed < 0:
		return fmt.Errorf("speed must be non-negative, got %v", c.Speed)
	case c.FrameTime <= 0:
		return fmt.Errorf("frame time must be positive, got %v", c.FrameTime)
	case c.IdleHoldFrames < 1:
		return fmt.Errorf("idle hold frames must be positive, got %d", c.IdleHoldFrames)
	case c.SegmentTimeout < 0:
		return fmt.Errorf("segment timeout must be non-negative, got %v", c.SegmentTimeout)
	}
	return nil
}

// Controller plays a continuous animation over a transition graph while at
// most one background worker plans upcoming segments.
//
// Every exported method holds the controller mutex for its full duration.
// The worker never takes that mutex; it only writes to the state queue.
type Controller struct {
	mu  sync.Mutex
	id  uuid.UUID
	cfg Config

	graph      motionchart.TransitionGraph
	planner    motionchart.Planner
	plannerFor func(motionchart.TransitionGraph) motionchart.Planner
	sink       motionchart.Sink
	policy     motionchart.TransitionPolicy
	publisher  motionchart.Publisher
	logger     *slog.Logger
	metrics    *metrics.Collector

	idle        motionchart.NodeID
	current     motionchart.NodeID
	currentType motionchart.NodeType
	currentPlan uuid.UUID
	state       *motionchart.MotionState
	phase       Phase
	poses       *motionchart.PoseBuffer

	queue    *motionchart.StateQueue
	worker   *planWorker
	explicit NodeQueue

	stopCurrent bool
	travel      float64
	target      r3.Vec
	hasTarget   bool

	tick   uint64
	closed bool
}

// New creates a controller playing the idle node of graph. The idle node
// must exist with type Idle; this is the only fatal configuration error.
func New(graph motionchart.TransitionGraph, idle motionchart.NodeID, cfg Config, opts ...Option) (*Controller, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if graph == nil {
		return nil, errors.New("nil transition graph")
	}
	if typ, ok := graph.NodeType(idle); !ok || typ != motionchart.NodeIdle {
		return nil, fmt.Errorf("start node %s: %w", idle, motionchart.ErrNoIdleNode)
	}

	c := &Controller{
		id:    uuid.New(),
		cfg:   cfg,
		graph: graph,
		plannerFor: func(g motionchart.TransitionGraph) motionchart.Planner {
			return planner.New(g, planner.WithFrameTime(cfg.FrameTime), planner.WithHistorySize(cfg.BufferSize))
		},
		sink:   motionchart.SinkFunc(func(motionchart.Pose) error { return nil }),
		policy: motionchart.DistancePolicy{StepLength: cfg.StepLength},
		logger: slog.Default(),
		idle:   idle,
		poses:  motionchart.NewPoseBuffer(cfg.BufferSize),
		queue:  motionchart.NewStateQueue(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.planner = c.plannerFor(graph)
	c.logger = c.logger.With("controller", c.id.String())

	frames, err := graph.Sample(idle)
	if err != nil {
		return nil, fmt.Errorf("sample idle node %s: %w", idle, err)
	}
	if err := c.playLocked(idle, motionchart.NodeIdle, frames, motionchart.SourceGraph); err != nil {
		return nil, fmt.Errorf("start idle node %s: %w", idle, err)
	}
	return c, nil
}

// ID identifies the controller in logs and snapshots.
func (c *Controller) ID() uuid.UUID { return c.id }

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Close stops the planner worker. The controller keeps playing; further
// plan requests fail with ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.stopWorkerLocked()
	c.queue.Reset()
	c.closed = true
	return nil
}

// CurrentNode returns the node being played and its type.
func (c *Controller) CurrentNode() (motionchart.NodeID, motionchart.NodeType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.currentType
}

// Phase returns the playback phase. Outside Update it is always PhasePlaying.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Frame returns the cursor of the active motion state and its length.
func (c *Controller) Frame() (frame, length int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Frame(), c.state.Len()
}

// Playing reports whether the active motion state is playing.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Playing()
}

// Pause freezes the active motion state.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pause()
}

// Resume continues the active motion state.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Play()
}

// Tick returns the number of Update calls so far.
func (c *Controller) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// PoseCount returns the length of the pose history.
func (c *Controller) PoseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poses.Len()
}

// Poses returns a copy of the pose history.
func (c *Controller) Poses() []motionchart.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poses.Snapshot()
}

// QueueLen returns the number of planned entries waiting.
func (c *Controller) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// PendingTransitions returns the length of the explicit transition queue.
func (c *Controller) PendingTransitions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.explicit.Len()
}

// playLocked aligns frames with the pose history and makes them the active
// state.
func (c *Controller) playLocked(node motionchart.NodeID, typ motionchart.NodeType, frames motionchart.Frames, source motionchart.TransitionSource) error {
	if last, ok := c.poses.Last(); ok && len(frames) > 0 {
		frames = align.Between(last, frames[0]).Apply(frames)
	}
	st, err := motionchart.NewMotionState(frames, c.cfg.FrameTime)
	if err != nil {
		return err
	}
	st.Play()
	c.setStateLocked(node, typ, st, source, uuid.Nil)
	return nil
}

func (c *Controller) setStateLocked(node motionchart.NodeID, typ motionchart.NodeType, st *motionchart.MotionState, source motionchart.TransitionSource, plan uuid.UUID) {
	from := c.current
	c.current, c.currentType, c.state, c.currentPlan = node, typ, st, plan
	c.stopCurrent = false
	c.metrics.Transition(string(source))
	c.logger.Debug("state changed",
		"from", from.String(),
		"node", node.String(),
		"type", typ.String(),
		"source", string(source),
		"frames", st.Len(),
	)
	if c.publisher != nil {
		ev := motionchart.TransitionEvent{
			From:      from,
			To:        node,
			Type:      typ,
			Source:    source,
			Tick:      c.tick,
			Plan:      plan,
			Timestamp: time.Now(),
		}
		if err := c.publisher.Publish(context.Background(), ev); err != nil {
			c.logger.Warn("publish transition failed", "error", err)
		}
	}
}

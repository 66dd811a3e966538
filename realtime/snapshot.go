package realtime

import (
	"fmt"
	"time"

	"github.com/comalice/motionchart"
)

// Snapshot is the persistable view of a controller.
type Snapshot struct {
	ID         string             `json:"id" yaml:"id" msgpack:"id"`
	Node       motionchart.NodeID `json:"node" yaml:"node" msgpack:"node"`
	Type       string             `json:"type" yaml:"type" msgpack:"type"`
	Frame      int                `json:"frame" yaml:"frame" msgpack:"frame"`
	FrameCount int                `json:"frame_count" yaml:"frame_count" msgpack:"frame_count"`
	Tick       uint64             `json:"tick" yaml:"tick" msgpack:"tick"`
	QueueLen   int                `json:"queue_len" yaml:"queue_len" msgpack:"queue_len"`
	Processing bool               `json:"processing" yaml:"processing" msgpack:"processing"`
	Pending    int                `json:"pending" yaml:"pending" msgpack:"pending"`
	Travel     float64            `json:"travel" yaml:"travel" msgpack:"travel"`
	Poses      []motionchart.Pose `json:"poses" yaml:"poses" msgpack:"poses"`
	Timestamp  time.Time          `json:"timestamp" yaml:"timestamp" msgpack:"timestamp"`
}

// Snapshot captures the controller's observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:         c.id.String(),
		Node:       c.current,
		Type:       c.currentType.String(),
		Frame:      c.state.Frame(),
		FrameCount: c.state.Len(),
		Tick:       c.tick,
		QueueLen:   c.queue.Len(),
		Processing: c.processingLocked(),
		Pending:    c.explicit.Len(),
		Travel:     c.travel,
		Poses:      c.poses.Snapshot(),
		Timestamp:  time.Now(),
	}
}

// Restore resumes from a snapshot: the pose history is loaded and the
// snapshot's node is sampled afresh, aligned with the last restored pose.
// Plans are not restored.
func (c *Controller) Restore(s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	typ, ok := c.graph.NodeType(s.Node)
	if !ok {
		return fmt.Errorf("restore %s: %w", s.Node, motionchart.ErrUnknownNode)
	}
	frames, err := c.graph.Sample(s.Node)
	if err != nil {
		return fmt.Errorf("restore %s: %w", s.Node, err)
	}

	c.stopWorkerLocked()
	c.queue.Reset()
	c.explicit.Clear()
	c.poses.Load(s.Poses)
	c.travel = s.Travel
	c.tick = s.Tick
	if err := c.playLocked(s.Node, typ, frames, motionchart.SourceGraph); err != nil {
		return fmt.Errorf("restore %s: %w", s.Node, err)
	}
	c.logger.Info("controller restored", "node", s.Node.String(), "poses", len(s.Poses))
	return nil
}

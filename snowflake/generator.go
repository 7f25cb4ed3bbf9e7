// Package snowflake generates unique, time-ordered 64-bit identifiers.
//
// Each identifier packs a millisecond timestamp (relative to a custom
// epoch), a node ID, and a per-millisecond sequence:
//
//	(timestamp_ms - epoch) << 22 | node_id << 12 | sequence
//
// A single Generator is constructed at startup and injected into whatever
// creates entities; there is no lazily-initialized global instance.
package snowflake

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/skillsenselab/iam/errors"
)

// Epoch is the custom epoch for generated identifiers: 2023-01-01T00:00:00Z.
const Epoch int64 = 1672531200000

const (
	nodeIDBits   = 10
	sequenceBits = 12

	// MaxNodeID is the highest permitted node ID (1023).
	MaxNodeID = (1 << nodeIDBits) - 1

	maxSequence = (1 << sequenceBits) - 1
)

// Config configures the identifier generator.
type Config struct {
	// NodeID identifies this node, range [0, 1023]. Two nodes with distinct
	// IDs never produce colliding identifiers.
	NodeID int64 `yaml:"node_id" mapstructure:"node_id"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.NodeID < 0 || c.NodeID > MaxNodeID {
		return fmt.Errorf("snowflake.node_id must be between 0 and %d (got: %d)", MaxNodeID, c.NodeID)
	}
	return nil
}

// Generator produces unique, strictly increasing 64-bit identifiers.
// Safe for concurrent use; all state transitions are serialized by a mutex.
// Next never blocks on I/O.
type Generator struct {
	mu sync.Mutex

	nodeID        int64
	lastTimestamp int64
	sequence      int64

	// now returns wall-clock milliseconds; replaced in tests.
	now func() int64
}

// New creates a Generator for the given node.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Configuration(err.Error())
	}
	return &Generator{
		nodeID:        cfg.NodeID,
		lastTimestamp: -1,
		now:           nowMillis,
	}, nil
}

// Next returns the next identifier.
//
// Within one millisecond up to 4096 identifiers are issued; when the
// sequence is exhausted, Next spins (with yields) until the clock advances.
// A clock observed moving backwards is fatal to the call: the error is
// returned unretried, since silently adjusting risks ID collisions. Callers
// should treat it as a process-health issue, not a per-request failure.
func (g *Generator) Next() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := g.now()

	if timestamp < g.lastTimestamp {
		return 0, errors.ClockRegression(g.lastTimestamp, timestamp)
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// Sequence exhausted for this millisecond; wait for the next
			// tick. Bounded to ~1ms of wall time, yielding to the scheduler
			// instead of pegging a core.
			for timestamp <= g.lastTimestamp {
				runtime.Gosched()
				timestamp = g.now()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = timestamp

	id := (timestamp-Epoch)<<(nodeIDBits+sequenceBits) |
		g.nodeID<<sequenceBits |
		g.sequence
	return id, nil
}

// NodeID returns the node ID this generator was constructed with.
func (g *Generator) NodeID() int64 {
	return g.nodeID
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

package utilities

import (
	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out document ids. A single snowflake node is reused so
// ids generated within the same millisecond stay unique.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator builds a generator for the given snowflake node id.
// If the node cannot be initialized (e.g. id out of range) the generator
// falls back to KSUID strings, and the init error is returned alongside
// so callers can log it.
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return &IDGenerator{}, err
	}
	return &IDGenerator{node: node}, nil
}

// Next returns a new unique id.
func (g *IDGenerator) Next() string {
	if g == nil || g.node == nil {
		return NewKSUID()
	}
	return g.node.Generate().String()
}

package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	if err != nil {
		return fmt.Errorf("initializing snowflake node %d: %w", nodeID, err)
	}
	return nil
}

// New generates a time-ordered int64 ID. It identifies scan passes in logs
// and in IngestResult.RunID. Init must have been called.
func New() int64 {
	return node.Generate().Int64()
}

// Time returns the wall-clock millisecond at which id was generated.
func Time(id int64) int64 {
	return snowflake.ID(id).Time()
}

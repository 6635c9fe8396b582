package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewRequestID generates a unique id for tagging a request through logs.
// It uses a snowflake node identified by SNOWFLAKE_NODE (default 1) and
// falls back to a KSUID when the node cannot be initialized, so a usable
// id is always returned.
func NewRequestID() string {
	nodeID := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return ksuid.New().String()
	}
	return node.Generate().String()
}

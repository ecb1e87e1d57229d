package utils

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var billNode *snowflake.Node

// InitBillNode initializes the snowflake node used for bill numbers.
// Node ids must be unique per running instance when the service is
// scaled horizontally.
func InitBillNode(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("init bill node: %w", err)
	}
	billNode = n
	return nil
}

// GenerateBillNumber returns a new merchant-facing bill reference.
// The snowflake id keeps it time-sortable and collision-free within a
// node; the DB uniqueness constraint on bill_number is the final guard.
func GenerateBillNumber() string {
	if billNode == nil {
		panic("bill node not initialized")
	}
	return fmt.Sprintf("txn_%s", billNode.Generate().Base36())
}

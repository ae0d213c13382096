// Package order contains the Order aggregate: the order lifecycle state
// machine, its items with their extraction and validation state machines,
// and the aggregation rules deriving the order status from item statuses.
package order

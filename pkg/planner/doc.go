// Package planner is the session layer above the action engine: it builds
// a device tree from a layout file, constructs and registers the proposed
// actions, prunes and sorts the registry, and emits a serializable Plan
// for an external executor.
package planner

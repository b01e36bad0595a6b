// Package engine implements the action-dependency core of the storage
// planner.
//
// An Action is one of eight proposed operations on the device graph:
// create/destroy/resize of a device, create/resize/destroy of a format,
// and add/remove of a container member. Constructors validate their
// preconditions; format and membership actions also apply their model side
// effect eagerly so that validation of later proposals in the same batch
// sees the change.
//
// The Registry is the ordered action log for one planning session. It
// registers and cancels actions against the device tree, answers Find
// queries, prunes redundant or self-cancelling actions via the Obsoletes
// relation, and produces a total execution order via the Requires relation
// and a stable topological sort. The sorted list is what an external
// executor consumes; the engine itself never touches disks.
//
// Everything here is synchronous and single-threaded: one session owns one
// tree and one registry, and all graph mutation flows through Register and
// Cancel.
package engine

package planner

import (
	"time"
)

// Plan is the serializable result of a planning session: the pruned,
// topologically sorted list of steps an executor should perform.
type Plan struct {
	// ID is the unique plan identifier.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is when the plan was computed.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Steps is the execution order. Earlier steps must complete before
	// later ones.
	Steps []Step `json:"steps" yaml:"steps"`
}

// Step is one entry in the execution order.
type Step struct {
	// Seq is the step's position in the execution order, starting at 1.
	Seq int `json:"seq" yaml:"seq"`

	// ActionID is the id of the underlying action.
	ActionID int64 `json:"action_id" yaml:"action_id"`

	// Kind is the action kind ("create-device", "resize-format", ...).
	Kind string `json:"kind" yaml:"kind"`

	// Device is the target device name (the member, for membership steps).
	Device string `json:"device" yaml:"device"`

	// Detail describes the step's payload: a size for resizes, a format
	// description for format creation, a container for membership.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

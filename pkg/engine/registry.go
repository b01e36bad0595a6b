package engine

import (
	"github.com/rs/zerolog"

	"github.com/blockplan/blockplan/pkg/devicetree"
	"github.com/blockplan/blockplan/pkg/model"
	"github.com/blockplan/blockplan/pkg/telemetry"
)

// Registry is the ordered log of registered actions for one planning
// session. It owns registration and cancellation against the device tree:
// after every successful call the tree reflects the cumulative effect of
// all currently-registered actions applied in registration order.
type Registry struct {
	tree    *devicetree.Tree
	actions []*Action

	log     zerolog.Logger
	metrics *telemetry.Metrics
}

// NewRegistry creates a registry bound to tree. metrics may be nil.
func NewRegistry(tree *devicetree.Tree, log zerolog.Logger, metrics *telemetry.Metrics) *Registry {
	return &Registry{
		tree:    tree,
		log:     log.With().Str("component", "registry").Logger(),
		metrics: metrics,
	}
}

// Tree returns the device tree the registry mutates.
func (r *Registry) Tree() *devicetree.Tree {
	return r.tree
}

// Register validates a against the tree's current state, applies its graph
// mutation, and appends it to the action log.
func (r *Registry) Register(a *Action) error {
	switch a.kind {
	case KindCreateDevice:
		if r.tree.Contains(a.device) {
			return model.NewDeviceTreeError("device already in tree", nil).
				WithDevice(a.device.Name)
		}
		if err := r.tree.AddDevice(a.device); err != nil {
			return err
		}
	case KindDestroyDevice:
		if !r.tree.Contains(a.device) {
			return model.NewDeviceTreeError("device not in tree", nil).
				WithDevice(a.device.Name)
		}
		if err := r.tree.RemoveDevice(a.device); err != nil {
			return err
		}
	default:
		if !r.tree.Contains(a.device) {
			return model.NewDeviceTreeError("device not in tree", nil).
				WithDevice(a.device.Name)
		}
	}

	r.actions = append(r.actions, a)
	r.log.Info().Stringer("action", a).Msg("registered action")
	r.metrics.RecordActionRegistered(string(a.Op()), string(a.Object()))
	return nil
}

// Cancel reverses exactly the mutation associated with a and removes it
// from the action log.
func (r *Registry) Cancel(a *Action) error {
	idx := r.indexOf(a)
	if idx < 0 {
		return model.NewInvalidOperationError("action not registered", nil).
			WithDevice(a.device.Name)
	}

	switch a.kind {
	case KindCreateDevice:
		if err := r.tree.RemoveDevice(a.device); err != nil {
			return err
		}
	case KindDestroyDevice:
		if err := r.tree.AddDevice(a.device); err != nil {
			return err
		}
	default:
		a.Cancel()
	}

	r.actions = append(r.actions[:idx], r.actions[idx+1:]...)
	r.log.Info().Stringer("action", a).Msg("cancelled action")
	r.metrics.RecordActionCancelled(string(a.Op()), string(a.Object()))
	return nil
}

// FindFilter selects actions in Find. Zero values match anything.
type FindFilter struct {
	Device   *model.Device
	DeviceID int64
	Op       Op
	Object   Object
}

// Find returns all registered actions matching the filter, in insertion
// order.
func (r *Registry) Find(f FindFilter) []*Action {
	var out []*Action
	for _, a := range r.actions {
		if f.Device != nil && a.device != f.Device {
			continue
		}
		if f.DeviceID != 0 && a.device.ID() != f.DeviceID {
			continue
		}
		if f.Op != OpAny && a.Op() != f.Op {
			continue
		}
		if f.Object != ObjectAny && a.Object() != f.Object {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Actions returns the registered actions in insertion order.
func (r *Registry) Actions() []*Action {
	out := make([]*Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.actions)
}

// Prune removes obsoleted actions until a fixpoint is reached. Devices
// whose entire proposed lifetime nets to nothing drop out through the
// destroy-of-nonexistent rule, which obsoletes the destroy itself along
// with everything before it.
func (r *Registry) Prune() {
	pruned := 0
	for changed := true; changed; {
		changed = false

		snapshot := r.Actions()
		for i := len(snapshot) - 1; i >= 0; i-- {
			action := snapshot[i]
			if r.indexOf(action) < 0 {
				continue
			}

			for _, obsolete := range r.Actions() {
				if !action.Obsoletes(obsolete) {
					continue
				}
				r.drop(obsolete)
				pruned++
				changed = true
				r.log.Debug().
					Stringer("obsolete", obsolete).
					Stringer("by", action).
					Msg("pruned obsolete action")

				if obsolete != action && obsolete.Obsoletes(action) && r.indexOf(action) >= 0 {
					r.drop(action)
					pruned++
					r.log.Debug().
						Stringer("obsolete", action).
						Stringer("by", obsolete).
						Msg("pruned mutually-obsolete action")
				}
			}
		}
	}
	if pruned > 0 {
		r.log.Info().Int("pruned", pruned).Int("remaining", len(r.actions)).
			Msg("pruned action queue")
	}
	r.metrics.RecordActionsPruned(pruned)
}

func (r *Registry) indexOf(a *Action) int {
	for i, action := range r.actions {
		if action == a {
			return i
		}
	}
	return -1
}

func (r *Registry) drop(a *Action) {
	if idx := r.indexOf(a); idx >= 0 {
		r.actions = append(r.actions[:idx], r.actions[idx+1:]...)
	}
}

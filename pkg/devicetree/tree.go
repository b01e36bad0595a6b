package devicetree

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blockplan/blockplan/pkg/model"
)

// Tree is an indexed collection of devices forming the storage graph for
// one planning session. All operations are synchronous in-memory edits; the
// tree assumes exclusive, non-concurrent access.
type Tree struct {
	devices []*model.Device
	byID    map[int64]*model.Device
	byName  map[string]*model.Device

	log zerolog.Logger
}

// New creates an empty device tree.
func New(log zerolog.Logger) *Tree {
	return &Tree{
		byID:   make(map[int64]*model.Device),
		byName: make(map[string]*model.Device),
		log:    log.With().Str("component", "devicetree").Logger(),
	}
}

// AddDevice adds d to the tree. It fails with a device-tree error if a
// device with the same id or name is already present.
func (t *Tree) AddDevice(d *model.Device) error {
	if _, ok := t.byID[d.ID()]; ok {
		return model.NewDeviceTreeError(
			fmt.Sprintf("device with id %d already in tree", d.ID()), nil).
			WithDevice(d.Name)
	}
	if _, ok := t.byName[d.Name]; ok {
		return model.NewDeviceTreeError("device name already in tree", nil).
			WithDevice(d.Name)
	}

	t.devices = append(t.devices, d)
	t.byID[d.ID()] = d
	t.byName[d.Name] = d
	t.log.Debug().Str("device", d.Name).Str("kind", string(d.Kind)).Msg("added device")
	return nil
}

// RemoveDevice removes d from the tree. It fails with an invalid-operation
// error if d still has dependents. The planning engine never forces removal;
// ForceRemoveDevice exists for external callers that know better.
func (t *Tree) RemoveDevice(d *model.Device) error {
	return t.remove(d, false)
}

// ForceRemoveDevice removes d even if it has dependents.
func (t *Tree) ForceRemoveDevice(d *model.Device) error {
	return t.remove(d, true)
}

func (t *Tree) remove(d *model.Device, force bool) error {
	if _, ok := t.byID[d.ID()]; !ok {
		return model.NewDeviceTreeError("device not in tree", nil).WithDevice(d.Name)
	}
	if !force && !t.IsLeaf(d) {
		return model.NewInvalidOperationError("cannot remove non-leaf device", nil).
			WithDevice(d.Name)
	}

	for i, dev := range t.devices {
		if dev == d {
			t.devices = append(t.devices[:i], t.devices[i+1:]...)
			break
		}
	}
	delete(t.byID, d.ID())
	delete(t.byName, d.Name)
	t.log.Debug().Str("device", d.Name).Msg("removed device")
	return nil
}

// Contains reports whether d is currently in the tree.
func (t *Tree) Contains(d *model.Device) bool {
	_, ok := t.byID[d.ID()]
	return ok
}

// GetByName returns the device with the given name, or nil.
func (t *Tree) GetByName(name string) *model.Device {
	return t.byName[name]
}

// GetByID returns the device with the given id, or nil.
func (t *Tree) GetByID(id int64) *model.Device {
	return t.byID[id]
}

// GetByKind returns all devices of the given kind in insertion order.
func (t *Tree) GetByKind(kind model.DeviceKind) []*model.Device {
	var out []*model.Device
	for _, d := range t.devices {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Devices returns the devices in insertion order. The returned slice is a
// copy; the tree's internal state cannot be mutated through it.
func (t *Tree) Devices() []*model.Device {
	out := make([]*model.Device, len(t.devices))
	copy(out, t.devices)
	return out
}

// Len returns the number of devices in the tree.
func (t *Tree) Len() int {
	return len(t.devices)
}

// IsLeaf reports whether no device in the tree depends on d.
func (t *Tree) IsLeaf(d *model.Device) bool {
	for _, dev := range t.devices {
		if dev == d {
			continue
		}
		if dev.HasParent(d) {
			return false
		}
	}
	return true
}

// AncestorsOf returns the transitive closure of d's parents, including
// container-membership edges, in discovery order.
func (t *Tree) AncestorsOf(d *model.Device) []*model.Device {
	var out []*model.Device
	seen := make(map[int64]bool)
	var walk func(dev *model.Device)
	walk = func(dev *model.Device) {
		for _, p := range dev.Parents {
			if seen[p.ID()] {
				continue
			}
			seen[p.ID()] = true
			out = append(out, p)
			walk(p)
		}
	}
	walk(d)
	return out
}

// DependentsOf returns every device in the tree that transitively depends
// on d, in insertion order.
func (t *Tree) DependentsOf(d *model.Device) []*model.Device {
	var out []*model.Device
	for _, dev := range t.devices {
		if dev == d {
			continue
		}
		if dev.DependsOn(d) {
			out = append(out, dev)
		}
	}
	return out
}

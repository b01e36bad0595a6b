package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/blockplan/blockplan/pkg/model"
)

// Kind identifies one of the eight proposed operations.
type Kind string

const (
	KindCreateDevice  Kind = "create-device"
	KindDestroyDevice Kind = "destroy-device"
	KindResizeDevice  Kind = "resize-device"
	KindCreateFormat  Kind = "create-format"
	KindResizeFormat  Kind = "resize-format"
	KindDestroyFormat Kind = "destroy-format"
	KindAddMember     Kind = "add-member"
	KindRemoveMember  Kind = "remove-member"
)

// Op is the operation half of a Kind, used by Find filters.
type Op string

const (
	OpAny     Op = ""
	OpCreate  Op = "create"
	OpDestroy Op = "destroy"
	OpResize  Op = "resize"
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
)

// Object is the operand half of a Kind, used by Find filters.
type Object string

const (
	ObjectAny    Object = ""
	ObjectDevice Object = "device"
	ObjectFormat Object = "format"
	ObjectMember Object = "member"
)

type resizeDir int

const (
	dirNone resizeDir = iota
	dirGrow
	dirShrink
)

// actionID is the source of monotonically increasing action ids.
// Construction order doubles as the tie-break order for obsoletion.
var actionID atomic.Int64

// Action is a proposed operation on the device graph. Actions are immutable
// after construction apart from cancellation. Format and membership actions
// apply their side effect on the model eagerly at construction so that
// later validation within the same proposal batch sees the change; device
// create/destroy actions touch the tree only when registered.
type Action struct {
	id   int64
	kind Kind

	// device is the action's target. For membership actions it is the
	// member; the container is held separately.
	device    *model.Device
	container *model.Device

	// format is the format being installed by a create-format action.
	format *model.Format

	// prevFormat remembers the format replaced by a create/destroy-format
	// action so cancellation can restore it.
	prevFormat *model.Format

	// memberIndex remembers the parent-list position vacated by a
	// remove-member action.
	memberIndex int

	newSize  uint64
	prevSize uint64
	dir      resizeDir

	cancelled bool
}

func newAction(kind Kind, device *model.Device) *Action {
	return &Action{
		id:     actionID.Add(1),
		kind:   kind,
		device: device,
	}
}

// NewCreateDevice proposes creation of d. It fails if d already exists on
// real media.
func NewCreateDevice(d *model.Device) (*Action, error) {
	if d.Exists {
		return nil, model.NewInvalidActionError("cannot create existing device", nil).
			WithDevice(d.Name)
	}
	return newAction(KindCreateDevice, d), nil
}

// NewDestroyDevice proposes destruction of d. The leaf check is deferred to
// registration, when the tree's current shape is known.
func NewDestroyDevice(d *model.Device) (*Action, error) {
	return newAction(KindDestroyDevice, d), nil
}

// NewResizeDevice proposes resizing d to newSize bytes.
func NewResizeDevice(d *model.Device, newSize uint64) (*Action, error) {
	if !d.Resizable() {
		return nil, model.NewInvalidActionError("device is not resizable", nil).
			WithDevice(d.Name)
	}
	if newSize == d.Size {
		return nil, model.NewInvalidActionError("requested size matches current size", nil).
			WithDevice(d.Name)
	}
	f := d.Format()
	if f.Exists && !f.SizeWithin(newSize) {
		return nil, model.NewInvalidActionError(
			fmt.Sprintf("requested size %d outside format bounds", newSize), nil).
			WithDevice(d.Name)
	}

	a := newAction(KindResizeDevice, d)
	a.newSize = newSize
	a.prevSize = d.Size
	a.dir = dirGrow
	if newSize < d.Size {
		a.dir = dirShrink
	}
	return a, nil
}

// NewCreateFormat proposes writing format f to d. The format is installed
// on the device immediately.
func NewCreateFormat(d *model.Device, f *model.Format) (*Action, error) {
	if f == nil {
		f = model.NewNoneFormat()
	}
	a := newAction(KindCreateFormat, d)
	a.format = f
	a.prevFormat = d.Format()
	d.SetFormat(f)
	return a, nil
}

// NewDestroyFormat proposes scrubbing the format from d. The device's
// format slot is replaced with the none format immediately; the previous
// format is remembered for cancellation.
func NewDestroyFormat(d *model.Device) (*Action, error) {
	a := newAction(KindDestroyFormat, d)
	a.prevFormat = d.Format()
	d.SetFormat(model.NewNoneFormat())
	return a, nil
}

// NewResizeFormat proposes resizing d's format to newSize bytes.
func NewResizeFormat(d *model.Device, newSize uint64) (*Action, error) {
	f := d.Format()
	if f.IsNone() || !f.Exists {
		return nil, model.NewInvalidActionError("cannot resize non-existent format", nil).
			WithDevice(d.Name)
	}
	if !f.Resizable {
		return nil, model.NewInvalidActionError(
			fmt.Sprintf("format type %s is not resizable", f.Describe()), nil).
			WithDevice(d.Name)
	}
	current := f.TargetSize
	if current == 0 {
		current = d.Size
	}
	if newSize == current {
		return nil, model.NewInvalidActionError("requested size matches current size", nil).
			WithDevice(d.Name)
	}
	if !f.SizeWithin(newSize) {
		return nil, model.NewInvalidActionError(
			fmt.Sprintf("requested size %d outside format bounds", newSize), nil).
			WithDevice(d.Name)
	}

	a := newAction(KindResizeFormat, d)
	a.newSize = newSize
	a.prevSize = current
	a.dir = dirGrow
	if newSize < current {
		a.dir = dirShrink
	}
	return a, nil
}

// NewAddMember proposes adding member to container. The membership edge is
// added immediately.
func NewAddMember(container, member *model.Device) (*Action, error) {
	a := newAction(KindAddMember, member)
	a.container = container
	container.AddParent(member)
	return a, nil
}

// NewRemoveMember proposes removing member from container. The membership
// edge is removed immediately, remembering its position for cancellation.
func NewRemoveMember(container, member *model.Device) (*Action, error) {
	idx := container.RemoveParent(member)
	if idx < 0 {
		return nil, model.NewInvalidActionError("member not in container", nil).
			WithDevice(member.Name)
	}
	a := newAction(KindRemoveMember, member)
	a.container = container
	a.memberIndex = idx
	return a, nil
}

// ID returns the action's id. Ids increase monotonically in construction
// order and provide the total order for obsoletion tie-breaks.
func (a *Action) ID() int64 {
	return a.id
}

// Kind returns the action's variant tag.
func (a *Action) Kind() Kind {
	return a.kind
}

// Device returns the action's target device. For membership actions this
// is the member.
func (a *Action) Device() *model.Device {
	return a.device
}

// Container returns the container of a membership action, nil otherwise.
func (a *Action) Container() *model.Device {
	return a.container
}

// Format returns the format installed by a create-format action, nil
// otherwise.
func (a *Action) Format() *model.Format {
	return a.format
}

// NewSize returns the requested size of a resize action.
func (a *Action) NewSize() uint64 {
	return a.newSize
}

// Op returns the operation half of the action's kind.
func (a *Action) Op() Op {
	switch a.kind {
	case KindCreateDevice, KindCreateFormat:
		return OpCreate
	case KindDestroyDevice, KindDestroyFormat:
		return OpDestroy
	case KindResizeDevice, KindResizeFormat:
		return OpResize
	case KindAddMember:
		return OpAdd
	default:
		return OpRemove
	}
}

// Object returns the operand half of the action's kind.
func (a *Action) Object() Object {
	switch a.kind {
	case KindCreateDevice, KindDestroyDevice, KindResizeDevice:
		return ObjectDevice
	case KindCreateFormat, KindDestroyFormat, KindResizeFormat:
		return ObjectFormat
	default:
		return ObjectMember
	}
}

func (a *Action) isCreate() bool {
	return a.kind == KindCreateDevice || a.kind == KindCreateFormat
}

func (a *Action) isDestroy() bool {
	return a.kind == KindDestroyDevice || a.kind == KindDestroyFormat
}

func (a *Action) isResize() bool {
	return a.kind == KindResizeDevice || a.kind == KindResizeFormat
}

func (a *Action) isMember() bool {
	return a.kind == KindAddMember || a.kind == KindRemoveMember
}

func (a *Action) isShrink() bool {
	return a.dir == dirShrink
}

func (a *Action) isGrow() bool {
	return a.dir == dirGrow
}

// Cancel reverses the action's eager side effect on the model. It is valid
// on actions that were never registered, since eager effects are applied at
// construction. Device create/destroy effects live in the tree and are
// reversed by Registry.Cancel instead. Cancelling twice is a no-op.
func (a *Action) Cancel() {
	if a.cancelled {
		return
	}
	switch a.kind {
	case KindCreateFormat, KindDestroyFormat:
		a.device.SetFormat(a.prevFormat)
	case KindAddMember:
		a.container.RemoveParent(a.device)
	case KindRemoveMember:
		a.container.InsertParent(a.device, a.memberIndex)
	}
	a.cancelled = true
}

// String renders the action for logs.
func (a *Action) String() string {
	switch a.kind {
	case KindResizeDevice, KindResizeFormat:
		return fmt.Sprintf("[%d] %s %s to %d bytes", a.id, a.kind, a.device.Name, a.newSize)
	case KindCreateFormat:
		return fmt.Sprintf("[%d] %s %s on %s", a.id, a.kind, a.format.Describe(), a.device.Name)
	case KindAddMember, KindRemoveMember:
		return fmt.Sprintf("[%d] %s %s in %s", a.id, a.kind, a.device.Name, a.container.Name)
	default:
		return fmt.Sprintf("[%d] %s %s", a.id, a.kind, a.device.Name)
	}
}

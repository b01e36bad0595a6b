package model

import "sync/atomic"

// DeviceKind identifies the type of a storage device node.
type DeviceKind string

const (
	// KindDisk is a whole physical disk.
	KindDisk DeviceKind = "disk"

	// KindPartition is a partition on a disk.
	KindPartition DeviceKind = "partition"

	// KindMDArray is a software RAID array.
	KindMDArray DeviceKind = "md-array"

	// KindDMDevice is a generic device-mapper device.
	KindDMDevice DeviceKind = "dm"

	// KindLUKS is an encrypted device-mapper device.
	KindLUKS DeviceKind = "luks"

	// KindVolumeGroup is an LVM volume group. Its parents are its PVs and
	// are mutated directly by membership actions.
	KindVolumeGroup DeviceKind = "lvm-vg"

	// KindLogicalVolume is an LVM logical volume.
	KindLogicalVolume DeviceKind = "lvm-lv"

	// KindFile is a file-backed device.
	KindFile DeviceKind = "file"
)

// deviceID is the source of monotonically increasing device ids.
var deviceID atomic.Int64

// NextDeviceID returns a fresh device id.
func NextDeviceID() int64 {
	return deviceID.Add(1)
}

// Device is a node in the storage graph. Parents are structural
// dependencies: a partition's disk, an LV's VG, an array's members.
type Device struct {
	id int64

	// Name uniquely identifies the device within a tree.
	Name string

	// Kind is the device type tag.
	Kind DeviceKind

	// Size is the device size in bytes.
	Size uint64

	// Exists reports whether the device is present on real media as
	// opposed to only proposed.
	Exists bool

	// Parents is the ordered list of devices this device is built on.
	// Only membership actions and device constructors may mutate it.
	Parents []*Device

	// PartNumber is the partition number for KindPartition devices.
	PartNumber int

	format *Format
}

// NewDevice creates a device with a fresh id.
func NewDevice(name string, kind DeviceKind, size uint64, exists bool, parents ...*Device) *Device {
	return &Device{
		id:      NextDeviceID(),
		Name:    name,
		Kind:    kind,
		Size:    size,
		Exists:  exists,
		Parents: parents,
	}
}

// NewPartition creates a partition device on the given disk.
func NewPartition(name string, number int, size uint64, exists bool, disk *Device) *Device {
	d := NewDevice(name, KindPartition, size, exists, disk)
	d.PartNumber = number
	return d
}

// ID returns the device's unique id.
func (d *Device) ID() int64 {
	return d.id
}

// Format returns the device's format. A device with no format returns the
// none format rather than nil so callers can always inspect the kind.
func (d *Device) Format() *Format {
	if d.format == nil {
		return NewNoneFormat()
	}
	return d.format
}

// SetFormat installs f as the device's format. A nil f installs the none
// format.
func (d *Device) SetFormat(f *Format) {
	d.format = f
}

// HasFormat reports whether the device carries a real (non-none) format.
func (d *Device) HasFormat() bool {
	return d.format != nil && !d.format.IsNone()
}

// Disk returns the disk a partition lives on, or nil for other kinds.
func (d *Device) Disk() *Device {
	if d.Kind != KindPartition || len(d.Parents) == 0 {
		return nil
	}
	return d.Parents[0]
}

// DependsOn reports whether other is an ancestor of d in the parent graph.
// It follows parent pointers directly and so keeps working for devices that
// have been removed from a tree by a pending destroy action.
func (d *Device) DependsOn(other *Device) bool {
	for _, p := range d.Parents {
		if p == other || p.DependsOn(other) {
			return true
		}
	}
	return false
}

// HasParent reports whether other is a direct parent of d.
func (d *Device) HasParent(other *Device) bool {
	for _, p := range d.Parents {
		if p == other {
			return true
		}
	}
	return false
}

// AddParent appends other to the device's parent list.
func (d *Device) AddParent(other *Device) {
	d.Parents = append(d.Parents, other)
}

// RemoveParent removes other from the device's parent list and returns the
// index it occupied, or -1 if other was not a parent.
func (d *Device) RemoveParent(other *Device) int {
	for i, p := range d.Parents {
		if p == other {
			d.Parents = append(d.Parents[:i], d.Parents[i+1:]...)
			return i
		}
	}
	return -1
}

// InsertParent re-inserts other at index i in the parent list. Used to undo
// a membership removal.
func (d *Device) InsertParent(other *Device, i int) {
	if i < 0 || i >= len(d.Parents) {
		d.Parents = append(d.Parents, other)
		return
	}
	d.Parents = append(d.Parents[:i], append([]*Device{other}, d.Parents[i:]...)...)
}

// kindResizable lists the device kinds whose size can change in place.
var kindResizable = map[DeviceKind]bool{
	KindPartition:     true,
	KindLogicalVolume: true,
	KindFile:          true,
	KindLUKS:          true,
}

// Resizable reports whether the device can be resized. A device is
// resizable when its kind supports it, it exists, and its format either
// does not exist or supports resizing.
func (d *Device) Resizable() bool {
	if !kindResizable[d.Kind] || !d.Exists {
		return false
	}
	f := d.Format()
	if f.IsNone() || !f.Exists {
		return true
	}
	return f.Resizable
}

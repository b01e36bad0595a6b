// Package model defines the entities of the storage planning domain.
//
// A Device is a node in the storage graph: a disk, partition, RAID array,
// device-mapper device, LVM volume group or logical volume, or file-backed
// device. Devices reference the devices they are built on through an ordered
// parent list; a volume group's parents are its physical volumes and change
// through membership actions rather than device creation.
//
// A Format is the data layer occupying a device: a filesystem, swap space,
// a partition table, or a signature (PV, RAID member) binding the device
// into an aggregate. The none format represents the absence of a format.
//
// The package also defines PlanError, the classified error type shared by
// the device tree and the action engine.
package model

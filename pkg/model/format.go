package model

// FormatKind identifies the data layer occupying a device.
type FormatKind string

const (
	// FormatNone marks the absence of a format. It is the value installed
	// on a device whose format has been scheduled for destruction.
	FormatNone FormatKind = "none"

	// FormatPartitionTable is a disklabel (GPT, msdos).
	FormatPartitionTable FormatKind = "partition-table"

	// FormatFilesystem is a mountable filesystem (ext4, xfs, vfat, ...).
	FormatFilesystem FormatKind = "filesystem"

	// FormatSwap is swap space.
	FormatSwap FormatKind = "swap"

	// FormatPhysicalVolume is an LVM physical volume signature.
	FormatPhysicalVolume FormatKind = "physical-volume"

	// FormatRAIDMember is a software RAID member signature.
	FormatRAIDMember FormatKind = "raid-member"
)

// Format describes the data occupying a device: a filesystem, swap space,
// or a signature binding the device into an aggregate (PV, RAID member).
type Format struct {
	// Kind is the format type tag.
	Kind FormatKind

	// FSType is the concrete filesystem type for FormatFilesystem
	// (e.g. "ext4", "xfs"). Empty for other kinds.
	FSType string

	// Mountpoint is where the filesystem is mounted, if anywhere.
	Mountpoint string

	// Label is the optional volume label.
	Label string

	// Exists reports whether the format is present on real media as
	// opposed to only proposed.
	Exists bool

	// Resizable reports whether the format supports resizing in place.
	Resizable bool

	// MinSize is the smallest size the format can be resized to, in bytes.
	// Zero means no lower bound is known.
	MinSize uint64

	// MaxSize is the largest size the format can be resized to, in bytes.
	// Zero means unbounded.
	MaxSize uint64

	// TargetSize is the size the format occupies (or will occupy), in bytes.
	TargetSize uint64
}

// NewNoneFormat returns a format representing the absence of a format.
func NewNoneFormat() *Format {
	return &Format{Kind: FormatNone}
}

// IsNone reports whether the format represents the absence of a format.
func (f *Format) IsNone() bool {
	return f == nil || f.Kind == FormatNone
}

// IsMemberBinding reports whether the format binds its device into an
// aggregate device, such as an LVM PV or a RAID member signature.
func (f *Format) IsMemberBinding() bool {
	if f == nil {
		return false
	}
	return f.Kind == FormatPhysicalVolume || f.Kind == FormatRAIDMember
}

// SizeWithin reports whether size satisfies the format's min/max bounds.
func (f *Format) SizeWithin(size uint64) bool {
	if f.MinSize > 0 && size < f.MinSize {
		return false
	}
	if f.MaxSize > 0 && size > f.MaxSize {
		return false
	}
	return true
}

// Describe returns a short human-readable description of the format.
func (f *Format) Describe() string {
	if f.IsNone() {
		return string(FormatNone)
	}
	if f.Kind == FormatFilesystem && f.FSType != "" {
		return f.FSType
	}
	return string(f.Kind)
}

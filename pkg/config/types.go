package config

// LayoutFile is the on-disk planning input: the devices known to exist (or
// proposed), and the sequence of operations to propose against them.
type LayoutFile struct {
	// Devices declares every device the proposal refers to. Devices with
	// exists:true populate the initial tree; the rest are candidates for
	// create-device operations.
	Devices []DeviceConfig `yaml:"devices" validate:"required,min=1,dive"`

	// Operations is the ordered list of proposed operations.
	Operations []OperationConfig `yaml:"operations" validate:"dive"`
}

// DeviceConfig declares one device.
type DeviceConfig struct {
	// Name uniquely identifies the device within the file.
	Name string `yaml:"name" validate:"required"`

	// Kind is the device type.
	Kind string `yaml:"kind" validate:"required,oneof=disk partition md-array dm luks lvm-vg lvm-lv file"`

	// Size is a human-readable size ("500 MiB", "2 TB").
	Size string `yaml:"size"`

	// Exists marks devices present on real media.
	Exists bool `yaml:"exists"`

	// Number is the partition number; partitions only.
	Number int `yaml:"number,omitempty" validate:"gte=0"`

	// Disk names the disk a partition lives on; partitions only.
	Disk string `yaml:"disk,omitempty"`

	// Parents names the devices this device is built on: an array's
	// members, a mapper device's backing device, an LV's VG.
	Parents []string `yaml:"parents,omitempty"`

	// Members names a volume group's physical volumes.
	Members []string `yaml:"members,omitempty"`

	// Format describes the data occupying the device, if any.
	Format *FormatConfig `yaml:"format,omitempty"`
}

// FormatConfig declares a format.
type FormatConfig struct {
	// Kind is the format type.
	Kind string `yaml:"kind" validate:"required,oneof=none partition-table filesystem swap physical-volume raid-member"`

	// FSType is the concrete filesystem type for kind filesystem.
	FSType string `yaml:"fstype,omitempty"`

	// Mountpoint is where the filesystem is mounted.
	Mountpoint string `yaml:"mountpoint,omitempty"`

	// Label is the optional volume label.
	Label string `yaml:"label,omitempty"`

	// Exists marks formats present on real media.
	Exists bool `yaml:"exists"`

	// Resizable marks formats that support in-place resize.
	Resizable bool `yaml:"resizable"`

	// MinSize and MaxSize bound resize requests (human-readable sizes).
	MinSize string `yaml:"min_size,omitempty"`
	MaxSize string `yaml:"max_size,omitempty"`
}

// OperationConfig declares one proposed operation.
type OperationConfig struct {
	// Op is the operation to propose.
	Op string `yaml:"op" validate:"required,oneof=create-device destroy-device resize-device create-format resize-format destroy-format add-member remove-member"`

	// Device names the target device. Required for every op except the
	// membership ops, which use container/member.
	Device string `yaml:"device,omitempty"`

	// Size is the requested size for resize ops.
	Size string `yaml:"size,omitempty"`

	// Format is the format to create for create-format.
	Format *FormatConfig `yaml:"format,omitempty"`

	// Container and Member name the pair for membership ops.
	Container string `yaml:"container,omitempty"`
	Member    string `yaml:"member,omitempty"`
}

package planner

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/blockplan/blockplan/pkg/config"
	"github.com/blockplan/blockplan/pkg/model"
)

func newTestPlanner() *Planner {
	return New(zerolog.Nop(), nil)
}

// autopartLayout is a fresh-install style proposal: one existing disk, a
// boot partition, and an LVM stack built from scratch.
func autopartLayout() *config.LayoutFile {
	return &config.LayoutFile{
		Devices: []config.DeviceConfig{
			{Name: "sda", Kind: "disk", Size: "100 GiB", Exists: true,
				Format: &config.FormatConfig{Kind: "partition-table", Exists: true}},
			{Name: "sda1", Kind: "partition", Disk: "sda", Number: 1, Size: "500 MiB"},
			{Name: "sda2", Kind: "partition", Disk: "sda", Number: 2, Size: "99 GiB"},
			{Name: "vg0", Kind: "lvm-vg", Members: []string{"sda2"}},
			{Name: "vg0-root", Kind: "lvm-lv", Parents: []string{"vg0"}, Size: "20 GiB"},
		},
		Operations: []config.OperationConfig{
			{Op: "create-device", Device: "sda1"},
			{Op: "create-format", Device: "sda1",
				Format: &config.FormatConfig{Kind: "filesystem", FSType: "ext4", Mountpoint: "/boot"}},
			{Op: "create-device", Device: "sda2"},
			{Op: "create-format", Device: "sda2",
				Format: &config.FormatConfig{Kind: "physical-volume"}},
			{Op: "create-device", Device: "vg0"},
			{Op: "create-device", Device: "vg0-root"},
			{Op: "create-format", Device: "vg0-root",
				Format: &config.FormatConfig{Kind: "filesystem", FSType: "ext4", Mountpoint: "/"}},
		},
	}
}

func stepIndex(plan *Plan, kind, device string) int {
	for i, s := range plan.Steps {
		if s.Kind == kind && s.Device == device {
			return i
		}
	}
	return -1
}

func TestPlanner_Compute_Autopart(t *testing.T) {
	plan, err := newTestPlanner().Compute(autopartLayout())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if plan.ID == "" {
		t.Error("Expected a plan id")
	}
	if len(plan.Steps) != 7 {
		t.Fatalf("Expected 7 steps, got %d", len(plan.Steps))
	}

	// partitions by number, stack bottom-up
	createSda1 := stepIndex(plan, "create-device", "sda1")
	createSda2 := stepIndex(plan, "create-device", "sda2")
	pvFormat := stepIndex(plan, "create-format", "sda2")
	createVG := stepIndex(plan, "create-device", "vg0")
	createLV := stepIndex(plan, "create-device", "vg0-root")
	rootFormat := stepIndex(plan, "create-format", "vg0-root")

	if createSda1 > createSda2 {
		t.Error("Expected sda1 created before sda2")
	}
	if createSda2 > pvFormat {
		t.Error("Expected sda2 created before its PV format")
	}
	if pvFormat > createVG {
		t.Error("Expected the PV format before the VG")
	}
	if createVG > createLV {
		t.Error("Expected the VG before its LV")
	}
	if createLV > rootFormat {
		t.Error("Expected the LV before its filesystem")
	}

	for i, s := range plan.Steps {
		if s.Seq != i+1 {
			t.Errorf("Expected step %d to carry seq %d, got %d", i, i+1, s.Seq)
		}
	}
}

func TestPlanner_Compute_CreateThenDestroyNetsToEmptyPlan(t *testing.T) {
	layout := &config.LayoutFile{
		Devices: []config.DeviceConfig{
			{Name: "sda", Kind: "disk", Size: "100 GiB", Exists: true},
			{Name: "sda1", Kind: "partition", Disk: "sda", Number: 1, Size: "1 GiB"},
		},
		Operations: []config.OperationConfig{
			{Op: "create-device", Device: "sda1"},
			{Op: "destroy-device", Device: "sda1"},
		},
	}

	plan, err := newTestPlanner().Compute(layout)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(plan.Steps) != 0 {
		t.Errorf("Expected an empty plan, got %d steps", len(plan.Steps))
	}
}

func TestPlanner_Compute_TeardownOrder(t *testing.T) {
	layout := &config.LayoutFile{
		Devices: []config.DeviceConfig{
			{Name: "sda", Kind: "disk", Size: "100 GiB", Exists: true,
				Format: &config.FormatConfig{Kind: "partition-table", Exists: true}},
			{Name: "sda1", Kind: "partition", Disk: "sda", Number: 1, Size: "99 GiB", Exists: true,
				Format: &config.FormatConfig{Kind: "physical-volume", Exists: true}},
			{Name: "vg0", Kind: "lvm-vg", Members: []string{"sda1"}, Exists: true},
			{Name: "vg0-root", Kind: "lvm-lv", Parents: []string{"vg0"}, Size: "20 GiB", Exists: true,
				Format: &config.FormatConfig{Kind: "filesystem", FSType: "ext4", Exists: true}},
		},
		Operations: []config.OperationConfig{
			{Op: "destroy-format", Device: "vg0-root"},
			{Op: "destroy-device", Device: "vg0-root"},
			{Op: "destroy-device", Device: "vg0"},
			{Op: "destroy-format", Device: "sda1"},
			{Op: "destroy-device", Device: "sda1"},
		},
	}

	plan, err := newTestPlanner().Compute(layout)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(plan.Steps) != 5 {
		t.Fatalf("Expected 5 steps, got %d", len(plan.Steps))
	}

	scrubRoot := stepIndex(plan, "destroy-format", "vg0-root")
	destroyRoot := stepIndex(plan, "destroy-device", "vg0-root")
	destroyVG := stepIndex(plan, "destroy-device", "vg0")
	scrubPV := stepIndex(plan, "destroy-format", "sda1")
	destroyPV := stepIndex(plan, "destroy-device", "sda1")

	if !(scrubRoot < destroyRoot && destroyRoot < destroyVG &&
		destroyVG < scrubPV && scrubPV < destroyPV) {
		t.Errorf("Expected top-down teardown, got steps %v", plan.Steps)
	}
}

func TestPlanner_Compute_InvalidOperation(t *testing.T) {
	layout := &config.LayoutFile{
		Devices: []config.DeviceConfig{
			{Name: "sda", Kind: "disk", Size: "100 GiB", Exists: true},
		},
		Operations: []config.OperationConfig{
			{Op: "create-device", Device: "sda"},
		},
	}

	_, err := newTestPlanner().Compute(layout)
	if err == nil {
		t.Fatal("Expected error creating an existing device")
	}
	if !model.IsInvalidAction(err) {
		t.Errorf("Expected invalid-action error, got: %v", err)
	}
}

func TestPlanner_Compute_UnknownOperationDevice(t *testing.T) {
	layout := &config.LayoutFile{
		Devices: []config.DeviceConfig{
			{Name: "sda", Kind: "disk", Size: "100 GiB", Exists: true},
		},
		Operations: []config.OperationConfig{
			{Op: "destroy-device", Device: "sdz"},
		},
	}

	if _, err := newTestPlanner().Compute(layout); err == nil {
		t.Error("Expected error for an operation on an undeclared device")
	}
}

func TestPlanner_BuildSession_ExistingDevicesEnterTree(t *testing.T) {
	p := newTestPlanner()
	s, err := p.BuildSession(autopartLayout())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if s.Tree.Len() != 1 {
		t.Errorf("Expected only the existing disk in the tree, got %d devices", s.Tree.Len())
	}
	if s.Device("sda") == nil || s.Device("vg0-root") == nil {
		t.Error("Expected all declared devices constructed")
	}
	if s.Tree.Contains(s.Device("sda1")) {
		t.Error("Expected proposed devices outside the tree until created")
	}

	sda1 := s.Device("sda1")
	if sda1.PartNumber != 1 || sda1.Disk() != s.Device("sda") {
		t.Error("Expected partition wiring from the layout")
	}
	vg := s.Device("vg0")
	if !vg.HasParent(s.Device("sda2")) {
		t.Error("Expected VG members wired as parents")
	}
}

func TestPlanner_BuildSession_ParentDeclaredLater(t *testing.T) {
	layout := &config.LayoutFile{
		Devices: []config.DeviceConfig{
			{Name: "sda1", Kind: "partition", Disk: "sda", Number: 1, Size: "1 GiB"},
			{Name: "sda", Kind: "disk", Size: "100 GiB", Exists: true},
		},
	}

	if _, err := newTestPlanner().BuildSession(layout); err == nil {
		t.Error("Expected error when a parent is declared after its child")
	}
}

func TestPlanner_Compute_ResizeChain(t *testing.T) {
	layout := &config.LayoutFile{
		Devices: []config.DeviceConfig{
			{Name: "vg0", Kind: "lvm-vg", Exists: true},
			{Name: "vg0-root", Kind: "lvm-lv", Parents: []string{"vg0"}, Size: "20 GiB", Exists: true,
				Format: &config.FormatConfig{Kind: "filesystem", FSType: "ext4",
					Exists: true, Resizable: true}},
		},
		Operations: []config.OperationConfig{
			{Op: "resize-format", Device: "vg0-root", Size: "30 GiB"},
			{Op: "resize-device", Device: "vg0-root", Size: "30 GiB"},
		},
	}

	plan, err := newTestPlanner().Compute(layout)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(plan.Steps))
	}

	// a grow runs device first, format second
	if plan.Steps[0].Kind != "resize-device" || plan.Steps[1].Kind != "resize-format" {
		t.Errorf("Expected device grow before format grow, got %v", plan.Steps)
	}
	if plan.Steps[0].Detail != "to 30 GiB" {
		t.Errorf("Expected size detail, got %q", plan.Steps[0].Detail)
	}
}

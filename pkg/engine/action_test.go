package engine

import (
	"testing"

	"github.com/blockplan/blockplan/pkg/model"
)

func TestNewCreateDevice_RejectsExisting(t *testing.T) {
	f := newFixture(t)

	_, err := NewCreateDevice(f.sda1)
	if err == nil {
		t.Fatal("Expected error creating an existing device")
	}
	if !model.IsInvalidAction(err) {
		t.Errorf("Expected invalid-action error, got: %v", err)
	}
}

func TestNewCreateDevice_Proposed(t *testing.T) {
	f := newFixture(t)
	sdc1 := model.NewPartition("sdc1", 1, 10*gib, false, f.sdc)

	a := mustAction(t)(NewCreateDevice(sdc1))
	if a.Kind() != KindCreateDevice {
		t.Errorf("Expected kind create-device, got %s", a.Kind())
	}
	if a.Device() != sdc1 {
		t.Error("Expected action to target sdc1")
	}
	if f.tree.Contains(sdc1) {
		t.Error("Expected construction not to touch the tree")
	}
}

func TestNewResizeDevice_Validation(t *testing.T) {
	f := newFixture(t)

	if _, err := NewResizeDevice(f.sda, 50*gib); err == nil {
		t.Error("Expected error resizing a disk")
	}
	if _, err := NewResizeDevice(f.lvRoot, f.lvRoot.Size); err == nil {
		t.Error("Expected error resizing to the current size")
	}
	if _, err := NewResizeDevice(f.lvRoot, 10*mib); err == nil {
		t.Error("Expected error shrinking below the format's minimum")
	}

	a := mustAction(t)(NewResizeDevice(f.lvRoot, 80*gib))
	if a.NewSize() != 80*gib {
		t.Errorf("Expected new size %d, got %d", 80*gib, a.NewSize())
	}
	if !a.isShrink() {
		t.Error("Expected a shrink direction")
	}

	grow := mustAction(t)(NewResizeDevice(f.lvRoot, 200*gib))
	if !grow.isGrow() {
		t.Error("Expected a grow direction")
	}
}

func TestNewResizeDevice_ProposedDevice(t *testing.T) {
	f := newFixture(t)
	sdc1 := model.NewPartition("sdc1", 1, 10*gib, false, f.sdc)

	if _, err := NewResizeDevice(sdc1, 20*gib); err == nil {
		t.Error("Expected error resizing a device that does not exist yet")
	}
}

func TestNewCreateFormat_EagerEffect(t *testing.T) {
	f := newFixture(t)
	newFmt := &model.Format{Kind: model.FormatFilesystem, FSType: "xfs"}

	a := mustAction(t)(NewCreateFormat(f.sda1, newFmt))
	if f.sda1.Format() != newFmt {
		t.Error("Expected the new format installed at construction")
	}

	a.Cancel()
	if f.sda1.Format().FSType != "ext4" {
		t.Errorf("Expected cancel to restore ext4, got %s", f.sda1.Format().Describe())
	}
}

func TestNewCreateFormat_NilInstallsNone(t *testing.T) {
	f := newFixture(t)

	a := mustAction(t)(NewCreateFormat(f.sda1, nil))
	if !a.Format().IsNone() {
		t.Error("Expected nil format to become the none format")
	}
	if !f.sda1.Format().IsNone() {
		t.Error("Expected the none format installed on the device")
	}
}

func TestNewDestroyFormat_EagerEffect(t *testing.T) {
	f := newFixture(t)

	a := mustAction(t)(NewDestroyFormat(f.sda1))
	if !f.sda1.Format().IsNone() {
		t.Error("Expected the none format installed at construction")
	}

	a.Cancel()
	if f.sda1.Format().FSType != "ext4" {
		t.Errorf("Expected cancel to restore ext4, got %s", f.sda1.Format().Describe())
	}
}

func TestNewResizeFormat_Validation(t *testing.T) {
	f := newFixture(t)

	if _, err := NewResizeFormat(f.sdc, 50*gib); err == nil {
		t.Error("Expected error resizing a disklabel")
	}
	if _, err := NewResizeFormat(f.lvSwap, 8*gib); err == nil {
		t.Error("Expected error resizing a non-resizable format")
	}
	if _, err := NewResizeFormat(f.lvRoot, 160*gib); err == nil {
		t.Error("Expected error resizing to the current size")
	}
	if _, err := NewResizeFormat(f.lvRoot, 10*mib); err == nil {
		t.Error("Expected error shrinking below the format's minimum")
	}

	bare := model.NewDevice("bare", model.KindLogicalVolume, 10*gib, true, f.vg)
	if _, err := NewResizeFormat(bare, 20*gib); err == nil {
		t.Error("Expected error resizing a device with no format")
	}

	a := mustAction(t)(NewResizeFormat(f.lvRoot, 100*gib))
	if a.NewSize() != 100*gib {
		t.Errorf("Expected new size %d, got %d", 100*gib, a.NewSize())
	}
	if !a.isShrink() {
		t.Error("Expected a shrink relative to the format's target size")
	}
}

func TestNewAddMember_EagerEffect(t *testing.T) {
	f := newFixture(t)
	sdc1 := model.NewPartition("sdc1", 1, 99*gib, false, f.sdc)

	a := mustAction(t)(NewAddMember(f.vg, sdc1))
	if !f.vg.HasParent(sdc1) {
		t.Error("Expected the membership edge added at construction")
	}
	if a.Container() != f.vg || a.Device() != sdc1 {
		t.Error("Expected container/member accessors to match the pair")
	}

	a.Cancel()
	if f.vg.HasParent(sdc1) {
		t.Error("Expected cancel to remove the membership edge")
	}
}

func TestNewRemoveMember_EagerEffect(t *testing.T) {
	f := newFixture(t)

	a := mustAction(t)(NewRemoveMember(f.vg, f.sda2))
	if f.vg.HasParent(f.sda2) {
		t.Error("Expected the membership edge removed at construction")
	}

	a.Cancel()
	if len(f.vg.Parents) != 2 || f.vg.Parents[0] != f.sda2 {
		t.Errorf("Expected sda2 restored at its original position, got %v", f.vg.Parents)
	}
}

func TestNewRemoveMember_AbsentMember(t *testing.T) {
	f := newFixture(t)
	sdc1 := model.NewPartition("sdc1", 1, 99*gib, false, f.sdc)

	_, err := NewRemoveMember(f.vg, sdc1)
	if err == nil {
		t.Fatal("Expected error removing a device that is not a member")
	}
	if !model.IsInvalidAction(err) {
		t.Errorf("Expected invalid-action error, got: %v", err)
	}
}

func TestAction_CancelIsIdempotent(t *testing.T) {
	f := newFixture(t)

	a := mustAction(t)(NewDestroyFormat(f.sda1))
	a.Cancel()
	restored := f.sda1.Format()
	a.Cancel()
	if f.sda1.Format() != restored {
		t.Error("Expected second cancel to change nothing")
	}
}

func TestAction_IDsIncreaseInConstructionOrder(t *testing.T) {
	f := newFixture(t)

	first := mustAction(t)(NewDestroyFormat(f.sda1))
	second := mustAction(t)(NewDestroyFormat(f.sdb1))
	if second.ID() <= first.ID() {
		t.Errorf("Expected ids to increase, got %d then %d", first.ID(), second.ID())
	}
}

func TestAction_OpAndObject(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		action *Action
		op     Op
		object Object
	}{
		{mustAction(t)(NewDestroyFormat(f.sda1)), OpDestroy, ObjectFormat},
		{mustAction(t)(NewResizeDevice(f.lvRoot, 80*gib)), OpResize, ObjectDevice},
		{mustAction(t)(NewRemoveMember(f.vg, f.sdb1)), OpRemove, ObjectMember},
	}
	for _, tt := range tests {
		if tt.action.Op() != tt.op {
			t.Errorf("Expected op %q for %s, got %q", tt.op, tt.action.Kind(), tt.action.Op())
		}
		if tt.action.Object() != tt.object {
			t.Errorf("Expected object %q for %s, got %q", tt.object, tt.action.Kind(), tt.action.Object())
		}
	}
}

package engine

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/blockplan/blockplan/pkg/devicetree"
	"github.com/blockplan/blockplan/pkg/model"
)

const (
	mib = uint64(1 << 20)
	gib = uint64(1 << 30)
)

// fixture is the shared starting layout for engine tests: four 100 GiB
// disks, a /boot partition, and a volume group spanning two PVs with a
// root and a swap LV. Everything in it exists on "real media".
type fixture struct {
	tree *devicetree.Tree
	reg  *Registry

	sda, sdb, sdc, sdd *model.Device
	sda1, sda2, sdb1   *model.Device
	vg                 *model.Device
	lvRoot, lvSwap     *model.Device
}

func existingDisklabel() *model.Format {
	return &model.Format{Kind: model.FormatPartitionTable, Exists: true}
}

func existingExt4(size uint64) *model.Format {
	return &model.Format{
		Kind: model.FormatFilesystem, FSType: "ext4",
		Exists: true, Resizable: true,
		MinSize: 100 * mib, TargetSize: size,
	}
}

func existingPV() *model.Format {
	return &model.Format{Kind: model.FormatPhysicalVolume, Exists: true}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{tree: devicetree.New(zerolog.Nop())}
	f.reg = NewRegistry(f.tree, zerolog.Nop(), nil)

	f.sda = model.NewDevice("sda", model.KindDisk, 100*gib, true)
	f.sdb = model.NewDevice("sdb", model.KindDisk, 100*gib, true)
	f.sdc = model.NewDevice("sdc", model.KindDisk, 100*gib, true)
	f.sdd = model.NewDevice("sdd", model.KindDisk, 100*gib, true)
	for _, d := range []*model.Device{f.sda, f.sdb, f.sdc, f.sdd} {
		d.SetFormat(existingDisklabel())
	}

	f.sda1 = model.NewPartition("sda1", 1, 500*mib, true, f.sda)
	f.sda1.SetFormat(existingExt4(500 * mib))

	f.sda2 = model.NewPartition("sda2", 2, 99*gib, true, f.sda)
	f.sda2.SetFormat(existingPV())

	f.sdb1 = model.NewPartition("sdb1", 1, 99*gib, true, f.sdb)
	f.sdb1.SetFormat(existingPV())

	f.vg = model.NewDevice("VolGroup", model.KindVolumeGroup, 0, true, f.sda2, f.sdb1)

	f.lvRoot = model.NewDevice("VolGroup-lv_root", model.KindLogicalVolume, 160*gib, true, f.vg)
	f.lvRoot.SetFormat(existingExt4(160 * gib))

	f.lvSwap = model.NewDevice("VolGroup-lv_swap", model.KindLogicalVolume, 4*gib, true, f.vg)
	f.lvSwap.SetFormat(&model.Format{Kind: model.FormatSwap, Exists: true})

	for _, d := range []*model.Device{
		f.sda, f.sdb, f.sdc, f.sdd,
		f.sda1, f.sda2, f.sdb1,
		f.vg, f.lvRoot, f.lvSwap,
	} {
		if err := f.tree.AddDevice(d); err != nil {
			t.Fatalf("Expected fixture device %s to add cleanly, got: %v", d.Name, err)
		}
	}
	return f
}

// mustAction fails the test if an action constructor returned an error.
func mustAction(t *testing.T) func(a *Action, err error) *Action {
	return func(a *Action, err error) *Action {
		t.Helper()
		if err != nil {
			t.Fatalf("Expected action construction to succeed, got: %v", err)
		}
		return a
	}
}

// mustRegister registers a and fails the test on error.
func mustRegister(t *testing.T, r *Registry, a *Action) *Action {
	t.Helper()
	if err := r.Register(a); err != nil {
		t.Fatalf("Expected registration of %s to succeed, got: %v", a, err)
	}
	return a
}

// indexIn returns a's position in order, or -1.
func indexIn(order []*Action, a *Action) int {
	for i, act := range order {
		if act == a {
			return i
		}
	}
	return -1
}

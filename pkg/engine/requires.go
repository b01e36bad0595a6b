package engine

// Requires reports whether a must be ordered after b. It is an edge
// predicate feeding the topological sort, not a total order.
//
// The global rule puts every destroy and resize before every create,
// regardless of device relationship, so that a pruned plan can never
// interleave creates with destroys of unrelated devices. Membership
// actions are exempt from the global rule.
func (a *Action) Requires(b *Action) bool {
	if b == nil || a == b {
		return false
	}

	if a.isCreate() && (b.isDestroy() || b.isResize()) {
		return true
	}

	switch a.kind {
	case KindCreateDevice:
		return a.createDeviceRequires(b)
	case KindCreateFormat:
		return a.createFormatRequires(b)
	case KindDestroyDevice:
		return a.destroyDeviceRequires(b)
	case KindDestroyFormat:
		return a.destroyFormatRequires(b)
	case KindResizeDevice:
		return a.resizeDeviceRequires(b)
	case KindResizeFormat:
		return a.resizeFormatRequires(b)
	case KindAddMember:
		return a.addMemberRequires(b)
	case KindRemoveMember:
		return a.removeMemberRequires(b)
	}
	return false
}

// createDeviceRequires orders device creation bottom-up: ancestors first,
// lower-numbered partitions on the same disk first, and container
// membership settled before devices inside the container are created.
func (a *Action) createDeviceRequires(b *Action) bool {
	switch {
	case b.kind == KindCreateDevice && a.device.DependsOn(b.device):
		return true
	case b.kind == KindCreateDevice && samePartitionDisk(a, b):
		return a.device.PartNumber > b.device.PartNumber
	case b.isMember() && a.device.DependsOn(b.container):
		return true
	}
	return false
}

// createFormatRequires makes formatting wait for the creation of the target
// device and of everything underneath it, formats included.
func (a *Action) createFormatRequires(b *Action) bool {
	switch {
	case b.kind == KindCreateDevice &&
		(b.device == a.device || a.device.DependsOn(b.device)):
		return true
	case b.kind == KindCreateFormat && a.device.DependsOn(b.device):
		return true
	}
	return false
}

// destroyDeviceRequires orders destruction top-down: dependents first,
// higher-numbered partitions on the same disk first, the device's own
// format scrub first, and - for member devices - the aggregate they are
// bound into first.
func (a *Action) destroyDeviceRequires(b *Action) bool {
	switch {
	case b.kind == KindDestroyDevice && b.device.DependsOn(a.device):
		return true
	case b.kind == KindDestroyDevice && samePartitionDisk(a, b):
		return a.device.PartNumber < b.device.PartNumber
	case b.kind == KindDestroyFormat && b.device == a.device:
		return true
	case b.isDestroy() && b.device != a.device &&
		a.device.Format().IsMemberBinding() && b.device.HasParent(a.device):
		// tear down the consumer (array, VG) before the supplier
		return true
	}
	return false
}

// destroyFormatRequires destroys dependents before the format underneath
// them goes away.
func (a *Action) destroyFormatRequires(b *Action) bool {
	return b.isDestroy() && b.device != a.device && b.device.DependsOn(a.device)
}

// resizeDeviceRequires: shrink the data layer before its holder and upper
// layers before lower ones; grow lower layers before upper ones.
func (a *Action) resizeDeviceRequires(b *Action) bool {
	if a.isShrink() {
		switch {
		case b.kind == KindResizeFormat && b.device == a.device && b.isShrink():
			return true
		case b.isResize() && b.device != a.device && b.isShrink() &&
			b.device.DependsOn(a.device):
			return true
		}
		return false
	}
	return b.isResize() && b.device != a.device && b.isGrow() &&
		a.device.DependsOn(b.device)
}

// resizeFormatRequires: grow the holding device before the format, and any
// ancestors before that. Shrinking a format requires nothing; the holder's
// shrink orders itself after the format via resizeDeviceRequires.
func (a *Action) resizeFormatRequires(b *Action) bool {
	if !a.isGrow() {
		return false
	}
	switch {
	case b.kind == KindResizeDevice && b.device == a.device && b.isGrow():
		return true
	case b.isResize() && b.device != a.device && b.isGrow() &&
		a.device.DependsOn(b.device):
		return true
	}
	return false
}

// addMemberRequires waits for the member device and its binding format to
// be created.
func (a *Action) addMemberRequires(b *Action) bool {
	return (b.kind == KindCreateDevice || b.kind == KindCreateFormat) &&
		b.device == a.device
}

// removeMemberRequires orders additions to a container before removals from
// it, so the container never transiently loses capacity it still needs.
func (a *Action) removeMemberRequires(b *Action) bool {
	return b.kind == KindAddMember && b.container == a.container && b.id < a.id
}

// samePartitionDisk reports whether both actions target partitions on the
// same disk.
func samePartitionDisk(a, b *Action) bool {
	ad, bd := a.device.Disk(), b.device.Disk()
	return ad != nil && ad == bd
}

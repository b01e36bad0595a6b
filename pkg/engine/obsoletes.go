package engine

// Obsoletes reports whether a renders the previously proposed b moot, so b
// can be dropped from the plan instead of both being executed. Except where
// noted, only an earlier action (lower id) can be obsoleted by a later one.
func (a *Action) Obsoletes(b *Action) bool {
	if b == nil {
		return false
	}

	switch a.kind {
	case KindCreateDevice:
		// last create wins
		return b.kind == KindCreateDevice && b.device == a.device && b.id < a.id

	case KindCreateFormat:
		// a fresh format supersedes earlier formats and pending resizes
		// of the old one
		return (b.kind == KindCreateFormat || b.kind == KindResizeFormat) &&
			b.device == a.device && b.id < a.id

	case KindResizeDevice:
		return b.kind == KindResizeDevice && b.device == a.device && b.id < a.id

	case KindResizeFormat:
		return b.kind == KindResizeFormat && b.device == a.device && b.id < a.id

	case KindDestroyFormat:
		if b.device != a.device {
			return false
		}
		if b == a {
			// destroying a format that never existed is a no-op
			return !a.prevFormat.Exists
		}
		return b.Object() == ObjectFormat && b.id < a.id

	case KindDestroyDevice:
		if b.device != a.device {
			return false
		}
		if !a.device.Exists {
			// the device never needs to exist; its entire pending
			// history, this destroy included, is moot
			return b.id < a.id || b == a
		}
		return b.id < a.id &&
			b.kind != KindDestroyDevice && b.kind != KindDestroyFormat

	case KindAddMember:
		// an add undone by a remove of the same pair cancels both
		return b.kind == KindRemoveMember && samePair(a, b)

	case KindRemoveMember:
		if b.kind == KindAddMember && samePair(a, b) {
			return true
		}
		// repeating a removal is redundant with the original intent:
		// the earlier-registered removal wins
		return b.kind == KindRemoveMember && samePair(a, b) && a.id < b.id
	}
	return false
}

// samePair reports whether two membership actions target the identical
// (container, member) pair.
func samePair(a, b *Action) bool {
	return a.container == b.container && a.device == b.device
}

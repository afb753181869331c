package spiopen

// Typed and composable helpers for FrameFilter.

// ByID returns a filter that matches frames with the exact identifier.
func ByID(id uint32) FrameFilter {
	return func(f Frame) bool { return f.CANIdentifier == id }
}

// ByIDs returns a filter that matches any of the provided identifiers.
func ByIDs(ids ...uint32) FrameFilter {
	m := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return func(f Frame) bool {
		_, ok := m[f.CANIdentifier]
		return ok
	}
}

// ByRange matches frames whose identifier is within [minID, maxID], inclusive.
func ByRange(minID, maxID uint32) FrameFilter {
	if maxID < minID {
		minID, maxID = maxID, minID
	}
	return func(f Frame) bool { return f.CANIdentifier >= minID && f.CANIdentifier <= maxID }
}

// ByMask matches when (frame.CANIdentifier & mask) == (id & mask).
func ByMask(id uint32, mask uint32) FrameFilter {
	want := id & mask
	return func(f Frame) bool { return (f.CANIdentifier & mask) == want }
}

// StandardOnly matches frames with an 11-bit base identifier.
func StandardOnly() FrameFilter {
	return func(f Frame) bool { return !f.Flags.IDE }
}

// ExtendedOnly matches frames with a 29-bit extended identifier.
func ExtendedOnly() FrameFilter {
	return func(f Frame) bool { return f.Flags.IDE }
}

// DataOnly matches non-RTR frames.
func DataOnly() FrameFilter {
	return func(f Frame) bool { return !f.Flags.RTR }
}

// RTROnly matches remote transmission request frames.
func RTROnly() FrameFilter {
	return func(f Frame) bool { return f.Flags.RTR }
}

// LenAtMost matches frames whose payload is at most n bytes.
func LenAtMost(n int) FrameFilter {
	return func(f Frame) bool { return len(f.Payload) <= n }
}

// LenExactly matches frames whose payload is exactly n bytes.
func LenExactly(n int) FrameFilter {
	return func(f Frame) bool { return len(f.Payload) == n }
}

// FDOnly matches CAN-FD frames.
func FDOnly() FrameFilter {
	return func(f Frame) bool { return f.Flags.FDF }
}

// XLOnly matches CAN-XL frames.
func XLOnly() FrameFilter {
	return func(f Frame) bool { return f.Flags.XLF }
}

// And composes two filters; the result matches when both match.
func And(a, b FrameFilter) FrameFilter {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(f Frame) bool { return a(f) && b(f) }
	}
}

// Or composes two filters; the result matches when either matches.
func Or(a, b FrameFilter) FrameFilter {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(f Frame) bool { return a(f) || b(f) }
	}
}

// Not inverts a filter.
func Not(a FrameFilter) FrameFilter {
	if a == nil {
		return func(f Frame) bool { return true }
	}
	return func(f Frame) bool { return !a(f) }
}

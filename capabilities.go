package spiopen

// Capabilities selects which CAN payload modes a Codec will accept.
// Rather than a compile-time flag, this is an ordinary runtime value
// threaded through NewCodec, so a single binary can run codecs with
// different capability sets (e.g. a bridge talking to both an FD-only
// segment and a mixed FD/XL segment).
type Capabilities struct {
	CANFD bool
	CANXL bool
}

// FullCapabilities enables every payload mode.
var FullCapabilities = Capabilities{CANFD: true, CANXL: true}

// ClassicOnlyCapabilities enables neither CAN-FD nor CAN-XL.
var ClassicOnlyCapabilities = Capabilities{}

// Codec binds a Capabilities policy to the WriteFrame/ReadFrame/
// ReadAndCopyFrame operations. It holds no per-frame state; the same
// Codec may serialize or parse any number of unrelated Frame/buffer
// pairs, concurrently, from multiple goroutines.
type Codec struct {
	Capabilities Capabilities
}

// NewCodec returns a Codec enforcing the given capability set.
func NewCodec(caps Capabilities) *Codec {
	return &Codec{Capabilities: caps}
}

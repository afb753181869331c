package spiopen

// Flags holds the eight 1-bit fields carried in every frame's format
// header and CAN identifier region.
type Flags struct {
	RTR bool // remote transmission request / remote request substitution
	BRS bool // bit-rate switch
	ESI bool // error-state indicator
	IDE bool // identifier extension: base 11-bit vs extended 29-bit
	FDF bool // CAN-FD format
	XLF bool // CAN-XL format
	TTL bool // time-to-live byte is present
	WA  bool // word-alignment padding requested
}

// XLControl is the CAN-XL control block, meaningful iff Flags.XLF is set.
type XLControl struct {
	PayloadType         uint8
	VirtualCANNetworkID uint8
	AddressingField     uint32
}

// Frame is the logical, in-memory representation of one SpIOpen frame.
//
// Frame does not own Payload: it aliases a byte range inside whatever
// buffer produced it (the buffer passed to Codec.ReadFrame, or the
// buffer a FrameBuffer holds). The caller must keep that buffer alive
// and unmodified for as long as Payload is read.
type Frame struct {
	CANIdentifier uint32
	Flags         Flags
	TimeToLive    uint8
	XLControl     XLControl
	Payload       []byte
}

// Reset zeroes every field, including unbinding Payload.
func (f *Frame) Reset() {
	*f = Frame{}
}

// HeaderLength returns the number of header bytes preceding the
// payload: the format header, the optional XL length field and XL
// control block, the CAN identifier, and the optional TTL byte.
//
// This folds XLDataLengthSize into the header length whenever XLF is
// set, so that it stays consistent with the field actually written to
// the wire in that mode.
func (f *Frame) HeaderLength() int {
	n := FormatHeaderSize + CANIdentifierSize
	if f.Flags.IDE {
		n += CANIdentifierExtSize
	}
	if f.Flags.TTL {
		n += TimeToLiveSize
	}
	if f.Flags.XLF {
		n += XLDataLengthSize + XLControlSize
	}
	return n
}

// wirePayloadLength returns the number of payload bytes that will
// actually appear on the wire, which for CAN-FD may exceed
// len(f.Payload) once rounded up to the nearest DLC table entry.
func (f *Frame) wirePayloadLength() int {
	n := len(f.Payload)
	if f.Flags.FDF {
		return fdDLCTable[fdDLCForLength(n)]
	}
	return n
}

// crcSize returns the CRC width in bytes for this frame's logical
// payload length: 2 (CRC-16-CCITT) for len <= 8, else 4 (CRC-32/MPEG-2).
func (f *Frame) crcSize() int {
	if len(f.Payload) <= MaxCCPayloadSize {
		return ShortCRCSize
	}
	return LongCRCSize
}

// FrameLength returns the total on-wire length of the frame as it
// would be written by Codec.WriteFrame: preamble, header, wire
// payload (including any CAN-FD padding), CRC, and word-alignment
// padding if requested and the running total would otherwise be odd.
func (f *Frame) FrameLength() int {
	n := PreambleSize + f.HeaderLength() + f.wirePayloadLength() + f.crcSize()
	if f.Flags.WA && n%2 != 0 {
		n++
	}
	return n
}

// DecrementAndCheckTTL decrements TimeToLive when Flags.TTL is set and
// reports whether the counter reached zero as a result. When TTL is not
// set, it always returns false and leaves TimeToLive untouched.
func (f *Frame) DecrementAndCheckTTL() bool {
	if !f.Flags.TTL {
		return false
	}
	if f.TimeToLive == 0 {
		return false
	}
	f.TimeToLive--
	return f.TimeToLive == 0
}

// maxPayloadForMode returns the maximum payload length permitted by the
// frame's declared mode, used by the writer to validate input.
func (f *Frame) maxPayloadForMode() int {
	switch {
	case f.Flags.XLF:
		return MaxXLPayloadSize
	case f.Flags.FDF:
		return MaxFDPayloadSize
	default:
		return MaxCCPayloadSize
	}
}

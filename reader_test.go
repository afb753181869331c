package spiopen

import (
	"bytes"
	"testing"
)

func writeFrame(t *testing.T, codec *Codec, f *Frame) []byte {
	t.Helper()
	buf := make([]byte, f.FrameLength())
	if _, err := codec.WriteFrame(f, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf
}

func assertFrameEqual(t *testing.T, got, want Frame) {
	t.Helper()
	if got.CANIdentifier != want.CANIdentifier {
		t.Fatalf("CANIdentifier: got 0x%X, want 0x%X", got.CANIdentifier, want.CANIdentifier)
	}
	if got.Flags != want.Flags {
		t.Fatalf("Flags: got %+v, want %+v", got.Flags, want.Flags)
	}
	if want.Flags.TTL && got.TimeToLive != want.TimeToLive {
		t.Fatalf("TimeToLive: got %d, want %d", got.TimeToLive, want.TimeToLive)
	}
	if want.Flags.XLF && got.XLControl != want.XLControl {
		t.Fatalf("XLControl: got %+v, want %+v", got.XLControl, want.XLControl)
	}
	if !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("Payload: got %x, want %x", got.Payload, want.Payload)
	}
}

func TestRoundTripSeedScenarios(t *testing.T) {
	codec := NewCodec(FullCapabilities)

	scenarios := []Frame{
		// 1. Classic, base ID, no flags.
		{CANIdentifier: 0x123, Payload: []byte{0x11, 0x22, 0x33}},
		// 2. Extended ID, RTR, TTL=5, WA, 8-byte payload.
		{
			CANIdentifier: 0x1ABCDE,
			Flags:         Flags{IDE: true, RTR: true, TTL: true, WA: true},
			TimeToLive:    5,
			Payload:       []byte{0, 1, 2, 3, 4, 5, 6, 7},
		},
		// 3. CAN-FD, payload length 20, ESI.
		{CANIdentifier: 0x7FF, Flags: Flags{FDF: true, ESI: true}, Payload: make([]byte, 20)},
		// 4. CAN-FD, payload length 9 (rounds up to DLC table entry 12).
		{CANIdentifier: 0x10, Flags: Flags{FDF: true}, Payload: make([]byte, 9)},
		// 5. CAN-XL, 1024-byte payload, full XL control.
		{
			CANIdentifier: 0x001,
			Flags:         Flags{XLF: true},
			XLControl:     XLControl{PayloadType: 0x03, VirtualCANNetworkID: 0x42, AddressingField: 0xCAFEBABE},
			Payload:       make([]byte, 1024),
		},
	}

	for i, f := range scenarios {
		buf := writeFrame(t, codec, &f)
		var got Frame
		if _, err := codec.ReadFrame(buf, &got, 0); err != nil {
			t.Fatalf("scenario %d: read: %v", i+1, err)
		}
		assertFrameEqual(t, got, f)
	}
}

func TestSeedScenario1Lengths(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{CANIdentifier: 0x123, Payload: []byte{0x11, 0x22, 0x33}}
	if got := f.HeaderLength(); got != 4 {
		t.Fatalf("header length = %d, want 4", got)
	}
	if got := f.FrameLength(); got != 11 {
		t.Fatalf("frame length = %d, want 11", got)
	}
	buf := writeFrame(t, codec, &f)
	if got := crc16CCITT(buf[PreambleSize : len(buf)-ShortCRCSize]); len(buf[PreambleSize:len(buf)-ShortCRCSize]) != 7 {
		t.Fatalf("CRC region length = %d, want 7 (4 header + 3 payload; crc=0x%04X)", len(buf[PreambleSize:len(buf)-ShortCRCSize]), got)
	}
}

func TestSeedScenario2NoExtraPadding(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{
		CANIdentifier: 0x1ABCDE,
		Flags:         Flags{IDE: true, RTR: true, TTL: true, WA: true},
		TimeToLive:    5,
		Payload:       []byte{0, 1, 2, 3, 4, 5, 6, 7},
	}
	result, err := codec.WriteFrame(&f, make([]byte, f.FrameLength()))
	if err != nil {
		t.Fatal(err)
	}
	if result.FramePaddingAdded != 1 {
		t.Fatalf("expected one WA pad byte (2 preamble + 7 header + 8 payload + 2 crc = 19 is odd), got %d", result.FramePaddingAdded)
	}
	if result.TotalLength != 20 {
		t.Fatalf("total length = %d, want 20", result.TotalLength)
	}
}

func TestSeedScenario4FDPadding(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{CANIdentifier: 0x10, Flags: Flags{FDF: true}, Payload: make([]byte, 9)}
	result, err := codec.WriteFrame(&f, make([]byte, f.FrameLength()))
	if err != nil {
		t.Fatal(err)
	}
	if result.PayloadPaddingAdded != 3 {
		t.Fatalf("padding added = %d, want 3 (9 -> 12)", result.PayloadPaddingAdded)
	}

	buf := writeFrame(t, codec, &f)
	var got Frame
	if _, err := codec.ReadFrame(buf, &got, 0); err != nil {
		t.Fatal(err)
	}
	if len(got.Payload) != 12 {
		t.Fatalf("reader reported payload length %d, want 12", len(got.Payload))
	}
}

func TestSeedScenario6SingleBitCorrectionReported(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{CANIdentifier: 0x55, Payload: []byte{1, 2}}
	buf := writeFrame(t, codec, &f)

	buf[PreambleSize] ^= 0x01 // flip one bit of the format header's high byte
	var got Frame
	result, err := codec.ReadFrame(buf, &got, 0)
	if err != nil {
		t.Fatalf("expected silent correction, got error: %v", err)
	}
	if !result.DLCCorrected {
		t.Fatal("expected DLCCorrected=true")
	}
	assertFrameEqual(t, got, f)
}

func TestReaderCRCSensitivity(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{CANIdentifier: 0x123, Payload: []byte{0x11, 0x22, 0x33, 0x44, 0x55}}
	buf := writeFrame(t, codec, &f)
	crcStart := len(buf) - f.crcSize()

	for i := PreambleSize; i < crcStart; i++ {
		corrupted := append([]byte(nil), buf...)
		corrupted[i] ^= 0xFF // a whole-byte flip; a single header bit flip is corrected instead (scenario 6)
		var got Frame
		_, err := codec.ReadFrame(corrupted, &got, 0)
		if err != ErrCRCMismatch && err != ErrFormatDLCCorrupted {
			t.Fatalf("byte %d: got err=%v, want CRCMismatch or FormatDLCCorrupted", i, err)
		}
	}
}

func TestReaderRejectsUnsupportedModes(t *testing.T) {
	codec := NewCodec(ClassicOnlyCapabilities)
	full := NewCodec(FullCapabilities)

	fd := Frame{Flags: Flags{FDF: true}, Payload: make([]byte, 4)}
	buf := writeFrame(t, full, &fd)
	var got Frame
	if _, err := codec.ReadFrame(buf, &got, 0); err != ErrCANFDNotSupported {
		t.Fatalf("expected ErrCANFDNotSupported, got %v", err)
	}
}

func TestReaderFDFAndXLFRejected(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{Payload: []byte{1, 2}}
	buf := writeFrame(t, codec, &f)
	// Force both FDF and XLF bits on in the already-encoded header word.
	hv := uint16(secded16Decode11(uint16(buf[PreambleSize])<<8 | uint16(buf[PreambleSize+1])).Data11)
	hv |= flagFDF | flagXLF
	word := secded16Encode11(hv)
	buf[PreambleSize] = byte(word >> 8)
	buf[PreambleSize+1] = byte(word)

	var got Frame
	if _, err := codec.ReadFrame(buf, &got, 0); err != ErrDLCInvalid {
		t.Fatalf("expected ErrDLCInvalid for FDF+XLF, got %v", err)
	}
}

func TestReadAndCopyFrameBitSlipIdempotence(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{CANIdentifier: 0x321, Flags: Flags{IDE: true}, Payload: []byte{0xDE, 0xAD, 0xBE, 0xEF}}
	aligned := writeFrame(t, codec, &f)

	for k := 0; k <= 7; k++ {
		shifted := shiftLeftIntoLongerBuffer(aligned, k)
		match := FindFramePreamble(shifted, 0, true)
		if match.FrameStartOffset == PreambleNotFound {
			t.Fatalf("k=%d: preamble not found", k)
		}
		if match.BitSlipCount != k {
			t.Fatalf("k=%d: reported bit slip %d", k, match.BitSlipCount)
		}
		dst := make([]byte, len(aligned)+1)
		var got Frame
		if k == 0 {
			if _, err := codec.ReadFrame(shifted, &got, match.FrameStartOffset); err != nil {
				t.Fatalf("k=0: read: %v", err)
			}
		} else {
			if _, err := codec.ReadAndCopyFrame(shifted, &got, dst, match.FrameStartOffset, match.BitSlipCount); err != nil {
				t.Fatalf("k=%d: read and copy: %v", k, err)
			}
		}
		assertFrameEqual(t, got, f)
	}
}

// shiftLeftIntoLongerBuffer returns a new buffer one byte longer than
// data, holding data's bit stream preceded by k zero bits (0..7), so
// that the original byte-aligned content now straddles a byte boundary
// by k bits: the inverse of the (src[i]<<k)|(src[i+1]>>(8-k)) getter in
// ReadAndCopyFrame.
func shiftLeftIntoLongerBuffer(data []byte, k int) []byte {
	out := make([]byte, len(data)+1)
	if k == 0 {
		copy(out, data)
		return out
	}
	for i := range out {
		var hi, lo byte
		if i > 0 {
			hi = data[i-1] << uint(8-k)
		}
		if i < len(data) {
			lo = data[i] >> uint(k)
		}
		out[i] = hi | lo
	}
	return out
}

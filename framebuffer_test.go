package spiopen

import (
	"bytes"
	"testing"
)

func TestFrameBufferWriteThenRead(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{CANIdentifier: 0x55, Payload: []byte{0xAB, 0xCD}}
	buf := make([]byte, f.FrameLength())

	fb := NewFrameBuffer(codec, buf)
	if _, err := fb.LoadFrameAndWriteInternalBuffer(f); err != nil {
		t.Fatalf("write: %v", err)
	}

	other := NewFrameBuffer(codec, buf)
	if _, err := other.ReadInternalBuffer(); err != nil {
		t.Fatalf("read: %v", err)
	}
	got := other.Frame()
	if got.CANIdentifier != f.CANIdentifier || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestFrameBufferLoadAndReadWithBitSlip(t *testing.T) {
	codec := NewCodec(FullCapabilities)
	f := Frame{CANIdentifier: 0x42, Flags: Flags{IDE: true}, Payload: []byte{1, 2, 3}}
	aligned := make([]byte, f.FrameLength())
	if _, err := codec.WriteFrame(&f, aligned); err != nil {
		t.Fatal(err)
	}
	shifted := shiftLeftIntoLongerBuffer(aligned, 3)
	match := FindFramePreamble(shifted, 0, true)
	if match.FrameStartOffset == PreambleNotFound {
		t.Fatal("expected to find a bit-slipped preamble")
	}

	fb := NewFrameBuffer(codec, make([]byte, len(aligned)+1))
	if _, err := fb.LoadAndReadInternalBuffer(shifted, match.FrameStartOffset, match.BitSlipCount); err != nil {
		t.Fatalf("load and read: %v", err)
	}
	got := fb.Frame()
	if got.CANIdentifier != f.CANIdentifier || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("mismatch after bit-slip recovery: got %+v", got)
	}
}

func TestFrameBufferBufferAccessor(t *testing.T) {
	buf := make([]byte, 16)
	fb := NewFrameBuffer(NewCodec(FullCapabilities), buf)
	if &fb.Buffer()[0] != &buf[0] {
		t.Fatal("Buffer() should return the same backing array, not a copy")
	}
}

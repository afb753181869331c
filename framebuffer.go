package spiopen

import (
	"context"
	"log/slog"
)

// FrameBufferLogOption selects which FrameBuffer operations get a
// structured log line, mirroring the bitmask-selected logging used by
// the Bus decorator in logged.go.
type FrameBufferLogOption uint8

const (
	FrameBufferLogNone  FrameBufferLogOption = 0
	FrameBufferLogRead  FrameBufferLogOption = 1 << 0
	FrameBufferLogWrite FrameBufferLogOption = 1 << 1
	FrameBufferLogAll   FrameBufferLogOption = FrameBufferLogRead | FrameBufferLogWrite
)

// FrameBuffer binds one Frame to one backing byte buffer, so that a
// caller looping over a fixed-size receive or transmit buffer does not
// need to track the Frame and []byte separately. It is the convenience
// type most callers reach for instead of calling Codec.WriteFrame or
// Codec.ReadFrame directly.
type FrameBuffer struct {
	codec *Codec
	buf   []byte
	frame Frame

	logger  *slog.Logger
	level   slog.Level
	logOpts FrameBufferLogOption
}

// NewFrameBuffer returns a FrameBuffer that uses codec for all
// serialization and deserialization, backed by buf. buf is retained,
// not copied; its capacity bounds the largest frame the buffer can
// hold.
func NewFrameBuffer(codec *Codec, buf []byte) *FrameBuffer {
	return &FrameBuffer{codec: codec, buf: buf}
}

// SetLogging attaches a logger to the buffer. Passing a nil logger
// disables logging regardless of opts.
func (fb *FrameBuffer) SetLogging(logger *slog.Logger, level slog.Level, opts FrameBufferLogOption) {
	fb.logger = logger
	fb.level = level
	fb.logOpts = opts
}

// Frame returns a pointer to the buffer's held Frame. Its Payload
// field aliases Buffer() after a successful read, or the caller's
// source after a successful LoadFrameAndWriteInternalBuffer.
func (fb *FrameBuffer) Frame() *Frame {
	return &fb.frame
}

// Buffer returns the backing byte buffer.
func (fb *FrameBuffer) Buffer() []byte {
	return fb.buf
}

// WriteInternalBuffer serializes the held Frame into the backing
// buffer in place.
func (fb *FrameBuffer) WriteInternalBuffer() (WriteResult, error) {
	res, err := fb.codec.WriteFrame(&fb.frame, fb.buf)
	fb.logWrite(res, err)
	return res, err
}

// ReadInternalBuffer parses a frame out of the backing buffer,
// starting at offset 0, into the held Frame. The held Frame's Payload
// aliases the backing buffer afterward.
func (fb *FrameBuffer) ReadInternalBuffer() (ReadResult, error) {
	res, err := fb.codec.ReadFrame(fb.buf, &fb.frame, 0)
	fb.logRead(res, err)
	return res, err
}

// LoadAndReadInternalBuffer parses a frame out of src starting at
// srcOffset, correcting a bit slip of bitSlipCount bits (0 for a
// byte-aligned preamble), and copies the realigned bytes into the
// backing buffer before updating the held Frame. This is the call a
// stream reader makes after FindFramePreamble reports BitSlipCount > 0.
func (fb *FrameBuffer) LoadAndReadInternalBuffer(src []byte, srcOffset, bitSlipCount int) (ReadResult, error) {
	res, err := fb.codec.ReadAndCopyFrame(src, &fb.frame, fb.buf, srcOffset, bitSlipCount)
	fb.logRead(res, err)
	return res, err
}

// LoadFrameAndWriteInternalBuffer replaces the held Frame with frame
// and immediately serializes it into the backing buffer.
func (fb *FrameBuffer) LoadFrameAndWriteInternalBuffer(frame Frame) (WriteResult, error) {
	fb.frame = frame
	return fb.WriteInternalBuffer()
}

func (fb *FrameBuffer) logRead(res ReadResult, err error) {
	if fb.logger == nil || fb.logOpts&FrameBufferLogRead == 0 {
		return
	}
	if err != nil {
		fb.logger.Log(context.Background(), fb.level, "frame buffer read failed", "error", err)
		return
	}
	fb.logger.Log(context.Background(), fb.level, "frame buffer read",
		"id", fb.frame.CANIdentifier, "len", len(fb.frame.Payload), "dlc_corrected", res.DLCCorrected)
}

func (fb *FrameBuffer) logWrite(res WriteResult, err error) {
	if fb.logger == nil || fb.logOpts&FrameBufferLogWrite == 0 {
		return
	}
	if err != nil {
		fb.logger.Log(context.Background(), fb.level, "frame buffer write failed", "error", err)
		return
	}
	fb.logger.Log(context.Background(), fb.level, "frame buffer write",
		"id", fb.frame.CANIdentifier, "total_length", res.TotalLength)
}

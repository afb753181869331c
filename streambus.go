package spiopen

import (
	"context"
	"io"
	"sync"
)

// StreamBus implements Bus over any raw, duplex byte stream: a serial
// port, an SPI/I2S bridge exposed as a character device, or, in tests,
// an in-memory pipe. It is the component that actually exercises
// FindFramePreamble and ReadAndCopyFrame: unlike LoopbackBus, frames
// arrive as an undifferentiated byte stream that may be bit-slipped
// relative to the reader's byte boundaries.
//
// conn's Read is expected to block until at least one byte is
// available, matching the blocking character-device semantics of a
// typical serial driver. Context cancellation on Receive is
// best-effort: it is only observed between read attempts, since
// io.Reader offers no portable way to abort an in-flight Read.
type StreamBus struct {
	codec *Codec
	conn  io.ReadWriter

	closeFn func() error

	mu      sync.Mutex
	pending []byte // unconsumed bytes read from conn but not yet resolved into a frame
	scratch []byte // reused write buffer sized to the largest frame seen
}

// NewStreamBus wraps conn. If conn also implements io.Closer, Close on
// the returned bus closes conn; otherwise Close is a no-op.
func NewStreamBus(codec *Codec, conn io.ReadWriter) *StreamBus {
	sb := &StreamBus{codec: codec, conn: conn, pending: make([]byte, 0, 4096)}
	if c, ok := conn.(io.Closer); ok {
		sb.closeFn = c.Close
	}
	return sb
}

// Send serializes frame and writes it to conn in one call.
func (sb *StreamBus) Send(ctx context.Context, frame Frame) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	need := frame.FrameLength()
	if cap(sb.scratch) < need {
		sb.scratch = make([]byte, need)
	}
	buf := sb.scratch[:need]
	if _, err := sb.codec.WriteFrame(&frame, buf); err != nil {
		return err
	}
	_, err := sb.conn.Write(buf)
	return err
}

// Receive pulls bytes from conn until a complete, CRC-valid frame can
// be recovered, correcting a bit slip if the preamble search finds one.
func (sb *StreamBus) Receive(ctx context.Context) (Frame, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	readMore := func() ([]byte, error) {
		chunk := make([]byte, 512)
		n, err := sb.conn.Read(chunk)
		if n > 0 {
			sb.pending = append(sb.pending, chunk[:n]...)
		}
		return sb.pending, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}

		match := FindFramePreamble(sb.pending, 0, true)
		if match.FrameStartOffset == PreambleNotFound {
			if _, err := readMore(); err != nil {
				return Frame{}, err
			}
			continue
		}

		var out Frame
		var err error
		if match.BitSlipCount == 0 {
			_, err = sb.codec.ReadFrame(sb.pending[match.FrameStartOffset:], &out, 0)
		} else {
			dst := make([]byte, len(sb.pending)-match.FrameStartOffset)
			_, err = sb.codec.ReadAndCopyFrame(sb.pending, &out, dst, match.FrameStartOffset, match.BitSlipCount)
		}

		switch {
		case err == nil:
			// out.Payload may alias sb.pending (the aligned path reads
			// directly from it); copy it out before the buffer below
			// is overwritten in place.
			payload := append([]byte(nil), out.Payload...)
			out.Payload = payload
			consumed := match.FrameStartOffset + out.FrameLength()
			sb.pending = append(sb.pending[:0], sb.pending[consumed:]...)
			return out, nil
		case err == ErrBufferTooShortForPreamble || err == ErrBufferTooShortToDetermineLength ||
			err == ErrBufferTooShortForHeader || err == ErrBufferTooShortForPayload:
			// Not enough bytes buffered yet to finish parsing this
			// candidate frame; pull more and retry from the same offset.
			if _, rerr := readMore(); rerr != nil {
				return Frame{}, rerr
			}
		default:
			// A malformed or CRC-mismatched candidate: drop the
			// preamble byte that started it and keep scanning instead
			// of getting stuck on a false-positive 0xAA 0xAA.
			sb.pending = append(sb.pending[:0], sb.pending[match.FrameStartOffset+1:]...)
		}
	}
}

// Close closes the underlying connection if it supports io.Closer.
func (sb *StreamBus) Close() error {
	if sb.closeFn == nil {
		return nil
	}
	return sb.closeFn()
}

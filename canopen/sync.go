package canopen

import (
	"context"
	"fmt"
	"time"

	spiopen "github.com/OpenIndustrialControl/SpIOpen"
)

// SYNC represents a CANopen SYNC message. Counter is optional (nil => length 0).
type SYNC struct {
	Counter *uint8
}

// MarshalCANFrame encodes the SYNC to a frame.
func (s SYNC) MarshalCANFrame() (spiopen.Frame, error) {
	var f spiopen.Frame
	f.CANIdentifier = COBID(FC_SYNC, 0)
	if s.Counter != nil {
		f.Payload = []byte{*s.Counter}
	}
	return f, nil
}

// UnmarshalCANFrame decodes the SYNC from a frame.
func (s *SYNC) UnmarshalCANFrame(f spiopen.Frame) error {
	fc, _, err := ParseCOBID(f.CANIdentifier)
	if err != nil {
		return err
	}
	if fc != FC_SYNC {
		return fmt.Errorf("canopen: not a SYNC frame (id=0x%X)", f.CANIdentifier)
	}
	switch len(f.Payload) {
	case 0:
		s.Counter = nil
	case 1:
		v := f.Payload[0]
		s.Counter = &v
	default:
		return fmt.Errorf("canopen: SYNC length %d invalid", len(f.Payload))
	}
	return nil
}

// SYNCWriter periodically transmits SYNC frames on the provided bus.
// If WithCounter is true, a counter byte (0..127 then wrap) is included.
type SYNCWriter struct {
	bus         spiopen.Bus
	interval    time.Duration
	withCounter bool

	stop chan struct{}
}

// NewSYNCWriter creates a SYNC writer that sends at the given interval.
// If withCounter is true, a modulo-128 counter byte is added per CiA 301.
func NewSYNCWriter(bus spiopen.Bus, interval time.Duration, withCounter bool) *SYNCWriter {
	return &SYNCWriter{bus: bus, interval: interval, withCounter: withCounter, stop: make(chan struct{})}
}

// Start launches a background goroutine that sends SYNC frames until Stop
// is called. Each call to Start launches another such goroutine.
func (w *SYNCWriter) Start() {
	if w.stop == nil {
		w.stop = make(chan struct{})
	}
	go w.run()
}

// Stop signals the writer's goroutines to stop. It returns without
// waiting for them to exit.
func (w *SYNCWriter) Stop() {
	if w.stop == nil {
		return
	}
	select {
	case <-w.stop:
		return
	default:
	}
	close(w.stop)
}

func (w *SYNCWriter) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	var counter uint8
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			var frame spiopen.Frame
			frame.CANIdentifier = COBID(FC_SYNC, 0)
			if w.withCounter {
				frame.Payload = []byte{counter & 0x7F}
				counter = (counter + 1) & 0x7F
			}
			_ = w.bus.Send(context.Background(), frame)
		}
	}
}

package spiopen

import (
	"context"
	"log/slog"
	"testing"
)

type recordSink struct {
	records []slog.Record
}

func (s *recordSink) Enabled(context.Context, slog.Level) bool { return true }
func (s *recordSink) Handle(_ context.Context, r slog.Record) error {
	// Make a deep copy of attributes because slog reuses the record during processing.
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool { attrs = append(attrs, a); return true })
	nr := slog.Record{Time: r.Time, Level: r.Level, PC: r.PC, Message: r.Message}
	for _, a := range attrs {
		nr.AddAttrs(a)
	}
	s.records = append(s.records, nr)
	return nil
}
func (s *recordSink) WithAttrs(attrs []slog.Attr) slog.Handler { return s }
func (s *recordSink) WithGroup(name string) slog.Handler       { return s }

func hasSlogMsg(records []slog.Record, level slog.Level, msg string) bool {
	for _, r := range records {
		if r.Level == level && r.Message == msg {
			return true
		}
	}
	return false
}

func TestLoggedBusWriteAndReadLogging(t *testing.T) {
	lb := NewLoopbackBus(NewCodec(FullCapabilities))
	defer lb.Close()

	sink := &recordSink{}
	logger := slog.New(sink)

	sender := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, LogWrite)
	receiver := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, LogRead)
	defer sender.Close()
	defer receiver.Close()

	frame := Frame{CANIdentifier: 0x123, Payload: []byte{1, 2, 3}}
	if err := sender.Send(context.Background(), frame); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := receiver.Receive(context.Background()); err != nil {
		t.Fatalf("receive: %v", err)
	}

	if !hasSlogMsg(sink.records, slog.LevelInfo, "spiopen send") {
		t.Fatalf("expected write log entry")
	}
	if !hasSlogMsg(sink.records, slog.LevelInfo, "spiopen receive") {
		t.Fatalf("expected read log entry")
	}
}

func TestLoggedBusLogAllCoversBothDirections(t *testing.T) {
	lb := NewLoopbackBus(NewCodec(FullCapabilities))
	defer lb.Close()

	sink := &recordSink{}
	logger := slog.New(sink)

	sender := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, LogAll)
	receiver := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, LogAll)
	defer sender.Close()
	defer receiver.Close()

	frame := Frame{CANIdentifier: 0x456, Payload: []byte{9}}
	if err := sender.Send(context.Background(), frame); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := receiver.Receive(context.Background()); err != nil {
		t.Fatalf("receive: %v", err)
	}

	if !hasSlogMsg(sink.records, slog.LevelInfo, "spiopen send") {
		t.Fatalf("expected a send log entry under LogAll")
	}
	if !hasSlogMsg(sink.records, slog.LevelInfo, "spiopen receive") {
		t.Fatalf("expected a receive log entry under LogAll")
	}
}

func TestLoggedBusFilterGating(t *testing.T) {
	lb := NewLoopbackBus(NewCodec(FullCapabilities))
	defer lb.Close()

	sink := &recordSink{}
	logger := slog.New(sink)

	sender := NewLoggedBusWithFilter(lb.Open(), logger, slog.LevelInfo, LogWrite, ByID(0x700))
	receiver := lb.Open()
	defer sender.Close()
	defer receiver.Close()

	if err := sender.Send(context.Background(), Frame{CANIdentifier: 0x123}); err != nil {
		t.Fatalf("send (filtered out): %v", err)
	}
	if _, err := receiver.Receive(context.Background()); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if hasSlogMsg(sink.records, slog.LevelInfo, "spiopen send") {
		t.Fatalf("did not expect a log entry for a frame the filter rejects")
	}

	if err := sender.Send(context.Background(), Frame{CANIdentifier: 0x700}); err != nil {
		t.Fatalf("send (filtered in): %v", err)
	}
	if _, err := receiver.Receive(context.Background()); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !hasSlogMsg(sink.records, slog.LevelInfo, "spiopen send") {
		t.Fatalf("expected a log entry for a frame the filter accepts")
	}
}

func TestLoggedBusErrorLogging(t *testing.T) {
	lb := NewLoopbackBus(NewCodec(FullCapabilities))
	rx := lb.Open()
	_ = rx.Close()

	sink := &recordSink{}
	logger := slog.New(sink)
	wrapped := NewLoggedBus(rx, logger, slog.LevelInfo, LogRead)
	_, _ = wrapped.Receive(context.Background())

	if !hasSlogMsg(sink.records, slog.LevelError, "spiopen receive error") {
		t.Fatalf("expected receive error log entry")
	}
}

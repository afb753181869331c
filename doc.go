// Package spiopen implements the SpIOpen frame codec: a CAN-compatible
// wire protocol carried over SPI-like daisy-chained point-to-point links.
//
// It includes:
//   - A core Frame type covering CAN classic, CAN-FD and CAN-XL payload
//     modes, with validation and binary marshaling via Writer/Reader
//   - SECDED(16,11) header protection and dual-width CRC validation
//   - Preamble scanning with bit-slip recovery for free-running serial links
//   - FrameBuffer, a convenience binding of one Frame to one byte buffer
//   - A Bus abstraction, in-memory loopback bus, filters, a slog-based
//     logging decorator and a StreamBus carrying the codec over any
//     io.ReadWriter, including a serial port opened via OpenSerialPort,
//     for higher layers built on top of the codec
package spiopen

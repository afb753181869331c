package spiopen

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaudRate is the line rate assumed for a daisy-chain link
// carried over a UART bridge when the caller does not specify one.
const DefaultBaudRate = 1000000

// readTimeout bounds how long a single Read on the underlying port
// blocks before returning zero bytes, so StreamBus.Receive's context
// deadline stays responsive even when the link is idle.
const readTimeout = 5 * time.Millisecond

// OpenSerialPort opens the character device at path (a UART, or a
// serial line exposed by an SPI/I2S-to-UART bridge) and configures it
// for raw byte I/O at baudRate, 8 data bits, no parity, no flow
// control. The returned port should be wrapped in a StreamBus.
func OpenSerialPort(path string, baudRate int) (serial.Port, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("spiopen: open serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("spiopen: set read timeout on %s: %w", path, err)
	}
	return port, nil
}

// ListSerialPorts enumerates the host's serial devices, for discovering
// which character device a daisy-chain link enumerates as before
// calling OpenSerialPort.
func ListSerialPorts() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("spiopen: enumerate serial ports: %w", err)
	}
	return ports, nil
}

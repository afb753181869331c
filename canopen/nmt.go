package canopen

import (
	"fmt"

	spiopen "github.com/OpenIndustrialControl/SpIOpen"
)

// NMTCommand is the command specifier for the NMT service.
type NMTCommand uint8

const (
	NMTStart              NMTCommand = 0x01
	NMTStop               NMTCommand = 0x02
	NMTEnterPreOperational NMTCommand = 0x80
	NMTResetNode          NMTCommand = 0x81
	NMTResetCommunication NMTCommand = 0x82
)

// NMTState encodes the node state as used in heartbeat.
type NMTState uint8

const (
	StateBootup         NMTState = 0x00
	StateStopped        NMTState = 0x04
	StateOperational    NMTState = 0x05
	StatePreOperational NMTState = 0x7F
)

// buildNMT builds an NMT command frame. node 0 means broadcast.
func buildNMT(cmd NMTCommand, node uint8) spiopen.Frame {
	var f spiopen.Frame
	f.CANIdentifier = COBID(FC_NMT, 0)
	f.Payload = []byte{byte(cmd), node}
	return f
}

// parseNMT decodes an NMT frame payload, returning command and target node.
func parseNMT(f spiopen.Frame) (NMTCommand, uint8, error) {
	if f.CANIdentifier != COBID(FC_NMT, 0) {
		return 0, 0, fmt.Errorf("canopen: not an NMT frame (id=0x%X)", f.CANIdentifier)
	}
	if len(f.Payload) < 2 {
		return 0, 0, fmt.Errorf("canopen: NMT frame too short: %d", len(f.Payload))
	}
	return NMTCommand(f.Payload[0]), f.Payload[1], nil
}

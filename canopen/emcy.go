package canopen

import (
	"encoding/binary"
	"fmt"

	spiopen "github.com/OpenIndustrialControl/SpIOpen"
)

// Emergency represents an EMCY message including node id and payload.
// Layout (8 bytes total):
//
//	0..1: Error code (little-endian)
//	2:    Error register
//	3..7: Manufacturer specific data
type Emergency struct {
	Node          NodeID
	ErrorCode     uint16
	ErrorRegister uint8
	Manufacturer  [5]byte
}

// MarshalCANFrame encodes the EMCY event to a frame.
func (e Emergency) MarshalCANFrame() (spiopen.Frame, error) {
	payload := Emergency{ErrorCode: e.ErrorCode, ErrorRegister: e.ErrorRegister, Manufacturer: e.Manufacturer}
	return buildEMCY(e.Node, payload)
}

// UnmarshalCANFrame decodes the EMCY event from a frame.
func (e *Emergency) UnmarshalCANFrame(f spiopen.Frame) error {
	node, payload, err := parseEMCY(f)
	if err != nil {
		return err
	}
	e.Node = node
	e.ErrorCode = payload.ErrorCode
	e.ErrorRegister = payload.ErrorRegister
	e.Manufacturer = payload.Manufacturer
	return nil
}

// buildEMCY builds an EMCY frame for the given node.
func buildEMCY(node NodeID, e Emergency) (spiopen.Frame, error) {
	if err := node.Validate(); err != nil {
		return spiopen.Frame{}, err
	}
	var f spiopen.Frame
	f.CANIdentifier = COBID(FC_EMCY, node)
	f.Payload = make([]byte, 8)
	binary.LittleEndian.PutUint16(f.Payload[0:2], e.ErrorCode)
	f.Payload[2] = e.ErrorRegister
	copy(f.Payload[3:8], e.Manufacturer[:])
	return f, nil
}

// parseEMCY decodes an EMCY payload from a frame.
func parseEMCY(f spiopen.Frame) (NodeID, Emergency, error) {
	if len(f.Payload) < 8 {
		return 0, Emergency{}, fmt.Errorf("canopen: emcy too short: %d", len(f.Payload))
	}
	fc, node, err := ParseCOBID(f.CANIdentifier)
	if err != nil {
		return 0, Emergency{}, err
	}
	if fc != FC_EMCY {
		return 0, Emergency{}, fmt.Errorf("canopen: not an emcy frame (id=0x%X)", f.CANIdentifier)
	}
	var e Emergency
	e.ErrorCode = binary.LittleEndian.Uint16(f.Payload[0:2])
	e.ErrorRegister = f.Payload[2]
	copy(e.Manufacturer[:], f.Payload[3:8])
	return node, e, nil
}

package canopen

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	spiopen "github.com/OpenIndustrialControl/SpIOpen"
)

// SDO command specifiers for initiate download/upload expedited transfers.
const (
	sdoCCSDownloadInitiate = 1 // client->server
	sdoCCSUploadInitiate   = 2 // client->server
	sdoSCSDownloadInitiate = 3 // server->client
	sdoSCSUploadInitiate   = 2 // server->client
)

// SDOExpeditedDownload builds a client->server expedited download frame
// (write). It encodes index/subindex and up to 4 data bytes.
func SDOExpeditedDownload(target NodeID, index uint16, subindex uint8, data []byte) (spiopen.Frame, error) {
	if err := target.Validate(); err != nil {
		return spiopen.Frame{}, err
	}
	if len(data) > 4 {
		return spiopen.Frame{}, fmt.Errorf("canopen: expedited download max 4 bytes, got %d", len(data))
	}
	var f spiopen.Frame
	f.CANIdentifier = COBID(FC_SDO_RX, target)
	f.Payload = make([]byte, 8)
	// n = number of unused bytes in bytes 4..7. Bits: 7..5 ccs, 3 e, 2 s, 1..0 n.
	n := uint8(4 - len(data))
	cmd := byte(sdoCCSDownloadInitiate) << 5
	cmd |= 1 << 3 // e
	cmd |= 1 << 2 // s
	cmd |= n & 0x3
	f.Payload[0] = cmd
	binary.LittleEndian.PutUint16(f.Payload[1:3], index)
	f.Payload[3] = subindex
	for i := 0; i < len(data); i++ {
		f.Payload[4+i] = data[i]
	}
	return f, nil
}

// parseSDOExpeditedDownload decodes an expedited initiate download request.
func parseSDOExpeditedDownload(f spiopen.Frame) (NodeID, uint16, uint8, []byte, error) {
	fc, node, err := ParseCOBID(f.CANIdentifier)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if fc != FC_SDO_RX {
		return 0, 0, 0, nil, fmt.Errorf("canopen: not SDO rx frame (id=0x%X)", f.CANIdentifier)
	}
	if len(f.Payload) != 8 {
		return 0, 0, 0, nil, fmt.Errorf("canopen: SDO frame len %d, want 8", len(f.Payload))
	}
	cmd := f.Payload[0]
	if (cmd>>5)&0x7 != sdoCCSDownloadInitiate {
		return 0, 0, 0, nil, fmt.Errorf("canopen: not initiate download (cmd=0x%02X)", cmd)
	}
	expedited := (cmd & (1 << 3)) != 0
	sizeIndicated := (cmd & (1 << 2)) != 0
	if !expedited || !sizeIndicated {
		return 0, 0, 0, nil, fmt.Errorf("canopen: only expedited+size indicated supported (cmd=0x%02X)", cmd)
	}
	n := int(cmd & 0x3)
	size := 4 - n
	idx := binary.LittleEndian.Uint16(f.Payload[1:3])
	sub := f.Payload[3]
	out := make([]byte, size)
	copy(out, f.Payload[4:4+size])
	return node, idx, sub, out, nil
}

// SDOExpeditedUploadRequest builds a client->server request to read an object.
func SDOExpeditedUploadRequest(target NodeID, index uint16, subindex uint8) (spiopen.Frame, error) {
	if err := target.Validate(); err != nil {
		return spiopen.Frame{}, err
	}
	var f spiopen.Frame
	f.CANIdentifier = COBID(FC_SDO_RX, target)
	f.Payload = make([]byte, 8)
	f.Payload[0] = byte(sdoCCSUploadInitiate) << 5
	binary.LittleEndian.PutUint16(f.Payload[1:3], index)
	f.Payload[3] = subindex
	return f, nil
}

// parseSDOExpeditedUploadResponse parses a server->client expedited upload response.
func parseSDOExpeditedUploadResponse(f spiopen.Frame) (NodeID, uint16, uint8, []byte, error) {
	fc, node, err := ParseCOBID(f.CANIdentifier)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if fc != FC_SDO_TX {
		return 0, 0, 0, nil, fmt.Errorf("canopen: not SDO tx frame (id=0x%X)", f.CANIdentifier)
	}
	if len(f.Payload) != 8 {
		return 0, 0, 0, nil, fmt.Errorf("canopen: SDO frame len %d, want 8", len(f.Payload))
	}
	cmd := f.Payload[0]
	if (cmd>>5)&0x7 != sdoSCSUploadInitiate {
		return 0, 0, 0, nil, fmt.Errorf("canopen: not upload response (cmd=0x%02X)", cmd)
	}
	expedited := (cmd & (1 << 3)) != 0
	sizeIndicated := (cmd & (1 << 2)) != 0
	if !expedited || !sizeIndicated {
		return 0, 0, 0, nil, fmt.Errorf("canopen: only expedited+size indicated supported (cmd=0x%02X)", cmd)
	}
	n := int(cmd & 0x3)
	size := 4 - n
	idx := binary.LittleEndian.Uint16(f.Payload[1:3])
	sub := f.Payload[3]
	out := make([]byte, size)
	copy(out, f.Payload[4:4+size])
	return node, idx, sub, out, nil
}

// SDOClient provides a synchronous-looking SDO interface, limited to
// expedited (<=4 byte) transfers.
//
// If Mux is set, it waits for responses via the multiplexer so other
// consumers of Receive are not blocked. If Mux is nil, it falls back
// to directly reading from Bus.Receive.
//
// Timeout is optional and only applies when using Mux. A zero timeout
// waits indefinitely for the matching response.
type SDOClient struct {
	bus     spiopen.Bus
	mux     *spiopen.Mux
	node    NodeID
	timeout time.Duration
}

// NewSDOClient constructs an SDOClient. If mux is non-nil, operations
// subscribe for responses via mux to avoid blocking other receivers.
// timeout applies to mux-based waits; zero means wait indefinitely.
func NewSDOClient(bus spiopen.Bus, node NodeID, mux *spiopen.Mux, timeout time.Duration) *SDOClient {
	return &SDOClient{bus: bus, node: node, mux: mux, timeout: timeout}
}

// Download writes up to 4 bytes to index/subindex using expedited transfer.
func (c *SDOClient) Download(index uint16, subindex uint8, data []byte) error {
	req, err := SDOExpeditedDownload(c.node, index, subindex, data)
	if err != nil {
		return err
	}

	if c.mux != nil {
		ch, cancel := c.mux.Subscribe(func(f spiopen.Frame) bool {
			fc, node, err := ParseCOBID(f.CANIdentifier)
			if err != nil || fc != FC_SDO_TX || node != c.node || len(f.Payload) != 8 {
				return false
			}
			if (f.Payload[0]>>5)&0x7 != sdoSCSDownloadInitiate {
				return false
			}
			idx := binary.LittleEndian.Uint16(f.Payload[1:3])
			sub := f.Payload[3]
			return idx == index && sub == subindex
		}, 1)
		defer cancel()

		if err := c.bus.Send(context.Background(), req); err != nil {
			return err
		}

		if c.timeout > 0 {
			select {
			case _, ok := <-ch:
				if !ok {
					return spiopen.ErrClosed
				}
				return nil
			case <-time.After(c.timeout):
				return spiopen.ErrClosed
			}
		}
		if _, ok := <-ch; !ok {
			return spiopen.ErrClosed
		}
		return nil
	}

	if err := c.bus.Send(context.Background(), req); err != nil {
		return err
	}
	for {
		f, err := c.bus.Receive(context.Background())
		if err != nil {
			return err
		}
		fc, node, perr := ParseCOBID(f.CANIdentifier)
		if perr != nil {
			continue
		}
		if fc != FC_SDO_TX || node != c.node || len(f.Payload) != 8 {
			continue
		}
		cmd := f.Payload[0]
		if (cmd>>5)&0x7 != sdoSCSDownloadInitiate {
			continue
		}
		idx := binary.LittleEndian.Uint16(f.Payload[1:3])
		sub := f.Payload[3]
		if idx == index && sub == subindex {
			return nil
		}
	}
}

// Upload reads up to 4 bytes via expedited transfer.
func (c *SDOClient) Upload(index uint16, subindex uint8) ([]byte, error) {
	req, err := SDOExpeditedUploadRequest(c.node, index, subindex)
	if err != nil {
		return nil, err
	}

	if c.mux != nil {
		ch, cancel := c.mux.Subscribe(func(f spiopen.Frame) bool {
			fc, node, err := ParseCOBID(f.CANIdentifier)
			return err == nil && fc == FC_SDO_TX && node == c.node && len(f.Payload) == 8
		}, 2)
		defer cancel()

		if err := c.bus.Send(context.Background(), req); err != nil {
			return nil, err
		}

		if c.timeout > 0 {
			timeout := time.After(c.timeout)
			for {
				select {
				case f, ok := <-ch:
					if !ok {
						return nil, spiopen.ErrClosed
					}
					if _, ab, ok := parseSDOAbort(f); ok {
						return nil, ab
					}
					_, idx, sub, data, perr := parseSDOExpeditedUploadResponse(f)
					if perr != nil || idx != index || sub != subindex {
						continue
					}
					return data, nil
				case <-timeout:
					return nil, spiopen.ErrClosed
				}
			}
		}
		for {
			f, ok := <-ch
			if !ok {
				return nil, spiopen.ErrClosed
			}
			if _, ab, ok := parseSDOAbort(f); ok {
				return nil, ab
			}
			_, idx, sub, data, perr := parseSDOExpeditedUploadResponse(f)
			if perr != nil || idx != index || sub != subindex {
				continue
			}
			return data, nil
		}
	}

	if err := c.bus.Send(context.Background(), req); err != nil {
		return nil, err
	}
	for {
		f, err := c.bus.Receive(context.Background())
		if err != nil {
			return nil, err
		}
		fc, node, perr := ParseCOBID(f.CANIdentifier)
		if perr != nil {
			continue
		}
		if fc != FC_SDO_TX || node != c.node || len(f.Payload) != 8 {
			continue
		}
		_, idx, sub, data, perr := parseSDOExpeditedUploadResponse(f)
		if perr != nil {
			continue
		}
		if idx == index && sub == subindex {
			return data, nil
		}
	}
}

// Typed marshal/unmarshal helpers for common expedited cases (<=4 bytes).

func (c *SDOClient) WriteU8(index uint16, subindex uint8, value uint8) error {
	return c.Download(index, subindex, []byte{value})
}

func (c *SDOClient) WriteU16(index uint16, subindex uint8, value uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], value)
	return c.Download(index, subindex, b[:])
}

func (c *SDOClient) WriteU32(index uint16, subindex uint8, value uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], value)
	return c.Download(index, subindex, b[:])
}

func (c *SDOClient) ReadU8(index uint16, subindex uint8) (uint8, error) {
	b, err := c.Upload(index, subindex)
	if err != nil {
		return 0, err
	}
	if len(b) < 1 {
		return 0, fmt.Errorf("canopen: sdo read u8: empty")
	}
	return b[0], nil
}

func (c *SDOClient) ReadU16(index uint16, subindex uint8) (uint16, error) {
	b, err := c.Upload(index, subindex)
	if err != nil {
		return 0, err
	}
	if len(b) != 2 {
		return 0, fmt.Errorf("canopen: sdo read u16: got %d bytes", len(b))
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *SDOClient) ReadU32(index uint16, subindex uint8) (uint32, error) {
	b, err := c.Upload(index, subindex)
	if err != nil {
		return 0, err
	}
	if len(b) != 4 {
		return 0, fmt.Errorf("canopen: sdo read u32: got %d bytes", len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

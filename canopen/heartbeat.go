package canopen

import (
	"fmt"

	spiopen "github.com/OpenIndustrialControl/SpIOpen"
)

// Heartbeat represents an NMT error control heartbeat from a node and
// implements frame marshal/unmarshal.
type Heartbeat struct {
	Node  NodeID
	State NMTState
}

// MarshalCANFrame encodes the heartbeat to a frame.
func (h Heartbeat) MarshalCANFrame() (spiopen.Frame, error) {
	return buildHeartbeat(h.Node, h.State)
}

// UnmarshalCANFrame decodes the heartbeat from a frame.
func (h *Heartbeat) UnmarshalCANFrame(f spiopen.Frame) error {
	node, state, err := parseHeartbeat(f)
	if err != nil {
		return err
	}
	h.Node = node
	h.State = state
	return nil
}

// buildHeartbeat produces an NMT error control heartbeat frame for node/state.
// A heartbeat carries a single byte with the current NMTState.
func buildHeartbeat(node NodeID, state NMTState) (spiopen.Frame, error) {
	if err := node.Validate(); err != nil {
		return spiopen.Frame{}, err
	}
	var f spiopen.Frame
	f.CANIdentifier = COBID(FC_NMT_ERRCTRL, node)
	f.Payload = []byte{byte(state)}
	return f, nil
}

// parseHeartbeat parses a heartbeat frame and returns node id and state.
func parseHeartbeat(f spiopen.Frame) (NodeID, NMTState, error) {
	if len(f.Payload) < 1 {
		return 0, 0, fmt.Errorf("canopen: heartbeat too short: %d", len(f.Payload))
	}
	fc, node, err := ParseCOBID(f.CANIdentifier)
	if err != nil {
		return 0, 0, err
	}
	if fc != FC_NMT_ERRCTRL {
		return 0, 0, fmt.Errorf("canopen: not a heartbeat frame (id=0x%X)", f.CANIdentifier)
	}
	return node, NMTState(f.Payload[0]), nil
}

// SubscribeHeartbeats subscribes to heartbeat (NMT error control) frames via
// mux and delivers parsed events. If nodeFilter is non-nil, only heartbeats
// from the specified node are delivered. The returned cancel must be called
// when done; the channel closes on cancel or if the underlying mux closes.
func SubscribeHeartbeats(mux *spiopen.Mux, nodeFilter *NodeID, buffer int) (<-chan Heartbeat, func()) {
	frames, cancel := mux.Subscribe(func(f spiopen.Frame) bool {
		fc, node, err := ParseCOBID(f.CANIdentifier)
		if err != nil || fc != FC_NMT_ERRCTRL || len(f.Payload) < 1 {
			return false
		}
		if nodeFilter != nil && node != *nodeFilter {
			return false
		}
		return true
	}, buffer)

	out := make(chan Heartbeat, buffer)
	go func() {
		defer close(out)
		for f := range frames {
			node, state, err := parseHeartbeat(f)
			if err != nil {
				continue
			}
			out <- Heartbeat{Node: node, State: state}
		}
	}()
	return out, cancel
}

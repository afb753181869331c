package spiopen

// ReadResult reports SECDED telemetry from a successful ReadFrame or
// ReadAndCopyFrame call. DLCCorrected is not an error condition: it
// tells the caller a single-bit error was silently corrected in the
// format header or XL length field, so applications can track the
// marginal bit-error rate of the link.
type ReadResult struct {
	DLCCorrected bool
}

// byteGetter fetches the frame-relative byte at index i (0 is the
// first preamble byte), reporting false if i falls outside whatever
// the source has available. ReadFrame and ReadAndCopyFrame share every
// parsing step below through this abstraction; only the getter differs
// (straight indexed load vs. a bit-shifted load across a byte pair),
// so the two reader variants never duplicate the parser.
type byteGetter func(i int) (byte, bool)

// ReadFrame deserializes a frame from buf starting at offset. On
// success, out.Payload aliases buf; the caller must keep buf alive and
// unmodified for as long as out is used.
func (c *Codec) ReadFrame(buf []byte, out *Frame, offset int) (ReadResult, error) {
	if buf == nil {
		return ReadResult{}, ErrInvalidBufferPointer
	}
	if out == nil {
		return ReadResult{}, ErrInvalidFramePointer
	}
	if offset < 0 || offset > len(buf) {
		return ReadResult{}, ErrBufferTooShortForPreamble
	}

	backing := buf[offset:]
	get := func(i int) (byte, bool) {
		if i < 0 || i >= len(backing) {
			return 0, false
		}
		return backing[i], true
	}

	frame, result, err := c.readCommon(get, backing)
	if err != nil {
		return result, err
	}
	*out = *frame
	return result, nil
}

// ReadAndCopyFrame deserializes a frame from src starting at srcOffset
// while correcting a bit-slip of bitSlipCount bits (0..7): destination
// byte i is built from (src[i]<<k)|(src[i+1]>>(8-k)). It is used when
// FindFramePreamble reports a preamble straddling a byte boundary.
// On success, out.Payload aliases dst, not src.
func (c *Codec) ReadAndCopyFrame(src []byte, out *Frame, dst []byte, srcOffset, bitSlipCount int) (ReadResult, error) {
	if src == nil || dst == nil {
		return ReadResult{}, ErrInvalidBufferPointer
	}
	if out == nil {
		return ReadResult{}, ErrInvalidFramePointer
	}
	if bitSlipCount < 0 || bitSlipCount > 7 {
		return ReadResult{}, newCodecErrorf(KindInvalidBufferPointer, "bit slip count %d out of range 0..7", bitSlipCount)
	}
	if srcOffset < 0 || srcOffset > len(src) {
		return ReadResult{}, ErrBufferTooShortForPreamble
	}

	get := func(i int) (byte, bool) {
		if i < 0 || i >= len(dst) {
			return 0, false
		}
		srcIdx := srcOffset + i
		if bitSlipCount == 0 {
			if srcIdx >= len(src) {
				return 0, false
			}
			dst[i] = src[srcIdx]
			return dst[i], true
		}
		if srcIdx+1 >= len(src) {
			return 0, false
		}
		dst[i] = (src[srcIdx] << uint(bitSlipCount)) | (src[srcIdx+1] >> uint(8-bitSlipCount))
		return dst[i], true
	}

	frame, result, err := c.readCommon(get, dst)
	if err != nil {
		return result, err
	}
	*out = *frame
	return result, nil
}

// readCommon runs the shared parse sequence against a byteGetter and
// the real buffer Payload should alias once parsing succeeds.
func (c *Codec) readCommon(get byteGetter, backing []byte) (*Frame, ReadResult, error) {
	var result ReadResult
	frame := &Frame{}

	b0, ok0 := get(0)
	b1, ok1 := get(1)
	if !ok0 || !ok1 {
		return nil, result, ErrBufferTooShortForPreamble
	}
	if b0 != PreambleByte || b1 != PreambleByte {
		return nil, result, ErrNoPreamble
	}
	cursor := PreambleSize

	hb0, ok0 := get(cursor)
	hb1, ok1 := get(cursor + 1)
	if !ok0 || !ok1 {
		return nil, result, ErrBufferTooShortToDetermineLength
	}
	headerWord := uint16(hb0)<<8 | uint16(hb1)
	headerDecoded := secded16Decode11(headerWord)
	if headerDecoded.Uncorrectable {
		return nil, result, ErrFormatDLCCorrupted
	}
	if headerDecoded.Corrected {
		result.DLCCorrected = true
	}
	cursor += FormatHeaderSize

	hv := headerDecoded.Data11
	frame.Flags.IDE = hv&flagIDE != 0
	frame.Flags.FDF = hv&flagFDF != 0
	frame.Flags.XLF = hv&flagXLF != 0
	frame.Flags.TTL = hv&flagTTL != 0
	frame.Flags.WA = hv&flagWA != 0
	dlcNibble := int(hv & dlcMask)

	// A decoded frame that claims both FDF and XLF is rejected rather
	// than silently treated as XL; see DESIGN.md.
	if frame.Flags.FDF && frame.Flags.XLF {
		return nil, result, ErrDLCInvalid
	}
	if frame.Flags.FDF && !c.Capabilities.CANFD {
		return nil, result, ErrCANFDNotSupported
	}
	if frame.Flags.XLF && !c.Capabilities.CANXL {
		return nil, result, ErrCANXLNotSupported
	}

	var payloadLen int
	switch {
	case frame.Flags.XLF:
		payloadLen = 0 // determined from the XL length field below
	case frame.Flags.FDF:
		payloadLen = fdDLCTable[dlcNibble]
	default:
		if dlcNibble > MaxCCPayloadSize {
			dlcNibble = MaxCCPayloadSize
		}
		payloadLen = dlcNibble
	}

	if frame.Flags.XLF {
		xb0, ok0 := get(cursor)
		xb1, ok1 := get(cursor + 1)
		if !ok0 || !ok1 {
			return nil, result, ErrBufferTooShortForHeader
		}
		xlWord := uint16(xb0)<<8 | uint16(xb1)
		xlDecoded := secded16Decode11(xlWord)
		if xlDecoded.Uncorrectable {
			// An uncorrectable XL length shares ErrFormatDLCCorrupted
			// rather than a distinct error kind; see DESIGN.md.
			return nil, result, ErrFormatDLCCorrupted
		}
		if xlDecoded.Corrected {
			result.DLCCorrected = true
		}
		cursor += XLDataLengthSize
		payloadLen = int(xlDecoded.Data11)
		if payloadLen > MaxXLPayloadSize {
			return nil, result, ErrDLCInvalid
		}

		pt, ok0 := get(cursor)
		vc, ok1 := get(cursor + 1)
		a0, ok2 := get(cursor + 2)
		a1, ok3 := get(cursor + 3)
		a2, ok4 := get(cursor + 4)
		a3, ok5 := get(cursor + 5)
		if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return nil, result, ErrBufferTooShortForHeader
		}
		frame.XLControl.PayloadType = pt
		frame.XLControl.VirtualCANNetworkID = vc
		// Addressing field is big-endian; see DESIGN.md.
		frame.XLControl.AddressingField = uint32(a0)<<24 | uint32(a1)<<16 | uint32(a2)<<8 | uint32(a3)
		cursor += XLControlSize
	}

	idb0, ok0 := get(cursor)
	if !ok0 {
		return nil, result, ErrBufferTooShortForHeader
	}
	frame.Flags.RTR = idb0&flagRTR != 0
	frame.Flags.BRS = idb0&flagBRS != 0
	frame.Flags.ESI = idb0&flagESI != 0

	if frame.Flags.IDE {
		idb1, ok1 := get(cursor + 1)
		idb2, ok2 := get(cursor + 2)
		idb3, ok3 := get(cursor + 3)
		if !ok1 || !ok2 || !ok3 {
			return nil, result, ErrBufferTooShortForHeader
		}
		frame.CANIdentifier = uint32(idb0&idMSBMask)<<24 | uint32(idb1)<<16 | uint32(idb2)<<8 | uint32(idb3)
		cursor += CANIdentifierSize + CANIdentifierExtSize
	} else {
		idb1, ok1 := get(cursor + 1)
		if !ok1 {
			return nil, result, ErrBufferTooShortForHeader
		}
		frame.CANIdentifier = uint32(idb0&idMSBMask)<<8 | uint32(idb1)
		cursor += CANIdentifierSize
	}

	if frame.Flags.TTL {
		ttlByte, okTTL := get(cursor)
		if !okTTL {
			return nil, result, ErrBufferTooShortForHeader
		}
		frame.TimeToLive = ttlByte
		cursor += TimeToLiveSize
	}

	for j := 0; j < payloadLen; j++ {
		if _, ok := get(cursor + j); !ok {
			return nil, result, ErrBufferTooShortForPayload
		}
	}
	payloadStart := cursor
	cursor += payloadLen

	if frame.Flags.WA && cursor%2 != 0 {
		if _, ok := get(cursor); !ok {
			return nil, result, ErrBufferTooShortForPayload
		}
		cursor++
	}

	crcSize := ShortCRCSize
	if payloadLen > MaxCCPayloadSize {
		crcSize = LongCRCSize
	}

	var crcBytes [LongCRCSize]byte
	for j := 0; j < crcSize; j++ {
		b, ok := get(cursor + j)
		if !ok {
			return nil, result, ErrBufferTooShortForPayload
		}
		crcBytes[j] = b
	}

	region := backing[PreambleSize:cursor]
	if result.DLCCorrected {
		// Check the CRC against the SECDED-protected words as corrected,
		// not as received, so a single-bit error SECDED has already fixed
		// does not also fail the CRC.
		region = append([]byte(nil), region...)
		fixed := secded16Encode11(headerDecoded.Data11)
		region[0], region[1] = byte(fixed>>8), byte(fixed)
		if frame.Flags.XLF {
			fixedXL := secded16Encode11(uint16(payloadLen))
			region[FormatHeaderSize], region[FormatHeaderSize+1] = byte(fixedXL>>8), byte(fixedXL)
		}
	}
	var computed, received uint32
	if crcSize == ShortCRCSize {
		computed = uint32(crc16CCITT(region))
		received = uint32(crcBytes[0])<<8 | uint32(crcBytes[1])
	} else {
		computed = crc32MPEG2(region)
		received = uint32(crcBytes[0])<<24 | uint32(crcBytes[1])<<16 | uint32(crcBytes[2])<<8 | uint32(crcBytes[3])
	}
	if computed != received {
		return nil, result, ErrCRCMismatch
	}

	if payloadLen > 0 {
		frame.Payload = backing[payloadStart : payloadStart+payloadLen]
	}

	return frame, result, nil
}

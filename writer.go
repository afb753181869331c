package spiopen

import "encoding/binary"

// WriteResult reports how a WriteFrame call filled the caller's buffer.
type WriteResult struct {
	PayloadPaddingAdded int // CAN-FD zero bytes appended after the payload
	FramePaddingAdded   int // 0 or 1 word-alignment zero byte before the CRC
	TotalLength         int // bytes actually written, equals Frame.FrameLength()
}

// WriteFrame serializes frame into buf per the SpIOpen wire format.
// buf must have capacity for at least frame.FrameLength() bytes; on
// any error the contents of buf are indeterminate.
func (c *Codec) WriteFrame(frame *Frame, buf []byte) (WriteResult, error) {
	if frame == nil {
		return WriteResult{}, ErrInvalidFramePointer
	}
	if buf == nil {
		return WriteResult{}, ErrInvalidBufferPointer
	}
	if frame.Flags.FDF && frame.Flags.XLF {
		return WriteResult{}, newCodecErrorf(KindInvalidPayloadLength, "FDF and XLF are mutually exclusive")
	}
	if frame.Flags.FDF && !c.Capabilities.CANFD {
		return WriteResult{}, ErrCANFDNotSupported
	}
	if frame.Flags.XLF && !c.Capabilities.CANXL {
		return WriteResult{}, ErrCANXLNotSupported
	}

	// A nil Payload always reports len 0, so a "pointer non-null iff
	// length > 0" precondition holds by construction in Go and needs
	// no separate check here.
	payloadLen := len(frame.Payload)
	if payloadLen > frame.maxPayloadForMode() {
		return WriteResult{}, newCodecErrorf(KindInvalidPayloadLength,
			"payload length %d exceeds mode limit %d", payloadLen, frame.maxPayloadForMode())
	}
	if frame.Flags.XLF && payloadLen > xlMaxEncodableLength {
		return WriteResult{}, newCodecErrorf(KindInvalidPayloadLength,
			"XL payload length %d exceeds the 11-bit encodable bound %d", payloadLen, xlMaxEncodableLength)
	}

	total := frame.FrameLength()
	if len(buf) < total {
		return WriteResult{}, ErrBufferTooShort
	}

	cursor := 0
	buf[cursor] = PreambleByte
	buf[cursor+1] = PreambleByte
	cursor += PreambleSize

	var dlcNibble int
	switch {
	case frame.Flags.XLF:
		dlcNibble = 0
	case frame.Flags.FDF:
		dlcNibble = fdDLCForLength(payloadLen)
	default:
		dlcNibble = ccDLCForLength(payloadLen)
	}

	headerValue := uint16(dlcNibble) & dlcMask
	if frame.Flags.IDE {
		headerValue |= flagIDE
	}
	if frame.Flags.FDF {
		headerValue |= flagFDF
	}
	if frame.Flags.XLF {
		headerValue |= flagXLF
	}
	if frame.Flags.TTL {
		headerValue |= flagTTL
	}
	if frame.Flags.WA {
		headerValue |= flagWA
	}
	headerWord := secded16Encode11(headerValue)
	buf[cursor] = byte(headerWord >> 8)
	buf[cursor+1] = byte(headerWord)
	cursor += FormatHeaderSize

	if frame.Flags.XLF {
		xlLenWord := secded16Encode11(uint16(payloadLen) & formatDataBits)
		buf[cursor] = byte(xlLenWord >> 8)
		buf[cursor+1] = byte(xlLenWord)
		cursor += XLDataLengthSize

		buf[cursor] = frame.XLControl.PayloadType
		buf[cursor+1] = frame.XLControl.VirtualCANNetworkID
		binary.BigEndian.PutUint32(buf[cursor+2:cursor+6], frame.XLControl.AddressingField)
		cursor += XLControlSize
	}

	idFlags := byte(0)
	if frame.Flags.RTR {
		idFlags |= flagRTR
	}
	if frame.Flags.BRS {
		idFlags |= flagBRS
	}
	if frame.Flags.ESI {
		idFlags |= flagESI
	}
	if frame.Flags.IDE {
		id := frame.CANIdentifier & 0x1FFFFFFF
		buf[cursor] = idFlags | byte(id>>24)&idMSBMask
		buf[cursor+1] = byte(id >> 16)
		buf[cursor+2] = byte(id >> 8)
		buf[cursor+3] = byte(id)
		cursor += CANIdentifierSize + CANIdentifierExtSize
	} else {
		id := frame.CANIdentifier & 0x7FF
		buf[cursor] = idFlags | byte(id>>8)&idMSBMask
		buf[cursor+1] = byte(id)
		cursor += CANIdentifierSize
	}

	if frame.Flags.TTL {
		buf[cursor] = frame.TimeToLive
		cursor += TimeToLiveSize
	}

	copy(buf[cursor:cursor+payloadLen], frame.Payload)
	cursor += payloadLen

	wireLen := frame.wirePayloadLength()
	payloadPadding := wireLen - payloadLen
	for i := 0; i < payloadPadding; i++ {
		buf[cursor] = 0
		cursor++
	}

	framePadding := 0
	if frame.Flags.WA && cursor%2 != 0 {
		buf[cursor] = 0
		cursor++
		framePadding = 1
	}

	crcRegion := buf[PreambleSize:cursor]
	if frame.crcSize() == ShortCRCSize {
		binary.BigEndian.PutUint16(buf[cursor:cursor+ShortCRCSize], crc16CCITT(crcRegion))
		cursor += ShortCRCSize
	} else {
		binary.BigEndian.PutUint32(buf[cursor:cursor+LongCRCSize], crc32MPEG2(crcRegion))
		cursor += LongCRCSize
	}

	return WriteResult{
		PayloadPaddingAdded: payloadPadding,
		FramePaddingAdded:   framePadding,
		TotalLength:         cursor,
	}, nil
}

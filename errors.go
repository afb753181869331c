package spiopen

import "fmt"

// ErrorKind enumerates the taxonomic error categories reported by the
// writer and reader. These are not exhaustive Go errors themselves;
// each is wrapped in a *CodecError so callers can both switch on Kind
// and get a descriptive message.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota

	// Reader errors.
	KindNoPreamble
	KindBufferTooShortForPreamble
	KindBufferTooShortToDetermineLength
	KindBufferTooShortForHeader
	KindBufferTooShortForPayload
	KindFormatDLCCorrupted
	KindDLCInvalid
	KindCANFDNotSupported
	KindCANXLNotSupported
	KindCRCMismatch
	KindInvalidBufferPointer
	KindInvalidFramePointer

	// Writer errors.
	KindInvalidPayloadLength
	KindInvalidPayloadPointer
	KindBufferTooShort
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoPreamble:
		return "no preamble"
	case KindBufferTooShortForPreamble:
		return "buffer too short for preamble"
	case KindBufferTooShortToDetermineLength:
		return "buffer too short to determine length"
	case KindBufferTooShortForHeader:
		return "buffer too short for header"
	case KindBufferTooShortForPayload:
		return "buffer too short for payload"
	case KindFormatDLCCorrupted:
		return "format DLC corrupted"
	case KindDLCInvalid:
		return "DLC invalid"
	case KindCANFDNotSupported:
		return "CAN-FD not supported"
	case KindCANXLNotSupported:
		return "CAN-XL not supported"
	case KindCRCMismatch:
		return "CRC mismatch"
	case KindInvalidBufferPointer:
		return "invalid buffer pointer"
	case KindInvalidFramePointer:
		return "invalid frame pointer"
	case KindInvalidPayloadLength:
		return "invalid payload length"
	case KindInvalidPayloadPointer:
		return "invalid payload pointer"
	case KindBufferTooShort:
		return "buffer too short"
	default:
		return fmt.Sprintf("unknown error kind %d", uint8(k))
	}
}

// CodecError is returned by every fallible codec operation. Kind is
// meant for programmatic dispatch (errors.Is/As or a type switch);
// Error() renders a human-readable message that may include detail
// unwrapped from an inner cause.
type CodecError struct {
	Kind ErrorKind
	Err  error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spiopen: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("spiopen: %s", e.Kind)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Is reports equality by Kind so that errors.Is(err, spiopen.ErrCRCMismatch)
// works regardless of any wrapped detail carried alongside a given
// occurrence of that kind.
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newCodecError(kind ErrorKind) *CodecError {
	return &CodecError{Kind: kind}
}

func newCodecErrorf(kind ErrorKind, format string, args ...any) *CodecError {
	return &CodecError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Sentinel errors for use with errors.Is against the zero-detail form
// of each kind.
var (
	ErrNoPreamble                       = newCodecError(KindNoPreamble)
	ErrBufferTooShortForPreamble        = newCodecError(KindBufferTooShortForPreamble)
	ErrBufferTooShortToDetermineLength  = newCodecError(KindBufferTooShortToDetermineLength)
	ErrBufferTooShortForHeader          = newCodecError(KindBufferTooShortForHeader)
	ErrBufferTooShortForPayload         = newCodecError(KindBufferTooShortForPayload)
	ErrFormatDLCCorrupted               = newCodecError(KindFormatDLCCorrupted)
	ErrDLCInvalid                       = newCodecError(KindDLCInvalid)
	ErrCANFDNotSupported                = newCodecError(KindCANFDNotSupported)
	ErrCANXLNotSupported                = newCodecError(KindCANXLNotSupported)
	ErrCRCMismatch                      = newCodecError(KindCRCMismatch)
	ErrInvalidBufferPointer             = newCodecError(KindInvalidBufferPointer)
	ErrInvalidFramePointer              = newCodecError(KindInvalidFramePointer)
	ErrInvalidPayloadLength             = newCodecError(KindInvalidPayloadLength)
	ErrInvalidPayloadPointer            = newCodecError(KindInvalidPayloadPointer)
	ErrBufferTooShort                   = newCodecError(KindBufferTooShort)
)

package spiopen

import "github.com/sigurn/crc16"

// CRC-16-CCITT (poly 0x1021, init 0xFFFF, no reflection, no final XOR)
// and CRC-32/MPEG-2 (poly 0x04C11DB7, init 0xFFFFFFFF, no reflection, no
// final XOR) over a contiguous byte range.
//
// The CCITT-FALSE parameterization is exactly sigurn/crc16's catalog
// entry of that name. hash/crc32 only exposes the reflected
// (right-shifting) table form used by IEEE/Castagnoli, and sigurn/crc16
// has no 32-bit counterpart; MPEG-2's forward, non-reflected variant
// needs its own table, built the same way the CCITT table above is
// generated internally (see other_examples/dpcsar-stratux-ng__crc16.go
// for the pattern this follows).

var crc16CCITTTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// crc16CCITT computes CRC-16-CCITT (CCITT-FALSE parameterization) over data.
func crc16CCITT(data []byte) uint16 {
	return crc16.Checksum(data, crc16CCITTTable)
}

var crc32MPEG2Table = buildCRC32Table(0x04C11DB7)

func buildCRC32Table(poly uint32) [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// crc32MPEG2 computes CRC-32/MPEG-2 over data.
func crc32MPEG2(data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range data {
		crc = crc32MPEG2Table[byte(crc>>24)^b] ^ (crc << 8)
	}
	return crc
}

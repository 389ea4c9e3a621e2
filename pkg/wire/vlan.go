/*
	OFH Core - Open Fronthaul lower-layer stack
	Copyright (C) 2026  srsOSS Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package wire

import "fmt"

const (
	etherTypeVlan     = 0x8100
	plainHeaderSize   = 14 // dst(6) + src(6) + ethertype(2)
	vlanHeaderSize    = 18 // plain + tci(2) + real ethertype(2)
	EtherTypeOranFh    = 0xaefe
)

// MacAddress is a 6-octet Ethernet hardware address.
type MacAddress [6]byte

func (m MacAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// VlanFrameParams holds the fields recovered from an Ethernet-II header,
// with or without an 802.1Q tag.
type VlanFrameParams struct {
	DstMAC  MacAddress
	SrcMAC  MacAddress
	TCI     *uint16 // nil when the frame carries no VLAN tag
	EthType uint16
}

// DecodeVlanFrame decodes the Ethernet header of frame, returning the
// recovered header fields and the payload span that follows it. Fails
// with ErrMalformedFrame when frame is shorter than a plain header (14
// bytes), or shorter than a VLAN-tagged header (18 bytes) once a VLAN
// ethertype is detected.
func DecodeVlanFrame(frame []byte) (VlanFrameParams, []byte, error) {
	if len(frame) < plainHeaderSize {
		return VlanFrameParams{}, nil, ErrMalformedFrame
	}

	var params VlanFrameParams
	copy(params.DstMAC[:], frame[0:6])
	copy(params.SrcMAC[:], frame[6:12])

	candidateEthType := uint16(frame[12])<<8 | uint16(frame[13])
	if candidateEthType != etherTypeVlan {
		params.EthType = candidateEthType
		return params, frame[plainHeaderSize:], nil
	}

	if len(frame) < vlanHeaderSize {
		return VlanFrameParams{}, nil, ErrMalformedFrame
	}
	tci := uint16(frame[14])<<8 | uint16(frame[15])
	params.TCI = &tci
	params.EthType = uint16(frame[16])<<8 | uint16(frame[17])
	return params, frame[vlanHeaderSize:], nil
}

// EncodeVlanFrame builds a full Ethernet frame from params and payload.
// The 4-byte 802.1Q tag is emitted only when params.TCI is non-nil.
func EncodeVlanFrame(params VlanFrameParams, payload []byte) []byte {
	headerSize := plainHeaderSize
	if params.TCI != nil {
		headerSize = vlanHeaderSize
	}

	out := make([]byte, headerSize+len(payload))
	copy(out[0:6], params.DstMAC[:])
	copy(out[6:12], params.SrcMAC[:])

	if params.TCI == nil {
		out[12] = byte(params.EthType >> 8)
		out[13] = byte(params.EthType)
		copy(out[plainHeaderSize:], payload)
		return out
	}

	out[12] = byte(etherTypeVlan >> 8)
	out[13] = byte(etherTypeVlan & 0xff)
	out[14] = byte(*params.TCI >> 8)
	out[15] = byte(*params.TCI)
	out[16] = byte(params.EthType >> 8)
	out[17] = byte(params.EthType)
	copy(out[vlanHeaderSize:], payload)
	return out
}

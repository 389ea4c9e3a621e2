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

const (
	ecpriProtocolRevision = 1
	ecpriCommonHeaderSize = 4
	ecpriTypeParamsSize   = 4
)

// MsgType is the eCPRI message type field.
type MsgType uint8

const (
	MsgTypeIqData        MsgType = 0x00
	MsgTypeRtControlData MsgType = 0x02
)

// DecodeMode selects how the eCPRI payload boundary is determined:
// trusting the header's declared payload size, or ignoring it and
// consuming every remaining byte (for RUs known to mis-pad the field).
type DecodeMode uint8

const (
	TrustHeaderPayloadSize DecodeMode = iota
	IgnoreHeaderPayloadSize
)

// CommonHeader is the 4-byte eCPRI common header.
type CommonHeader struct {
	Revision      uint8
	Concatenated  bool
	MsgType       MsgType
	PayloadSize   uint16
}

// TypeParams is the 4-byte message-type-specific parameter block that
// follows the common header for both recognized message types: pc_id
// for IQ data, rtc_id for real-time control data, each paired with a
// seq_id.
type TypeParams struct {
	ID    uint16 // pc_id for IqData, rtc_id for RtControlData
	SeqID uint16
}

// EcpriPacket is the decoded common header plus type-specific params.
type EcpriPacket struct {
	Header CommonHeader
	Params TypeParams
}

// DecodeEcpri decodes the eCPRI common header and type-specific
// parameter block from packet, returning the decoded packet and the
// remaining payload span. Each structural failure is a distinct
// sentinel error so a caller can log and count them separately, per
// the original decoder's per-cause log lines.
func DecodeEcpri(packet []byte, mode DecodeMode) (EcpriPacket, []byte, error) {
	if len(packet) < ecpriCommonHeaderSize {
		return EcpriPacket{}, nil, ErrEcpriTooSmall
	}

	r := newReader(packet)
	b0, _ := r.u8()
	header := CommonHeader{
		Revision:     b0 >> 4,
		Concatenated: b0&1 != 0,
	}
	msgTypeByte, _ := r.u8()
	header.MsgType = MsgType(msgTypeByte)
	payloadSize, _ := r.u16()
	header.PayloadSize = payloadSize

	if header.Revision != ecpriProtocolRevision {
		return EcpriPacket{}, nil, ErrEcpriUnsupportedRevision
	}
	if header.Concatenated {
		return EcpriPacket{}, nil, ErrEcpriConcatenationUnsupported
	}

	if mode == TrustHeaderPayloadSize && int(header.PayloadSize) > len(packet)-r.offset {
		return EcpriPacket{}, nil, ErrEcpriPayloadSizeMismatch
	}

	switch header.MsgType {
	case MsgTypeIqData, MsgTypeRtControlData:
		if r.remainingBytes() < ecpriTypeParamsSize {
			return EcpriPacket{}, nil, ErrEcpriTooSmall
		}
		id, _ := r.u16()
		seqID, _ := r.u16()
		params := TypeParams{ID: id, SeqID: seqID}

		var payloadLen int
		if mode == TrustHeaderPayloadSize {
			payloadLen = int(header.PayloadSize) - ecpriTypeParamsSize
		} else {
			payloadLen = r.remainingBytes()
		}
		if payloadLen < 0 || payloadLen > r.remainingBytes() {
			return EcpriPacket{}, nil, ErrEcpriPayloadSizeMismatch
		}
		payload, _ := r.take(payloadLen)
		return EcpriPacket{Header: header, Params: params}, payload, nil
	default:
		return EcpriPacket{}, nil, ErrEcpriUnsupportedMsgType
	}
}

// EncodeEcpri builds a complete eCPRI IQ-data or real-time-control-data
// packet, used by the RU emulator to construct transmit bursts.
func EncodeEcpri(msgType MsgType, id, seqID uint16, payload []byte) []byte {
	out := make([]byte, ecpriCommonHeaderSize+ecpriTypeParamsSize+len(payload))
	out[0] = ecpriProtocolRevision << 4
	out[1] = byte(msgType)
	payloadSize := uint16(ecpriTypeParamsSize + len(payload))
	out[2] = byte(payloadSize >> 8)
	out[3] = byte(payloadSize)
	out[4] = byte(id >> 8)
	out[5] = byte(id)
	out[6] = byte(seqID >> 8)
	out[7] = byte(seqID)
	copy(out[8:], payload)
	return out
}

// EcpriSeqIDTop8 extracts the top byte of a 16-bit eCPRI seq_id field,
// which is the only part the core sequence-id checker consults; the
// bottom byte is a sub-sequence counter that is ignored.
func EcpriSeqIDTop8(seqID uint16) uint8 {
	return uint8(seqID >> 8)
}

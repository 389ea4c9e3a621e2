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

import "testing"

func TestEncodeDecodeEcpriRoundtrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	packet := EncodeEcpri(MsgTypeIqData, 4, 0x0100, payload)

	got, gotPayload, err := DecodeEcpri(packet, TrustHeaderPayloadSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Header.Revision != 1 || got.Header.Concatenated {
		t.Errorf("unexpected header: %+v", got.Header)
	}
	if got.Header.MsgType != MsgTypeIqData {
		t.Errorf("msg_type = %v, want IqData", got.Header.MsgType)
	}
	if got.Params.ID != 4 || got.Params.SeqID != 0x0100 {
		t.Errorf("unexpected params: %+v", got.Params)
	}
	if string(gotPayload) != string(payload) {
		t.Errorf("payload mismatch: %v", gotPayload)
	}
	if EcpriSeqIDTop8(got.Params.SeqID) != 0x01 {
		t.Errorf("top8(seq_id) = %#x, want 0x01", EcpriSeqIDTop8(got.Params.SeqID))
	}
}

func TestDecodeEcpriTooSmall(t *testing.T) {
	_, _, err := DecodeEcpri([]byte{0x10, 0x00}, TrustHeaderPayloadSize)
	if err != ErrEcpriTooSmall {
		t.Errorf("got %v, want ErrEcpriTooSmall", err)
	}
}

func TestDecodeEcpriUnsupportedRevision(t *testing.T) {
	packet := EncodeEcpri(MsgTypeIqData, 1, 1, []byte{0})
	packet[0] = 2 << 4 // revision 2
	_, _, err := DecodeEcpri(packet, TrustHeaderPayloadSize)
	if err != ErrEcpriUnsupportedRevision {
		t.Errorf("got %v, want ErrEcpriUnsupportedRevision", err)
	}
}

func TestDecodeEcpriConcatenationUnsupported(t *testing.T) {
	packet := EncodeEcpri(MsgTypeIqData, 1, 1, []byte{0})
	packet[0] = 1<<4 | 1 // revision 1, concatenation bit set
	_, _, err := DecodeEcpri(packet, TrustHeaderPayloadSize)
	if err != ErrEcpriConcatenationUnsupported {
		t.Errorf("got %v, want ErrEcpriConcatenationUnsupported", err)
	}
}

func TestDecodeEcpriUnsupportedMsgType(t *testing.T) {
	packet := EncodeEcpri(MsgTypeIqData, 1, 1, []byte{0})
	packet[1] = 0x7f
	_, _, err := DecodeEcpri(packet, TrustHeaderPayloadSize)
	if err != ErrEcpriUnsupportedMsgType {
		t.Errorf("got %v, want ErrEcpriUnsupportedMsgType", err)
	}
}

func TestDecodeEcpriIgnoreHeaderPayloadSize(t *testing.T) {
	packet := EncodeEcpri(MsgTypeRtControlData, 2, 3, []byte{9, 9, 9})
	// Corrupt the declared payload size; ignore-mode should not care.
	packet[2] = 0xff
	packet[3] = 0xff

	got, payload, err := DecodeEcpri(packet, IgnoreHeaderPayloadSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Params.ID != 2 {
		t.Errorf("rtc_id = %d, want 2", got.Params.ID)
	}
	if len(payload) != 3 {
		t.Errorf("payload len = %d, want 3", len(payload))
	}
}

func TestDecodeEcpriPayloadSizeMismatch(t *testing.T) {
	packet := EncodeEcpri(MsgTypeIqData, 1, 1, []byte{1, 2, 3})
	packet[2] = 0xff
	packet[3] = 0xff
	_, _, err := DecodeEcpri(packet, TrustHeaderPayloadSize)
	if err != ErrEcpriPayloadSizeMismatch {
		t.Errorf("got %v, want ErrEcpriPayloadSizeMismatch", err)
	}
}

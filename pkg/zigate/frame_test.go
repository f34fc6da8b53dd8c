package zigate

import (
	"bytes"
	"errors"
	"testing"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		data := []byte{b}
		recovered := unescape(escape(data))
		if !bytes.Equal(recovered, data) {
			t.Errorf("round-trip failed for 0x%02X: got % X", b, recovered)
		}
	}
}

func TestEscapeNeverProducesMarkers(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		escaped := escape([]byte{b})
		for _, e := range escaped {
			if e == frameStart || e == frameStop {
				t.Errorf("escape(0x%02X) produced a marker byte 0x%02X", b, e)
			}
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		msgType uint16
		payload []byte
	}{
		{"empty payload", 0x0010, nil},
		{"ordinary bytes", 0x0045, []byte{0xAB, 0xCD, 0xEF}},
		{"bytes needing escape", 0x0043, []byte{0x01, 0x02, 0x03, 0x00, 0x10}},
		{"max payload", 0x8015, bytes.Repeat([]byte{0x42}, maxPayloadLen)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wire, err := Encode(c.msgType, c.payload)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if wire[0] != frameStart || wire[len(wire)-1] != frameStop {
				t.Fatalf("wire frame missing markers: % X", wire)
			}

			frame, err := Decode(wire)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if frame.MsgType != c.msgType {
				t.Errorf("MsgType = 0x%04X, want 0x%04X", frame.MsgType, c.msgType)
			}
			if !bytes.Equal(frame.Payload, c.payload) {
				t.Errorf("Payload = % X, want % X", frame.Payload, c.payload)
			}
		})
	}
}

func TestEncodePayloadOverflow(t *testing.T) {
	_, err := Encode(0x0010, bytes.Repeat([]byte{0}, maxPayloadLen+1))
	if !errors.Is(err, ErrPayloadOverflow) {
		t.Fatalf("expected ErrPayloadOverflow, got %v", err)
	}
}

func TestDecodeBadMarker(t *testing.T) {
	wire, _ := Encode(0x0010, []byte{0x01})
	wire[0] = 0xFF
	_, err := Decode(wire)
	if !errors.Is(err, ErrBadMarker) {
		t.Fatalf("expected ErrBadMarker, got %v", err)
	}
}

func TestDecodeShortFrame(t *testing.T) {
	_, err := Decode([]byte{frameStart, 0x00, frameStop})
	if !errors.Is(err, ErrShortFrame) {
		t.Fatalf("expected ErrShortFrame, got %v", err)
	}
}

func TestDecodeBadChecksumStillReturnsFrame(t *testing.T) {
	wire, _ := Encode(0x0010, []byte{0xAA, 0xBB})
	// Flip a payload bit inside the escaped body without touching markers.
	// The checksum byte sits right before the payload in the unescaped
	// body; corrupting the last byte before the stop marker corrupts the
	// payload's last byte and invalidates the checksum.
	wire[len(wire)-2] ^= 0xFF

	frame, err := Decode(wire)
	if !errors.Is(err, ErrBadChecksum) {
		t.Fatalf("expected ErrBadChecksum, got %v", err)
	}
	if frame.MsgType != 0x0010 {
		t.Errorf("frame should still be returned on bad checksum, got MsgType 0x%04X", frame.MsgType)
	}
}

func TestChecksumSensitiveToEveryByte(t *testing.T) {
	base := checksum(0x1234, []byte{0x01, 0x02, 0x03})
	if c := checksum(0x1235, []byte{0x01, 0x02, 0x03}); c == base {
		t.Error("checksum insensitive to msgType change")
	}
	if c := checksum(0x1234, []byte{0x01, 0x02, 0x04}); c == base {
		t.Error("checksum insensitive to payload change")
	}
	if c := checksum(0x1234, []byte{0x01, 0x02}); c == base {
		t.Error("checksum insensitive to length change")
	}
}

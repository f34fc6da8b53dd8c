package zigate

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	payload := []byte{0x00, 0x07, 0x00, 0x10} // success, seq 7, packet type GetVersion
	st, err := parseStatus(payload)
	if err != nil {
		t.Fatalf("parseStatus: %v", err)
	}
	if st.Status != StatusSuccess || st.SeqNum != 7 || st.PacketType != KindGetVersion {
		t.Errorf("got %+v", st)
	}
}

func TestParseStatusTooShort(t *testing.T) {
	if _, err := parseStatus([]byte{0x00}); !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
}

func TestParseVersionList(t *testing.T) {
	payload := []byte{0x03, 0x12, 0x00, 0x98}
	v, err := parseVersionList(payload)
	if err != nil {
		t.Fatalf("parseVersionList: %v", err)
	}
	if v.Major != 0x0312 || v.Installer != 0x0098 {
		t.Errorf("got %+v", v)
	}
	if v.VersionString() != "786.152" {
		t.Errorf("VersionString() = %q", v.VersionString())
	}
}

func TestParseDeviceAnnounce(t *testing.T) {
	payload := make([]byte, 0, 13)
	payload = binary.BigEndian.AppendUint16(payload, 0xABCD)
	payload = binary.BigEndian.AppendUint64(payload, 0x0102030405060708)
	payload = append(payload, 0x8E, 0b00000100, 0x00)

	d, err := parseDeviceAnnounce(payload)
	if err != nil {
		t.Fatalf("parseDeviceAnnounce: %v", err)
	}
	if d.ShortAddr != 0xABCD {
		t.Errorf("ShortAddr = 0x%04X", d.ShortAddr)
	}
	if d.IEEEAddr != 0x0102030405060708 {
		t.Errorf("IEEEAddr = 0x%016X", d.IEEEAddr)
	}
	if d.MACCapability != 0x8E {
		t.Errorf("MACCapability = 0x%02X", d.MACCapability)
	}
}

func TestParseDevicesList(t *testing.T) {
	entry := make([]byte, 0, 13)
	entry = append(entry, 0x01)
	entry = binary.BigEndian.AppendUint16(entry, 0x1111)
	entry = binary.BigEndian.AppendUint64(entry, 0xAABBCCDDEEFF0011)
	entry = append(entry, 0x01, 200)

	msg, err := parseDevicesList(entry)
	if err != nil {
		t.Fatalf("parseDevicesList: %v", err)
	}
	if len(msg.Devices) != 1 {
		t.Fatalf("len(Devices) = %d, want 1", len(msg.Devices))
	}
	got := msg.Devices[0]
	if got.ShortAddr != 0x1111 || !got.PowerSource || got.LinkQuality != 200 {
		t.Errorf("got %+v", got)
	}
}

func TestParseDevicesListMultiple(t *testing.T) {
	var payload []byte
	for i := 0; i < 3; i++ {
		entry := make([]byte, 0, 13)
		entry = append(entry, byte(i))
		entry = binary.BigEndian.AppendUint16(entry, uint16(0x2000+i))
		entry = binary.BigEndian.AppendUint64(entry, uint64(i))
		entry = append(entry, 0x00, 150)
		payload = append(payload, entry...)
	}
	msg, err := parseDevicesList(payload)
	if err != nil {
		t.Fatalf("parseDevicesList: %v", err)
	}
	if len(msg.Devices) != 3 {
		t.Fatalf("len(Devices) = %d, want 3", len(msg.Devices))
	}
}

func TestParseActiveEndpoints(t *testing.T) {
	payload := []byte{0x05, 0x00, 0xAB, 0xCD, 0x02, 0x01, 0x0A}
	msg, err := parseActiveEndpoints(payload)
	if err != nil {
		t.Fatalf("parseActiveEndpoints: %v", err)
	}
	if msg.Addr != 0xABCD {
		t.Errorf("Addr = 0x%04X", msg.Addr)
	}
	if len(msg.Endpoints) != 2 || msg.Endpoints[0] != 0x01 || msg.Endpoints[1] != 0x0A {
		t.Errorf("Endpoints = %v", msg.Endpoints)
	}
}

func TestParseSimpleDescriptorResponse(t *testing.T) {
	var payload []byte
	payload = append(payload, 0x09, 0x00)                          // seq, status
	payload = binary.BigEndian.AppendUint16(payload, 0x1234)        // addr
	payload = append(payload, 0x00)                                 // len (unused)
	payload = append(payload, 0x01)                                 // endpoint
	payload = binary.BigEndian.AppendUint16(payload, 0x0104)        // profile
	payload = binary.BigEndian.AppendUint16(payload, 0x0100)        // device id
	payload = append(payload, 0x10)                                 // flags, version in high nibble
	payload = append(payload, 0x02)                                 // in_count
	payload = binary.BigEndian.AppendUint16(payload, uint16(ClusterBasic))
	payload = binary.BigEndian.AppendUint16(payload, uint16(ClusterGeneralOnOff))
	payload = append(payload, 0x01) // out_count
	payload = binary.BigEndian.AppendUint16(payload, uint16(ClusterGeneralOnOff))

	msg, err := parseSimpleDescriptorResponse(payload)
	if err != nil {
		t.Fatalf("parseSimpleDescriptorResponse: %v", err)
	}
	if msg.Endpoint != 1 || msg.Profile != 0x0104 {
		t.Errorf("got %+v", msg)
	}
	if len(msg.InClusterList) != 2 || len(msg.OutClusterList) != 1 {
		t.Errorf("cluster lists: in=%v out=%v", msg.InClusterList, msg.OutClusterList)
	}
}

func TestParseReadAttributeResponse(t *testing.T) {
	var payload []byte
	payload = append(payload, 0x01)                          // seq
	payload = binary.BigEndian.AppendUint16(payload, 0x5678)  // src addr
	payload = append(payload, 0x01)                           // endpoint
	payload = binary.BigEndian.AppendUint16(payload, 0x0006)  // cluster
	payload = binary.BigEndian.AppendUint16(payload, 0x0000)  // attr id
	payload = append(payload, 0x00, 0x10)                     // status, type (bool)
	payload = binary.BigEndian.AppendUint16(payload, 1)       // size
	payload = append(payload, 0x01)                           // data

	msg, err := parseReadAttributeResponse(KindReadAttributeResponse, payload)
	if err != nil {
		t.Fatalf("parseReadAttributeResponse: %v", err)
	}
	if msg.SrcAddr != 0x5678 || msg.ClusterID != 0x0006 {
		t.Errorf("got %+v", msg)
	}
	b, err := msg.DataAsBool()
	if err != nil || !b {
		t.Errorf("DataAsBool() = %v, %v", b, err)
	}
}

func TestParseResponseUnknownKind(t *testing.T) {
	f := Frame{MsgType: 0xFACE, Payload: []byte{0x01, 0x02}}
	resp, err := ParseResponse(f)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if _, ok := resp.(UnknownResponse); !ok {
		t.Errorf("expected UnknownResponse, got %T", resp)
	}
}

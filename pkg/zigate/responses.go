package zigate

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// Response is the tagged-variant contract every known response kind
// satisfies. Parsing is table-driven (see ParseResponse), not dynamic
// dispatch, so each concrete type is a plain struct.
type Response interface {
	fmt.Stringer
	Kind() MessageKind
}

// StatusCode is the single-byte status field of a Status response.
type StatusCode uint8

const (
	StatusSuccess              StatusCode = 0
	StatusIncorrectParameters  StatusCode = 1
	StatusUnhandledCommand     StatusCode = 2
	StatusCommandFailed        StatusCode = 3
	StatusBusy                 StatusCode = 4
	StatusStackAlreadyStarted  StatusCode = 5
)

func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusIncorrectParameters:
		return "IncorrectParameters"
	case StatusUnhandledCommand:
		return "UnhandledCommand"
	case StatusCommandFailed:
		return "CommandFailed"
	case StatusBusy:
		return "Busy"
	case StatusStackAlreadyStarted:
		return "StackAlreadyStarted"
	default:
		return "Failed"
	}
}

// Status is the generic command-acknowledgement response: u8 status,
// u8 seq_num, u16 packet_type.
type Status struct {
	Status     StatusCode
	SeqNum     uint8
	PacketType MessageKind
}

func (Status) Kind() MessageKind { return KindStatus }

func (s Status) String() string {
	return fmt.Sprintf("Status: %s, seq_num %d, packet_type %s", s.Status, s.SeqNum, s.PacketType)
}

func parseStatus(payload []byte) (Status, error) {
	if len(payload) < 4 {
		return Status{}, fmt.Errorf("%w: Status needs 4 bytes, got %d", ErrDecodeFailure, len(payload))
	}
	return Status{
		Status:     StatusCode(payload[0]),
		SeqNum:     payload[1],
		PacketType: MessageKind(binary.BigEndian.Uint16(payload[2:4])),
	}, nil
}

// VersionList is the firmware version response: u16 major, u16 installer.
type VersionList struct {
	Major     uint16
	Installer uint16
}

func (VersionList) Kind() MessageKind { return KindVersionList }

func (v VersionList) String() string {
	return fmt.Sprintf("VersionList: major %d, installer %d", v.Major, v.Installer)
}

// VersionString renders the version as "{major}.{installer}".
// Coordinator.GetVersion itself returns the VersionList value.
func (v VersionList) VersionString() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Installer)
}

func parseVersionList(payload []byte) (VersionList, error) {
	if len(payload) < 4 {
		return VersionList{}, fmt.Errorf("%w: VersionList needs 4 bytes, got %d", ErrDecodeFailure, len(payload))
	}
	return VersionList{
		Major:     binary.BigEndian.Uint16(payload[0:2]),
		Installer: binary.BigEndian.Uint16(payload[2:4]),
	}, nil
}

// DeviceAnnounceMsg is the asynchronous device-announce event:
// u16 short_addr, u64 ieee_addr, u8 mac_capability, u8 flags,
// optional u8 rejoin_info.
type DeviceAnnounceMsg struct {
	ShortAddr     uint16
	IEEEAddr      uint64
	MACCapability uint8
	Flags         uint8
	RejoinInfo    uint8
}

func (DeviceAnnounceMsg) Kind() MessageKind { return KindDeviceAnnounce }

func (d DeviceAnnounceMsg) String() string {
	return fmt.Sprintf("DeviceAnnounce: short 0x%04X, ieee 0x%016X, mac_capability 0x%02X, flags 0b%08b, rejoin %d",
		d.ShortAddr, d.IEEEAddr, d.MACCapability, d.Flags, d.RejoinInfo)
}

func parseDeviceAnnounce(payload []byte) (DeviceAnnounceMsg, error) {
	if len(payload) < 12 {
		return DeviceAnnounceMsg{}, fmt.Errorf("%w: DeviceAnnounce needs 12 bytes, got %d", ErrDecodeFailure, len(payload))
	}
	msg := DeviceAnnounceMsg{
		ShortAddr:     binary.BigEndian.Uint16(payload[0:2]),
		IEEEAddr:      binary.BigEndian.Uint64(payload[2:10]),
		MACCapability: payload[10],
		Flags:         payload[11],
	}
	if len(payload) >= 13 {
		msg.RejoinInfo = payload[12]
	}
	return msg, nil
}

// DeviceListEntry is one 13-byte record of a DevicesList response.
type DeviceListEntry struct {
	ID          uint8
	ShortAddr   uint16
	IEEEAddr    uint64
	PowerSource bool // true = mains
	LinkQuality uint8
}

const deviceListEntryLen = 13

// DevicesListMsg wraps the repeated device records of a GetDevicesList
// response.
type DevicesListMsg struct {
	Devices []DeviceListEntry
}

func (DevicesListMsg) Kind() MessageKind { return KindDevicesList }

func (d DevicesListMsg) String() string {
	return fmt.Sprintf("DevicesList: %d device(s)", len(d.Devices))
}

func parseDevicesList(payload []byte) (DevicesListMsg, error) {
	var out DevicesListMsg
	offset := 0
	for offset+deviceListEntryLen <= len(payload) {
		rec := payload[offset : offset+deviceListEntryLen]
		out.Devices = append(out.Devices, DeviceListEntry{
			ID:          rec[0],
			ShortAddr:   binary.BigEndian.Uint16(rec[1:3]),
			IEEEAddr:    binary.BigEndian.Uint64(rec[3:11]),
			PowerSource: rec[11] == 1,
			LinkQuality: rec[12],
		})
		offset += deviceListEntryLen
	}
	// Trailing bytes shorter than a full record are logged and otherwise
	// ignored.
	if rem := len(payload) - offset; rem > 0 {
		log.Warn().Int("trailing", rem).Msg("zigate: DevicesList has trailing bytes shorter than a record, ignoring them")
	}
	return out, nil
}

// ActiveEndpointsMsg is the response to ActiveEndpointRequest:
// u8 seq, u8 status, u16 addr, u8 count, count x u8 endpoint.
type ActiveEndpointsMsg struct {
	SeqNum    uint8
	Status    uint8
	Addr      uint16
	Endpoints []uint8
}

func (ActiveEndpointsMsg) Kind() MessageKind { return KindActiveEndpoints }

func (a ActiveEndpointsMsg) String() string {
	return fmt.Sprintf("ActiveEndpoints: addr 0x%04X, endpoints %v", a.Addr, a.Endpoints)
}

func parseActiveEndpoints(payload []byte) (ActiveEndpointsMsg, error) {
	if len(payload) < 5 {
		return ActiveEndpointsMsg{}, fmt.Errorf("%w: ActiveEndpoints needs 5 bytes, got %d", ErrDecodeFailure, len(payload))
	}
	count := int(payload[4])
	if len(payload) < 5+count {
		return ActiveEndpointsMsg{}, fmt.Errorf("%w: ActiveEndpoints declares %d endpoints but payload is short", ErrDecodeFailure, count)
	}
	return ActiveEndpointsMsg{
		SeqNum:    payload[0],
		Status:    payload[1],
		Addr:      binary.BigEndian.Uint16(payload[2:4]),
		Endpoints: append([]byte(nil), payload[5:5+count]...),
	}, nil
}

// SimpleDescriptorResponseMsg describes one endpoint's profile, device id
// and cluster lists.
type SimpleDescriptorResponseMsg struct {
	SeqNum         uint8
	Status         uint8
	Addr           uint16
	Endpoint       uint8
	Profile        uint16
	DeviceID       uint16
	Version        uint8 // high 4 bits of the flags byte
	InClusterList  []uint16
	OutClusterList []uint16
}

func (SimpleDescriptorResponseMsg) Kind() MessageKind { return KindSimpleDescriptorResponse }

func (s SimpleDescriptorResponseMsg) String() string {
	return fmt.Sprintf("SimpleDescriptorResponse: addr 0x%04X, endpoint %d, in %v, out %v",
		s.Addr, s.Endpoint, s.InClusterList, s.OutClusterList)
}

func parseSimpleDescriptorResponse(payload []byte) (SimpleDescriptorResponseMsg, error) {
	const headerLen = 9 // seq,status,addr(2),len,endpoint,profile(2),device_id(2) -- see below, read incrementally
	if len(payload) < 9 {
		return SimpleDescriptorResponseMsg{}, fmt.Errorf("%w: SimpleDescriptorResponse header too short", ErrDecodeFailure)
	}
	_ = headerLen

	offset := 0
	readU8 := func() (uint8, bool) {
		if offset+1 > len(payload) {
			return 0, false
		}
		v := payload[offset]
		offset++
		return v, true
	}
	readU16 := func() (uint16, bool) {
		if offset+2 > len(payload) {
			return 0, false
		}
		v := binary.BigEndian.Uint16(payload[offset : offset+2])
		offset += 2
		return v, true
	}

	seqNum, ok := readU8()
	status, ok2 := readU8()
	addr, ok3 := readU16()
	_, ok4 := readU8() // len field, unused beyond framing
	endpoint, ok5 := readU8()
	profile, ok6 := readU16()
	deviceID, ok7 := readU16()
	flags, ok8 := readU8()
	if !(ok && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8) {
		return SimpleDescriptorResponseMsg{}, fmt.Errorf("%w: SimpleDescriptorResponse header truncated", ErrDecodeFailure)
	}

	inCount, ok := readU8()
	if !ok {
		return SimpleDescriptorResponseMsg{}, fmt.Errorf("%w: missing in_count", ErrDecodeFailure)
	}
	inClusters := make([]uint16, 0, inCount)
	for i := uint8(0); i < inCount; i++ {
		id, ok := readU16()
		if !ok {
			return SimpleDescriptorResponseMsg{}, fmt.Errorf("%w: truncated in_cluster_list", ErrDecodeFailure)
		}
		inClusters = append(inClusters, id)
	}

	outCount, ok := readU8()
	if !ok {
		return SimpleDescriptorResponseMsg{}, fmt.Errorf("%w: missing out_count", ErrDecodeFailure)
	}
	outClusters := make([]uint16, 0, outCount)
	for i := uint8(0); i < outCount; i++ {
		id, ok := readU16()
		if !ok {
			return SimpleDescriptorResponseMsg{}, fmt.Errorf("%w: truncated out_cluster_list", ErrDecodeFailure)
		}
		outClusters = append(outClusters, id)
	}

	return SimpleDescriptorResponseMsg{
		SeqNum:         seqNum,
		Status:         status,
		Addr:           addr,
		Endpoint:       endpoint,
		Profile:        profile,
		DeviceID:       deviceID,
		Version:        flags >> 4,
		InClusterList:  inClusters,
		OutClusterList: outClusters,
	}, nil
}

// ReadAttributeResponseMsg is shared by ReadAttributeResponse and
// ReportIndividualAttributeResponse, which carry identical layouts:
// u8 seq, u16 src_addr, u8 endpoint, u16 cluster_id, u16 attr_id,
// u8 attr_status, u8 attr_type, u16 attr_size, attr_size x u8 data.
type ReadAttributeResponseMsg struct {
	kind       MessageKind
	SeqNum     uint8
	SrcAddr    uint16
	Endpoint   uint8
	ClusterID  uint16
	AttrID     uint16
	AttrStatus uint8
	AttrType   uint8
	Data       []byte
}

func (m ReadAttributeResponseMsg) Kind() MessageKind { return m.kind }

func (m ReadAttributeResponseMsg) String() string {
	return fmt.Sprintf("%s: addr 0x%04X, endpoint %d, cluster 0x%04X, attr 0x%04X, data % X",
		m.kind, m.SrcAddr, m.Endpoint, m.ClusterID, m.AttrID, m.Data)
}

func parseReadAttributeResponse(kind MessageKind, payload []byte) (ReadAttributeResponseMsg, error) {
	if len(payload) < 12 {
		return ReadAttributeResponseMsg{}, fmt.Errorf("%w: %s needs 12 header bytes, got %d", ErrDecodeFailure, kind, len(payload))
	}
	size := binary.BigEndian.Uint16(payload[10:12])
	if len(payload) < 12+int(size) {
		return ReadAttributeResponseMsg{}, fmt.Errorf("%w: %s declares %d data bytes but payload is short", ErrDecodeFailure, kind, size)
	}
	return ReadAttributeResponseMsg{
		kind:       kind,
		SeqNum:     payload[0],
		SrcAddr:    binary.BigEndian.Uint16(payload[1:3]),
		Endpoint:   payload[3],
		ClusterID:  binary.BigEndian.Uint16(payload[4:6]),
		AttrID:     binary.BigEndian.Uint16(payload[6:8]),
		AttrStatus: payload[8],
		AttrType:   payload[9],
		Data:       append([]byte(nil), payload[12:12+size]...),
	}, nil
}

// DataAsU8 decodes Data as a single big-endian byte.
func (m ReadAttributeResponseMsg) DataAsU8() (uint8, error) {
	if len(m.Data) < 1 {
		return 0, fmt.Errorf("%w: attribute data empty, want u8", ErrDecodeFailure)
	}
	return m.Data[0], nil
}

// DataAsU16 decodes Data as a big-endian uint16.
func (m ReadAttributeResponseMsg) DataAsU16() (uint16, error) {
	if len(m.Data) < 2 {
		return 0, fmt.Errorf("%w: attribute data too short, want u16", ErrDecodeFailure)
	}
	return binary.BigEndian.Uint16(m.Data[:2]), nil
}

// DataAsBool decodes Data as a ZCL boolean: the first byte, nonzero = true.
func (m ReadAttributeResponseMsg) DataAsBool() (bool, error) {
	if len(m.Data) < 1 {
		return false, fmt.Errorf("%w: attribute data empty, want bool", ErrDecodeFailure)
	}
	return m.Data[0] != 0, nil
}

// DataAsString decodes Data as UTF-8 text.
func (m ReadAttributeResponseMsg) DataAsString() (string, error) {
	if !utf8.Valid(m.Data) {
		return "", fmt.Errorf("%w: attribute data is not valid UTF-8", ErrDecodeFailure)
	}
	return string(m.Data), nil
}

// RouterDiscoveryConfirmMsg carries only the status byte the driver
// needs; the remainder of the payload is hardware-specific and not
// modeled.
type RouterDiscoveryConfirmMsg struct {
	Status uint8
}

func (RouterDiscoveryConfirmMsg) Kind() MessageKind { return KindRouterDiscoveryConfirm }

func (r RouterDiscoveryConfirmMsg) String() string {
	return fmt.Sprintf("RouterDiscoveryConfirm: status %d", r.Status)
}

func parseRouterDiscoveryConfirm(payload []byte) (RouterDiscoveryConfirmMsg, error) {
	if len(payload) < 1 {
		return RouterDiscoveryConfirmMsg{}, fmt.Errorf("%w: RouterDiscoveryConfirm needs 1 byte", ErrDecodeFailure)
	}
	return RouterDiscoveryConfirmMsg{Status: payload[0]}, nil
}

// UnknownResponse wraps any frame whose kind the registry doesn't
// recognize, or whose known-kind payload failed to parse.
type UnknownResponse struct {
	MsgType uint16
	Payload []byte
}

func (u UnknownResponse) Kind() MessageKind { return MessageKind(u.MsgType) }

func (u UnknownResponse) String() string {
	return fmt.Sprintf("Unknown: type 0x%04X, data % X", u.MsgType, u.Payload)
}

// ParseResponse maps a decoded frame to its typed Response via the
// per-code parser table. Unrecognized codes, and codes whose payload
// fails to parse, yield an UnknownResponse alongside a descriptive
// error so the receiver can log and drop without recovering state.
func ParseResponse(f Frame) (Response, error) {
	kind := MessageKind(f.MsgType)
	switch kind {
	case KindStatus:
		v, err := parseStatus(f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	case KindVersionList:
		v, err := parseVersionList(f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	case KindDeviceAnnounce:
		v, err := parseDeviceAnnounce(f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	case KindDevicesList:
		v, err := parseDevicesList(f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	case KindActiveEndpoints:
		v, err := parseActiveEndpoints(f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	case KindSimpleDescriptorResponse:
		v, err := parseSimpleDescriptorResponse(f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	case KindReadAttributeResponse, KindReportIndividualAttribute:
		v, err := parseReadAttributeResponse(kind, f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	case KindRouterDiscoveryConfirm:
		v, err := parseRouterDiscoveryConfirm(f.Payload)
		if err != nil {
			return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, err
		}
		return v, nil
	default:
		return UnknownResponse{MsgType: f.MsgType, Payload: f.Payload}, nil
	}
}

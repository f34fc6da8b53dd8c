package zigate

import "encoding/binary"

// DeviceType selects the coordinator/router role for SetDeviceType.
type DeviceType uint8

const (
	DeviceTypeCoordinator DeviceType = 0
	DeviceTypeRouter      DeviceType = 1
)

// OnOffCommand is the single-byte ZCL On/Off cluster command id carried
// by ActionOnOff.
type OnOffCommand uint8

const (
	OnOffOff    OnOffCommand = 0
	OnOffOn     OnOffCommand = 1
	OnOffToggle OnOffCommand = 2
)

// addrMode16Bit is the only address mode the action commands in this
// driver use: addressing by 16-bit short address.
const addrMode16Bit = 2

func newFrame(kind MessageKind, payload []byte) Frame {
	return Frame{MsgType: uint16(kind), Payload: payload}
}

// GetNetworkState builds the GetNetworkState command (no payload).
func GetNetworkState() Frame { return newFrame(KindGetNetworkState, nil) }

// GetVersion builds the GetVersion command (no payload).
func GetVersion() Frame { return newFrame(KindGetVersion, nil) }

// Reset builds the Reset command (no payload).
func Reset() Frame { return newFrame(KindReset, nil) }

// Erase builds the Erase command (no payload).
func Erase() Frame { return newFrame(KindErase, nil) }

// GetDevicesList builds the GetDevicesList command (no payload).
func GetDevicesList() Frame { return newFrame(KindGetDevicesList, nil) }

// StartNetwork builds the StartNetwork command (no payload).
func StartNetwork() Frame { return newFrame(KindStartNetwork, nil) }

// SetChannelMask builds SetChannelMask: u32 mask.
func SetChannelMask(mask uint32) Frame {
	payload := binary.BigEndian.AppendUint32(nil, mask)
	return newFrame(KindSetChannelMask, payload)
}

// SetDeviceType builds SetDeviceType: u8 (0=Coordinator, 1=Router).
func SetDeviceType(t DeviceType) Frame {
	return newFrame(KindSetDeviceType, []byte{byte(t)})
}

// ActiveEndpointRequest builds ActiveEndpointRequest: u16 short_addr.
func ActiveEndpointRequest(shortAddr uint16) Frame {
	payload := binary.BigEndian.AppendUint16(nil, shortAddr)
	return newFrame(KindActiveEndpointRequest, payload)
}

// SimpleDescriptorRequest builds SimpleDescriptorRequest: u16 short_addr, u8 endpoint.
func SimpleDescriptorRequest(shortAddr uint16, endpoint uint8) Frame {
	payload := binary.BigEndian.AppendUint16(nil, shortAddr)
	payload = append(payload, endpoint)
	return newFrame(KindSimpleDescriptorRequest, payload)
}

// PermitJoinRequest builds PermitJoinRequest: u16 target, u8 interval, u8 tc_significance.
func PermitJoinRequest(target uint16, intervalSeconds uint8, tcSignificance uint8) Frame {
	payload := binary.BigEndian.AppendUint16(nil, target)
	payload = append(payload, intervalSeconds, tcSignificance)
	return newFrame(KindPermitJoinRequest, payload)
}

// addrHeader builds the shared addr_mode + addr + src_ep + dst_ep prefix
// used by every Action* command.
func addrHeader(addr uint16, srcEndpoint, dstEndpoint uint8) []byte {
	payload := make([]byte, 0, 5)
	payload = append(payload, addrMode16Bit)
	payload = binary.BigEndian.AppendUint16(payload, addr)
	payload = append(payload, srcEndpoint, dstEndpoint)
	return payload
}

// ActionOnOff builds ActionOnOff: addr_mode=2, addr, src_ep, dst_ep, cmd.
func ActionOnOff(addr uint16, srcEndpoint, dstEndpoint uint8, cmd OnOffCommand) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = append(payload, byte(cmd))
	return newFrame(KindActionOnOff, payload)
}

// ActionMove builds ActionMove: ..., cmd, mode, rate.
func ActionMove(addr uint16, srcEndpoint, dstEndpoint uint8, cmd, mode, rate uint8) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = append(payload, cmd, mode, rate)
	return newFrame(KindActionMove, payload)
}

// ActionMoveOnOff builds ActionMoveOnOff: ..., cmd, level, transition_time.
func ActionMoveOnOff(addr uint16, srcEndpoint, dstEndpoint uint8, cmd uint8, level uint8, transitionTime uint16) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = append(payload, cmd, level)
	payload = binary.BigEndian.AppendUint16(payload, transitionTime)
	return newFrame(KindActionMoveOnOff, payload)
}

// MoveToLevel builds the move-to-level-with-on-off variant of
// ActionMoveOnOff used by Coordinator.MoveToLevel.
func MoveToLevel(addr uint16, srcEndpoint, dstEndpoint uint8, onOff bool, level uint8, transitionTime uint16) Frame {
	cmd := uint8(0x00)
	if onOff {
		cmd = 0x01
	}
	return ActionMoveOnOff(addr, srcEndpoint, dstEndpoint, cmd, level, transitionTime)
}

// ActionOnOffTimed builds ActionOnOffTimed: ..., cmd, on_time, off_time.
func ActionOnOffTimed(addr uint16, srcEndpoint, dstEndpoint uint8, cmd uint8, onTime, offTime uint16) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = append(payload, cmd)
	payload = binary.BigEndian.AppendUint16(payload, onTime)
	payload = binary.BigEndian.AppendUint16(payload, offTime)
	return newFrame(KindActionOnOffTimed, payload)
}

// ActionOnOffEffect builds ActionOnOffEffect: ..., cmd, effect_id, effect_variant.
func ActionOnOffEffect(addr uint16, srcEndpoint, dstEndpoint, cmd, effectID, effectVariant uint8) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = append(payload, cmd, effectID, effectVariant)
	return newFrame(KindActionOnOffEffect, payload)
}

// ActionMoveToHue builds ActionMoveToHue: ..., hue, direction, transition.
func ActionMoveToHue(addr uint16, srcEndpoint, dstEndpoint, hue, direction uint8, transition uint16) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = append(payload, hue, direction)
	payload = binary.BigEndian.AppendUint16(payload, transition)
	return newFrame(KindActionMoveToHue, payload)
}

// ActionMoveToHueAndSaturation builds ActionMoveToHueAndSaturation: ..., hue, sat, transition.
func ActionMoveToHueAndSaturation(addr uint16, srcEndpoint, dstEndpoint, hue, saturation uint8, transition uint16) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = append(payload, hue, saturation)
	payload = binary.BigEndian.AppendUint16(payload, transition)
	return newFrame(KindActionMoveToHueAndSat, payload)
}

// ActionMoveToColor builds ActionMoveToColor: ..., x, y, transition.
func ActionMoveToColor(addr uint16, srcEndpoint, dstEndpoint uint8, x, y, transition uint16) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = binary.BigEndian.AppendUint16(payload, x)
	payload = binary.BigEndian.AppendUint16(payload, y)
	payload = binary.BigEndian.AppendUint16(payload, transition)
	return newFrame(KindActionMoveToColor, payload)
}

// ActionMoveToColorTemp builds ActionMoveToColorTemp: ..., temp, transition.
func ActionMoveToColorTemp(addr uint16, srcEndpoint, dstEndpoint uint8, temp, transition uint16) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = binary.BigEndian.AppendUint16(payload, temp)
	payload = binary.BigEndian.AppendUint16(payload, transition)
	return newFrame(KindActionMoveToColorTemp, payload)
}

// ReadAttributeRequest builds ReadAttributeRequest: ..., cluster, direction,
// manuf_spec, manuf_id, n_attr, n_attr x u16 attrs.
func ReadAttributeRequest(addr uint16, srcEndpoint, dstEndpoint uint8, cluster uint16, attrs ...uint16) Frame {
	payload := addrHeader(addr, srcEndpoint, dstEndpoint)
	payload = binary.BigEndian.AppendUint16(payload, cluster)
	payload = append(payload, 0x00) // direction: client -> server
	payload = append(payload, 0x00) // manuf_spec: false
	payload = binary.BigEndian.AppendUint16(payload, 0x0000)
	payload = append(payload, byte(len(attrs)))
	for _, a := range attrs {
		payload = binary.BigEndian.AppendUint16(payload, a)
	}
	return newFrame(KindReadAttributeRequest, payload)
}

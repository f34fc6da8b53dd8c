package zigate

import "fmt"

// MessageKind is the closed enumeration of recognized 16-bit message
// codes, plus an Unknown fallback for anything else. Commands and
// responses share the numeric space but are disjoint by code.
type MessageKind uint16

// Command codes (host -> module).
const (
	KindGetNetworkState            MessageKind = 0x0009
	KindGetVersion                 MessageKind = 0x0010
	KindReset                      MessageKind = 0x0011
	KindErase                      MessageKind = 0x0012
	KindGetDevicesList             MessageKind = 0x0015
	KindSetChannelMask             MessageKind = 0x0021
	KindSetDeviceType              MessageKind = 0x0023
	KindStartNetwork               MessageKind = 0x0024
	KindSimpleDescriptorRequest    MessageKind = 0x0043
	KindActiveEndpointRequest      MessageKind = 0x0045
	KindPermitJoinRequest          MessageKind = 0x0049
	KindActionMove                 MessageKind = 0x0080
	KindActionMoveOnOff            MessageKind = 0x0081
	KindActionMoveStep             MessageKind = 0x0082
	KindActionOnOff                MessageKind = 0x0092
	KindActionOnOffTimed           MessageKind = 0x0093
	KindActionOnOffEffect          MessageKind = 0x0094
	KindActionMoveToHue            MessageKind = 0x0095
	KindActionMoveToHueAndSat      MessageKind = 0x0096
	KindActionMoveToColor          MessageKind = 0x0097
	KindActionMoveToColorTemp      MessageKind = 0x0098
	KindReadAttributeRequest       MessageKind = 0x0100
)

// Response codes (module -> host).
const (
	KindStatus                       MessageKind = 0x8000
	KindVersionList                  MessageKind = 0x8010
	KindDevicesList                  MessageKind = 0x8015
	KindSimpleDescriptorResponse     MessageKind = 0x8043
	KindActiveEndpoints              MessageKind = 0x8045
	KindReadAttributeResponse        MessageKind = 0x8100
	KindReportIndividualAttribute    MessageKind = 0x8102
	KindRouterDiscoveryConfirm       MessageKind = 0x8701
)

// Asynchronous event codes.
const (
	KindDeviceAnnounce MessageKind = 0x004D
)

var kindNames = map[MessageKind]string{
	KindGetNetworkState:           "GetNetworkState",
	KindGetVersion:                "GetVersion",
	KindReset:                     "Reset",
	KindErase:                     "Erase",
	KindGetDevicesList:            "GetDevicesList",
	KindSetChannelMask:            "SetChannelMask",
	KindSetDeviceType:             "SetDeviceType",
	KindStartNetwork:              "StartNetwork",
	KindSimpleDescriptorRequest:   "SimpleDescriptorRequest",
	KindActiveEndpointRequest:     "ActiveEndpointRequest",
	KindPermitJoinRequest:         "PermitJoinRequest",
	KindActionMove:                "ActionMove",
	KindActionMoveOnOff:           "ActionMoveOnOff",
	KindActionMoveStep:            "ActionMoveStep",
	KindActionOnOff:               "ActionOnOff",
	KindActionOnOffTimed:          "ActionOnOffTimed",
	KindActionOnOffEffect:         "ActionOnOffEffect",
	KindActionMoveToHue:           "ActionMoveToHue",
	KindActionMoveToHueAndSat:     "ActionMoveToHueAndSaturation",
	KindActionMoveToColor:         "ActionMoveToColor",
	KindActionMoveToColorTemp:     "ActionMoveToColorTemp",
	KindReadAttributeRequest:      "ReadAttributeRequest",
	KindStatus:                    "Status",
	KindVersionList:               "VersionList",
	KindDevicesList:                "DevicesList",
	KindSimpleDescriptorResponse:  "SimpleDescriptorResponse",
	KindActiveEndpoints:           "ActiveEndpoints",
	KindReadAttributeResponse:     "ReadAttributeResponse",
	KindReportIndividualAttribute: "ReportIndividualAttributeResponse",
	KindRouterDiscoveryConfirm:    "RouterDiscoveryConfirm",
	KindDeviceAnnounce:            "DeviceAnnounce",
}

// KindOf maps a raw 16-bit code to its MessageKind. Unrecognized codes
// are still returned as a MessageKind value (their own numeric value);
// use IsKnown to tell the two apart.
func KindOf(code uint16) MessageKind {
	return MessageKind(code)
}

// IsKnown reports whether k is one of the codes in the closed
// enumeration above.
func (k MessageKind) IsKnown() bool {
	_, ok := kindNames[k]
	return ok
}

// String renders the kind's name, or "Unknown(0x%04X)" for codes outside
// the closed enumeration.
func (k MessageKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%04X)", uint16(k))
}

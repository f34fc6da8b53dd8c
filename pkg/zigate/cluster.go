package zigate

import (
	"encoding/binary"

	"github.com/rs/zerolog/log"
)

// ClusterID is the 16-bit ZCL cluster identifier.
type ClusterID uint16

const (
	ClusterBasic                ClusterID = 0x0000
	ClusterGeneralOnOff         ClusterID = 0x0006
	ClusterGeneralLevelControl  ClusterID = 0x0008
	ClusterLightingColorControl ClusterID = 0x0300
)

// Basic attribute ids (cluster 0x0000).
const (
	attrBasicZCLVersion         uint16 = 0x0000
	attrBasicApplicationVersion uint16 = 0x0001
	attrBasicStackVersion       uint16 = 0x0002
	attrBasicHWVersion          uint16 = 0x0003
	attrBasicManufacturerName   uint16 = 0x0004
	attrBasicModelIdentifier    uint16 = 0x0005
	attrBasicDateCode           uint16 = 0x0006
	attrBasicPowerSource        uint16 = 0x0007
	attrBasicLocationDesc       uint16 = 0x0010
	attrBasicPhysicalEnv        uint16 = 0x0011
	attrBasicDeviceEnabled      uint16 = 0x0012
	attrBasicAlarmMask          uint16 = 0x0013
	attrBasicDisableLocalConfig uint16 = 0x0014
	attrBasicSWBuildID          uint16 = 0x0016
)

// OnOff attribute ids (cluster 0x0006).
const attrOnOffOnOff uint16 = 0x0000

// LevelControl attribute ids (cluster 0x0008).
const attrLevelControlCurrentLevel uint16 = 0x0000

// ColorControl attribute ids (cluster 0x0300).
const (
	attrColorControlCurrentHue        uint16 = 0x0000
	attrColorControlCurrentSaturation uint16 = 0x0001
	attrColorControlCurrentX          uint16 = 0x0003
	attrColorControlCurrentY          uint16 = 0x0004
	attrColorControlColorTemperature  uint16 = 0x0007
	attrColorControlColorMode         uint16 = 0x0008
	attrColorControlColorCapabilities uint16 = 0x400A
	attrColorControlColorTempMin      uint16 = 0x400B
	attrColorControlColorTempMax      uint16 = 0x400C
)

// Cluster is the tagged-variant contract every modeled ZCL cluster
// satisfies: it knows its own id and how to absorb an attribute update
// reported by a ReadAttributeResponse or ReportIndividualAttribute frame.
type Cluster interface {
	ID() ClusterID
	update(attrID uint16, attrType uint8, data []byte) error
}

// NewCluster constructs the zero-value cluster for id, or nil if id isn't
// one of the modeled clusters. Unmodeled clusters are still recorded on
// the endpoint (see Endpoint.InClusterList) but carry no attribute state.
func NewCluster(id ClusterID) Cluster {
	switch id {
	case ClusterBasic:
		return &BasicCluster{DeviceEnabled: true}
	case ClusterGeneralOnOff:
		return &OnOffCluster{}
	case ClusterGeneralLevelControl:
		return &LevelControlCluster{}
	case ClusterLightingColorControl:
		return &ColorControlCluster{}
	default:
		return nil
	}
}

// BasicCluster models cluster 0x0000: firmware/identity attributes.
// DeviceEnabled defaults to true, matching §4.5's decode-error default.
type BasicCluster struct {
	ZCLVersion         uint8
	ApplicationVersion uint8
	StackVersion       uint8
	HWVersion          uint8
	ManufacturerName   string
	ModelIdentifier    string
	DateCode           string
	PowerSource        uint8
	LocationDesc       string
	PhysicalEnv        uint8
	DeviceEnabled      bool
	AlarmMask          uint8
	DisableLocalConfig uint8
	SWBuildID          string
}

func (*BasicCluster) ID() ClusterID { return ClusterBasic }

func (c *BasicCluster) update(attrID uint16, attrType uint8, data []byte) error {
	switch attrID {
	case attrBasicZCLVersion:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.ZCLVersion = data[0]
	case attrBasicApplicationVersion:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.ApplicationVersion = data[0]
	case attrBasicStackVersion:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.StackVersion = data[0]
	case attrBasicHWVersion:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.HWVersion = data[0]
	case attrBasicManufacturerName:
		c.ManufacturerName = string(data)
	case attrBasicModelIdentifier:
		c.ModelIdentifier = string(data)
	case attrBasicDateCode:
		c.DateCode = string(data)
	case attrBasicPowerSource:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.PowerSource = data[0]
	case attrBasicLocationDesc:
		c.LocationDesc = string(data)
	case attrBasicPhysicalEnv:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.PhysicalEnv = data[0]
	case attrBasicDeviceEnabled:
		// Per §4.5, a short/invalid payload leaves device_enabled at its
		// true default rather than failing the update.
		if len(data) < 1 {
			c.DeviceEnabled = true
			return nil
		}
		c.DeviceEnabled = data[0] != 0
	case attrBasicAlarmMask:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.AlarmMask = data[0]
	case attrBasicDisableLocalConfig:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		c.DisableLocalConfig = data[0]
	case attrBasicSWBuildID:
		c.SWBuildID = string(data)
	}
	return nil
}

// OnOffCluster models cluster 0x0006: a single boolean on/off state.
type OnOffCluster struct {
	OnOff bool
}

func (*OnOffCluster) ID() ClusterID { return ClusterGeneralOnOff }

func (c *OnOffCluster) update(attrID uint16, attrType uint8, data []byte) error {
	if attrID != attrOnOffOnOff {
		return nil
	}
	if len(data) < 1 {
		return ErrDecodeFailure
	}
	c.OnOff = data[0] != 0
	return nil
}

// LevelControlCluster models cluster 0x0008: dimmer level 0-254.
type LevelControlCluster struct {
	CurrentLevel uint8
}

func (*LevelControlCluster) ID() ClusterID { return ClusterGeneralLevelControl }

func (c *LevelControlCluster) update(attrID uint16, attrType uint8, data []byte) error {
	if attrID != attrLevelControlCurrentLevel {
		return nil
	}
	if len(data) < 1 {
		return ErrDecodeFailure
	}
	c.CurrentLevel = data[0]
	return nil
}

// ColorMode identifies which color representation a light currently
// uses, reported via attribute 0x0008 of the color control cluster.
type ColorMode uint8

const (
	ColorModeNone ColorMode = iota
	ColorModeHueSat
	ColorModeXY
	ColorModeTemp
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeHueSat:
		return "HueSat"
	case ColorModeXY:
		return "XY"
	case ColorModeTemp:
		return "Temp"
	default:
		return "None"
	}
}

// ColorCapabilities unpacks the color-control capability bitmap
// (attribute 0x400A): bit0 hue_sat, bit1 enhanced_hue, bit2 color_loop,
// bit3 xy, bit4 temp.
type ColorCapabilities struct {
	HueSat      bool
	EnhancedHue bool
	ColorLoop   bool
	XY          bool
	Temp        bool
}

func parseColorCapabilities(bits uint16) ColorCapabilities {
	return ColorCapabilities{
		HueSat:      bits&0x0001 != 0,
		EnhancedHue: bits&0x0002 != 0,
		ColorLoop:   bits&0x0004 != 0,
		XY:          bits&0x0008 != 0,
		Temp:        bits&0x0010 != 0,
	}
}

// ColorControlCluster models cluster 0x0300: hue/saturation, CIE xy and
// color-temperature state, plus the module-reported capability bitmap.
// Fields that the module hasn't reported yet are nil, matching §3's
// "optional" attributes; they're filled in as ReadAttributeResponse or
// ReportIndividualAttributeResponse frames arrive.
type ColorControlCluster struct {
	CurrentHue        *uint8
	CurrentSaturation *uint8
	CurrentX          *uint16
	CurrentY          *uint16
	ColorTemperature  *uint16
	ColorMode         ColorMode
	ColorCapabilities ColorCapabilities
	ColorTempMin      *uint16
	ColorTempMax      *uint16
}

func (*ColorControlCluster) ID() ClusterID { return ClusterLightingColorControl }

func (c *ColorControlCluster) update(attrID uint16, attrType uint8, data []byte) error {
	switch attrID {
	case attrColorControlCurrentHue:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		v := data[0]
		c.CurrentHue = &v
	case attrColorControlCurrentSaturation:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		v := data[0]
		c.CurrentSaturation = &v
	case attrColorControlCurrentX:
		if len(data) < 2 {
			return ErrDecodeFailure
		}
		v := binary.BigEndian.Uint16(data[:2])
		c.CurrentX = &v
	case attrColorControlCurrentY:
		if len(data) < 2 {
			return ErrDecodeFailure
		}
		v := binary.BigEndian.Uint16(data[:2])
		c.CurrentY = &v
	case attrColorControlColorTemperature:
		if len(data) < 2 {
			return ErrDecodeFailure
		}
		v := binary.BigEndian.Uint16(data[:2])
		c.ColorTemperature = &v
	case attrColorControlColorMode:
		if len(data) < 1 {
			return ErrDecodeFailure
		}
		switch data[0] {
		case 0:
			c.ColorMode = ColorModeHueSat
		case 1:
			c.ColorMode = ColorModeXY
		case 2:
			c.ColorMode = ColorModeTemp
		default:
			log.Warn().Uint8("raw", data[0]).Msg("zigate: unrecognized color_mode value")
			c.ColorMode = ColorModeNone
		}
	case attrColorControlColorCapabilities:
		if len(data) < 2 {
			return ErrDecodeFailure
		}
		c.ColorCapabilities = parseColorCapabilities(binary.BigEndian.Uint16(data[:2]))
	case attrColorControlColorTempMin:
		if len(data) < 2 {
			return ErrDecodeFailure
		}
		v := binary.BigEndian.Uint16(data[:2])
		c.ColorTempMin = &v
	case attrColorControlColorTempMax:
		if len(data) < 2 {
			return ErrDecodeFailure
		}
		v := binary.BigEndian.Uint16(data[:2])
		c.ColorTempMax = &v
	}
	return nil
}

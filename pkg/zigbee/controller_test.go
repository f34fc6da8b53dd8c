package zigbee

import (
	"testing"

	"github.com/zigate/zigated/pkg/device"
	"github.com/zigate/zigated/pkg/zigate"
)

func TestIEEEHexFormat(t *testing.T) {
	if got := ieeeHex(0x0102030405060708); got != "0x0102030405060708" {
		t.Errorf("ieeeHex() = %q", got)
	}
}

func TestDeviceTypeOfPrefersColorThenLevelThenOnOff(t *testing.T) {
	colorDevice := &zigate.Device{Endpoints: map[uint8]*zigate.Endpoint{
		1: zigate.NewEndpoint(zigate.SimpleDescriptorResponseMsg{
			Endpoint:      1,
			InClusterList: []uint16{uint16(zigate.ClusterLightingColorControl)},
		}),
	}}
	if got := deviceTypeOf(colorDevice); got != device.DeviceTypeLight {
		t.Errorf("deviceTypeOf(color) = %q, want %q", got, device.DeviceTypeLight)
	}

	switchDevice := &zigate.Device{Endpoints: map[uint8]*zigate.Endpoint{
		1: zigate.NewEndpoint(zigate.SimpleDescriptorResponseMsg{
			Endpoint:      1,
			InClusterList: []uint16{uint16(zigate.ClusterGeneralOnOff)},
		}),
	}}
	if got := deviceTypeOf(switchDevice); got != device.DeviceTypeSwitch {
		t.Errorf("deviceTypeOf(switch) = %q, want %q", got, device.DeviceTypeSwitch)
	}

	sensorDevice := &zigate.Device{Endpoints: map[uint8]*zigate.Endpoint{}}
	if got := deviceTypeOf(sensorDevice); got != device.DeviceTypeSensor {
		t.Errorf("deviceTypeOf(bare) = %q, want %q", got, device.DeviceTypeSensor)
	}
}

func TestToDeviceReadsManufacturerFromBasicCluster(t *testing.T) {
	ep := zigate.NewEndpoint(zigate.SimpleDescriptorResponseMsg{
		Endpoint:      1,
		InClusterList: []uint16{uint16(zigate.ClusterBasic)},
	})
	basic, ok := ep.Cluster(zigate.ClusterBasic).(*zigate.BasicCluster)
	if !ok {
		t.Fatal("expected a *BasicCluster")
	}
	basic.ManufacturerName = "Acme"
	basic.ModelIdentifier = "Bulb-1"

	d := &zigate.Device{IEEEAddr: 0xAABBCCDD, Endpoints: map[uint8]*zigate.Endpoint{1: ep}}
	dev := toDevice(d)

	if dev.Manufacturer != "Acme" || dev.Model != "Bulb-1" {
		t.Errorf("got manufacturer=%q model=%q", dev.Manufacturer, dev.Model)
	}
	if dev.ID != "0x00000000AABBCCDD" {
		t.Errorf("ID = %q", dev.ID)
	}
}

func TestAsUint8AndAsUint16(t *testing.T) {
	if v, err := asUint8(float64(42)); err != nil || v != 42 {
		t.Errorf("asUint8(float64) = %d, %v", v, err)
	}
	if _, err := asUint8("nope"); err == nil {
		t.Error("expected error for non-numeric input")
	}
	if v, err := asUint16(float64(300)); err != nil || v != 300 {
		t.Errorf("asUint16(float64) = %d, %v", v, err)
	}
}

func TestBoolToOnOff(t *testing.T) {
	if boolToOnOff(true) != "ON" {
		t.Error("boolToOnOff(true) should be ON")
	}
	if boolToOnOff(false) != "OFF" {
		t.Error("boolToOnOff(false) should be OFF")
	}
}

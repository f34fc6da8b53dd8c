package zigate

import "testing"

func TestNewClusterKnownIDs(t *testing.T) {
	cases := []struct {
		id   ClusterID
		want ClusterID
	}{
		{ClusterBasic, ClusterBasic},
		{ClusterGeneralOnOff, ClusterGeneralOnOff},
		{ClusterGeneralLevelControl, ClusterGeneralLevelControl},
		{ClusterLightingColorControl, ClusterLightingColorControl},
	}
	for _, c := range cases {
		cl := NewCluster(c.id)
		if cl == nil {
			t.Fatalf("NewCluster(%v) = nil", c.id)
		}
		if cl.ID() != c.want {
			t.Errorf("ID() = %v, want %v", cl.ID(), c.want)
		}
	}
}

func TestNewClusterUnknownID(t *testing.T) {
	if cl := NewCluster(ClusterID(0xFFF0)); cl != nil {
		t.Errorf("NewCluster(unknown) = %v, want nil", cl)
	}
}

func TestOnOffClusterUpdate(t *testing.T) {
	c := &OnOffCluster{}
	if err := c.update(attrOnOffOnOff, 0x10, []byte{0x01}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !c.OnOff {
		t.Error("OnOff should be true after update with 0x01")
	}
	if err := c.update(attrOnOffOnOff, 0x10, []byte{0x00}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.OnOff {
		t.Error("OnOff should be false after update with 0x00")
	}
}

func TestOnOffClusterUpdateIgnoresOtherAttrs(t *testing.T) {
	c := &OnOffCluster{OnOff: true}
	if err := c.update(0x1234, 0x10, []byte{0x00}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !c.OnOff {
		t.Error("unrelated attribute update should not change OnOff")
	}
}

func TestLevelControlClusterUpdate(t *testing.T) {
	c := &LevelControlCluster{}
	if err := c.update(attrLevelControlCurrentLevel, 0x20, []byte{0xFE}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.CurrentLevel != 0xFE {
		t.Errorf("CurrentLevel = %d, want 254", c.CurrentLevel)
	}
}

func TestColorControlClusterUpdateHueAndXY(t *testing.T) {
	c := &ColorControlCluster{}
	if err := c.update(attrColorControlCurrentHue, 0x20, []byte{0x80}); err != nil {
		t.Fatalf("update hue: %v", err)
	}
	if c.CurrentHue == nil || *c.CurrentHue != 0x80 {
		t.Errorf("CurrentHue = %v, want 128", c.CurrentHue)
	}
	if err := c.update(attrColorControlCurrentX, 0x21, []byte{0x12, 0x34}); err != nil {
		t.Fatalf("update x: %v", err)
	}
	if c.CurrentX == nil || *c.CurrentX != 0x1234 {
		t.Errorf("CurrentX = %v, want 0x1234", c.CurrentX)
	}
}

func TestColorControlClusterUpdateModeAndCapabilities(t *testing.T) {
	c := &ColorControlCluster{}
	if err := c.update(attrColorControlColorMode, 0x30, []byte{0x01}); err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if c.ColorMode != ColorModeXY {
		t.Errorf("ColorMode = %v, want XY", c.ColorMode)
	}
	if err := c.update(attrColorControlColorMode, 0x30, []byte{0xFF}); err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if c.ColorMode != ColorModeNone {
		t.Errorf("unrecognized color_mode should map to None, got %v", c.ColorMode)
	}

	// bit0 hue_sat, bit3 xy
	if err := c.update(attrColorControlColorCapabilities, 0x21, []byte{0x00, 0x09}); err != nil {
		t.Fatalf("update capabilities: %v", err)
	}
	if !c.ColorCapabilities.HueSat || !c.ColorCapabilities.XY || c.ColorCapabilities.Temp {
		t.Errorf("ColorCapabilities = %+v, want hue_sat+xy only", c.ColorCapabilities)
	}
}

func TestBasicClusterDeviceEnabledDefaultsTrue(t *testing.T) {
	c := &BasicCluster{DeviceEnabled: true}
	if err := c.update(attrBasicDeviceEnabled, 0x10, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !c.DeviceEnabled {
		t.Error("DeviceEnabled should default to true on a short payload")
	}
	if err := c.update(attrBasicDeviceEnabled, 0x10, []byte{0x00}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.DeviceEnabled {
		t.Error("DeviceEnabled should become false on an explicit 0x00")
	}
}

func TestColorControlClusterUpdateShortDataFails(t *testing.T) {
	c := &ColorControlCluster{}
	if err := c.update(attrColorControlCurrentX, 0x21, []byte{0x12}); err == nil {
		t.Error("expected error for truncated u16 data")
	}
}

func TestBasicClusterUpdate(t *testing.T) {
	c := &BasicCluster{}
	if err := c.update(attrBasicManufacturerName, 0x42, []byte("Acme")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.ManufacturerName != "Acme" {
		t.Errorf("ManufacturerName = %q, want %q", c.ManufacturerName, "Acme")
	}
}

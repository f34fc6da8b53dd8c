package zigate

import (
	"errors"
	"testing"
	"time"
)

// newTestCoordinator builds a Coordinator with no real serial port. sendFunc
// defaults to a no-op; tests override it to simulate the module replying.
func newTestCoordinator() *Coordinator {
	c := &Coordinator{
		state: newState(),
		stale: newStaleness(),
	}
	c.sendFunc = func(Frame) error { return nil }
	return c
}

func TestCoordinatorGetVersionCachesResult(t *testing.T) {
	c := newTestCoordinator()
	calls := 0
	c.sendFunc = func(f Frame) error {
		calls++
		c.state.setLastResp(VersionList{Major: 1, Installer: 2})
		return nil
	}

	v, err := c.GetVersion()
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if v.Major != 1 {
		t.Errorf("Major = %d, want 1", v.Major)
	}

	if _, err := c.GetVersion(); err != nil {
		t.Fatalf("second GetVersion: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single wire request, got %d", calls)
	}
}

func TestCoordinatorRequestTimeout(t *testing.T) {
	origInterval, origAttempts := pollInterval, pollAttempts
	pollInterval = time.Millisecond
	pollAttempts = 3
	defer func() { pollInterval, pollAttempts = origInterval, origAttempts }()

	c := newTestCoordinator()
	c.sendFunc = func(Frame) error { return nil } // never populates a response

	_, err := c.GetVersion()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestCoordinatorOnOffRequestsStatus(t *testing.T) {
	c := newTestCoordinator()
	var sent Frame
	c.sendFunc = func(f Frame) error {
		sent = f
		c.state.setLastStatus(Status{Status: StatusSuccess, PacketType: KindActionOnOff})
		return nil
	}

	if err := c.OnOff(0x1234, 1, 1, OnOffOn); err != nil {
		t.Fatalf("OnOff: %v", err)
	}
	if MessageKind(sent.MsgType) != KindActionOnOff {
		t.Errorf("expected ActionOnOff frame, got %v", MessageKind(sent.MsgType))
	}
}

func TestCoordinatorGetNetworkStateRequestsStatus(t *testing.T) {
	c := newTestCoordinator()
	var sent Frame
	c.sendFunc = func(f Frame) error {
		sent = f
		c.state.setLastStatus(Status{Status: StatusSuccess, PacketType: KindGetNetworkState})
		return nil
	}

	if err := c.GetNetworkState(); err != nil {
		t.Fatalf("GetNetworkState: %v", err)
	}
	if MessageKind(sent.MsgType) != KindGetNetworkState {
		t.Errorf("expected GetNetworkState frame, got %v", MessageKind(sent.MsgType))
	}
}

func TestCoordinatorMoveToSaturationSendsCurrentHue(t *testing.T) {
	c := newTestCoordinator()
	d := c.state.deviceFor(0x1234, 0x1)
	d.Endpoints[1] = NewEndpoint(SimpleDescriptorResponseMsg{
		Endpoint:      1,
		InClusterList: []uint16{uint16(ClusterLightingColorControl)},
	})
	ep, _ := d.Endpoint(1)
	hue := uint8(42)
	ep.Cluster(ClusterLightingColorControl).(*ColorControlCluster).CurrentHue = &hue

	var sent Frame
	c.sendFunc = func(f Frame) error {
		sent = f
		c.state.setLastStatus(Status{Status: StatusSuccess, PacketType: KindActionMoveToHueAndSat})
		return nil
	}

	if err := c.MoveToSaturation(0x1234, 1, 1, 200, 10); err != nil {
		t.Fatalf("MoveToSaturation: %v", err)
	}

	payload := sent.Payload
	if len(payload) != 9 {
		t.Fatalf("payload length = %d, want 9 (addr header + hue + sat + transition)", len(payload))
	}
	if payload[5] != hue {
		t.Errorf("hue byte = %d, want %d", payload[5], hue)
	}
	if payload[6] != 200 {
		t.Errorf("saturation byte = %d, want 200", payload[6])
	}
}

func TestCoordinatorMoveToSaturationNotAvailable(t *testing.T) {
	c := newTestCoordinator()
	c.state.deviceFor(0x1234, 0x1)

	if err := c.MoveToSaturation(0x1234, 1, 1, 200, 10); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestCoordinatorGetOnOffDecodesAttribute(t *testing.T) {
	c := newTestCoordinator()
	d := c.state.deviceFor(0x1234, 0x1)
	d.Endpoints[1] = NewEndpoint(SimpleDescriptorResponseMsg{
		Endpoint:      1,
		InClusterList: []uint16{uint16(ClusterGeneralOnOff)},
	})

	c.sendFunc = func(f Frame) error {
		ep, _ := d.Endpoint(1)
		ep.Cluster(ClusterGeneralOnOff).(*OnOffCluster).OnOff = true
		c.state.setLastResp(ReadAttributeResponseMsg{
			kind:      KindReportIndividualAttribute,
			SrcAddr:   0x1234,
			Endpoint:  1,
			ClusterID: uint16(ClusterGeneralOnOff),
			AttrID:    attrOnOffOnOff,
			Data:      []byte{0x01},
		})
		return nil
	}

	on, err := c.GetOnOff(0x1234, 1, 1)
	if err != nil {
		t.Fatalf("GetOnOff: %v", err)
	}
	if !on {
		t.Error("GetOnOff() = false, want true")
	}
}

func TestCoordinatorGetOnOffNotAvailable(t *testing.T) {
	c := newTestCoordinator()
	c.state.deviceFor(0x1234, 0x1)

	if _, err := c.GetOnOff(0x1234, 1, 1); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestCoordinatorGetDevicesFiltersStale(t *testing.T) {
	c := newTestCoordinator()
	c.sendFunc = func(f Frame) error {
		c.state.setLastResp(DevicesListMsg{})
		return nil
	}

	fresh := c.state.deviceFor(0x1111, 0x1)
	stale := c.state.deviceFor(0x2222, 0x2)
	c.stale.touch(fresh.ShortAddr)
	// stale.ShortAddr is never touched, so it stays absent from the cache.

	devices, err := c.GetDevices()
	if err != nil {
		t.Fatalf("GetDevices: %v", err)
	}
	if len(devices) != 1 || devices[0].ShortAddr != fresh.ShortAddr {
		t.Errorf("got %d devices, want only the touched one (not 0x%04X)", len(devices), stale.ShortAddr)
	}
}

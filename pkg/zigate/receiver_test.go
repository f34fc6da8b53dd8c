package zigate

import (
	"testing"
	"time"
)

func newTestReceiver() (*receiver, *[]Frame) {
	var sent []Frame
	r := newReceiver(nil, newState(), newStaleness(), false)
	r.send = func(f Frame) error {
		sent = append(sent, f)
		return nil
	}
	return r, &sent
}

func TestDispatchDeviceAnnounceRequestsEndpoints(t *testing.T) {
	r, sent := newTestReceiver()

	r.dispatch(DeviceAnnounceMsg{ShortAddr: 0x1234, IEEEAddr: 0xAABBCCDD, MACCapability: 0x8E})

	if len(*sent) != 1 {
		t.Fatalf("expected 1 frame sent, got %d", len(*sent))
	}
	if MessageKind((*sent)[0].MsgType) != KindActiveEndpointRequest {
		t.Errorf("expected ActiveEndpointRequest, got %v", MessageKind((*sent)[0].MsgType))
	}

	d, ok := r.state.device(0x1234)
	if !ok {
		t.Fatal("device should be tracked after DeviceAnnounce")
	}
	if d.MACCapability != 0x8E {
		t.Errorf("MACCapability = 0x%02X", d.MACCapability)
	}
	if r.stale.isStale(0x1234) {
		t.Error("device should be touched, not stale")
	}
}

func TestDispatchDeviceAnnounceIgnoresRepeatAnnounce(t *testing.T) {
	r, sent := newTestReceiver()

	r.dispatch(DeviceAnnounceMsg{ShortAddr: 0x1234, IEEEAddr: 0xAABBCCDD, MACCapability: 0x8E})
	if len(*sent) != 1 {
		t.Fatalf("expected 1 frame after first announce, got %d", len(*sent))
	}

	r.dispatch(DeviceAnnounceMsg{ShortAddr: 0x1234, IEEEAddr: 0xAABBCCDD, MACCapability: 0x8E})
	if len(*sent) != 1 {
		t.Errorf("repeat announce should not re-request endpoints, got %d frames", len(*sent))
	}
}

func TestDispatchActiveEndpointsRequestsDescriptors(t *testing.T) {
	r, sent := newTestReceiver()
	r.state.deviceFor(0xABCD, 0x1)
	r.state.incExpResp() // the ActiveEndpointRequest sent earlier is still outstanding

	r.dispatch(ActiveEndpointsMsg{Addr: 0xABCD, Endpoints: []uint8{1, 2}})

	if len(*sent) != 2 {
		t.Fatalf("expected 2 SimpleDescriptorRequest frames, got %d", len(*sent))
	}
	for _, f := range *sent {
		if MessageKind(f.MsgType) != KindSimpleDescriptorRequest {
			t.Errorf("expected SimpleDescriptorRequest, got %v", MessageKind(f.MsgType))
		}
	}
	// the ActiveEndpoints expectation is satisfied (-1) and one per
	// discovered endpoint is now outstanding (+2): net one per endpoint.
	if got := r.state.peekExpResp(); got != 2 {
		t.Errorf("expResp = %d, want 2 (one SimpleDescriptorRequest per endpoint)", got)
	}
}

func TestDispatchSimpleDescriptorResponseCompletesDiscovery(t *testing.T) {
	r, _ := newTestReceiver()
	r.state.deviceFor(0x5555, 0x2)
	r.state.incExpResp() // exactly one endpoint outstanding

	done := make(chan Event, 4)
	go func() {
		for e := range r.events {
			done <- e
		}
	}()

	r.dispatch(SimpleDescriptorResponseMsg{
		Addr:          0x5555,
		Endpoint:      1,
		InClusterList: []uint16{uint16(ClusterGeneralOnOff)},
	})

	var sawDone bool
	for i := 0; i < 2; i++ {
		select {
		case e := <-done:
			if e.Type == EventDiscoveryDone {
				sawDone = true
			}
		case <-time.After(time.Second):
		}
	}
	if !sawDone {
		t.Error("expected EventDiscoveryDone once expResp returns to zero")
	}

	d, _ := r.state.device(0x5555)
	if _, ok := d.Endpoint(1); !ok {
		t.Error("endpoint 1 should be recorded on the device")
	}
}

func TestDispatchReadAttributeUpdatesCluster(t *testing.T) {
	r, _ := newTestReceiver()
	d := r.state.deviceFor(0x7777, 0x3)
	d.Endpoints[1] = NewEndpoint(SimpleDescriptorResponseMsg{
		Endpoint:      1,
		InClusterList: []uint16{uint16(ClusterGeneralOnOff)},
	})

	r.dispatch(ReadAttributeResponseMsg{
		SrcAddr:   0x7777,
		Endpoint:  1,
		ClusterID: uint16(ClusterGeneralOnOff),
		AttrID:    attrOnOffOnOff,
		Data:      []byte{0x01},
	})

	ep, _ := d.Endpoint(1)
	onOff, ok := ep.Cluster(ClusterGeneralOnOff).(*OnOffCluster)
	if !ok {
		t.Fatal("expected *OnOffCluster")
	}
	if !onOff.OnOff {
		t.Error("OnOff should be true after the attribute report")
	}
}

func TestHandleRawDropsMalformedFrame(t *testing.T) {
	r, _ := newTestReceiver()
	r.handleRaw([]byte{frameStart, 0x00, frameStop}) // too short to contain a header
	if _, ok := r.state.takeLastResp(KindStatus); ok {
		t.Error("malformed frame should not populate lastResp")
	}
}

func TestHandleRawDeliversBadChecksumByDefault(t *testing.T) {
	r, _ := newTestReceiver()
	wire, _ := Encode(uint16(KindVersionList), []byte{0x00, 0x01, 0x00, 0x02})
	wire[len(wire)-2] ^= 0xFF // corrupt the final payload byte, breaking the checksum

	r.handleRaw(wire)

	if _, ok := r.state.takeLastResp(KindVersionList); !ok {
		t.Error("bad-checksum frame should still be delivered when strictChecksum is off")
	}
}

func TestHandleRawDropsBadChecksumInStrictMode(t *testing.T) {
	r, _ := newTestReceiver()
	r.strictChecksum = true
	wire, _ := Encode(uint16(KindVersionList), []byte{0x00, 0x01, 0x00, 0x02})
	wire[len(wire)-2] ^= 0xFF

	r.handleRaw(wire)

	if _, ok := r.state.takeLastResp(KindVersionList); ok {
		t.Error("bad-checksum frame should be dropped in strict mode")
	}
}

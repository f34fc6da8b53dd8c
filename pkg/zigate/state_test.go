package zigate

import "testing"

func TestStateDeviceForCreatesOnce(t *testing.T) {
	s := newState()
	d1 := s.deviceFor(0x1111, 0xAAAA)
	d2 := s.deviceFor(0x1111, 0xBBBB)
	if d1 != d2 {
		t.Error("deviceFor should return the same Device for a repeated short address")
	}
	if d1.IEEEAddr != 0xAAAA {
		t.Errorf("IEEEAddr should be set from the first call, got 0x%X", d1.IEEEAddr)
	}
}

func TestStateLastRespTakeOnce(t *testing.T) {
	s := newState()
	s.setLastResp(VersionList{Major: 1})

	r, ok := s.takeLastResp(KindVersionList)
	if !ok {
		t.Fatal("expected a stored response")
	}
	if _, ok := r.(VersionList); !ok {
		t.Fatalf("got %T", r)
	}

	if _, ok := s.takeLastResp(KindVersionList); ok {
		t.Error("takeLastResp should clear the entry after reading it")
	}
}

func TestStateLastStatusKeyedByPacketType(t *testing.T) {
	s := newState()
	s.setLastStatus(Status{Status: StatusSuccess, PacketType: KindReset})
	s.setLastStatus(Status{Status: StatusBusy, PacketType: KindErase})

	st, ok := s.takeLastStatus(KindReset)
	if !ok || st.Status != StatusSuccess {
		t.Fatalf("got %+v, ok=%v", st, ok)
	}
	if _, ok := s.takeLastStatus(KindReset); ok {
		t.Error("status should be consumed after take")
	}

	st2, ok := s.takeLastStatus(KindErase)
	if !ok || st2.Status != StatusBusy {
		t.Fatalf("got %+v, ok=%v", st2, ok)
	}
}

func TestStateExpRespCounter(t *testing.T) {
	s := newState()
	s.incExpResp()
	s.incExpResp()
	if got := s.decExpResp(); got != 1 {
		t.Errorf("decExpResp() = %d, want 1", got)
	}
	if got := s.decExpResp(); got != 0 {
		t.Errorf("decExpResp() = %d, want 0", got)
	}
	if got := s.decExpResp(); got != 0 {
		t.Errorf("decExpResp() below zero should clamp at 0, got %d", got)
	}
}

func TestStateVersionCache(t *testing.T) {
	s := newState()
	if _, ok := s.getVersion(); ok {
		t.Error("version should not be cached before setVersion")
	}
	s.setVersion(VersionList{Major: 5, Installer: 9})
	v, ok := s.getVersion()
	if !ok || v.Major != 5 {
		t.Errorf("got %+v, ok=%v", v, ok)
	}
}

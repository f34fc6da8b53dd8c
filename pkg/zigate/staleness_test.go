package zigate

import "testing"

func TestStalenessTouchedDeviceNotStale(t *testing.T) {
	s := newStaleness()
	if !s.isStale(0x1234) {
		t.Error("an untouched address should be stale")
	}
	s.touch(0x1234)
	if s.isStale(0x1234) {
		t.Error("a touched address should not be stale")
	}
}

func TestStalenessKeysDoNotCollide(t *testing.T) {
	s := newStaleness()
	s.touch(0x0001)
	if s.isStale(0x0001) {
		t.Error("0x0001 should be fresh")
	}
	if !s.isStale(0x0010) {
		t.Error("0x0010 should be unaffected by touching 0x0001")
	}
}

package zigate

import "sync"

// state is the single mutex-guarded block of shared data the receiver
// goroutine writes and request/await coordinator calls poll. Mirrors
// the original driver's single-lock ZigateData: one mutex protects
// devices, the last-seen response/status per message kind, and the
// outstanding-discovery-request counter together, since discovery
// completion depends on all three staying consistent with each other.
type state struct {
	mu sync.Mutex

	devices map[uint16]*Device

	// lastResp holds the most recently received Response for each
	// MessageKind, so a waiter that starts polling after the frame
	// already arrived still observes it.
	lastResp map[MessageKind]Response

	// lastStatus holds the most recent Status keyed by the PacketType
	// field it acknowledges, since the module echoes the command kind
	// it is responding to rather than a request id.
	lastStatus map[MessageKind]Status

	// expResp counts ActiveEndpointRequests and SimpleDescriptorRequests
	// sent but not yet answered during endpoint discovery. Discovery for a device is complete once
	// this returns to zero after having been incremented at least once.
	expResp int

	version    VersionList
	haveVersion bool
}

func newState() *state {
	return &state{
		devices:    make(map[uint16]*Device),
		lastResp:   make(map[MessageKind]Response),
		lastStatus: make(map[MessageKind]Status),
	}
}

// deviceFor returns the tracked Device for shortAddr, creating it with
// ieeeAddr if this is the first time the address has been seen.
func (s *state) deviceFor(shortAddr uint16, ieeeAddr uint64) *Device {
	d, _ := s.deviceForNew(shortAddr, ieeeAddr)
	return d
}

// deviceForNew is deviceFor plus a flag reporting whether this call
// created the record. Callers that must not restart discovery for a
// device they already know about (DeviceAnnounce/DevicesList dedup,
// §4.4) use the flag to skip re-issuing the endpoint request.
func (s *state) deviceForNew(shortAddr uint16, ieeeAddr uint64) (*Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[shortAddr]
	if !ok {
		d = newDevice(shortAddr, ieeeAddr)
		s.devices[shortAddr] = d
		return d, true
	}
	return d, false
}

// device returns the tracked Device for shortAddr without creating one.
func (s *state) device(shortAddr uint16) (*Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[shortAddr]
	return d, ok
}

// allDevices returns a snapshot slice of every tracked device.
func (s *state) allDevices() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	return out
}

func (s *state) setLastResp(r Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResp[r.Kind()] = r
}

func (s *state) takeLastResp(kind MessageKind) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.lastResp[kind]
	if ok {
		delete(s.lastResp, kind)
	}
	return r, ok
}

func (s *state) setLastStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStatus[st.PacketType] = st
}

func (s *state) takeLastStatus(packetType MessageKind) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.lastStatus[packetType]
	if ok {
		delete(s.lastStatus, packetType)
	}
	return st, ok
}

// peekExpResp reads the outstanding-discovery-request counter without
// mutating it.
func (s *state) peekExpResp() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expResp
}

func (s *state) incExpResp() {
	s.mu.Lock()
	s.expResp++
	s.mu.Unlock()
}

func (s *state) decExpResp() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expResp > 0 {
		s.expResp--
	}
	return s.expResp
}

func (s *state) setVersion(v VersionList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
	s.haveVersion = true
}

func (s *state) getVersion() (VersionList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.haveVersion
}

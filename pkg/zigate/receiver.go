package zigate

import (
	"errors"
	"io"

	"github.com/rs/zerolog/log"
)

// EventType classifies the asynchronous events a receiver publishes to
// subscribers, independent of the raw response stream.
type EventType string

const (
	EventDeviceJoined    EventType = "device_joined"
	EventDeviceUpdated   EventType = "device_updated"
	EventDiscoveryDone   EventType = "discovery_done"
)

// Event is published to Coordinator subscribers whenever the receiver
// observes something a caller outside the request/await path would
// want to know about.
type Event struct {
	Type   EventType
	Device *Device
}

// receiver owns the serial byte stream: it assembles frames, decodes
// them, advances the discovery state machine, and folds attribute
// reports into the tracked device/endpoint/cluster tree. It is the
// only goroutine that mutates discovery-derived state; everything else
// reads through state's locked accessors.
type receiver struct {
	port  *SerialPort
	state *state
	stale *staleness

	// send transmits a command frame. Set by the coordinator so the
	// receiver can issue the follow-up requests a discovery cascade
	// needs (ActiveEndpointRequest after DeviceAnnounce, and so on)
	// without importing the coordinator's send path directly.
	send func(Frame) error

	strictChecksum bool

	events   chan Event
	stopChan chan struct{}
}

func newReceiver(port *SerialPort, st *state, stale *staleness, strictChecksum bool) *receiver {
	return &receiver{
		port:           port,
		state:          st,
		stale:          stale,
		strictChecksum: strictChecksum,
		events:         make(chan Event, 32),
		stopChan:       make(chan struct{}),
	}
}

func (r *receiver) publish(evt Event) {
	select {
	case r.events <- evt:
	default:
		log.Warn().Str("type", string(evt.Type)).Msg("zigate: event channel full, dropping event")
	}
}

// run is the receiver goroutine's body: assemble frames between the
// 0x01/0x03 markers and dispatch each one. Returns when the port
// closes or stopChan fires.
func (r *receiver) run() {
	var buf []byte
	inFrame := false

	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		b, err := r.port.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Error().Err(err).Msg("zigate: serial read failed")
			return
		}

		switch {
		case b == frameStart:
			buf = buf[:0]
			buf = append(buf, b)
			inFrame = true
		case b == frameStop && inFrame:
			buf = append(buf, b)
			inFrame = false
			r.handleRaw(append([]byte(nil), buf...))
			buf = buf[:0]
		case inFrame:
			buf = append(buf, b)
		}
	}
}

func (r *receiver) stop() {
	close(r.stopChan)
}

func (r *receiver) handleRaw(raw []byte) {
	frame, err := Decode(raw)
	if err != nil && !errors.Is(err, ErrBadChecksum) {
		log.Warn().Err(err).Msg("zigate: dropping malformed frame")
		return
	}
	if err != nil {
		// ErrBadChecksum: the original driver logs and still delivers
		// the frame unless the caller opted into strict mode.
		if r.strictChecksum {
			log.Warn().Err(err).Msg("zigate: dropping frame with bad checksum (strict mode)")
			return
		}
		log.Warn().Err(err).Msg("zigate: frame checksum mismatch, delivering anyway")
	}

	resp, perr := ParseResponse(frame)
	if perr != nil {
		log.Warn().Err(perr).Str("frame", frame.String()).Msg("zigate: failed to parse response payload")
		return
	}

	// Dispatch before publishing to lastResp: a query that wakes on the
	// ReportIndividualAttributeResponse slot reads its value back out of
	// the device model, so the cluster update must already be applied
	// by the time a poller can observe the response.
	r.dispatch(resp)
	r.state.setLastResp(resp)
}

func (r *receiver) dispatch(resp Response) {
	switch msg := resp.(type) {
	case Status:
		r.state.setLastStatus(msg)

	case DeviceAnnounceMsg:
		d, isNew := r.state.deviceForNew(msg.ShortAddr, msg.IEEEAddr)
		d.MACCapability = msg.MACCapability
		r.stale.touch(msg.ShortAddr)
		if isNew {
			r.requestEndpoints(msg.ShortAddr)
			r.publish(Event{Type: EventDeviceJoined, Device: d})
		}

	case DevicesListMsg:
		for _, entry := range msg.Devices {
			d, isNew := r.state.deviceForNew(entry.ShortAddr, entry.IEEEAddr)
			d.PowerSource = entry.PowerSource
			d.LinkQuality = entry.LinkQuality
			r.stale.touch(entry.ShortAddr)
			if isNew {
				r.requestEndpoints(entry.ShortAddr)
			}
		}

	case ActiveEndpointsMsg:
		r.state.decExpResp()
		d, ok := r.state.device(msg.Addr)
		if !ok {
			log.Warn().Uint16("addr", msg.Addr).Msg("zigate: ActiveEndpoints for unknown device")
			return
		}
		for _, ep := range msg.Endpoints {
			r.state.incExpResp()
			if r.send == nil {
				continue
			}
			if err := r.send(SimpleDescriptorRequest(d.ShortAddr, ep)); err != nil {
				log.Warn().Err(err).Uint16("addr", d.ShortAddr).Uint8("endpoint", ep).Msg("zigate: failed to request simple descriptor")
				r.state.decExpResp()
			}
		}

	case SimpleDescriptorResponseMsg:
		d, ok := r.state.device(msg.Addr)
		if !ok {
			log.Warn().Uint16("addr", msg.Addr).Msg("zigate: SimpleDescriptorResponse for unknown device")
			r.state.decExpResp()
			return
		}
		d.Endpoints[msg.Endpoint] = NewEndpoint(msg)
		remaining := r.state.decExpResp()
		r.publish(Event{Type: EventDeviceUpdated, Device: d})
		if remaining == 0 {
			r.publish(Event{Type: EventDiscoveryDone, Device: d})
		}

	case ReadAttributeResponseMsg:
		d, ok := r.state.device(msg.SrcAddr)
		if !ok {
			log.Warn().Uint16("addr", msg.SrcAddr).Msg("zigate: attribute report for unknown device")
			return
		}
		ep, ok := d.Endpoint(msg.Endpoint)
		if !ok {
			log.Warn().Uint16("addr", msg.SrcAddr).Uint8("endpoint", msg.Endpoint).Msg("zigate: attribute report for unknown endpoint")
			return
		}
		if err := ep.updateAttribute(ClusterID(msg.ClusterID), msg.AttrID, msg.AttrType, msg.Data); err != nil {
			log.Warn().Err(err).Uint16("addr", msg.SrcAddr).Uint16("cluster", msg.ClusterID).Msg("zigate: failed to update cluster attribute")
			return
		}
		r.stale.touch(msg.SrcAddr)
		r.publish(Event{Type: EventDeviceUpdated, Device: d})

	case RouterDiscoveryConfirmMsg:
		log.Debug().Uint8("status", msg.Status).Msg("zigate: router discovery confirmed")

	case UnknownResponse:
		log.Debug().Str("resp", msg.String()).Msg("zigate: unrecognized response")
	}
}

func (r *receiver) requestEndpoints(shortAddr uint16) {
	if r.send == nil {
		return
	}
	r.state.incExpResp()
	if err := r.send(ActiveEndpointRequest(shortAddr)); err != nil {
		log.Warn().Err(err).Uint16("addr", shortAddr).Msg("zigate: failed to request active endpoints")
		r.state.decExpResp()
	}
}

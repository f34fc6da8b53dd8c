package zigate

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// pollInterval and pollAttempts give request/requestStatus a ~5s total
// wait budget, split into var (not const) so tests can shrink it.
var (
	pollInterval = 100 * time.Millisecond
	pollAttempts = 50
)

// Options configures a Coordinator at construction time.
type Options struct {
	// StrictChecksum drops frames that fail the checksum check instead
	// of logging and delivering them anyway.
	StrictChecksum bool
}

// Coordinator is the driver's public surface: a live connection to a
// ZigBee coordinator or router dongle plus the tracked state of every
// device it has discovered.
type Coordinator struct {
	port  *SerialPort
	state *state
	stale *staleness
	recv  *receiver

	opts Options

	// sendFunc is the wire-send seam request/requestStatus use. Defaults
	// to c.sendFrame; tests substitute a stub that never touches a real
	// serial port.
	sendFunc func(Frame) error
}

// New opens the serial connection at portPath and starts the receiver
// goroutine. The returned Coordinator is ready to issue commands.
func New(portPath string, opts Options) (*Coordinator, error) {
	log.Info().Str("port", portPath).Msg("zigate: opening coordinator")

	port, err := OpenSerial(portPath)
	if err != nil {
		return nil, err
	}

	st := newState()
	stale := newStaleness()
	recv := newReceiver(port, st, stale, opts.StrictChecksum)

	c := &Coordinator{
		port:  port,
		state: st,
		stale: stale,
		recv:  recv,
		opts:  opts,
	}
	c.sendFunc = c.sendFrame
	recv.send = c.sendFrame

	go recv.run()

	log.Info().Str("port", portPath).Msg("zigate: coordinator ready")
	return c, nil
}

// Close stops the receiver goroutine and closes the serial port.
func (c *Coordinator) Close() error {
	c.recv.stop()
	return c.port.Close()
}

// Subscribe returns the channel discovery and attribute-report events
// are published to.
func (c *Coordinator) Subscribe() <-chan Event {
	return c.recv.events
}

func (c *Coordinator) sendFrame(f Frame) error {
	wire, err := Encode(f.MsgType, f.Payload)
	if err != nil {
		return err
	}
	log.Debug().Str("frame", f.String()).Msg("zigate: sending")
	_, err = c.port.Write(wire)
	return err
}

// request sends f and polls for the next response of waitKind, clearing
// any stale value already sitting in state before sending so the poll
// can't observe an unrelated earlier response.
func (c *Coordinator) request(f Frame, waitKind MessageKind) (Response, error) {
	c.state.takeLastResp(waitKind)
	if err := c.sendFunc(f); err != nil {
		return nil, err
	}
	for i := 0; i < pollAttempts; i++ {
		if r, ok := c.state.takeLastResp(waitKind); ok {
			return r, nil
		}
		time.Sleep(pollInterval)
	}
	return nil, fmt.Errorf("%w: waiting for %s", ErrTimeout, waitKind)
}

// requestStatus sends f and polls for the Status response acknowledging
// packetType.
func (c *Coordinator) requestStatus(f Frame, packetType MessageKind) (Status, error) {
	c.state.takeLastStatus(packetType)
	if err := c.sendFunc(f); err != nil {
		return Status{}, err
	}
	for i := 0; i < pollAttempts; i++ {
		if st, ok := c.state.takeLastStatus(packetType); ok {
			return st, nil
		}
		time.Sleep(pollInterval)
	}
	return Status{}, fmt.Errorf("%w: waiting for status of %s", ErrTimeout, packetType)
}

// --- Maintenance ---

// Reset issues a soft reset of the coordinator module. Per the
// erase-before-send ordering rule, callers that need a clean network
// state should call Erase first.
func (c *Coordinator) Reset() error {
	_, err := c.requestStatus(Reset(), KindReset)
	return err
}

// Erase wipes the module's network configuration (PAN id, channel,
// device table). Must be called before StartNetwork when re-forming a
// network from scratch.
func (c *Coordinator) Erase() error {
	_, err := c.requestStatus(Erase(), KindErase)
	return err
}

// StartNetwork brings the ZigBee network up using the currently
// configured channel mask and device type.
func (c *Coordinator) StartNetwork() error {
	_, err := c.requestStatus(StartNetwork(), KindStartNetwork)
	return err
}

// GetNetworkState asks the module to report its current network state
// (PAN id, channel, short/extended address). The module answers with a
// Status frame; the network fields themselves arrive as log output on
// the module's own UART trace, not as a parsed payload here.
func (c *Coordinator) GetNetworkState() error {
	_, err := c.requestStatus(GetNetworkState(), KindGetNetworkState)
	return err
}

// SetChannelMask configures which 2.4GHz channels the network may form
// on. mask is a bitmask over channels 11-26.
func (c *Coordinator) SetChannelMask(mask uint32) error {
	_, err := c.requestStatus(SetChannelMask(mask), KindSetChannelMask)
	return err
}

// SetDeviceType configures the module to run as a coordinator or router.
func (c *Coordinator) SetDeviceType(t DeviceType) error {
	_, err := c.requestStatus(SetDeviceType(t), KindSetDeviceType)
	return err
}

// PermitJoin opens or closes the network to new joins for the given
// duration in seconds (0 closes it immediately).
func (c *Coordinator) PermitJoin(target uint16, durationSeconds uint8) error {
	_, err := c.requestStatus(PermitJoinRequest(target, durationSeconds, 0x00), KindPermitJoinRequest)
	return err
}

// --- Discovery ---

// GetVersion returns the module's firmware version, querying the
// hardware only once and caching the result for the coordinator's
// lifetime.
func (c *Coordinator) GetVersion() (VersionList, error) {
	if v, ok := c.state.getVersion(); ok {
		return v, nil
	}
	resp, err := c.request(GetVersion(), KindVersionList)
	if err != nil {
		return VersionList{}, err
	}
	v, ok := resp.(VersionList)
	if !ok {
		return VersionList{}, fmt.Errorf("%w: GetVersion got %T", ErrDecodeFailure, resp)
	}
	c.state.setVersion(v)
	return v, nil
}

// GetDevices triggers a device-list refresh, waits for the ensuing
// active-endpoint/simple-descriptor discovery cascade each listed
// device kicks off to fully drain, and returns every currently
// tracked, non-stale device.
func (c *Coordinator) GetDevices() ([]*Device, error) {
	if _, err := c.request(GetDevicesList(), KindDevicesList); err != nil {
		return nil, err
	}
	for i := 0; i < pollAttempts && c.state.peekExpResp() > 0; i++ {
		time.Sleep(pollInterval)
	}
	all := c.state.allDevices()
	out := make([]*Device, 0, len(all))
	for _, d := range all {
		if !c.stale.isStale(d.ShortAddr) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Device looks up a single tracked device by its 16-bit short address.
func (c *Coordinator) Device(shortAddr uint16) (*Device, bool) {
	return c.state.device(shortAddr)
}

// --- Actuation ---

// OnOff sends an On/Off cluster command to the device's endpoint.
func (c *Coordinator) OnOff(addr uint16, srcEndpoint, dstEndpoint uint8, cmd OnOffCommand) error {
	_, err := c.requestStatus(ActionOnOff(addr, srcEndpoint, dstEndpoint, cmd), KindActionOnOff)
	return err
}

// MoveToLevel sends a Level Control move-to-level (optionally with
// on/off) command.
func (c *Coordinator) MoveToLevel(addr uint16, srcEndpoint, dstEndpoint uint8, onOff bool, level uint8, transitionTime uint16) error {
	_, err := c.requestStatus(MoveToLevel(addr, srcEndpoint, dstEndpoint, onOff, level, transitionTime), KindActionMoveOnOff)
	return err
}

// MoveToHue sends a Color Control move-to-hue command.
func (c *Coordinator) MoveToHue(addr uint16, srcEndpoint, dstEndpoint uint8, hue uint8, direction uint8, transitionTime uint16) error {
	_, err := c.requestStatus(ActionMoveToHue(addr, srcEndpoint, dstEndpoint, hue, direction, transitionTime), KindActionMoveToHue)
	return err
}

// MoveToSaturation sends a Color Control move-to-saturation command.
// The module has no saturation-only opcode, so this reuses
// ActionMoveToHueAndSaturation with the device's last-known hue.
func (c *Coordinator) MoveToSaturation(addr uint16, srcEndpoint, dstEndpoint uint8, saturation uint8, transitionTime uint16) error {
	cl, err := c.clusterOn(addr, dstEndpoint, ClusterLightingColorControl)
	if err != nil {
		return err
	}
	hue, err := attrValue(cl.(*ColorControlCluster).CurrentHue)
	if err != nil {
		return err
	}
	_, err = c.requestStatus(ActionMoveToHueAndSaturation(addr, srcEndpoint, dstEndpoint, hue, saturation, transitionTime), KindActionMoveToHueAndSat)
	return err
}

// MoveToHueAndSaturation sends a combined hue+saturation command.
func (c *Coordinator) MoveToHueAndSaturation(addr uint16, srcEndpoint, dstEndpoint uint8, hue, saturation uint8, transitionTime uint16) error {
	_, err := c.requestStatus(ActionMoveToHueAndSaturation(addr, srcEndpoint, dstEndpoint, hue, saturation, transitionTime), KindActionMoveToHueAndSat)
	return err
}

// MoveToColor sends a CIE xy color command.
func (c *Coordinator) MoveToColor(addr uint16, srcEndpoint, dstEndpoint uint8, x, y uint16, transitionTime uint16) error {
	_, err := c.requestStatus(ActionMoveToColor(addr, srcEndpoint, dstEndpoint, x, y, transitionTime), KindActionMoveToColor)
	return err
}

// MoveToColorTemp sends a color-temperature command.
func (c *Coordinator) MoveToColorTemp(addr uint16, srcEndpoint, dstEndpoint uint8, mireds uint16, transitionTime uint16) error {
	_, err := c.requestStatus(ActionMoveToColorTemp(addr, srcEndpoint, dstEndpoint, mireds, transitionTime), KindActionMoveToColorTemp)
	return err
}

// --- Queries ---

// clusterOn returns the modeled cluster attached to dstEndpoint on
// addr, failing with ErrNotAvailable if the device, endpoint, or
// cluster isn't in the model yet.
func (c *Coordinator) clusterOn(addr uint16, dstEndpoint uint8, cluster ClusterID) (Cluster, error) {
	d, ok := c.state.device(addr)
	if !ok {
		return nil, fmt.Errorf("%w: device 0x%04X not discovered", ErrNotAvailable, addr)
	}
	ep, ok := d.Endpoint(dstEndpoint)
	if !ok {
		return nil, fmt.Errorf("%w: endpoint %d not discovered on 0x%04X", ErrNotAvailable, dstEndpoint, addr)
	}
	cl := ep.Cluster(cluster)
	if cl == nil {
		return nil, fmt.Errorf("%w: cluster 0x%04X not attached to endpoint %d", ErrNotAvailable, uint16(cluster), dstEndpoint)
	}
	return cl, nil
}

// queryAttribute issues a ReadAttributeRequest for attr and waits for
// the ReportIndividualAttributeResponse that follows it. By the time
// the wait returns the receiver has already applied the attribute to
// the device model (see receiver.handleRaw), so callers read the
// decoded value back out of the cluster record rather than out of the
// raw response payload.
func (c *Coordinator) queryAttribute(addr uint16, srcEndpoint, dstEndpoint uint8, cluster ClusterID, attr uint16) (Cluster, error) {
	if _, err := c.clusterOn(addr, dstEndpoint, cluster); err != nil {
		return nil, err
	}
	if _, err := c.request(ReadAttributeRequest(addr, srcEndpoint, dstEndpoint, uint16(cluster), attr), KindReportIndividualAttribute); err != nil {
		return nil, err
	}
	return c.clusterOn(addr, dstEndpoint, cluster)
}

// GetOnOff queries the device's On/Off cluster state.
func (c *Coordinator) GetOnOff(addr uint16, srcEndpoint, dstEndpoint uint8) (bool, error) {
	cl, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterGeneralOnOff, attrOnOffOnOff)
	if err != nil {
		return false, err
	}
	return cl.(*OnOffCluster).OnOff, nil
}

// GetLevel queries the device's Level Control current level.
func (c *Coordinator) GetLevel(addr uint16, srcEndpoint, dstEndpoint uint8) (uint8, error) {
	cl, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterGeneralLevelControl, attrLevelControlCurrentLevel)
	if err != nil {
		return 0, err
	}
	return cl.(*LevelControlCluster).CurrentLevel, nil
}

// attrValue dereferences an optional attribute pointer freshly populated
// by a successful queryAttribute call, failing with ErrDecodeFailure in
// the (unexpected) case the report never actually set it.
func attrValue[T any](v *T) (T, error) {
	if v == nil {
		var zero T
		return zero, fmt.Errorf("%w: attribute report did not set the expected field", ErrDecodeFailure)
	}
	return *v, nil
}

// GetColorHue queries the device's current hue.
func (c *Coordinator) GetColorHue(addr uint16, srcEndpoint, dstEndpoint uint8) (uint8, error) {
	cl, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterLightingColorControl, attrColorControlCurrentHue)
	if err != nil {
		return 0, err
	}
	return attrValue(cl.(*ColorControlCluster).CurrentHue)
}

// GetColorSaturation queries the device's current saturation.
func (c *Coordinator) GetColorSaturation(addr uint16, srcEndpoint, dstEndpoint uint8) (uint8, error) {
	cl, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterLightingColorControl, attrColorControlCurrentSaturation)
	if err != nil {
		return 0, err
	}
	return attrValue(cl.(*ColorControlCluster).CurrentSaturation)
}

// ColorXY is a CIE 1931 xy chromaticity pair, each scaled 0-65535.
type ColorXY struct {
	X uint16
	Y uint16
}

// GetColor queries the device's current CIE xy color.
func (c *Coordinator) GetColor(addr uint16, srcEndpoint, dstEndpoint uint8) (ColorXY, error) {
	if _, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterLightingColorControl, attrColorControlCurrentX); err != nil {
		return ColorXY{}, err
	}
	cl, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterLightingColorControl, attrColorControlCurrentY)
	if err != nil {
		return ColorXY{}, err
	}
	cc := cl.(*ColorControlCluster)
	x, err := attrValue(cc.CurrentX)
	if err != nil {
		return ColorXY{}, err
	}
	y, err := attrValue(cc.CurrentY)
	if err != nil {
		return ColorXY{}, err
	}
	return ColorXY{X: x, Y: y}, nil
}

// GetColorTemp queries the device's current color temperature in mireds.
func (c *Coordinator) GetColorTemp(addr uint16, srcEndpoint, dstEndpoint uint8) (uint16, error) {
	cl, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterLightingColorControl, attrColorControlColorTemperature)
	if err != nil {
		return 0, err
	}
	return attrValue(cl.(*ColorControlCluster).ColorTemperature)
}

// GetColorCapabilities queries the device's advertised color-control
// capability bitmap.
func (c *Coordinator) GetColorCapabilities(addr uint16, srcEndpoint, dstEndpoint uint8) (ColorCapabilities, error) {
	cl, err := c.queryAttribute(addr, srcEndpoint, dstEndpoint, ClusterLightingColorControl, attrColorControlColorCapabilities)
	if err != nil {
		return ColorCapabilities{}, err
	}
	return cl.(*ColorControlCluster).ColorCapabilities, nil
}

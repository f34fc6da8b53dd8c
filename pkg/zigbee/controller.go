package zigbee

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zigate/zigated/pkg/device"
	"github.com/zigate/zigated/pkg/zigate"
)

// defaultEndpoint is used for every actuation/query call in this
// adapter. The driver discovers a device's real endpoint numbers during
// the simple-descriptor cascade; actuation targets endpoint 1 the way
// nearly every commissioned ZigBee HA light does, since the coordinator
// itself only ever sends from its own endpoint 1.
const defaultEndpoint = 1

// Controller adapts a zigate.Coordinator to device.Controller and
// device.EventSubscriber so the REST API and MCP server can drive a
// real coordinator dongle without knowing anything about ZigBee wire
// framing.
type Controller struct {
	coord *zigate.Coordinator

	subscribers   []chan device.DiscoveryEvent
	subscribersMu sync.Mutex

	stopChan chan struct{}
}

// NewController opens the coordinator on portPath and starts relaying
// its discovery/attribute events to device.EventSubscriber listeners.
func NewController(portPath string, strictChecksum bool) (*Controller, error) {
	log.Info().Str("port", portPath).Msg("Initializing ZigBee controller")

	coord, err := zigate.New(portPath, zigate.Options{StrictChecksum: strictChecksum})
	if err != nil {
		return nil, fmt.Errorf("open coordinator: %w", err)
	}

	c := &Controller{
		coord:    coord,
		stopChan: make(chan struct{}),
	}

	go c.pumpEvents()

	log.Info().Msg("ZigBee controller initialized")
	return c, nil
}

func (c *Controller) pumpEvents() {
	for {
		select {
		case <-c.stopChan:
			return
		case evt, ok := <-c.coord.Subscribe():
			if !ok {
				return
			}
			c.publishEvent(device.DiscoveryEvent{
				Type:      string(evt.Type),
				Device:    toDevicePtr(evt.Device),
				Timestamp: time.Now(),
			})
		}
	}
}

func (c *Controller) publishEvent(evt device.DiscoveryEvent) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

func ieeeHex(addr uint64) string {
	return fmt.Sprintf("0x%016X", addr)
}

func deviceStateSchema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"state": map[string]any{
				"type": "string",
				"enum": []string{"ON", "OFF", "TOGGLE"},
			},
			"brightness": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 254,
			},
			"hue": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 254,
			},
			"saturation": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 254,
			},
			"color_temp": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 65535,
			},
		},
	}
	raw, _ := json.Marshal(schema)
	return raw
}

// toDevice converts a tracked zigate.Device into the protocol-agnostic
// device.Device the API and MCP layers consume.
func toDevice(d *zigate.Device) device.Device {
	manufacturer, model := "Unknown", "Unknown"
	for _, ep := range d.Endpoints {
		if basic, ok := ep.Cluster(zigate.ClusterBasic).(*zigate.BasicCluster); ok {
			if basic.ManufacturerName != "" {
				manufacturer = basic.ManufacturerName
			}
			if basic.ModelIdentifier != "" {
				model = basic.ModelIdentifier
			}
		}
	}

	id := ieeeHex(d.IEEEAddr)
	return device.Device{
		ID:           id,
		Name:         id,
		Type:         deviceTypeOf(d),
		Protocol:     device.ProtocolZigbee,
		Manufacturer: manufacturer,
		Model:        model,
		StateSchema:  deviceStateSchema(),
	}
}

func toDevicePtr(d *zigate.Device) *device.Device {
	if d == nil {
		return nil
	}
	dev := toDevice(d)
	return &dev
}

func deviceTypeOf(d *zigate.Device) string {
	if _, _, ok := d.FindCluster(zigate.ClusterLightingColorControl); ok {
		return device.DeviceTypeLight
	}
	if _, _, ok := d.FindCluster(zigate.ClusterGeneralLevelControl); ok {
		return device.DeviceTypeLight
	}
	if _, _, ok := d.FindCluster(zigate.ClusterGeneralOnOff); ok {
		return device.DeviceTypeSwitch
	}
	return device.DeviceTypeSensor
}

// --- device.Controller ---

func (c *Controller) ListDevices(_ context.Context) ([]device.Device, error) {
	devices, err := c.coord.GetDevices()
	if err != nil {
		return nil, err
	}
	out := make([]device.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDevice(d))
	}
	return out, nil
}

func (c *Controller) GetDevice(_ context.Context, id string) (*device.Device, error) {
	devices, err := c.coord.GetDevices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if ieeeHex(d.IEEEAddr) == id {
			dev := toDevice(d)
			return &dev, nil
		}
	}
	return nil, device.ErrNotFound
}

func (c *Controller) RenameDevice(_ context.Context, id, newName string) error {
	// The driver has no concept of a persisted friendly name distinct
	// from the device's IEEE address.
	return device.ErrUnsupported
}

func (c *Controller) RemoveDevice(_ context.Context, id string, force bool) error {
	return device.ErrUnsupported
}

func (c *Controller) findByID(id string) (*zigate.Device, error) {
	devices, err := c.coord.GetDevices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if ieeeHex(d.IEEEAddr) == id {
			return d, nil
		}
	}
	return nil, device.ErrNotFound
}

func (c *Controller) GetDeviceState(_ context.Context, id string) (device.DeviceState, error) {
	d, err := c.findByID(id)
	if err != nil {
		return nil, err
	}

	state := make(device.DeviceState)

	if _, _, ok := d.FindCluster(zigate.ClusterGeneralOnOff); ok {
		on, err := c.coord.GetOnOff(d.ShortAddr, defaultEndpoint, defaultEndpoint)
		if err == nil {
			state["state"] = boolToOnOff(on)
		}
	}
	if _, _, ok := d.FindCluster(zigate.ClusterGeneralLevelControl); ok {
		level, err := c.coord.GetLevel(d.ShortAddr, defaultEndpoint, defaultEndpoint)
		if err == nil {
			state["brightness"] = int(level)
		}
	}
	if _, _, ok := d.FindCluster(zigate.ClusterLightingColorControl); ok {
		if hue, err := c.coord.GetColorHue(d.ShortAddr, defaultEndpoint, defaultEndpoint); err == nil {
			state["hue"] = int(hue)
		}
		if sat, err := c.coord.GetColorSaturation(d.ShortAddr, defaultEndpoint, defaultEndpoint); err == nil {
			state["saturation"] = int(sat)
		}
		if temp, err := c.coord.GetColorTemp(d.ShortAddr, defaultEndpoint, defaultEndpoint); err == nil {
			state["color_temp"] = int(temp)
		}
	}

	return state, nil
}

func (c *Controller) SetDeviceState(_ context.Context, id string, req map[string]any) (device.DeviceState, error) {
	d, err := c.findByID(id)
	if err != nil {
		return nil, err
	}

	if v, ok := req["state"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: state must be a string", device.ErrValidation)
		}
		var cmd zigate.OnOffCommand
		switch strings.ToUpper(s) {
		case "ON":
			cmd = zigate.OnOffOn
		case "OFF":
			cmd = zigate.OnOffOff
		case "TOGGLE":
			cmd = zigate.OnOffToggle
		default:
			return nil, fmt.Errorf("%w: invalid state value %q", device.ErrValidation, s)
		}
		if err := c.coord.OnOff(d.ShortAddr, defaultEndpoint, defaultEndpoint, cmd); err != nil {
			return nil, err
		}
	}

	if v, ok := req["brightness"]; ok {
		level, err := asUint8(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", device.ErrValidation, err)
		}
		if err := c.coord.MoveToLevel(d.ShortAddr, defaultEndpoint, defaultEndpoint, true, level, 10); err != nil {
			return nil, err
		}
	}

	if hv, hasHue := req["hue"]; hasHue {
		hue, err := asUint8(hv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", device.ErrValidation, err)
		}
		if sv, hasSat := req["saturation"]; hasSat {
			sat, err := asUint8(sv)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", device.ErrValidation, err)
			}
			if err := c.coord.MoveToHueAndSaturation(d.ShortAddr, defaultEndpoint, defaultEndpoint, hue, sat, 10); err != nil {
				return nil, err
			}
		} else if err := c.coord.MoveToHue(d.ShortAddr, defaultEndpoint, defaultEndpoint, hue, 0, 10); err != nil {
			return nil, err
		}
	} else if sv, hasSat := req["saturation"]; hasSat {
		sat, err := asUint8(sv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", device.ErrValidation, err)
		}
		if err := c.coord.MoveToSaturation(d.ShortAddr, defaultEndpoint, defaultEndpoint, sat, 10); err != nil {
			return nil, err
		}
	}

	if v, ok := req["color_temp"]; ok {
		temp, err := asUint16(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", device.ErrValidation, err)
		}
		if err := c.coord.MoveToColorTemp(d.ShortAddr, defaultEndpoint, defaultEndpoint, temp, 10); err != nil {
			return nil, err
		}
	}

	return c.GetDeviceState(context.Background(), id)
}

func (c *Controller) PermitJoin(_ context.Context, enable bool, duration int) error {
	var dur uint8
	if enable {
		if duration <= 0 || duration > 254 {
			dur = 254
		} else {
			dur = uint8(duration)
		}
	}
	return c.coord.PermitJoin(0xFFFC, dur)
}

func (c *Controller) IsConnected() bool {
	return c.coord != nil
}

func (c *Controller) Close() {
	close(c.stopChan)
	if err := c.coord.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close ZigBee coordinator")
	}
	log.Info().Msg("ZigBee controller closed")
}

// --- device.EventSubscriber ---

func (c *Controller) Subscribe() chan device.DiscoveryEvent {
	ch := make(chan device.DiscoveryEvent, 16)
	c.subscribersMu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.subscribersMu.Unlock()
	return ch
}

func (c *Controller) Unsubscribe(ch chan device.DiscoveryEvent) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()
	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// --- helpers ---

func boolToOnOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func asUint8(v any) (uint8, error) {
	switch n := v.(type) {
	case float64:
		return uint8(n), nil
	case int:
		return uint8(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return uint8(i), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func asUint16(v any) (uint16, error) {
	switch n := v.(type) {
	case float64:
		return uint16(n), nil
	case int:
		return uint16(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return uint16(i), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
